// Package pymk automates the development workflow of Python packages. It
// models the classic make targets of a Python project – acceptance tests,
// coverage, README generation, register, sdist, test and upload – as goals
// in a [pymkore.Project] and runs the underlying tools (behave, py.test,
// setup.py, docutils) as external commands.
//
// The canned [Workflow] builds the whole target graph for a conventional
// project layout:
//
//	wf := pymk.Workflow{Package: "pptx"}
//	prj, err := wf.NewProject("")
//
// Single targets are then built by name, e.g. with
// [pymkore.Builder.NamedGoals], and build artefacts are swept with [Clean].
// The pymk command in cmd/pymk wraps exactly this for the command line.
//
// Custom graphs are edited the same way as with the underlying engine:
//
//	err := pymk.Edit(prj, func(prj pymk.ProjectEd) {
//		prj.AbstractGoal("accept").By(&pymk.BehaveCmd{Stop: true})
//	})
package pymk
