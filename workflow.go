package pymk

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.fractalqb.de/fractalqb/pymk/mkfs"
	"git.fractalqb.de/fractalqb/pymk/pyproj"
)

// Targets are the goal names [Workflow.NewProject] defines, in help order.
var Targets = []string{
	"accept", "coverage", "readme", "register", "sdist", "test", "upload",
}

// Workflow assembles the canonical development target graph of a Python
// package:
//
//	accept    behave --stop
//	coverage  py.test --cov-report term-missing --cov=<pkg> --cov=tests
//	readme    setup.py --long-description | rst2html > README.html; open it
//	register  setup.py register
//	sdist     setup.py sdist
//	test      setup.py test
//	upload    setup.py sdist upload
//
// plus the removable artefacts the clean run sweeps: compiled bytecode,
// bytecode caches, OS metadata files, the dist and build directories, the
// coverage data file and the generated README.html.
type Workflow struct {
	Python Python

	// Package is the import package directory of the project, e.g. "pptx".
	// When empty it is taken from the package metadata.
	Package string

	Tests      string // tests directory, default "tests"
	Readme     string // long-description source, default from metadata or README.rst
	ReadmeHTML string // generated readme, default "README.html"
	DistDir    string // default "dist"
	BuildDir   string // default "build"

	// NoOpen suppresses opening the generated readme.
	NoOpen bool
}

func (wf Workflow) tests() string {
	if wf.Tests == "" {
		return "tests"
	}
	return wf.Tests
}

func (wf Workflow) readmeHTML() string {
	if wf.ReadmeHTML == "" {
		return "README.html"
	}
	return wf.ReadmeHTML
}

func (wf Workflow) distDir() string {
	if wf.DistDir == "" {
		return "dist"
	}
	return wf.DistDir
}

func (wf Workflow) buildDir() string {
	if wf.BuildDir == "" {
		return "build"
	}
	return wf.BuildDir
}

// NewProject builds the target graph for the Python package in dir, the
// current working directory when dir is empty.
func (wf Workflow) NewProject(dir string) (*Project, error) {
	prj := NewProject(dir)
	meta, err := pyproj.Load(prj.Dir)
	if err != nil && !errors.Is(err, pyproj.ErrNoMetadata) {
		return nil, err
	}
	pkg := wf.Package
	if pkg == "" {
		pkg = wf.findPackageDir(prj.Dir)
	}
	if pkg == "" && meta != nil {
		pkg = meta.DistName()
	}
	if pkg == "" {
		abs, err := filepath.Abs(prj.Dir)
		if err != nil {
			return nil, err
		}
		pkg = filepath.Base(abs)
	}
	readmeSrc := wf.Readme
	if readmeSrc == "" && meta != nil {
		readmeSrc = meta.Readme
	}
	if readmeSrc == "" {
		readmeSrc = "README.rst"
	}
	err = Edit(prj, func(ed ProjectEd) {
		wf.editTargets(ed, pkg, readmeSrc, meta)
		wf.editRemovables(ed)
	})
	if err != nil {
		return nil, err
	}
	return prj, nil
}

func (wf Workflow) editTargets(ed ProjectEd, pkg, readmeSrc string, meta *pyproj.Meta) {
	ed.AbstractGoal("accept").By(&BehaveCmd{Python: wf.Python, Stop: true})

	ed.AbstractGoal("coverage").By(&CoverageCmd{
		Python: wf.Python,
		Roots:  []string{pkg, wf.tests()},
	})

	ed.AbstractGoal("test").By(&SetupCmd{Python: wf.Python, Sub: []string{"test"}})
	ed.AbstractGoal("register").By(&SetupCmd{Python: wf.Python, Sub: []string{"register"}})
	ed.AbstractGoal("upload").By(&SetupCmd{Python: wf.Python, Sub: []string{"sdist", "upload"}})

	sdist := ed.AbstractGoal("sdist")
	if sf := meta.SdistFile(wf.distDir()); sf != "" {
		archive := ed.Goal(mkfs.File(sf)).
			By(&SetupCmd{Python: wf.Python, Sub: []string{"sdist"}})
		archive.SetRemovable(true)
		sdist.ImpliedBy(archive)
	} else {
		sdist.By(&SetupCmd{Python: wf.Python, Sub: []string{"sdist"}})
	}

	srcGoal := ed.Goal(mkfs.File(readmeSrc))
	html := ed.Goal(mkfs.File(wf.readmeHTML()))
	if wf.hasSetupScript(ed) {
		html.By(&LongDescCmd{Python: wf.Python}, srcGoal)
	} else {
		html.By(&DocutilsCmd{Python: wf.Python}, srcGoal)
	}
	html.SetRemovable(true)
	readme := ed.AbstractGoal("readme")
	if wf.NoOpen {
		readme.ImpliedBy(html)
	} else {
		readme.By(OpenCmd{}, html)
	}
}

// findPackageDir probes dir for a top-level import package, i.e. a
// directory holding an __init__.py. The distribution name is no reliable
// default here: it normalizes to e.g. python_pptx while the import package
// is pptx.
func (wf Workflow) findPackageDir(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		switch name {
		case wf.tests(), wf.distDir(), wf.buildDir():
			continue
		}
		st, err := os.Stat(filepath.Join(dir, name, "__init__.py"))
		if err == nil && st.Mode().IsRegular() {
			return name
		}
	}
	return ""
}

func (wf Workflow) hasSetupScript(ed ProjectEd) bool {
	st, err := os.Stat(filepath.Join(ed.Dir(), "setup.py"))
	return err == nil && st.Mode().IsRegular()
}

// editRemovables registers the artefacts the clean run may sweep. They are
// goals like any other, just never the result of an action.
func (wf Workflow) editRemovables(ed ProjectEd) {
	removables := []mkfs.Artefact{
		mkfs.DirTree{Dir: ".", Filter: mkfs.NameMatch("*.pyc")},
		mkfs.DirTree{Dir: ".", Filter: mkfs.All{
			mkfs.IsDir(true), mkfs.NameMatch("__pycache__"),
		}},
		mkfs.DirTree{Dir: ".", Filter: mkfs.NameMatch(".DS_Store")},
		mkfs.Dir(wf.distDir()),
		mkfs.Dir(wf.buildDir()),
		mkfs.File(".coverage"),
	}
	for _, atf := range removables {
		ed.Goal(atf).SetRemovable(true)
	}
}

// Describe returns a one line description for target, the empty string for
// unknown targets.
func Describe(target string) string {
	switch target {
	case "accept":
		return "run acceptance tests, stop on first failure"
	case "coverage":
		return "run test suite with coverage report"
	case "readme":
		return "generate README.html from the long description and open it"
	case "register":
		return "register package metadata with the package index"
	case "sdist":
		return "build source distribution archive"
	case "test":
		return "run the test suite via the packaging script"
	case "upload":
		return "build and upload the source distribution"
	}
	return ""
}

// Check verifies that target names a workflow goal in prj.
func Check(prj *Project, target string) error {
	if prj.FindGoal(target) == nil {
		return fmt.Errorf("unknown target '%s', have: %s",
			target,
			strings.Join(prj.GoalNames((*Goal).IsAbstract), ", "),
		)
	}
	return nil
}
