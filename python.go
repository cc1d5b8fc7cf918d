package pymk

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"git.fractalqb.de/fractalqb/pymk/mkfs"
	"git.fractalqb.de/fractalqb/pymk/pymkore"
)

// DefaultVEnv are the project-relative interpreter candidates probed by
// [Python.Interpreter]. bin/python is the classic in-project virtualenv
// layout, .venv the contemporary one.
var DefaultVEnv = []string{
	filepath.Join("bin", "python"),
	filepath.Join(".venv", "bin", "python"),
}

// Python resolves the interpreter and the tools of a project's Python
// environment. A local virtualenv interpreter wins over whatever is found
// on the search path.
type Python struct {
	// Exe overrides interpreter resolution when set.
	Exe string

	// VEnv are project-relative interpreter candidates, defaults to
	// [DefaultVEnv].
	VEnv []string
}

func (py Python) venv() []string {
	if py.VEnv == nil {
		return DefaultVEnv
	}
	return py.VEnv
}

// Interpreter returns the interpreter to use for prj: the first executable
// VEnv candidate, otherwise the first python3 or python on the search
// path.
func (py Python) Interpreter(prj *Project) (string, error) {
	if py.Exe != "" {
		return py.Exe, nil
	}
	for _, cand := range py.venv() {
		p, err := prj.AbsPath(cand)
		if err != nil {
			continue
		}
		if isExecutable(p) {
			return p, nil
		}
	}
	for _, name := range []string{"python3", "python"} {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", errors.New("no python interpreter found")
}

// Tool resolves an executable of the Python environment, e.g. behave or
// py.test, preferring the bin directories of the VEnv candidates over the
// search path.
func (py Python) Tool(prj *Project, name string) (string, error) {
	for _, cand := range py.venv() {
		p, err := prj.AbsPath(filepath.Join(filepath.Dir(cand), name))
		if err != nil {
			continue
		}
		if isExecutable(p) {
			return p, nil
		}
	}
	return exec.LookPath(name)
}

func isExecutable(path string) bool {
	st, err := os.Stat(path)
	if err != nil || !st.Mode().IsRegular() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return st.Mode().Perm()&0111 != 0
}

// SetupCmd runs the project's packaging script, i.e.
//
//	$(PYTHON) setup.py <sub-commands...>
//
// It covers the register, sdist, test and upload targets; upload is the
// sub-command pair "sdist upload" in one invocation.
type SetupCmd struct {
	Python
	Script string // defaults to setup.py
	Sub    []string
}

var _ pymkore.Operation = (*SetupCmd)(nil)

func (sc *SetupCmd) script() string {
	if sc.Script == "" {
		return "setup.py"
	}
	return sc.Script
}

func (sc *SetupCmd) Describe(*Action, *Env) string {
	return fmt.Sprintf("%s %s", sc.script(), strings.Join(sc.Sub, " "))
}

func (sc *SetupCmd) Do(tr *pymkore.Trace, a *Action, env *Env) error {
	prj := a.Project()
	py, err := sc.Interpreter(prj)
	if err != nil {
		return err
	}
	op := &CmdOp{
		CWD:  prj.Dir,
		Exe:  py,
		Args: append([]string{sc.script()}, sc.Sub...),
		Desc: sc.Describe(a, env),
	}
	return op.Do(tr, a, env)
}

// BehaveCmd runs the behave acceptance test tool. Stop passes --stop so the
// run ends at the first failing scenario.
type BehaveCmd struct {
	Python
	Stop bool
	Args []string
}

var _ pymkore.Operation = (*BehaveCmd)(nil)

func (bc *BehaveCmd) Describe(*Action, *Env) string {
	if bc.Stop {
		return "behave --stop"
	}
	return "behave"
}

func (bc *BehaveCmd) Do(tr *pymkore.Trace, a *Action, env *Env) error {
	prj := a.Project()
	exe, err := bc.Tool(prj, "behave")
	if err != nil {
		return err
	}
	op := &CmdOp{CWD: prj.Dir, Exe: exe, Desc: bc.Describe(a, env)}
	if bc.Stop {
		op.Args = append(op.Args, "--stop")
	}
	op.Args = append(op.Args, bc.Args...)
	return op.Do(tr, a, env)
}

// CoverageCmd runs the test suite under coverage instrumentation:
//
//	py.test --cov-report term-missing --cov=<root>...
//
// Roots are the source roots coverage is reported for, conventionally the
// package directory and the tests directory. Thresholds and report policy
// stay with the tool's own configuration.
type CoverageCmd struct {
	Python
	Roots  []string
	Report string // defaults to term-missing
}

var _ pymkore.Operation = (*CoverageCmd)(nil)

func (cc *CoverageCmd) Describe(*Action, *Env) string {
	return fmt.Sprintf("py.test coverage %s", strings.Join(cc.Roots, " "))
}

func (cc *CoverageCmd) Do(tr *pymkore.Trace, a *Action, env *Env) error {
	prj := a.Project()
	exe, err := cc.Tool(prj, "py.test")
	if err != nil {
		return err
	}
	report := cc.Report
	if report == "" {
		report = "term-missing"
	}
	op := &CmdOp{
		CWD:  prj.Dir,
		Exe:  exe,
		Args: []string{"--cov-report", report},
		Desc: cc.Describe(a, env),
	}
	for _, root := range cc.Roots {
		op.Args = append(op.Args, "--cov="+root)
	}
	return op.Do(tr, a, env)
}

// DocutilsCmd converts the action's one premise [mkfs.File] into its one
// result [mkfs.File] with a docutils writer, e.g. rst2html for the readme
// target. The converter writes to stdout, which is redirected to the
// result file.
type DocutilsCmd struct {
	Python
	Writer string // converter executable, defaults to rst2html
	Args   []string
}

var _ pymkore.Operation = (*DocutilsCmd)(nil)

func (dc *DocutilsCmd) writer() string {
	if dc.Writer == "" {
		return "rst2html"
	}
	return dc.Writer
}

func (dc *DocutilsCmd) Describe(a *Action, _ *Env) string {
	if a == nil || len(a.Premises()) == 0 || len(a.Results()) == 0 {
		return dc.writer()
	}
	return fmt.Sprintf("%s: %s -> %s",
		dc.writer(),
		a.Premise(0).Name(),
		a.Result(0).Name(),
	)
}

func (dc *DocutilsCmd) Do(tr *pymkore.Trace, a *Action, env *Env) error {
	if len(a.Premises()) != 1 || len(a.Results()) != 1 {
		return errors.New("docutils conversion requires one premise and one result file goal")
	}
	in, ok := a.Premise(0).Artefact.(mkfs.File)
	if !ok {
		return fmt.Errorf("docutils conversion premise is no file but %T",
			a.Premise(0).Artefact,
		)
	}
	out, ok := a.Result(0).Artefact.(mkfs.File)
	if !ok {
		return fmt.Errorf("docutils conversion result is no file but %T",
			a.Result(0).Artefact,
		)
	}
	prj := a.Project()
	exe, err := dc.Tool(prj, dc.writer())
	if err != nil {
		return err
	}
	inPath, err := prj.AbsPath(in.Path())
	if err != nil {
		return err
	}
	outPath, err := prj.AbsPath(out.Path())
	if err != nil {
		return err
	}
	op := &CmdOp{
		CWD:     prj.Dir,
		Exe:     exe,
		Args:    append(dc.Args, inPath),
		OutFile: outPath,
		Desc:    dc.Describe(a, env),
	}
	return op.Do(tr, a, env)
}

// LongDescCmd renders the package's long description to the action's one
// result [mkfs.File]:
//
//	$(PYTHON) setup.py --long-description | rst2html > README.html
//
// File premises, e.g. the long description's source document, only drive
// the up-to-date check.
type LongDescCmd struct {
	Python
	Script string // defaults to setup.py
	Writer string // converter executable, defaults to rst2html
}

var _ pymkore.Operation = (*LongDescCmd)(nil)

func (ld *LongDescCmd) script() string {
	if ld.Script == "" {
		return "setup.py"
	}
	return ld.Script
}

func (ld *LongDescCmd) writer() string {
	if ld.Writer == "" {
		return "rst2html"
	}
	return ld.Writer
}

func (ld *LongDescCmd) Describe(a *Action, _ *Env) string {
	return fmt.Sprintf("%s --long-description | %s", ld.script(), ld.writer())
}

func (ld *LongDescCmd) Do(tr *pymkore.Trace, a *Action, env *Env) error {
	if len(a.Results()) != 1 {
		return errors.New("long description rendering requires one result file goal")
	}
	out, ok := a.Result(0).Artefact.(mkfs.File)
	if !ok {
		return fmt.Errorf("long description result is no file but %T",
			a.Result(0).Artefact,
		)
	}
	prj := a.Project()
	py, err := ld.Interpreter(prj)
	if err != nil {
		return err
	}
	writer, err := ld.Tool(prj, ld.writer())
	if err != nil {
		return err
	}
	outPath, err := prj.AbsPath(out.Path())
	if err != nil {
		return err
	}
	pipe := PipeOp{
		CmdOp{CWD: prj.Dir, Exe: py, Args: []string{ld.script(), "--long-description"}},
		CmdOp{CWD: prj.Dir, Exe: writer, OutFile: outPath},
	}
	return pipe.Do(tr, a, env)
}

// OpenCmd opens the action's file premises with the platform's opener,
// e.g. the generated README.html in a browser.
type OpenCmd struct{}

var _ pymkore.Operation = OpenCmd{}

func (OpenCmd) Describe(a *Action, _ *Env) string {
	if a == nil || len(a.Premises()) == 0 {
		return "open"
	}
	return "open " + a.Premise(0).Name()
}

func (oc OpenCmd) Do(tr *pymkore.Trace, a *Action, env *Env) error {
	prj := a.Project()
	for _, pre := range a.Premises() {
		fa, ok := pre.Artefact.(mkfs.File)
		if !ok {
			continue
		}
		path, err := prj.AbsPath(fa.Path())
		if err != nil {
			return err
		}
		op := &CmdOp{CWD: prj.Dir, Desc: "open " + pre.Name()}
		switch runtime.GOOS {
		case "darwin":
			op.Exe, op.Args = "open", []string{path}
		case "windows":
			op.Exe = "rundll32"
			op.Args = []string{"url.dll,FileProtocolHandler", path}
		default:
			op.Exe, op.Args = "xdg-open", []string{path}
		}
		if err := op.Do(tr, a, env); err != nil {
			return err
		}
	}
	return nil
}
