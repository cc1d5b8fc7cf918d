package pymkore

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"
)

// BuildID distinguishes build runs of one [Project]. IDs are strictly
// increasing per project.
type BuildID = uint64

// A Project collects goals and the actions connecting them. The zero Dir
// means the current working directory. Use [Project.LockBuild] / Unlock to
// bracket anything that must not interleave with a running build.
type Project struct {
	Dir string

	sync.Mutex

	goals     map[string]*Goal
	actions   []*Action
	lastBuild BuildID
}

func NewProject(dir string) *Project {
	if dir == "" {
		dir, _ = os.Getwd()
	}
	return &Project{
		Dir:   dir,
		goals: make(map[string]*Goal),
	}
}

// Goal returns the project's goal for artefact atf, creating it if it does
// not yet exist. Goals are unique per artefact name. A nil atf creates a
// fresh [Abstract] goal with a generated name.
func (prj *Project) Goal(atf Artefact) (*Goal, error) {
	if atf == nil {
		atf = Abstract(fmt.Sprintf("artefact-%d", len(prj.goals)))
	}
	name := atf.Name(prj)
	if g := prj.goals[name]; g != nil {
		return g, nil
	}
	g := &Goal{Artefact: atf, prj: prj}
	prj.goals[name] = g
	return g, nil
}

func (prj *Project) FindGoal(name string) *Goal { return prj.goals[name] }

// Goals appends all goals of prj to addTo and returns the result. The order
// is unspecified.
func (prj *Project) Goals(addTo []*Goal) []*Goal {
	if len(prj.goals) == 0 {
		return addTo
	}
	addTo = slices.Grow(addTo, len(prj.goals))
	for _, g := range prj.goals {
		addTo = append(addTo, g)
	}
	return addTo
}

// GoalNames returns the sorted names of all goals for which keep returns
// true, or of all goals if keep is nil.
func (prj *Project) GoalNames(keep func(*Goal) bool) []string {
	var names []string
	for n, g := range prj.goals {
		if keep == nil || keep(g) {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names
}

// Leafs returns the goals no action depends on, i.e. the outermost results
// of the project.
func (prj *Project) Leafs() (ls []*Goal) {
	for _, g := range prj.goals {
		if len(g.PremiseOf()) == 0 {
			ls = append(ls, g)
		}
	}
	return ls
}

// Roots returns the goals that are no result of any action.
func (prj *Project) Roots() (rs []*Goal) {
	for _, g := range prj.goals {
		if len(g.ResultOf()) == 0 {
			rs = append(rs, g)
		}
	}
	return rs
}

// NewAction creates a new [Action] with at least one result. All premises
// and results must belong to prj.
func (prj *Project) NewAction(premises, results []*Goal, op Operation) (*Action, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("creating action %s without result",
			op.Describe(nil, nil),
		)
	}
	for _, g := range premises {
		if g.Project() != prj {
			return nil, fmt.Errorf("premise '%s' not in project '%s'",
				g.Name(),
				prj.String(),
			)
		}
	}
	for _, g := range results {
		if g.Project() != prj {
			return nil, fmt.Errorf("result '%s' not in project '%s'",
				g.Name(),
				prj.String(),
			)
		}
	}
	a := &Action{
		Op:       op,
		prj:      prj,
		premises: premises,
		results:  results,
	}
	for _, p := range premises {
		p.premiseOf = append(p.premiseOf, a)
	}
	for _, r := range results {
		r.resultOf = append(r.resultOf, a)
	}
	prj.actions = append(prj.actions, a)
	return a, nil
}

func (prj *Project) Actions() []*Action { return prj.actions }

// LockBuild locks prj and starts a new build run. The returned ID stays
// current until the next LockBuild.
func (prj *Project) LockBuild() BuildID {
	prj.Lock()
	prj.lastBuild++
	return prj.lastBuild
}

// Build returns the ID of the current, i.e. most recently started, build.
func (prj *Project) Build() BuildID { return prj.lastBuild }

func (prj *Project) Name(in *Project) string {
	if in == nil || in == prj {
		return prj.String()
	}
	p, err := in.RelPath(prj.Dir)
	if err != nil {
		return prj.String()
	}
	return p
}

// StateAt implements [Artefact] so that a project can be the premise of
// actions in an embedding context. It is the latest state time of the
// project's leaf goals.
func (prj *Project) StateAt(in *Project) (time.Time, error) {
	var t time.Time
	for _, l := range prj.Leafs() {
		u, err := l.Artefact.StateAt(prj)
		if err != nil {
			return time.Time{}, err
		}
		if u.After(t) {
			t = u
		}
	}
	return t, nil
}

var _ Artefact = (*Project)(nil)

func (prj *Project) String() string {
	dir := prj.Dir
	if dir == "" || dir == "." {
		dir, _ = filepath.Abs(dir)
	}
	return filepath.Base(dir)
}

// AbsPath resolves path relative to the project directory.
func (prj *Project) AbsPath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	return filepath.Abs(filepath.Join(prj.Dir, path))
}

// RelPath makes path relative to the project directory.
func (prj *Project) RelPath(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	abs, err := filepath.Abs(prj.Dir)
	if err != nil {
		return "", err
	}
	return filepath.Rel(abs, path)
}
