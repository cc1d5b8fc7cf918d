package pymkore

import (
	"sync"
	"sync/atomic"
)

// An Action is something you can do in your [Project] to reach at least one
// [Goal]. The actual work is done by the action's [Operation]. An action
// without operation is "implicit": when all its premises hold, its results
// are implicitly given.
type Action struct {
	Op Operation

	// IgnoreError makes a build continue even if the operation fails. The
	// failure is still traced.
	IgnoreError bool

	prj      *Project
	premises []*Goal
	results  []*Goal

	mu      sync.Mutex
	lockGID uintptr
	lastBID atomic.Uint64
}

func (a *Action) Project() *Project { return a.prj }

func (a *Action) Premises() []*Goal   { return a.premises }
func (a *Action) Premise(i int) *Goal { return a.premises[i] }

func (a *Action) Results() []*Goal   { return a.results }
func (a *Action) Result(i int) *Goal { return a.results[i] }

// LastBuild returns the ID of the build that most recently ran a.
func (a *Action) LastBuild() BuildID { return a.lastBID.Load() }

// Run runs a's operation unless a already ran in the current build of its
// project. It returns the build ID a had run in before this call, i.e. a
// value less than the current build ID iff the operation was run now.
func (a *Action) Run(tr *Trace, env *Env) (BuildID, error) {
	bid := a.prj.Build()
	last := a.lastBID.Load()
	if last >= bid {
		return last, nil
	}
	tr = tr.pushAction(a)
	if a.Op == nil {
		tr.runImplicitAction(a)
		a.lastBID.Store(bid)
		return last, nil
	}
	tr.runAction(a)
	aenv, err := tr.setupActionEnv(env)
	if err != nil {
		return last, err
	}
	err = a.Op.Do(tr, a, aenv)
	if cerr := tr.closeActionEnv(aenv); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil && a.IgnoreError {
		tr.Warn("ignoring `error` of `action`", `error`, err.Error(), `action`, a.String())
		err = nil
	}
	a.lastBID.Store(bid)
	return last, err
}

func (a *Action) String() string {
	switch {
	case a == nil:
		return "<nil:Action>"
	case a.Op == nil:
		return "implicit:" + a.prj.Name(nil)
	}
	return a.Op.Describe(a, nil)
}

// tryLock claims a for the goal identified by gid. It returns gid on
// success, otherwise the ID of the goal currently holding a.
func (a *Action) tryLock(gid uintptr) uintptr {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lockGID == 0 || a.lockGID == gid {
		a.lockGID = gid
		return gid
	}
	return a.lockGID
}

func (a *Action) unlock() {
	a.mu.Lock()
	a.lockGID = 0
	a.mu.Unlock()
}

// Operation implements the actual work of an [Action], e.g. running an
// external development tool.
type Operation interface {
	// Describe returns a short description. The hints are optional.
	Describe(actionHint *Action, envHint *Env) string

	Do(tr *Trace, a *Action, env *Env) error
}
