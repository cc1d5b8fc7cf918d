package pymkore

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// TracerCommon receives the events common to building and cleaning.
type TracerCommon interface {
	Debug(t *Trace, msg string, args ...any)
	Info(t *Trace, msg string, args ...any)
	Warn(t *Trace, msg string, args ...any)

	StartProject(t *Trace, p *Project, activity string)
	DoneProject(t *Trace, p *Project, activity string, dt time.Duration)

	// SetupActionEnv lets the tracer derive the Env an action's operation
	// runs with, e.g. to decorate the output streams. CloseActionEnv is
	// called with the returned Env after the operation finished.
	SetupActionEnv(t *Trace, env *Env) (*Env, error)
	CloseActionEnv(t *Trace, env *Env) error
}

type BuildTracer interface {
	TracerCommon

	RunAction(*Trace, *Action)
	RunImplicitAction(*Trace, *Action)

	ScheduleResTimeZero(t *Trace, a *Action, res *Goal)
	ScheduleNoPremises(t *Trace, a *Action, res *Goal)
	SchedulePreTimeZero(t *Trace, a *Action, res, pre *Goal)
	ScheduleOutdated(t *Trace, a *Action, res, pre *Goal)

	CheckGoal(t *Trace, g *Goal)
	GoalUpToDate(t *Trace, g *Goal)
	GoalNeedsActions(t *Trace, g *Goal, n int)
}

type CleanTracer interface {
	TracerCommon

	RemoveArtefact(*Trace, *Goal)
}

type Tracer interface {
	BuildTracer
	CleanTracer
}

// TraceLog selects the detail levels a [Tracer] reports.
type TraceLog int

const (
	TraceWarn TraceLog = (1 << iota)
	TraceInfo
	TraceDebug
)

// A Trace identifies one node in the tree of projects, goals and actions a
// build or clean run touches. Traces are passed down and fan the events out
// to the run's [Tracer].
type Trace struct {
	root *traceRoot
	up   *Trace
	obj  any
	id   uint64
}

func NewTrace(ctx context.Context, t Tracer) *Trace {
	return &Trace{root: &traceRoot{ctx: ctx, tr: t}}
}

func (t *Trace) Ctx() context.Context { return t.root.ctx }

func (t *Trace) Debug(msg string, args ...any) { t.root.tr.Debug(t, msg, args...) }
func (t *Trace) Info(msg string, args ...any)  { t.root.tr.Info(t, msg, args...) }
func (t *Trace) Warn(msg string, args ...any)  { t.root.tr.Warn(t, msg, args...) }

func (t *Trace) startProject(p *Project, activity string) {
	t.root.prj = p
	t.root.tr.StartProject(t, p, activity)
}

func (t *Trace) doneProject(p *Project, activity string, dt time.Duration) {
	t.root.tr.DoneProject(t, p, activity, dt)
	t.root.prj = nil
}

func (t *Trace) setupActionEnv(env *Env) (*Env, error) {
	return t.root.tr.SetupActionEnv(t, env)
}

func (t *Trace) closeActionEnv(env *Env) error {
	return t.root.tr.CloseActionEnv(t, env)
}

func (t *Trace) runAction(a *Action)         { t.root.tr.RunAction(t, a) }
func (t *Trace) runImplicitAction(a *Action) { t.root.tr.RunImplicitAction(t, a) }

func (t *Trace) scheduleResTimeZero(a *Action, res *Goal) {
	t.root.tr.ScheduleResTimeZero(t, a, res)
}

func (t *Trace) scheduleNoPremises(a *Action, res *Goal) {
	t.root.tr.ScheduleNoPremises(t, a, res)
}

func (t *Trace) schedulePreTimeZero(a *Action, res, pre *Goal) {
	t.root.tr.SchedulePreTimeZero(t, a, res, pre)
}

func (t *Trace) scheduleOutdated(a *Action, res, pre *Goal) {
	t.root.tr.ScheduleOutdated(t, a, res, pre)
}

func (t *Trace) checkGoal(g *Goal)    { t.root.tr.CheckGoal(t, g) }
func (t *Trace) goalUpToDate(g *Goal) { t.root.tr.GoalUpToDate(t, g) }

func (t *Trace) goalNeedsActions(g *Goal, n int) {
	t.root.tr.GoalNeedsActions(t, g, n)
}

func (t *Trace) removeArtefact(g *Goal) { t.root.tr.RemoveArtefact(t, g) }

// Build returns the build ID of the project the trace currently works on,
// 0 outside of project runs.
func (t *Trace) Build() BuildID {
	if t.root == nil || t.root.prj == nil {
		return 0
	}
	return t.root.prj.Build()
}

func (t *Trace) TopID() uint64 { return t.id }

// TopTag renders the trace top as "[id]" for goals, "(id)" for actions and
// "{id}" for projects.
func (t *Trace) TopTag() string {
	switch t.obj.(type) {
	case *Goal:
		return fmt.Sprintf("[%d]", t.id)
	case *Action:
		return fmt.Sprintf("(%d)", t.id)
	case *Project:
		return fmt.Sprintf("{%d}", t.id)
	case nil:
		return ""
	}
	return fmt.Sprintf("!%T!", t.obj)
}

func (t *Trace) Path() string {
	var sb strings.Builder
	sb.WriteByte('<')
	for ; t != nil; t = t.up {
		sb.WriteString(t.TopTag())
	}
	sb.WriteByte('>')
	return sb.String()
}

func (t *Trace) String() string {
	if t.root.prj == nil {
		return t.Path()
	}
	return fmt.Sprintf("%d@%s", t.root.prj.Build(), t.Path())
}

func (t *Trace) push(obj any) *Trace {
	return &Trace{
		root: t.root,
		up:   t,
		obj:  obj,
		id:   t.root.idSeq.Add(1),
	}
}

func (t *Trace) pushProject(p *Project) *Trace { return t.push(p) }
func (t *Trace) pushGoal(g *Goal) *Trace       { return t.push(g) }
func (t *Trace) pushAction(a *Action) *Trace   { return t.push(a) }

type traceRoot struct {
	ctx   context.Context
	tr    Tracer
	prj   *Project
	idSeq atomic.Uint64
}
