package pymk

import (
	"testing"
	"time"

	"git.fractalqb.de/fractalqb/pymk/pymkore"
)

// TestTracer reports build and clean events to a testing.T log.
type TestTracer struct{ T *testing.T }

var _ pymkore.Tracer = TestTracer{}

func (tr TestTracer) Debug(t *pymkore.Trace, msg string, args ...any) {
	tr.T.Logf("pymk-DEBUG: "+msg, args...)
}

func (tr TestTracer) Info(t *pymkore.Trace, msg string, args ...any) {
	tr.T.Logf("pymk-INFO: "+msg, args...)
}

func (tr TestTracer) Warn(t *pymkore.Trace, msg string, args ...any) {
	tr.T.Logf("pymk-WARN: "+msg, args...)
}

func (tr TestTracer) StartProject(t *pymkore.Trace, p *pymkore.Project, activity string) {
	tr.T.Logf("pymk-StartProject: %s %s", p, activity)
}

func (tr TestTracer) DoneProject(t *pymkore.Trace, p *pymkore.Project, activity string, dt time.Duration) {
	tr.T.Logf("pymk-DoneProject: %s %s %s", p, activity, dt)
}

func (tr TestTracer) SetupActionEnv(t *pymkore.Trace, env *pymkore.Env) (*pymkore.Env, error) {
	return env, nil
}

func (tr TestTracer) CloseActionEnv(t *pymkore.Trace, env *pymkore.Env) error { return nil }

func (tr TestTracer) RunAction(_ *pymkore.Trace, a *pymkore.Action) {
	tr.T.Logf("pymk-RunAction: %s", a)
}

func (tr TestTracer) RunImplicitAction(_ *pymkore.Trace, a *pymkore.Action) {
	tr.T.Logf("pymk-RunImplicitAction: %s", a)
}

func (tr TestTracer) ScheduleResTimeZero(t *pymkore.Trace, a *pymkore.Action, res *pymkore.Goal) {
	tr.T.Logf("pymk-ScheduleResTimeZero: %s:> %s", a, res)
}

func (tr TestTracer) ScheduleNoPremises(t *pymkore.Trace, a *pymkore.Action, res *pymkore.Goal) {
	tr.T.Logf("pymk-ScheduleNoPremises: %s:> %s", a, res)
}

func (tr TestTracer) SchedulePreTimeZero(t *pymkore.Trace, a *pymkore.Action, res, pre *pymkore.Goal) {
	tr.T.Logf("pymk-SchedulePreTimeZero: %s: %s > %s", a, pre, res)
}

func (tr TestTracer) ScheduleOutdated(t *pymkore.Trace, a *pymkore.Action, res, pre *pymkore.Goal) {
	tr.T.Logf("pymk-ScheduleOutdated: %s: %s > %s", a, pre, res)
}

func (tr TestTracer) CheckGoal(t *pymkore.Trace, g *pymkore.Goal) {
	tr.T.Logf("pymk-CheckGoal: %s", g)
}

func (tr TestTracer) GoalUpToDate(t *pymkore.Trace, g *pymkore.Goal) {
	tr.T.Logf("pymk-GoalUpToDate: %s", g)
}

func (tr TestTracer) GoalNeedsActions(t *pymkore.Trace, g *pymkore.Goal, n int) {
	tr.T.Logf("pymk-GoalNeedsActions: %s %d", g, n)
}

func (tr TestTracer) RemoveArtefact(t *pymkore.Trace, g *pymkore.Goal) {
	tr.T.Logf("pymk-RemoveArtefact: %s", g)
}
