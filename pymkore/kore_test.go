package pymkore

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// testArtefact has a settable state time.
type testArtefact struct {
	name  string
	state time.Time
}

func (a *testArtefact) Name(*Project) string { return a.name }

func (a *testArtefact) StateAt(*Project) (time.Time, error) { return a.state, nil }

// testOp counts its runs and stamps its result artefacts.
type testOp struct {
	runs  int
	stamp time.Time
	fail  error
}

func (op *testOp) Describe(*Action, *Env) string { return "test op" }

func (op *testOp) Do(_ *Trace, a *Action, _ *Env) error {
	op.runs++
	if op.fail != nil {
		return op.fail
	}
	for _, res := range a.Results() {
		if ta, ok := res.Artefact.(*testArtefact); ok {
			ta.state = op.stamp
		}
	}
	return nil
}

type nopTracer struct{}

func (nopTracer) Debug(*Trace, string, ...any) {}
func (nopTracer) Info(*Trace, string, ...any)  {}
func (nopTracer) Warn(*Trace, string, ...any)  {}

func (nopTracer) StartProject(*Trace, *Project, string)               {}
func (nopTracer) DoneProject(*Trace, *Project, string, time.Duration) {}

func (nopTracer) SetupActionEnv(_ *Trace, env *Env) (*Env, error) { return env, nil }
func (nopTracer) CloseActionEnv(*Trace, *Env) error               { return nil }

func (nopTracer) RunAction(*Trace, *Action)         {}
func (nopTracer) RunImplicitAction(*Trace, *Action) {}

func (nopTracer) ScheduleResTimeZero(*Trace, *Action, *Goal)        {}
func (nopTracer) ScheduleNoPremises(*Trace, *Action, *Goal)         {}
func (nopTracer) SchedulePreTimeZero(*Trace, *Action, *Goal, *Goal) {}
func (nopTracer) ScheduleOutdated(*Trace, *Action, *Goal, *Goal)    {}

func (nopTracer) CheckGoal(*Trace, *Goal)             {}
func (nopTracer) GoalUpToDate(*Trace, *Goal)          {}
func (nopTracer) GoalNeedsActions(*Trace, *Goal, int) {}

func (nopTracer) RemoveArtefact(*Trace, *Goal) {}

func newTestTrace() *Trace { return NewTrace(context.Background(), nopTracer{}) }

func TestTrace_path(t *testing.T) {
	prj := NewProject(t.Name())
	g, _ := prj.Goal(Abstract("g"))
	a, err := prj.NewAction(nil, []*Goal{g}, &testOp{})
	if err != nil {
		t.Fatal(err)
	}
	tp := newTestTrace().pushProject(prj)
	tg := tp.pushGoal(g)
	ta := tg.pushAction(a)
	if !(tp.TopID() < tg.TopID() && tg.TopID() < ta.TopID()) {
		t.Errorf("trace IDs not increasing: %d %d %d",
			tp.TopID(), tg.TopID(), ta.TopID(),
		)
	}
	want := fmt.Sprintf("<(%d)[%d]{%d}>", ta.TopID(), tg.TopID(), tp.TopID())
	if p := ta.Path(); p != want {
		t.Errorf("trace path %s, want %s", p, want)
	}
}

func TestProject_goalUnique(t *testing.T) {
	prj := NewProject(t.Name())
	g1, err := prj.Goal(Abstract("foo"))
	if err != nil {
		t.Fatal(err)
	}
	g2, err := prj.Goal(Abstract("foo"))
	if err != nil {
		t.Fatal(err)
	}
	if g1 != g2 {
		t.Error("same name yields different goals")
	}
}

func TestProject_newActionNoResult(t *testing.T) {
	prj := NewProject(t.Name())
	_, err := prj.NewAction(nil, nil, &testOp{})
	if err == nil {
		t.Error("action without result created")
	}
}

func TestProject_leafsAndRoots(t *testing.T) {
	prj := NewProject(t.Name())
	pre, _ := prj.Goal(Abstract("pre"))
	res, _ := prj.Goal(Abstract("res"))
	if _, err := prj.NewAction([]*Goal{pre}, []*Goal{res}, &testOp{}); err != nil {
		t.Fatal(err)
	}
	if ls := prj.Leafs(); len(ls) != 1 || ls[0] != res {
		t.Errorf("unexpected leafs %v", ls)
	}
	if rs := prj.Roots(); len(rs) != 1 || rs[0] != pre {
		t.Errorf("unexpected roots %v", rs)
	}
}

func TestBuilder_runsAbstractGoal(t *testing.T) {
	prj := NewProject(t.Name())
	goal, _ := prj.Goal(Abstract("run-me"))
	op := &testOp{}
	if _, err := prj.NewAction(nil, []*Goal{goal}, op); err != nil {
		t.Fatal(err)
	}
	bd, err := NewBuilder(newTestTrace(), DefaultEnv(nil))
	if err != nil {
		t.Fatal(err)
	}
	if err := bd.NamedGoals(prj, "run-me"); err != nil {
		t.Fatal(err)
	}
	if op.runs != 1 {
		t.Errorf("op ran %d times", op.runs)
	}
	// abstract goals have no state time, a second build runs again
	if err := bd.NamedGoals(prj, "run-me"); err != nil {
		t.Fatal(err)
	}
	if op.runs != 2 {
		t.Errorf("op ran %d times", op.runs)
	}
}

func TestBuilder_upToDateSkips(t *testing.T) {
	now := time.Now()
	prj := NewProject(t.Name())
	pre, _ := prj.Goal(&testArtefact{name: "src", state: now.Add(-time.Hour)})
	res, _ := prj.Goal(&testArtefact{name: "out", state: now})
	op := &testOp{stamp: now.Add(time.Minute)}
	if _, err := prj.NewAction([]*Goal{pre}, []*Goal{res}, op); err != nil {
		t.Fatal(err)
	}
	bd, err := NewBuilder(newTestTrace(), DefaultEnv(nil))
	if err != nil {
		t.Fatal(err)
	}
	if err := bd.Goals(res); err != nil {
		t.Fatal(err)
	}
	if op.runs != 0 {
		t.Errorf("up-to-date goal ran op %d times", op.runs)
	}
}

func TestBuilder_outdatedRuns(t *testing.T) {
	now := time.Now()
	prj := NewProject(t.Name())
	pre, _ := prj.Goal(&testArtefact{name: "src", state: now})
	out := &testArtefact{name: "out", state: now.Add(-time.Hour)}
	res, _ := prj.Goal(out)
	op := &testOp{stamp: now.Add(time.Minute)}
	if _, err := prj.NewAction([]*Goal{pre}, []*Goal{res}, op); err != nil {
		t.Fatal(err)
	}
	bd, err := NewBuilder(newTestTrace(), DefaultEnv(nil))
	if err != nil {
		t.Fatal(err)
	}
	if err := bd.Goals(res); err != nil {
		t.Fatal(err)
	}
	if op.runs != 1 {
		t.Fatalf("op ran %d times", op.runs)
	}
	if !out.state.Equal(now.Add(time.Minute)) {
		t.Error("result artefact not stamped")
	}
	// now up to date, another build does nothing
	if err := bd.Goals(res); err != nil {
		t.Fatal(err)
	}
	if op.runs != 1 {
		t.Errorf("op ran %d times", op.runs)
	}
}

func TestBuilder_prematureGoalName(t *testing.T) {
	prj := NewProject(t.Name())
	bd, err := NewBuilder(newTestTrace(), DefaultEnv(nil))
	if err != nil {
		t.Fatal(err)
	}
	if err := bd.NamedGoals(prj, "no-such-goal"); err == nil {
		t.Error("building unknown goal name did not fail")
	}
}

func TestGoal_checkPreTimes(t *testing.T) {
	now := time.Now()
	prj := NewProject(t.Name())
	pre, _ := prj.Goal(&testArtefact{name: "src", state: now})
	res, _ := prj.Goal(&testArtefact{name: "out", state: now.Add(-time.Hour)})
	if _, err := prj.NewAction([]*Goal{pre}, []*Goal{res}, &testOp{}); err != nil {
		t.Fatal(err)
	}
	tr := newTestTrace()
	chgs, err := res.CheckPreTimes(tr)
	if err != nil {
		t.Fatal(err)
	}
	if len(chgs) != 1 || chgs[0] != 0 {
		t.Errorf("unexpected changes %v", chgs)
	}

	res.Artefact.(*testArtefact).state = now.Add(time.Hour)
	if chgs, err = res.CheckPreTimes(tr); err != nil {
		t.Fatal(err)
	} else if len(chgs) != 0 {
		t.Errorf("unexpected changes %v", chgs)
	}
}

func TestClean_removesOnlyRemovable(t *testing.T) {
	prj := NewProject(t.Name())
	keep := &testRemovable{testArtefact: testArtefact{name: "keep", state: time.Now()}}
	gone := &testRemovable{testArtefact: testArtefact{name: "gone", state: time.Now()}}
	if _, err := prj.Goal(keep); err != nil {
		t.Fatal(err)
	}
	gg, _ := prj.Goal(gone)
	gg.Removable = true
	Clean(prj, false, newTestTrace())
	if keep.removed {
		t.Error("non-removable artefact removed")
	}
	if !gone.removed {
		t.Error("removable artefact not removed")
	}
	// rerunning a clean project stays quiet
	Clean(prj, false, newTestTrace())
}

func TestClean_dryrun(t *testing.T) {
	prj := NewProject(t.Name())
	gone := &testRemovable{testArtefact: testArtefact{name: "gone", state: time.Now()}}
	g, _ := prj.Goal(gone)
	g.Removable = true
	Clean(prj, true, newTestTrace())
	if gone.removed {
		t.Error("dryrun removed artefact")
	}
}

type testRemovable struct {
	testArtefact
	removed bool
}

func (a *testRemovable) Exists(*Project) (bool, error) { return !a.removed, nil }

func (a *testRemovable) Remove(*Project) error {
	a.removed = true
	return nil
}
