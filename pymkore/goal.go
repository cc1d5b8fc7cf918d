package pymkore

import (
	"fmt"
	"math"
	"reflect"
	"sync"
	"time"

	"github.com/bits-and-blooms/bitset"
)

// Artefact represents the tangible outcome of a [Goal] being reached. A
// special case is the [Abstract] artefact that only provides a name.
type Artefact interface {
	// Name returns the name of the artefact. It must be unique in the
	// project.
	Name(in *Project) string

	// StateAt returns the time at which the artefact reached its current
	// state. If this cannot be provided, the zero Time is returned.
	StateAt(in *Project) (time.Time, error)
}

// RemovableArtefact is implemented by artefacts that [Clean] may remove,
// given their goal is flagged [Goal.Removable].
type RemovableArtefact interface {
	Artefact
	Exists(in *Project) (bool, error)
	Remove(in *Project) error
}

type Abstract string

var _ Artefact = Abstract("")

func (a Abstract) Name(*Project) string { return string(a) }

func (a Abstract) StateAt(*Project) (time.Time, error) { return time.Time{}, nil }

type UpdateMode uint

const (
	// All actions must be run to reach the goal.
	UpdAllActions UpdateMode = 0

	// All actions with changed state must be run to reach the goal.
	UpdSomeActions UpdateMode = 1

	// Only one of the actions with changed state has to be run to reach the
	// goal.
	UpdAnyAction UpdateMode = 2

	// Only one action must have changed state. Then the goal is reached by
	// running that action.
	UpdOneAction UpdateMode = 3

	// An unordered update mode allows actions of the current goal to be run
	// in any order. Otherwise, the actions must be run one after the other
	// in the specified order.
	UpdUnordered UpdateMode = 4

	updActions UpdateMode = 3
)

func (m UpdateMode) Actions() UpdateMode { return m & updActions }
func (m UpdateMode) Ordered() bool       { return (m & UpdUnordered) == 0 }

// A Goal is something you want to achieve in your [Project]. Each goal is
// associated with an [Artefact] – generally something tangible that is
// considered available and up-to-date when the goal is achieved. Goals are
// reached by running the actions they are the result of. A goal can also be
// the premise of actions; such actions must not run before the goal is
// reached.
type Goal struct {
	UpdateMode UpdateMode
	Removable  bool
	Artefact   Artefact

	prj       *Project
	resultOf  []*Action
	premiseOf []*Action

	sync.Mutex
	lastBID BuildID
}

func (g *Goal) Project() *Project { return g.prj }

func (g *Goal) Name() string { return g.Artefact.Name(g.prj) }

// ResultOf returns the actions that result in this goal.
func (g *Goal) ResultOf() []*Action { return g.resultOf }

// PreAction returns [Goal.ResultOf]()[i].
func (g *Goal) PreAction(i int) *Action { return g.resultOf[i] }

// PremiseOf returns the actions depending on g.
func (g *Goal) PremiseOf() []*Action { return g.premiseOf }

func (g *Goal) IsAbstract() bool {
	_, ok := g.Artefact.(Abstract)
	return ok
}

func (g *Goal) String() string {
	tn := reflect.Indirect(reflect.ValueOf(g.Artefact)).Type().Name()
	return fmt.Sprintf("[%s]%s", g.Name(), tn)
}

// CheckPreTimes returns the indices of those pre-actions whose premises
// require g to be updated according to the artefact state times.
func (g *Goal) CheckPreTimes(tr *Trace) (chgs []int, err error) {
	gaTS, err := g.Artefact.StateAt(g.prj)
	if err != nil {
		return nil, err
	}
	for actIdx, act := range g.ResultOf() {
		switch {
		case gaTS.IsZero():
			tr.scheduleResTimeZero(act, g)
			chgs = append(chgs, actIdx)
			continue
		case len(act.Premises()) == 0:
			tr.scheduleNoPremises(act, g)
			chgs = append(chgs, actIdx)
			continue
		}
	PREMISE_LOOP:
		for _, pre := range act.Premises() {
			preTS, err := pre.Artefact.StateAt(g.prj)
			if err != nil {
				return nil, err
			}
			switch {
			case preTS.IsZero():
				tr.schedulePreTimeZero(act, g, pre)
				chgs = append(chgs, actIdx)
				break PREMISE_LOOP
			case gaTS.Before(preTS):
				tr.scheduleOutdated(act, g, pre)
				chgs = append(chgs, actIdx)
				break PREMISE_LOOP
			}
		}
	}
	return chgs, nil
}

// LockBuild locks g once for the current build of g's project. If g was
// already locked for that build, 0 is returned and g stays unlocked.
func (g *Goal) LockBuild() BuildID {
	g.Mutex.Lock()
	if plb := g.prj.Build(); g.lastBID < plb {
		g.lastBID = plb
		return plb
	}
	g.Mutex.Unlock()
	return 0
}

// LockPreActions locks all pre-actions of g for the goal identified by gid.
// When competing with another goal for a shared action, the goal with the
// smaller gid wins and the loser releases everything and retries.
func (g *Goal) LockPreActions(gid uintptr) {
	todo := len(g.ResultOf())
	locked := bitset.New(uint(todo))

	var (
		i  uint = math.MaxUint
		ok bool
	)
	for todo > 0 {
		if i, ok = locked.NextClear(i + 1); !ok {
			if i, ok = locked.NextClear(0); !ok {
				panic("no next action to lock but todo > 0")
			}
		}
		blockGID := g.resultOf[i].tryLock(gid)
		if blockGID > gid { // lost – back off and retry
			for j, ok := locked.NextSet(0); ok; j, ok = locked.NextSet(j + 1) {
				g.resultOf[j].unlock()
			}
			locked.ClearAll()
			todo = len(g.ResultOf())
			time.Sleep(time.Millisecond)
		} else {
			locked.Set(i)
			todo--
		}
	}
}

func (g *Goal) UnlockPreActions() {
	for _, act := range g.ResultOf() {
		act.unlock()
	}
}
