package pymkore

import (
	"fmt"
	"slices"
	"unsafe"
)

type updater struct {
	trace *Trace
	env   *Env
	bid   BuildID // updater must not be used concurrently
}

func (up *updater) Trace() *Trace { return up.trace }

func (up *updater) updateGoal(tr *Trace, g *Goal) (bool, error) {
	gid := uintptr(unsafe.Pointer(g))
	g.LockPreActions(gid)
	defer g.UnlockPreActions()

	chgs, err := g.CheckPreTimes(tr)
	if err != nil {
		return false, err
	}
	if len(chgs) == 0 {
		tr.goalUpToDate(g)
		return false, nil
	}
	tr.goalNeedsActions(g, len(chgs))

	switch g.UpdateMode.Actions() {
	case UpdAllActions:
		err = up.runActions(tr, g, allIndices(g))
	case UpdSomeActions:
		err = up.runActions(tr, g, chgs)
	case UpdAnyAction:
		err = up.updateAny(tr, g, chgs)
	case UpdOneAction:
		if l := len(chgs); l > 1 {
			err = fmt.Errorf("%d changed actions for update mode One in goal %s",
				l,
				g.String(),
			)
		} else {
			err = up.updateOne(tr, g, chgs[0])
		}
	default:
		err = fmt.Errorf("illegal update mode actions: %d", g.UpdateMode.Actions())
	}
	return true, err
}

func allIndices(g *Goal) []int {
	idxs := make([]int, len(g.ResultOf()))
	for i := range idxs {
		idxs[i] = i
	}
	return idxs
}

// runActions runs the pre-actions selected by idxs, verifying the ordering
// constraint of g's update mode against the build IDs the actions report.
func (up *updater) runActions(tr *Trace, g *Goal, idxs []int) error {
	ordered := len(idxs) > 1 && g.UpdateMode.Ordered()
	for _, idx := range idxs {
		act := g.PreAction(idx)
		preBID, err := act.Run(tr, up.env)
		switch {
		case err != nil:
			return err
		case preBID > up.bid:
			return fmt.Errorf("action %s already run by younger build %d",
				act,
				preBID,
			)
		case ordered && preBID == up.bid:
			return fmt.Errorf("action %s potentially ran out of order", act)
		}
	}
	return nil
}

func (up *updater) updateAny(tr *Trace, g *Goal, chgs []int) error {
	done := -1
	for i, act := range g.ResultOf() {
		preBID := act.LastBuild()
		switch {
		case preBID > up.bid:
			return fmt.Errorf("action %s already run by younger build %d",
				act.String(),
				preBID,
			)
		case preBID == up.bid:
			if slices.Index(chgs, i) < 0 {
				return fmt.Errorf(
					"goal %s with update mode Any involved by inconsistent action",
					g.String(),
				)
			} else if done < 0 {
				done = i
			} else {
				return fmt.Errorf(
					"goal %s with update mode Any already ran more than one action",
					g.String(),
				)
			}
		}
	}
	if done >= 0 {
		return nil
	}
	_, err := g.PreAction(chgs[0]).Run(tr, up.env)
	return err
}

func (up *updater) updateOne(tr *Trace, g *Goal, chg int) error {
	for i, act := range g.ResultOf() {
		preBID := act.LastBuild()
		switch {
		case preBID > up.bid:
			return fmt.Errorf("action %s already run by younger build %d",
				act,
				preBID,
			)
		case preBID == up.bid:
			if i == chg {
				return nil
			}
			return fmt.Errorf(
				"goal %s with update mode One involved by inconsistent action",
				g.String(),
			)
		}
	}
	_, err := g.PreAction(chg).Run(tr, up.env)
	return err
}
