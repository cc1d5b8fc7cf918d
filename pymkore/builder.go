package pymkore

import (
	"errors"
	"fmt"
	"time"
)

// Builder brings goals up to date by running the actions they result from,
// depth-first along the premises. A Builder must not be used concurrently.
type Builder struct {
	updater
}

func NewBuilder(tr *Trace, env *Env) (*Builder, error) {
	if tr == nil {
		return nil, errors.New("no trace for new builder")
	}
	return &Builder{updater: updater{trace: tr, env: env}}, nil
}

// Project builds all leaf goals of prj.
func (bd *Builder) Project(prj *Project) error {
	bd.bid = prj.LockBuild()
	defer prj.Unlock()
	if bd.env == nil {
		bd.env = DefaultEnv(bd.trace)
	}
	return bd.buildPrj(bd.trace, prj)
}

// Goals builds the given goals in order. All goals must belong to the same
// project.
func (bd *Builder) Goals(gs ...*Goal) error {
	if len(gs) == 0 {
		return nil
	}
	prj := gs[0].Project()
	for _, g := range gs[1:] {
		if g.Project() != prj {
			return fmt.Errorf("goal %s not in project '%s'", g, prj.String())
		}
	}
	tr := bd.trace.pushProject(prj)
	tr.startProject(prj, "building")
	start := time.Now()
	bd.bid = prj.LockBuild()
	defer func() {
		tr.doneProject(prj, "building", time.Since(start))
		prj.Unlock()
	}()
	if bd.env == nil {
		bd.env = DefaultEnv(bd.trace)
	}
	for _, g := range gs {
		if err := bd.buildGoal(tr, g); err != nil {
			return err
		}
	}
	return nil
}

// NamedGoals builds the goals with the given names in prj.
func (bd *Builder) NamedGoals(prj *Project, names ...string) error {
	var gs []*Goal
	for _, n := range names {
		g := prj.FindGoal(n)
		if g == nil {
			return fmt.Errorf("no goal named '%s' in project '%s'", n, prj.String())
		}
		gs = append(gs, g)
	}
	return bd.Goals(gs...)
}

func (bd *Builder) buildPrj(tr *Trace, prj *Project) error {
	start := time.Now()
	tr = tr.pushProject(prj)
	tr.startProject(prj, "building")
	for _, leaf := range prj.Leafs() {
		if err := bd.buildGoal(tr, leaf); err != nil {
			return err
		}
	}
	tr.doneProject(prj, "building", time.Since(start))
	return nil
}

func (bd *Builder) buildGoal(tr *Trace, g *Goal) error {
	if g.LockBuild() == 0 {
		return nil
	}
	defer g.Unlock()

	if err := tr.Ctx().Err(); err != nil {
		return err
	}
	tr = tr.pushGoal(g)
	tr.checkGoal(g)
	if len(g.ResultOf()) == 0 {
		return nil
	}
	for _, act := range g.ResultOf() {
		for _, pre := range act.Premises() {
			if err := bd.buildGoal(tr, pre); err != nil {
				return err
			}
		}
	}
	_, err := bd.updateGoal(tr, g)
	return err
}
