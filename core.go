package pymk

import (
	"errors"
	"fmt"

	"git.fractalqb.de/fractalqb/pymk/pymkore"
)

type (
	Env     = pymkore.Env
	Project = pymkore.Project
	Goal    = pymkore.Goal
	Action  = pymkore.Action

	Abstract = pymkore.Abstract
)

func DefaultEnv(tr *pymkore.Trace) *Env { return pymkore.DefaultEnv(tr) }

func NewProject(dir string) *Project { return pymkore.NewProject(dir) }

// Edit calls do to modify prj while holding the project lock. The editing
// types [ProjectEd], [GoalEd] and [ActionEd] panic on errors; Edit recovers
// such panics into the returned error.
func Edit(prj *Project, do func(ProjectEd)) (err error) {
	prj.Lock()
	defer func() {
		prj.Unlock()
		if p := recover(); p != nil {
			switch p := p.(type) {
			case error:
				err = p
			case string:
				err = errors.New(p)
			default:
				err = fmt.Errorf("panic: %+v", p)
			}
		}
	}()
	do(ProjectEd{prj})
	return
}

const (
	UpdAllActions  = pymkore.UpdAllActions
	UpdSomeActions = pymkore.UpdSomeActions
	UpdAnyAction   = pymkore.UpdAnyAction
	UpdOneAction   = pymkore.UpdOneAction

	UpdUnordered = pymkore.UpdUnordered
)

func mustRet[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
