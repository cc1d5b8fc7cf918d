package pymk

import (
	"io/fs"

	"git.fractalqb.de/fractalqb/pymk/mkfs"
	"git.fractalqb.de/fractalqb/pymk/pymkore"
)

// ProjectEd is used with [Edit].
type ProjectEd struct{ p *Project }

func (ed ProjectEd) Project() *Project { return ed.p }

func (ed ProjectEd) Dir() string { return ed.p.Dir }

func (ed ProjectEd) Goal(atf pymkore.Artefact) GoalEd {
	return GoalEd{mustRet(ed.p.Goal(atf))}
}

// AbstractGoal returns the goal of the [Abstract] artefact named name.
func (ed ProjectEd) AbstractGoal(name string) GoalEd {
	return ed.Goal(Abstract(name))
}

func (ed ProjectEd) NewAction(premises, results []GoalEd, op pymkore.Operation) ActionEd {
	a := mustRet(ed.p.NewAction(goals(premises), goals(results), op))
	return ActionEd{a}
}

func (ed ProjectEd) RelPath(p string) string { return mustRet(ed.p.RelPath(p)) }

func (ed ProjectEd) FsStat(a mkfs.Artefact) fs.FileInfo {
	return mustRet(mkfs.Stat(a, ed.p))
}

func (ed ProjectEd) FsExists(a mkfs.Artefact) bool {
	return mustRet(mkfs.Exists(a, ed.p))
}

// GoalEd is used with [Edit].
type GoalEd struct{ g *Goal }

func (ed GoalEd) Goal() *Goal { return ed.g }

func (ed GoalEd) Project() ProjectEd { return ProjectEd{ed.g.Project()} }

func (ed GoalEd) UpdateMode() pymkore.UpdateMode     { return ed.g.UpdateMode }
func (ed GoalEd) SetUpdateMode(m pymkore.UpdateMode) { ed.g.UpdateMode = m }

// SetRemovable flags the goal's artefact for removal by [Clean].
func (ed GoalEd) SetRemovable(r bool) { ed.g.Removable = r }

func (ed GoalEd) Artefact() pymkore.Artefact { return ed.g.Artefact }

func (ed GoalEd) IsAbstract() bool { return ed.g.IsAbstract() }

// By makes the receiver the result of a new action running op on the given
// premises and returns the receiver.
func (result GoalEd) By(op pymkore.Operation, premises ...GoalEd) GoalEd {
	prj := result.g.Project()
	mustRet(prj.NewAction(goals(premises), []*Goal{result.g}, op))
	return result
}

// ImpliedBy adds an implicit action: the receiver is considered reached
// when all premises are.
func (ed GoalEd) ImpliedBy(premises ...GoalEd) GoalEd {
	prj := ed.g.Project()
	mustRet(prj.NewAction(goals(premises), []*Goal{ed.g}, nil))
	return ed
}

func goals(gs []GoalEd) []*Goal {
	var gls []*Goal
	if l := len(gs); l > 0 {
		gls = make([]*pymkore.Goal, l)
		for i, p := range gs {
			gls[i] = p.g
		}
	}
	return gls
}

// ActionEd is used with [Edit].
type ActionEd struct{ a *pymkore.Action }

func (ed ActionEd) Action() *Action { return ed.a }

func (ed ActionEd) Project() ProjectEd { return ProjectEd{ed.a.Project()} }

func (ed ActionEd) SetIgnoreError(ignore bool) { ed.a.IgnoreError = ignore }
