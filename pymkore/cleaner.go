package pymkore

import (
	"time"
)

// Clean removes the artefacts of all removable goals of prj. Removal is
// best-effort: missing artefacts are skipped and removal failures are only
// reported as warnings on tr, so Clean can be rerun any time. With dryrun
// the removals are traced but not executed.
func Clean(prj *Project, dryrun bool, tr *Trace) {
	prj.LockBuild()
	defer prj.Unlock()
	start := time.Now()
	tr = tr.pushProject(prj)
	tr.startProject(prj, "cleaning")
	for _, g := range prj.Goals(nil) {
		ra, ok := g.Artefact.(RemovableArtefact)
		if !ok || !g.Removable {
			continue
		}
		str := tr.pushGoal(g)
		if ok, err := ra.Exists(prj); err != nil {
			str.Warn(err.Error())
			continue
		} else if !ok {
			continue
		}
		str.removeArtefact(g)
		if !dryrun {
			if err := ra.Remove(prj); err != nil {
				str.Warn(err.Error())
			}
		}
	}
	tr.doneProject(prj, "cleaning", time.Since(start))
}
