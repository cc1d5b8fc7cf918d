package pymk

import (
	"git.fractalqb.de/fractalqb/pymk/pymkore"
)

// Clean sweeps the removable artefacts of prj: compiled bytecode, OS
// metadata files, build output directories and the like, depending on how
// the project was assembled. Clean is best-effort and succeeds even when
// nothing is there to remove; failures to remove single artefacts are
// reported as warnings on tr.
func Clean(prj *Project, dryrun bool, tr *pymkore.Trace) {
	pymkore.Clean(prj, dryrun, tr)
}
