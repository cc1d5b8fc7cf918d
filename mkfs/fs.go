// Package mkfs provides the filesystem artefacts of pymk projects: single
// files, whole directories and filtered directory trees. Artefact paths are
// relative to the project directory unless they are absolute.
package mkfs

import (
	"errors"
	"io/fs"
	"os"

	"git.fractalqb.de/fractalqb/pymk/pymkore"
)

// Artefact is a [pymkore.RemovableArtefact] backed by the filesystem.
type Artefact interface {
	pymkore.RemovableArtefact
	Path() string
}

func Stat(a Artefact, in *pymkore.Project) (fs.FileInfo, error) {
	p, err := in.AbsPath(a.Path())
	if err != nil {
		return nil, err
	}
	return os.Stat(p)
}

func Exists(a Artefact, in *pymkore.Project) (bool, error) {
	_, err := Stat(a, in)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	}
	return false, err
}
