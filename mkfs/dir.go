package mkfs

import (
	"errors"
	"fmt"
	"os"
	"time"

	"git.fractalqb.de/fractalqb/pymk/pymkore"
)

// Dir is a whole-directory artefact, e.g. a build output directory. Its
// removal deletes the directory with everything in it.
type Dir string

var _ Artefact = Dir("")

func (d Dir) Path() string { return string(d) }

func (d Dir) Name(in *pymkore.Project) string {
	n, err := in.RelPath(d.Path())
	if err != nil {
		return d.Path()
	}
	return n
}

func (d Dir) StateAt(in *pymkore.Project) (time.Time, error) {
	p, err := in.AbsPath(d.Path())
	if err != nil {
		return time.Time{}, err
	}
	st, err := os.Stat(p)
	if err != nil || !st.IsDir() {
		return time.Time{}, nil
	}
	return st.ModTime(), nil
}

func (d Dir) Exists(in *pymkore.Project) (bool, error) {
	p, err := in.AbsPath(d.Path())
	if err != nil {
		return false, err
	}
	st, err := os.Stat(p)
	switch {
	case err == nil:
		if !st.IsDir() {
			return true, fmt.Errorf("%s is no directory", d.Path())
		}
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	}
	return false, err
}

func (d Dir) Remove(in *pymkore.Project) error {
	p, err := in.AbsPath(d.Path())
	if err != nil {
		return err
	}
	return os.RemoveAll(p)
}
