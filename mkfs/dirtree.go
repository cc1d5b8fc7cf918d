package mkfs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"git.fractalqb.de/fractalqb/pymk/pymkore"
)

// DirTree selects entries in the tree below Dir that match Filter. A
// matched directory counts as one entry, its content is not walked into.
// With the Removable flag on its goal, a DirTree sweeps matched entries
// from the tree, which is the classic
//
//	find . -name PATTERN -exec rm ...
//
// of the workflow's clean target.
type DirTree struct {
	Dir    string
	Filter Filter
}

var _ Artefact = DirTree{}

func (d DirTree) Path() string { return d.Dir }

func (d DirTree) Name(in *pymkore.Project) string {
	n, err := in.RelPath(d.Dir)
	if err != nil {
		n = filepath.Clean(d.Dir)
	}
	if d.Filter != nil {
		return n + string(filepath.Separator) + "…" + d.Filter.String()
	}
	return n
}

// List returns the matched entries as paths relative to the project
// directory.
func (d DirTree) List(in *pymkore.Project) (ls []string, err error) {
	err = d.ls(in, func(p string, _ fs.DirEntry) error {
		ls = append(ls, p)
		return nil
	})
	return ls, err
}

// StateAt is the latest mod time of all matched entries.
func (d DirTree) StateAt(in *pymkore.Project) (t time.Time, err error) {
	err = d.ls(in, func(_ string, e fs.DirEntry) error {
		info, err := e.Info()
		if err != nil {
			return err
		}
		if mt := info.ModTime(); mt.After(t) {
			t = mt
		}
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// Exists reports whether at least one entry matches.
func (d DirTree) Exists(in *pymkore.Project) (bool, error) {
	errFound := errors.New("found")
	err := d.ls(in, func(string, fs.DirEntry) error { return errFound })
	if errors.Is(err, errFound) {
		return true, nil
	}
	return false, err
}

// Remove deletes all matched entries, matched directories with their whole
// content. Removal is best-effort, all failures are collected.
func (d DirTree) Remove(in *pymkore.Project) error {
	root, err := in.AbsPath(d.Dir)
	if err != nil {
		return err
	}
	var errs []error
	err = d.walk(root, func(p string, e fs.DirEntry) error {
		if e.IsDir() {
			if err := os.RemoveAll(filepath.Join(root, p)); err != nil {
				errs = append(errs, err)
			}
			return fs.SkipDir
		}
		if err := os.Remove(filepath.Join(root, p)); err != nil {
			errs = append(errs, err)
		}
		return nil
	})
	if err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (d DirTree) ls(in *pymkore.Project, do func(p string, e fs.DirEntry) error) error {
	root, err := in.AbsPath(d.Dir)
	if err != nil {
		return err
	}
	return d.walk(root, func(p string, e fs.DirEntry) error {
		if err := do(filepath.Join(d.Dir, p), e); err != nil {
			return err
		}
		if e.IsDir() {
			return fs.SkipDir
		}
		return nil
	})
}

// walk calls do for every matched entry with its path relative to root. do
// may return fs.SkipDir on directory entries to not descend.
func (d DirTree) walk(root string, do func(p string, e fs.DirEntry) error) error {
	return fs.WalkDir(os.DirFS(root), ".", func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if p == "." {
			return nil
		}
		if d.Filter != nil {
			if ok, err := d.Filter.Ok(p, e); err != nil {
				return err
			} else if !ok {
				return nil
			}
		}
		return do(filepath.FromSlash(p), e)
	})
}
