package mkfs

import (
	"os"
	"path/filepath"
	"time"

	"git.fractalqb.de/fractalqb/pymk/pymkore"
)

// File is a single-file artefact, e.g. a generated README.html or the
// .coverage data file.
type File string

var _ Artefact = File("")

func (f File) Path() string { return string(f) }

func (f File) Name(in *pymkore.Project) string {
	n, err := in.RelPath(f.Path())
	if err != nil {
		return filepath.Clean(f.Path())
	}
	return n
}

func (f File) StateAt(in *pymkore.Project) (time.Time, error) {
	p, err := in.AbsPath(f.Path())
	if err != nil {
		return time.Time{}, err
	}
	st, err := os.Stat(p)
	if err != nil || st.IsDir() {
		return time.Time{}, nil
	}
	return st.ModTime(), nil
}

func (f File) Exists(in *pymkore.Project) (bool, error) { return Exists(f, in) }

func (f File) Remove(in *pymkore.Project) error {
	p, err := in.AbsPath(f.Path())
	if err != nil {
		return err
	}
	return os.Remove(p)
}

func (f File) Ext() string { return filepath.Ext(f.Path()) }

// WithExt replaces f's extension with ext; an empty ext strips the
// extension.
func (f File) WithExt(ext string) File {
	path := f.Path()
	if ext == "" {
		if old := filepath.Ext(path); old != "" {
			return File(path[:len(path)-len(old)])
		}
		return f
	}
	if ext[0] != '.' {
		ext = "." + ext
	}
	if old := filepath.Ext(path); old != "" {
		return File(path[:len(path)-len(old)] + ext)
	}
	return File(path + ext)
}
