package mkfs

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// Filter selects directory entries. The path p is relative to the walked
// root and uses slashes. The String form is part of the name of artefacts
// built from the filter, so equal filters must render equal strings.
type Filter interface {
	Ok(p string, e fs.DirEntry) (bool, error)
	String() string
}

// NameMatch matches the entry's base name against a [path.Match] pattern.
type NameMatch string

func (m NameMatch) Ok(_ string, e fs.DirEntry) (bool, error) {
	return path.Match(string(m), e.Name())
}

func (m NameMatch) String() string { return string(m) }

type IsDir bool

func (d IsDir) Ok(_ string, e fs.DirEntry) (bool, error) {
	return e.IsDir() == bool(d), nil
}

func (d IsDir) String() string {
	if d {
		return "<dir>"
	}
	return "<!dir>"
}

type FilterFunc func(string, fs.DirEntry) (bool, error)

func (ff FilterFunc) Ok(p string, e fs.DirEntry) (bool, error) { return ff(p, e) }

func (ff FilterFunc) String() string { return fmt.Sprintf("<func %p>", ff) }

type not struct{ f Filter }

func Not(f Filter) Filter { return not{f} }

func (n not) Ok(p string, e fs.DirEntry) (bool, error) {
	ok, err := n.f.Ok(p, e)
	return !ok, err
}

func (n not) String() string { return "!" + n.f.String() }

// All matches when every element matches.
type All []Filter

func (fs All) Ok(p string, e fs.DirEntry) (bool, error) {
	for _, f := range fs {
		if ok, err := f.Ok(p, e); err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (fs All) String() string { return filterList(fs, "&") }

// Any matches when at least one element matches.
type Any []Filter

func (fs Any) Ok(p string, e fs.DirEntry) (bool, error) {
	for _, f := range fs {
		if ok, err := f.Ok(p, e); err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func (fs Any) String() string { return filterList(fs, "|") }

func filterList(fs []Filter, sep string) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, f := range fs {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(f.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
