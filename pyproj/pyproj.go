// Package pyproj reads the metadata of a Python package from its
// pyproject.toml and setup.cfg files. pymk only needs the few fields that
// determine build artefact paths: the distribution name, the version and
// the long-description source document.
package pyproj

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/ini.v1"
)

// Meta is the slice of Python package metadata pymk works with.
type Meta struct {
	Name    string
	Version string

	// Readme is the project-relative path of the long-description source,
	// e.g. README.rst.
	Readme string
}

// ErrNoMetadata is returned by [Load] when the directory has neither a
// pyproject.toml nor a setup.cfg.
var ErrNoMetadata = errors.New("no pyproject.toml or setup.cfg")

// Load reads the package metadata from dir. Fields from pyproject.toml
// take precedence, setup.cfg fills the gaps.
func Load(dir string) (*Meta, error) {
	var m Meta
	found := false
	if err := m.loadPyproject(filepath.Join(dir, "pyproject.toml")); err == nil {
		found = true
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if err := m.loadSetupCfg(filepath.Join(dir, "setup.cfg")); err == nil {
		found = true
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w in %s", ErrNoMetadata, dir)
	}
	return &m, nil
}

// pyprojectSchema covers the [project] table of the pyproject.toml
// specification as far as pymk needs it. readme is either a string or a
// table with a file key.
type pyprojectSchema struct {
	Project struct {
		Name    string         `toml:"name"`
		Version string         `toml:"version"`
		Readme  toml.Primitive `toml:"readme"`
	} `toml:"project"`
}

func (m *Meta) loadPyproject(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	var schema pyprojectSchema
	md, err := toml.DecodeFile(path, &schema)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	setIfEmpty(&m.Name, schema.Project.Name)
	setIfEmpty(&m.Version, schema.Project.Version)
	var readme string
	if err := md.PrimitiveDecode(schema.Project.Readme, &readme); err != nil {
		var rt struct {
			File string `toml:"file"`
		}
		if err := md.PrimitiveDecode(schema.Project.Readme, &rt); err == nil {
			readme = rt.File
		}
	}
	setIfEmpty(&m.Readme, readme)
	return nil
}

func (m *Meta) loadSetupCfg(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	cfg, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	meta := cfg.Section("metadata")
	setIfEmpty(&m.Name, meta.Key("name").String())
	setIfEmpty(&m.Version, meta.Key("version").String())
	ld := meta.Key("long_description").String()
	if f, ok := strings.CutPrefix(ld, "file:"); ok {
		setIfEmpty(&m.Readme, strings.TrimSpace(f))
	}
	return nil
}

func setIfEmpty(dst *string, val string) {
	if *dst == "" && val != "" {
		*dst = val
	}
}

var distNameSep = regexp.MustCompile(`[-_.]+`)

// DistName returns the normalized distribution file name stem, i.e. the
// package name with runs of separators replaced by underscores in lower
// case.
func (m *Meta) DistName() string {
	return distNameSep.ReplaceAllString(strings.ToLower(m.Name), "_")
}

// SdistFile returns the path of the source distribution archive relative
// to the project directory, or the empty string if name or version are
// unknown.
func (m *Meta) SdistFile(distDir string) string {
	if m == nil || m.Name == "" || m.Version == "" {
		return ""
	}
	if distDir == "" {
		distDir = "dist"
	}
	return filepath.Join(distDir, fmt.Sprintf("%s-%s.tar.gz", m.DistName(), m.Version))
}
