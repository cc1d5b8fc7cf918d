package mkfs

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"git.fractalqb.de/fractalqb/pymk/pymkore"
	"git.fractalqb.de/fractalqb/testerr"
)

func testTree(t *testing.T, files ...string) *pymkore.Project {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		p := filepath.Join(dir, filepath.FromSlash(f))
		testerr.F0(os.MkdirAll(filepath.Dir(p), 0777)).ShallBeNil(t)
		testerr.F0(os.WriteFile(p, []byte(f), 0666)).ShallBeNil(t)
	}
	return pymkore.NewProject(dir)
}

func TestFile_WithExt(t *testing.T) {
	tests := []struct{ file, ext, want string }{
		{"README.rst", "html", "README.html"},
		{"README.rst", ".html", "README.html"},
		{"README", "html", "README.html"},
		{"README.rst", "", "README"},
		{"README", "", "README"},
		{"docs/README.rst", "html", "docs/README.html"},
	}
	for _, tt := range tests {
		if got := File(tt.file).WithExt(tt.ext); got.Path() != tt.want {
			t.Errorf("File(%q).WithExt(%q) = %q, want %q",
				tt.file, tt.ext, got, tt.want)
		}
	}
	if ext := File("README.rst").Ext(); ext != ".rst" {
		t.Errorf("unexpected extension %q", ext)
	}
}

func TestFile_artefact(t *testing.T) {
	prj := testTree(t, "README.rst")
	f := File("README.rst")
	if n := f.Name(prj); n != "README.rst" {
		t.Errorf("unexpected name %q", n)
	}
	if !testerr.F1(f.Exists(prj)).ShallBeNil(t) {
		t.Fatal("file does not exist")
	}
	if ts := testerr.F1(f.StateAt(prj)).ShallBeNil(t); ts.IsZero() {
		t.Error("existing file has zero state time")
	}
	testerr.F0(f.Remove(prj)).ShallBeNil(t)
	if testerr.F1(f.Exists(prj)).ShallBeNil(t) {
		t.Error("file still exists after remove")
	}
	if ts := testerr.F1(f.StateAt(prj)).ShallBeNil(t); !ts.IsZero() {
		t.Error("missing file has non-zero state time")
	}
}

func TestDir_artefact(t *testing.T) {
	prj := testTree(t, "build/lib/pkg.py")
	d := Dir("build")
	if !testerr.F1(d.Exists(prj)).ShallBeNil(t) {
		t.Fatal("dir does not exist")
	}
	testerr.F0(d.Remove(prj)).ShallBeNil(t)
	if testerr.F1(d.Exists(prj)).ShallBeNil(t) {
		t.Error("dir still exists after remove")
	}
	if _, err := Dir("build/lib/pkg.py").Exists(testTree(t, "build/lib/pkg.py")); err == nil {
		t.Error("file accepted as dir")
	}
}

func TestDirTree_sweepFiles(t *testing.T) {
	prj := testTree(t,
		"mod.py",
		"mod.pyc",
		"sub/__pycache__/mod.pyc",
		"sub/other.pyc",
	)
	d := DirTree{Dir: ".", Filter: NameMatch("*.pyc")}
	ls := testerr.F1(d.List(prj)).ShallBeNil(t)
	want := []string{
		"mod.pyc",
		filepath.FromSlash("sub/__pycache__/mod.pyc"),
		filepath.FromSlash("sub/other.pyc"),
	}
	if !slices.Equal(ls, want) {
		t.Errorf("listed %v, want %v", ls, want)
	}
	if ts := testerr.F1(d.StateAt(prj)).ShallBeNil(t); ts.IsZero() {
		t.Error("matched entries but zero state time")
	}
	testerr.F0(d.Remove(prj)).ShallBeNil(t)
	if testerr.F1(d.Exists(prj)).ShallBeNil(t) {
		t.Error("matches left after remove")
	}
	if !testerr.F1(File("mod.py").Exists(prj)).ShallBeNil(t) {
		t.Error("unmatched file swept away")
	}
}

func TestDirTree_sweepDirs(t *testing.T) {
	prj := testTree(t,
		"mod.py",
		"__pycache__/mod.pyc",
		"sub/__pycache__/mod.pyc",
	)
	d := DirTree{Dir: ".", Filter: All{IsDir(true), NameMatch("__pycache__")}}
	ls := testerr.F1(d.List(prj)).ShallBeNil(t)
	want := []string{"__pycache__", filepath.FromSlash("sub/__pycache__")}
	if !slices.Equal(ls, want) {
		t.Errorf("listed %v, want %v", ls, want)
	}
	testerr.F0(d.Remove(prj)).ShallBeNil(t)
	if testerr.F1(d.Exists(prj)).ShallBeNil(t) {
		t.Error("matches left after remove")
	}
	if testerr.F1(File(filepath.FromSlash("sub/__pycache__/mod.pyc")).Exists(prj)).ShallBeNil(t) {
		t.Error("content of removed dir survived")
	}
}

func TestDirTree_missingRoot(t *testing.T) {
	prj := pymkore.NewProject(t.TempDir())
	d := DirTree{Dir: "no-such-dir", Filter: NameMatch("*")}
	if testerr.F1(d.Exists(prj)).ShallBeNil(t) {
		t.Error("missing root has matches")
	}
	if ts := testerr.F1(d.StateAt(prj)).ShallBeNil(t); !ts.IsZero() {
		t.Error("missing root has non-zero state time")
	}
}

func TestFilters(t *testing.T) {
	prj := testTree(t, "a.pyc", "b.py", "dist/x")
	count := func(f Filter) int {
		return len(testerr.F1(DirTree{Dir: ".", Filter: f}.List(prj)).ShallBeNil(t))
	}
	// matched dirs are not walked into, so dist/x stays unseen
	if n := count(Not(NameMatch("*.pyc"))); n != 2 {
		t.Errorf("Not matched %d entries", n)
	}
	if n := count(Any{NameMatch("*.pyc"), IsDir(true)}); n != 2 {
		t.Errorf("Any matched %d entries", n)
	}
	if s := (All{IsDir(true), NameMatch("__pycache__")}).String(); s != "(<dir>&__pycache__)" {
		t.Errorf("unexpected filter string %q", s)
	}
}
