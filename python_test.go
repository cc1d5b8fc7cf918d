package pymk

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func fakeTool(t *testing.T, dir, rel string) string {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0777); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestPython_InterpreterExe(t *testing.T) {
	py := Python{Exe: "/opt/py/bin/python"}
	exe, err := py.Interpreter(NewProject(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	if exe != "/opt/py/bin/python" {
		t.Errorf("resolved %q", exe)
	}
}

func TestPython_InterpreterVEnv(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bits")
	}
	dir := t.TempDir()
	want := fakeTool(t, dir, "bin/python")
	exe, err := Python{}.Interpreter(NewProject(dir))
	if err != nil {
		t.Fatal(err)
	}
	if exe != want {
		t.Errorf("resolved %q, want %q", exe, want)
	}
}

func TestPython_InterpreterDotVEnv(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bits")
	}
	dir := t.TempDir()
	want := fakeTool(t, dir, ".venv/bin/python")
	exe, err := Python{}.Interpreter(NewProject(dir))
	if err != nil {
		t.Fatal(err)
	}
	if exe != want {
		t.Errorf("resolved %q, want %q", exe, want)
	}
}

func TestPython_InterpreterSkipsNonExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bits")
	}
	dir := t.TempDir()
	p := fakeTool(t, dir, "bin/python")
	if err := os.Chmod(p, 0644); err != nil {
		t.Fatal(err)
	}
	exe, err := Python{}.Interpreter(NewProject(dir))
	if err == nil && exe == p {
		t.Errorf("non-executable candidate %q resolved", p)
	}
}

func TestPython_Tool(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bits")
	}
	dir := t.TempDir()
	want := fakeTool(t, dir, ".venv/bin/behave")
	exe, err := Python{}.Tool(NewProject(dir), "behave")
	if err != nil {
		t.Fatal(err)
	}
	if exe != want {
		t.Errorf("resolved %q, want %q", exe, want)
	}
}
