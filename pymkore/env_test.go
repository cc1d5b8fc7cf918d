package pymkore

import (
	"errors"
	"slices"
	"testing"
)

func TestEnv_SetVars(t *testing.T) {
	var e Env
	e.SetVars("")
	if v, ok := e.Var(""); !ok {
		t.Error("empty var not set")
	} else if v != "" {
		t.Errorf("empty var has value '%s'", v)
	}
	e.SetVars("foo")
	if v, ok := e.Var("foo"); !ok {
		t.Error("var 'foo' not set")
	} else if v != "" {
		t.Errorf("var 'foo' has value '%s'", v)
	}
	e.SetVars("foo=bar")
	if v, ok := e.Var("foo"); !ok {
		t.Error("var 'foo' not set")
	} else if v != "bar" {
		t.Errorf("var 'foo' has value '%s'", v)
	}
	e.SetVars("=bar")
	if v, ok := e.Var(""); !ok {
		t.Error("empty var not set")
	} else if v != "bar" {
		t.Errorf("empty var has value '%s'", v)
	}
}

func TestEnv_SetVarsMap(t *testing.T) {
	var e Env
	e.SetVar("gone", "parent")
	sub := e.Sub()
	sub.DelVar("gone")
	sub.SetVarsMap(map[string]string{"gone": "back", "fresh": "new"})
	if v, ok := sub.Var("gone"); !ok || v != "back" {
		t.Errorf("var 'gone': '%s' %t", v, ok)
	}
	if v, ok := sub.Var("fresh"); !ok || v != "new" {
		t.Errorf("var 'fresh': '%s' %t", v, ok)
	}
	xenv, err := sub.ExecEnv()
	if err != nil {
		t.Fatal(err)
	}
	slices.Sort(xenv)
	if len(xenv) != 2 || xenv[0] != "fresh=new" || xenv[1] != "gone=back" {
		t.Errorf("unexpected exec env %v", xenv)
	}
}

func TestEnv_sub(t *testing.T) {
	var e Env
	e.SetVar("keep", "parent")
	e.SetVar("gone", "parent")
	sub := e.Sub()
	sub.SetVar("own", "sub")
	sub.DelVar("gone")

	if v, ok := sub.Var("keep"); !ok || v != "parent" {
		t.Errorf("var 'keep': '%s' %t", v, ok)
	}
	if v, ok := sub.Var("own"); !ok || v != "sub" {
		t.Errorf("var 'own': '%s' %t", v, ok)
	}
	if v, ok := sub.Var("gone"); ok {
		t.Errorf("deleted var 'gone' resolves to '%s'", v)
	}
	if v, ok := e.Var("gone"); !ok || v != "parent" {
		t.Errorf("parent var 'gone' touched by child: '%s' %t", v, ok)
	}
}

func TestEnv_ExecEnv(t *testing.T) {
	var e Env
	e.SetVar("K1", "v1")
	e.SetVar("K2", "v2")
	xenv, err := e.ExecEnv()
	if err != nil {
		t.Fatal(err)
	}
	slices.Sort(xenv)
	if len(xenv) != 2 || xenv[0] != "K1=v1" || xenv[1] != "K2=v2" {
		t.Errorf("unexpected exec env %v", xenv)
	}

	e.SetVar("il=legal", "x")
	xenv, err = e.ExecEnv()
	var bad NonExecEnvKeys
	if !errors.As(err, &bad) {
		t.Fatalf("unexpected error %v", err)
	}
	if len(bad) != 1 || bad[0] != "il=legal" {
		t.Errorf("unexpected bad keys %v", bad)
	}
	if len(xenv) != 2 {
		t.Errorf("legal entries not kept: %v", xenv)
	}
}

func TestEnv_zero(t *testing.T) {
	var e Env
	xenv, err := e.ExecEnv()
	if err != nil {
		t.Error(err)
	}
	if xenv != nil {
		t.Error("unexpected zero exec env:", xenv)
	}
}
