package pymkore

import (
	"fmt"
	"io"
	"maps"
	"os"
	"strings"
)

// Env provides the standard streams and the environment variables for
// operations. Envs can be layered with [Env.Sub]; lookups fall through to
// the parent unless the key was deleted in the child.
type Env struct {
	In       io.Reader
	Out, Err io.Writer

	vars    map[string]string
	deleted map[string]bool
	xenv    []string
	xenvErr error
	parent  *Env
}

// DefaultEnv returns an Env with the OS standard streams and the process
// environment. Malformed entries are skipped with a warning on tr.
func DefaultEnv(tr *Trace) *Env {
	env := &Env{
		In:   os.Stdin,
		Out:  os.Stdout,
		Err:  os.Stderr,
		vars: make(map[string]string),
	}
	for _, evar := range os.Environ() {
		kv := strings.SplitN(evar, "=", 2)
		if len(kv) == 0 || kv[0] == "" {
			if tr != nil {
				tr.Warn("ignoring malformed `env` entry", `env`, evar)
			}
			continue
		}
		switch len(kv) {
		case 1:
			env.vars[kv[0]] = ""
		default:
			env.vars[kv[0]] = kv[1]
		}
	}
	return env
}

// Sub returns a child Env sharing e's streams. Variable changes in the
// child do not affect e.
func (e *Env) Sub() *Env {
	return &Env{
		In: e.In, Out: e.Out, Err: e.Err,
		parent: e,
	}
}

// Clone returns an independent copy of e with the parent chain collapsed.
func (e *Env) Clone() *Env {
	return &Env{
		In: e.In, Out: e.Out, Err: e.Err,
		vars: e.mergedVars(),
	}
}

func (e *Env) Var(key string) (string, bool) {
	for e != nil {
		if e.vars != nil {
			if v, ok := e.vars[key]; ok {
				return v, true
			}
		}
		if e.deleted != nil && e.deleted[key] {
			break
		}
		e = e.parent
	}
	return "", false
}

func (e *Env) SetVar(key, val string) {
	if e.vars == nil {
		e.vars = make(map[string]string)
	}
	e.vars[key] = val
	delete(e.deleted, key)
	e.clearExecEnv()
}

// SetVars sets variables from "key=value" strings. An entry without '='
// sets the key to the empty string.
func (e *Env) SetVars(env ...string) {
	if e.vars == nil {
		e.vars = make(map[string]string)
	}
	for _, evar := range env {
		kv := strings.SplitN(evar, "=", 2)
		switch len(kv) {
		case 1:
			e.vars[kv[0]] = ""
			delete(e.deleted, kv[0])
		case 2:
			e.vars[kv[0]] = kv[1]
			delete(e.deleted, kv[0])
		}
	}
	e.clearExecEnv()
}

func (e *Env) SetVarsMap(vars map[string]string) {
	if e.vars == nil {
		e.vars = make(map[string]string)
	}
	maps.Copy(e.vars, vars)
	for k := range vars {
		delete(e.deleted, k)
	}
	e.clearExecEnv()
}

func (e *Env) DelVar(key string) {
	delete(e.vars, key)
	if e.parent != nil {
		if e.deleted == nil {
			e.deleted = make(map[string]bool)
		}
		e.deleted[key] = true
	}
	e.clearExecEnv()
}

// NonExecEnvKeys is the error for variable keys that cannot be passed to an
// external process.
type NonExecEnvKeys []string

func (e NonExecEnvKeys) Error() string {
	return fmt.Sprintf("illegal exec env keys: %s", strings.Join(e, ", "))
}

func (NonExecEnvKeys) Is(target error) bool {
	_, ok := target.(NonExecEnvKeys)
	return ok
}

// ExecEnv renders e's variables as "key=value" entries for [os/exec.Cmd].
// Keys that are empty or contain '=' make ExecEnv return the valid entries
// along with a [NonExecEnvKeys] error.
func (e *Env) ExecEnv() ([]string, error) {
	if e.xenv == nil {
		var errKeys []string
		for k, v := range e.mergedVars() {
			switch {
			case k == "":
				errKeys = append(errKeys, `""`)
			case strings.ContainsRune(k, '='):
				errKeys = append(errKeys, k)
			default:
				e.xenv = append(e.xenv, fmt.Sprintf("%s=%s", k, v))
			}
		}
		if len(errKeys) > 0 {
			e.xenvErr = NonExecEnvKeys(errKeys)
		}
	}
	return e.xenv, e.xenvErr
}

func (e *Env) clearExecEnv() {
	e.xenv = nil
	e.xenvErr = nil
}

func (e *Env) mergedVars() map[string]string {
	if e.parent == nil {
		return maps.Clone(e.vars)
	}
	mvs := e.parent.mergedVars()
	if mvs == nil {
		mvs = make(map[string]string)
	}
	for k := range e.deleted {
		delete(mvs, k)
	}
	maps.Copy(mvs, e.vars)
	return mvs
}
