package pymk

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"git.fractalqb.de/fractalqb/pymk/pymkore"
)

// CmdOp runs one external command. The command inherits the streams of the
// action's [Env] unless InFile/OutFile redirect them to files. Failures are
// returned as the [exec.Cmd] error, so the tool's exit status reaches the
// caller unmodified.
type CmdOp struct {
	CWD             string
	Exe             string
	Args            []string
	InFile, OutFile string
	Desc            string
}

var _ pymkore.Operation = (*CmdOp)(nil)

func (op *CmdOp) Describe(*Action, *Env) string {
	if op.Desc == "" {
		op.Desc = fmt.Sprintf("%s%v", filepath.Base(op.Exe), op.Args)
	}
	return op.Desc
}

func (op *CmdOp) Do(tr *pymkore.Trace, a *Action, env *Env) error {
	xenv, err := env.ExecEnv()
	if err != nil {
		tr.Warn(err.Error())
	}
	cmd := exec.CommandContext(tr.Ctx(), op.Exe, op.Args...)
	cmd.Dir = op.CWD
	cmd.Env = xenv
	if op.InFile != "" {
		r, err := os.Open(op.InFile)
		if err != nil {
			return err
		}
		defer r.Close()
		cmd.Stdin = r
	} else {
		cmd.Stdin = env.In
	}
	if op.OutFile != "" {
		w, err := os.Create(op.OutFile)
		if err != nil {
			return err
		}
		defer w.Close()
		cmd.Stdout = w
	} else {
		cmd.Stdout = env.Out
	}
	cmd.Stderr = env.Err
	tr.Debug("exec `cmd` in `dir`", `cmd`, cmd.String(), `dir`, cmd.Dir)
	if err := cmd.Run(); err != nil {
		tr.Warn("failed `cmd` in `dir` with `error`",
			`cmd`, cmd.String(),
			`dir`, cmd.Dir,
			`error`, err.Error(),
		)
		return err
	}
	return nil
}

// PipeOp connects the commands to a pipeline, e.g.
//
//	python setup.py --long-description | rst2html
//
// The first command reads the Env's In, the last one writes to the Env's
// Out or to the OutFile of the last element.
type PipeOp []CmdOp

var _ pymkore.Operation = PipeOp{}

func (po PipeOp) Describe(a *Action, env *Env) string {
	if len(po) == 0 {
		return "empty pipe"
	}
	var sb strings.Builder
	sb.WriteString(po[0].Describe(a, env))
	for i := range po[1:] {
		sb.WriteByte('|')
		sb.WriteString(po[i+1].Describe(a, env))
	}
	return sb.String()
}

func (po PipeOp) Do(tr *pymkore.Trace, a *Action, env *Env) error {
	if len(po) == 0 {
		return nil
	}
	xenv, err := env.ExecEnv()
	if err != nil {
		tr.Warn(err.Error())
	}
	var (
		cmds  = make([]*exec.Cmd, len(po))
		pipew = make([]*io.PipeWriter, len(po)-1)
	)
	for i := range po {
		cop := &po[i]
		cmd := exec.CommandContext(tr.Ctx(), cop.Exe, cop.Args...)
		cmd.Dir = cop.CWD
		cmd.Env = xenv
		if i == 0 {
			cmd.Stdin = env.In
		} else {
			r, w := io.Pipe()
			cmds[i-1].Stdout = w
			cmd.Stdin = r
			pipew[i-1] = w
		}
		cmd.Stderr = env.Err
		cmds[i] = cmd
	}
	last := cmds[len(cmds)-1]
	if of := po[len(po)-1].OutFile; of != "" {
		w, err := os.Create(of)
		if err != nil {
			return err
		}
		defer w.Close()
		last.Stdout = w
	} else {
		last.Stdout = env.Out
	}
	tr.Debug("exec `pipe`", `pipe`, po.Describe(a, env))
	for i, cmd := range cmds {
		if err := cmd.Start(); err != nil {
			for k := 0; k < i; k++ {
				_ = cmds[k].Process.Kill()
			}
			return err
		}
	}
	for i, cmd := range cmds {
		if err := cmd.Wait(); err != nil {
			for k := i + 1; k < len(cmds); k++ {
				_ = cmds[k].Process.Kill()
			}
			return err
		}
		if i < len(pipew) {
			pipew[i].Close()
		}
	}
	return nil
}
