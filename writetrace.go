package pymk

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"git.fractalqb.de/fractalqb/pymk/pymkore"
	"git.fractalqb.de/fractalqb/sllm/v3"
)

// WriteTracer writes build and clean events line by line to W. Messages
// use the sllm syntax, i.e. `backtick` parameters are inlined into the
// message text.
type WriteTracer struct {
	W   io.Writer
	Log pymkore.TraceLog
}

var _ pymkore.Tracer = (*WriteTracer)(nil)

func DefaultTracer() *WriteTracer {
	return &WriteTracer{W: os.Stderr, Log: pymkore.TraceWarn}
}

// ParseLogFlag configures the trace detail from a command line flag value:
// off, warn/w, info/i or debug/d. The empty string leaves tr unchanged.
func (tr *WriteTracer) ParseLogFlag(f string) error {
	switch f {
	case "":
		return nil
	case "off":
		tr.Log = 0
	case "warn", "w":
		tr.Log = pymkore.TraceWarn
	case "info", "i":
		tr.Log = pymkore.TraceWarn | pymkore.TraceInfo
	case "debug", "d":
		tr.Log = pymkore.TraceWarn | pymkore.TraceInfo | pymkore.TraceDebug
	default:
		return fmt.Errorf("write tracer: illegal log flag '%s'", f)
	}
	return nil
}

func (tr *WriteTracer) Debug(t *pymkore.Trace, msg string, args ...any) {
	if tr.Log&pymkore.TraceDebug == 0 {
		return
	}
	fmt.Fprintf(tr.W, "%d@%s\t  DEBUG ", t.Build(), t.TopTag())
	sllm.Fprint(tr.W, msg, sllmArgs(args).append)
	fmt.Fprintln(tr.W)
}

func (tr *WriteTracer) Info(t *pymkore.Trace, msg string, args ...any) {
	if tr.Log&(pymkore.TraceInfo|pymkore.TraceDebug) == 0 {
		return
	}
	fmt.Fprintf(tr.W, "%d@%s\t  INFO  ", t.Build(), t.TopTag())
	sllm.Fprint(tr.W, msg, sllmArgs(args).append)
	fmt.Fprintln(tr.W)
}

func (tr *WriteTracer) Warn(t *pymkore.Trace, msg string, args ...any) {
	if tr.Log&(pymkore.TraceWarn|pymkore.TraceInfo|pymkore.TraceDebug) == 0 {
		return
	}
	fmt.Fprintf(tr.W, "%d@%s\t  WARN  ", t.Build(), t.TopTag())
	sllm.Fprint(tr.W, msg, sllmArgs(args).append)
	fmt.Fprintln(tr.W)
}

func (tr *WriteTracer) StartProject(t *pymkore.Trace, p *pymkore.Project, activity string) {
	fmt.Fprintf(tr.W, "%d@%s\t{ %s project '%s' in %s\n",
		t.Build(),
		t.TopTag(),
		activity,
		p,
		p.Dir,
	)
}

func (tr *WriteTracer) DoneProject(t *pymkore.Trace, p *pymkore.Project, activity string, dt time.Duration) {
	fmt.Fprintf(tr.W, "%d@%s\t} %s project '%s' took %s\n",
		t.Build(),
		t.TopTag(),
		activity,
		p,
		dt,
	)
}

func (tr *WriteTracer) SetupActionEnv(_ *pymkore.Trace, env *pymkore.Env) (*pymkore.Env, error) {
	return env, nil
}

func (tr *WriteTracer) CloseActionEnv(*pymkore.Trace, *pymkore.Env) error { return nil }

func (tr *WriteTracer) logGoals() bool {
	return tr.Log&(pymkore.TraceWarn|pymkore.TraceInfo|pymkore.TraceDebug) != 0
}

func (tr *WriteTracer) logActions() bool {
	return tr.Log&(pymkore.TraceInfo|pymkore.TraceDebug) != 0
}

func (tr *WriteTracer) RunAction(t *pymkore.Trace, a *pymkore.Action) {
	if tr.logActions() {
		fmt.Fprintf(tr.W, "%d@%s\t  run action (%s)\n", t.Build(), t.TopTag(), a)
	}
}

func (tr *WriteTracer) RunImplicitAction(t *pymkore.Trace, _ *pymkore.Action) {
	if tr.Log&pymkore.TraceDebug != 0 {
		fmt.Fprintf(tr.W, "%d@%s\t  implicit action\n", t.Build(), t.TopTag())
	}
}

func (tr *WriteTracer) ScheduleResTimeZero(t *pymkore.Trace, a *pymkore.Action, res *pymkore.Goal) {
	if !tr.logActions() {
		return
	}
	fmt.Fprintf(tr.W, "%d@%s\t  schedule (%s) for result [%s] without state time\n",
		t.Build(),
		t.TopTag(),
		a,
		res,
	)
}

func (tr *WriteTracer) ScheduleNoPremises(t *pymkore.Trace, a *pymkore.Action, res *pymkore.Goal) {
	if !tr.logActions() {
		return
	}
	fmt.Fprintf(tr.W, "%d@%s\t  schedule (%s) without premise for result [%s]\n",
		t.Build(),
		t.TopTag(),
		a,
		res,
	)
}

func (tr *WriteTracer) SchedulePreTimeZero(t *pymkore.Trace, a *pymkore.Action, res, pre *pymkore.Goal) {
	if !tr.logActions() {
		return
	}
	fmt.Fprintf(tr.W, "%d@%s\t  schedule (%s) for result [%s], premise [%s] has no state time\n",
		t.Build(),
		t.TopTag(),
		a,
		res,
		pre,
	)
}

func (tr *WriteTracer) ScheduleOutdated(t *pymkore.Trace, a *pymkore.Action, res, pre *pymkore.Goal) {
	if !tr.logActions() {
		return
	}
	fmt.Fprintf(tr.W, "%d@%s\t  schedule (%s) for result [%s], premise [%s] is newer\n",
		t.Build(),
		t.TopTag(),
		a,
		res,
		pre,
	)
}

func (tr *WriteTracer) CheckGoal(t *pymkore.Trace, g *pymkore.Goal) {
	if !tr.logGoals() {
		return
	}
	fmt.Fprintf(tr.W, "%d@%s\t? %s %s\n", t.Build(), t.TopTag(), g, t.Path())
}

func (tr *WriteTracer) GoalUpToDate(t *pymkore.Trace, g *pymkore.Goal) {
	if !tr.logGoals() {
		return
	}
	fmt.Fprintf(tr.W, "%d@%s\t. %s is up-to-date\n", t.Build(), t.TopTag(), g)
}

func (tr *WriteTracer) GoalNeedsActions(t *pymkore.Trace, g *pymkore.Goal, n int) {
	if !tr.logGoals() {
		return
	}
	fmt.Fprintf(tr.W, "%d@%s\t! %s needs %d actions\n", t.Build(), t.TopTag(), g, n)
}

func (tr *WriteTracer) RemoveArtefact(t *pymkore.Trace, g *pymkore.Goal) {
	if !tr.logGoals() {
		return
	}
	fmt.Fprintf(tr.W, "%d@%s\t! remove artefact %s\n", t.Build(), t.TopTag(), g)
}

type sllmArgs []any

func (as sllmArgs) append(buf []byte, _ int, n string) ([]byte, error) {
	for len(as) > 0 {
		switch k := as[0].(type) {
		case string:
			if len(as) == 1 {
				return buf, fmt.Errorf("no value for key '%s'", n)
			}
			if k == n {
				return sllm.AppendArg(buf, as[1]), nil
			}
			as = as[2:]
		case slog.Attr:
			if k.Key == n {
				return sllm.AppendArg(buf, k.Value), nil
			}
			as = as[1:]
		default:
			return buf, fmt.Errorf("illegal key type %T", k)
		}
	}
	return buf, fmt.Errorf("no key '%s'", n)
}
