// Command pymk runs the development workflow targets of a Python package:
// acceptance tests, coverage, README generation, register, sdist, test,
// upload and the clean sweep. Run without arguments it lists the targets.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"

	"git.fractalqb.de/fractalqb/pymk"
	"git.fractalqb.de/fractalqb/pymk/pymkore"
	"git.fractalqb.de/fractalqb/qblog"
	"github.com/spf13/cobra"
)

var log = qblog.New(&qblog.DefaultConfig)

var (
	fDir    string
	fPython string
	fTrace  string
	fPrefix bool
	fPkg    string
	fDryrun bool

	tracer = pymk.DefaultTracer()
)

var rootCmd = &cobra.Command{
	Use:   "pymk",
	Short: "Python package development workflow automation",
	Long: `pymk wraps the development workflow of a Python package the way the
classic project Makefile does. Each target runs the underlying tool and
reports its exit status unmodified.

Targets:
` + targetHelp(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return tracer.ParseLogFlag(fTrace)
	},
}

func targetHelp() string {
	var sb strings.Builder
	for _, t := range pymk.Targets {
		fmt.Fprintf(&sb, "  %-10s%s\n", t, pymk.Describe(t))
	}
	fmt.Fprintf(&sb, "  %-10s%s\n", "clean", "remove build artefacts, bytecode and OS metadata files")
	return sb.String()
}

func workflow() pymk.Workflow {
	return pymk.Workflow{
		Python:  pymk.Python{Exe: fPython},
		Package: fPkg,
	}
}

func runTarget(target string) error {
	prj, err := workflow().NewProject(fDir)
	if err != nil {
		return err
	}
	if err := pymk.Check(prj, target); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	tr := pymkore.NewTrace(ctx, tracer)
	env := pymkore.DefaultEnv(tr)
	if fPrefix {
		env.Out = pymk.NewPrefixWriter(env.Out, target+": ")
		env.Err = pymk.NewPrefixWriter(env.Err, target+": ")
	}
	build, err := pymkore.NewBuilder(tr, env)
	if err != nil {
		return err
	}
	return build.NamedGoals(prj, target)
}

func targetCmd(target string) *cobra.Command {
	return &cobra.Command{
		Use:   target,
		Short: pymk.Describe(target),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTarget(target)
		},
	}
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "remove build artefacts, bytecode and OS metadata files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prj, err := workflow().NewProject(fDir)
		if err != nil {
			return err
		}
		tr := pymkore.NewTrace(context.Background(), tracer)
		pymk.Clean(prj, fDryrun, tr)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&fDir, "chdir", "C", "", "project directory, default is the working directory")
	pf.StringVar(&fPython, "python", "", "interpreter to use, skips virtualenv resolution")
	pf.StringVar(&fTrace, "trace", "", "trace detail: off, warn, info, debug")
	pf.BoolVar(&fPrefix, "prefix", false, "prefix tool output lines with the target name")
	pf.StringVar(&fPkg, "package", "", "package directory, default from project metadata")
	cleanCmd.Flags().BoolVarP(&fDryrun, "dryrun", "n", false, "only show what would be removed")

	for _, t := range pymk.Targets {
		rootCmd.AddCommand(targetCmd(t))
	}
	rootCmd.AddCommand(cleanCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err.Error())
		var xerr *exec.ExitError
		if errors.As(err, &xerr) && xerr.ExitCode() > 0 {
			os.Exit(xerr.ExitCode())
		}
		os.Exit(1)
	}
}
