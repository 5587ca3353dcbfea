package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/vk/modtest/internal/handler"
	"github.com/vk/modtest/internal/project"
)

// exitError is a custom error type that includes a specific exit code.
type exitError struct {
	code    int
	message string
}

func (e *exitError) Error() string {
	return e.message
}

// main is the entrypoint for the modtest command.
func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*exitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.message)
			os.Exit(exitErr.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the command logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	flagSet := flag.NewFlagSet("modtest", flag.ContinueOnError)
	flagSet.SetOutput(outW)
	flagSet.Usage = func() {
		fmt.Fprint(outW, `
modtest - compile a configuration model inside a throwaway test project.

Usage:
  modtest [options] MODEL_FILE

Arguments:
  MODEL_FILE
    Path to the model to compile (e.g. tests/deploy.hcl).

Options:
`)
		flagSet.PrintDefaults()
	}

	workDirFlag := flagSet.String("workdir", "", "Directory inside the module under test. Defaults to the current directory.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return &exitError{code: 2, message: err.Error()}
	}
	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return &exitError{code: 2, message: "exactly one model file is required"}
	}

	configureLogger(*logLevelFlag)

	model, err := os.ReadFile(flagSet.Arg(0))
	if err != nil {
		return err
	}

	commander := handler.DefaultCommander
	p, err := project.New(project.Options{WorkDir: *workDirFlag, Commander: commander, Out: outW})
	if err != nil {
		return err
	}
	defer p.Close()
	p.Init()

	if err := p.Compile(string(model)); err != nil {
		return fmt.Errorf("compile failed: %w", err)
	}

	ids := make([]string, 0, len(p.Resources()))
	for id := range p.Resources() {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Fprintf(outW, "compiled version %d, %d resource(s)\n", p.Version(), len(ids))
	for _, id := range ids {
		fmt.Fprintf(outW, "  %s\n", id)
		res := p.Resources()[id]
		if !commander.Has(res.TypeName) {
			continue
		}
		hctx, err := p.DryRun(res, false)
		if err != nil {
			return err
		}
		changes := hctx.Changes()
		attrs := make([]string, 0, len(changes))
		for attr := range changes {
			attrs = append(attrs, attr)
		}
		sort.Strings(attrs)
		fmt.Fprintf(outW, "    dry run (%s): %d change(s)\n", hctx.Status(), len(changes))
		for _, attr := range attrs {
			change := changes[attr]
			fmt.Fprintf(outW, "      %s: %v -> %v\n", attr, change.From, change.To)
		}
	}
	if p.Stdout() != "" {
		fmt.Fprintf(outW, "--- compile stdout ---\n%s", p.Stdout())
	}
	return nil
}

func configureLogger(levelStr string) {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
