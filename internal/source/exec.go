package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/MuntasirSZN/d2o/internal/log"
)

// DefaultCommandTimeout bounds a single man or --help invocation.
const DefaultCommandTimeout = 5 * time.Second

// pagerEnv disables pagers so programs like git don't block waiting for
// interaction, and keeps man from formatting for a terminal.
var pagerEnv = []string{
	"PAGER=cat",
	"GIT_PAGER=cat",
	"MANPAGER=cat",
	"MANWIDTH=120",
	"TERM=dumb",
	"NO_COLOR=1",
	"GIT_TERMINAL_PROMPT=0",
}

// Exec is a Fetcher that runs man and <command> --help as subprocesses.
type Exec struct {
	Timeout time.Duration
	Logger  *log.Logger

	// run is replaced in tests.
	run func(ctx context.Context, name string, args ...string) ([]byte, int, error)
}

// NewExec returns an Exec fetcher with the given per-call timeout.
func NewExec(timeout time.Duration, logger *log.Logger) *Exec {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return &Exec{Timeout: timeout, Logger: logger, run: runCommand}
}

// Fetch tries the man page first (unless SkipMan), then --help and -h.
func (e *Exec) Fetch(ctx context.Context, req Request) (*Result, error) {
	if len(req.Path) == 0 {
		return nil, errors.New("empty command path")
	}

	if !req.SkipMan && len(req.Args) == 0 {
		if res := e.man(ctx, req.Path); res.OK() {
			return res, nil
		}
	}

	var last *Result
	for _, flag := range []string{"--help", "-h"} {
		args := append(append(append([]string{}, req.Path[1:]...), req.Args...), flag)
		out, code, err := e.exec(ctx, req.Path[0], args...)
		if err != nil {
			return nil, err
		}
		last = &Result{Kind: KindHelp, Text: out, ExitCode: code}
		if last.OK() {
			return last, nil
		}
		// Plenty of tools print usage to stderr and exit non-zero on -h;
		// keep the output if nothing better turns up.
		if len(bytes.TrimSpace(out)) > 0 && code != 0 {
			e.Logger.Debug("%s %s exited with %d", strings.Join(req.Path, " "), flag, code)
		}
	}
	return last, nil
}

// man renders "man <cmd>-<sub>" for subcommand paths, the convention used by
// git, docker and friends.
func (e *Exec) man(ctx context.Context, path []string) *Result {
	page := strings.Join(path, "-")
	out, code, err := e.exec(ctx, "man", page)
	if err != nil {
		return nil
	}
	return &Result{Kind: KindMan, Text: out, ExitCode: code}
}

func (e *Exec) exec(ctx context.Context, name string, args ...string) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	run := e.run
	if run == nil {
		run = runCommand
	}
	out, code, err := run(ctx, name, args...)
	if ctx.Err() == context.DeadlineExceeded {
		return nil, 0, fmt.Errorf("%s timed out after %s", name, e.Timeout)
	}
	return out, code, err
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), pagerEnv...)
	cmd.Stdin = nil

	out, err := cmd.CombinedOutput()
	if err == nil {
		return out, 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out, exitErr.ExitCode(), nil
	}
	return nil, 0, err
}
