// Package subproc runs external tools synchronously, the way every envforge command talks to conda, pip and friends.
package subproc

import (
	"context"
	"errors"
	"io"
	"os/exec"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/warptools/envforge/pkg/tracing"
)

// Runner executes one particular external tool.
type Runner interface {
	// Run executes the tool with args and blocks until it exits.
	// The tool's standard output is written to stdout.
	// exitCode is -1 when the process could not be started or did not exit normally.
	Run(ctx context.Context, stdout io.Writer, args ...string) (exitCode int, err error)

	// Argv returns the full command line Run would execute, for error reports.
	Argv(args ...string) []string
}

// Command is a Runner backed by os/exec.
type Command struct {
	Executable string
	Dir        string    // Working directory; empty means the current one.
	Stdin      io.Reader // Usually nil; passthrough tools that may ask questions get the caller's stdin.
	Stderr     io.Writer // Diagnostics of the tool are passed through here.
}

var _ Runner = (*Command)(nil)

func (c *Command) Argv(args ...string) []string {
	return append([]string{c.Executable}, args...)
}

func (c *Command) Run(ctx context.Context, stdout io.Writer, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, c.Executable, args...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = c.Stderr
	err := cmd.Run()
	exitCode := 0
	if err != nil {
		exitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int(tracing.AttrKeyEnvforgeExecExitCode, exitCode))
	return exitCode, err
}
