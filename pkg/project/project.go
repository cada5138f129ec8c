/*
Package project drives the Python tooling of a project: installing and
compiling requirements, running the test suite, and setting up the notebook
output filter for git.

All tools are run through subproc.Runner values so that tests can replay them.
*/
package project

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/warptools/envforge/pkg/envapi"
	"github.com/warptools/envforge/pkg/logging"
	"github.com/warptools/envforge/pkg/subproc"
	"github.com/warptools/envforge/pkg/tracing"
)

const (
	RequirementsIn  = "requirements.in"
	RequirementsTxt = "requirements.txt"
)

const logTag = "project"

// call runs one tool invocation inside its own span.
//
// Errors:
//
//   - envforge-error-command-failed -- when the tool fails or cannot be started
func call(ctx context.Context, runner subproc.Runner, execName attribute.KeyValue, stdout io.Writer, args ...string) error {
	argv := runner.Argv(args...)
	ctx, span := tracing.Start(ctx, strings.Join(argv, " "), trace.WithAttributes(execName))
	var err error
	defer func() { tracing.EndWithStatus(span, err) }()

	logging.Ctx(ctx).Debug(logTag, "running %s", strings.Join(argv, " "))
	exitCode, runErr := runner.Run(ctx, stdout, args...)
	if runErr != nil {
		err = envapi.ErrorCommandFailed(argv, exitCode, runErr)
		return err
	}
	return nil
}

// InstallRequirements installs (and upgrades) everything listed in the source dir's requirements.txt.
//
// Errors:
//
//   - envforge-error-command-failed -- when pip fails
func InstallRequirements(ctx context.Context, python subproc.Runner, sourceDir string, stdout io.Writer) error {
	return call(ctx, python, tracing.AttrFullExecNamePython, stdout,
		"-m", "pip", "install", "-U", "-r", filepath.Join(sourceDir, RequirementsTxt))
}

// RunTests forwards args to pytest.
//
// Errors:
//
//   - envforge-error-command-failed -- when pytest fails, including when tests fail
func RunTests(ctx context.Context, python subproc.Runner, stdout io.Writer, args []string) error {
	return call(ctx, python, tracing.AttrFullExecNamePython, stdout,
		append([]string{"-m", "pytest"}, args...)...)
}
