package conda

import (
	"bytes"
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/warptools/envforge/pkg/envapi"
	"github.com/warptools/envforge/pkg/logging"
	"github.com/warptools/envforge/pkg/subproc"
	"github.com/warptools/envforge/pkg/tracing"
)

// ProvisionArgs builds the environment manager arguments for an outcome.
// Name and prefix are always both passed. Updates prune packages the spec no longer lists.
func ProvisionArgs(outcome envapi.ResolutionOutcome) []string {
	args := []string{
		"env", string(outcome.Action),
		"--name", outcome.Name,
		"--prefix", outcome.Prefix,
		"--file", outcome.SpecFile,
	}
	if outcome.Action == envapi.Action_Update {
		args = append(args, "--prune")
	}
	return append(args, "--json", "-q")
}

// Provision creates or updates the environment described by outcome.
// It runs exactly once and never retries.
//
// Errors:
//
//   - envforge-error-provision-failed -- when the environment manager fails
func Provision(ctx context.Context, runner subproc.Runner, outcome envapi.ResolutionOutcome) error {
	opAttr := tracing.AttrFullExecOperationEnvCreate
	if outcome.Action == envapi.Action_Update {
		opAttr = tracing.AttrFullExecOperationEnvUpdate
	}
	ctx, span := tracing.Start(ctx, "conda env "+string(outcome.Action), trace.WithAttributes(
		tracing.AttrFullExecNameConda,
		opAttr,
		attribute.String(tracing.AttrKeyEnvforgeEnvName, outcome.Name),
		attribute.String(tracing.AttrKeyEnvforgeEnvPrefix, outcome.Prefix),
		attribute.String(tracing.AttrKeyEnvforgeSpecFile, outcome.SpecFile),
	))
	var err error
	defer func() { tracing.EndWithStatus(span, err) }()

	args := ProvisionArgs(outcome)
	argv := runner.Argv(args...)
	log := logging.Ctx(ctx)
	log.Info(logTag, "%s environment %q at %s", actionVerb(outcome.Action), outcome.Name, outcome.Prefix)
	log.Debug(logTag, "running %s", strings.Join(argv, " "))

	var stdout bytes.Buffer
	exitCode, runErr := runner.Run(ctx, &stdout, args...)
	if stdout.Len() > 0 {
		log.Debug(logTag, "%s", strings.TrimSpace(stdout.String()))
	}
	if runErr != nil {
		err = envapi.ErrorProvisionFailed(outcome.Action, argv, exitCode, runErr)
		return err
	}
	return nil
}

func actionVerb(a envapi.Action) string {
	switch a {
	case envapi.Action_Create:
		return "creating"
	case envapi.Action_Update:
		return "updating"
	default:
		return string(a)
	}
}
