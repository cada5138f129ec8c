package conda

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/codec/json"
	"github.com/ipld/go-ipld-prime/datamodel"
	"go.opentelemetry.io/otel/trace"

	"github.com/warptools/envforge/pkg/envapi"
	"github.com/warptools/envforge/pkg/logging"
	"github.com/warptools/envforge/pkg/subproc"
	"github.com/warptools/envforge/pkg/tracing"
)

// RegistryListArgs are the arguments that make conda print its environments as JSON.
var RegistryListArgs = []string{"env", "list", "--json", "-q"}

// ReadRegistry asks the environment manager which environments are installed.
// The manager is invoked exactly once; there are no retries.
//
// Errors:
//
//   - envforge-error-registry-unavailable -- when the manager fails or prints something unparseable
func ReadRegistry(ctx context.Context, runner subproc.Runner) (envapi.RegistrySnapshot, error) {
	ctx, span := tracing.Start(ctx, "conda env list", trace.WithAttributes(
		tracing.AttrFullExecNameConda,
		tracing.AttrFullExecOperationEnvList,
	))
	var err error
	defer func() { tracing.EndWithStatus(span, err) }()

	argv := runner.Argv(RegistryListArgs...)
	logging.Ctx(ctx).Debug(logTag, "listing environments: %v", argv)

	var stdout bytes.Buffer
	exitCode, runErr := runner.Run(ctx, &stdout, RegistryListArgs...)
	if runErr != nil {
		err = envapi.ErrorRegistryUnavailable(argv, exitCode, runErr)
		return envapi.RegistrySnapshot{}, err
	}
	snapshot, parseErr := ParseRegistry(stdout.Bytes())
	if parseErr != nil {
		err = envapi.ErrorRegistryUnavailable(argv, exitCode, parseErr)
		return envapi.RegistrySnapshot{}, err
	}
	logging.Ctx(ctx).Debug(logTag, "found %d installed environments", len(snapshot.Envs))
	return snapshot, nil
}

// ParseRegistry reads the JSON document printed by "conda env list --json -q".
// Only the "envs" list is interpreted; other keys are ignored.
// Every entry must be an absolute path.
//
// Errors:
//
//   - envforge-error-serialization -- when the document is not shaped like an environment list
func ParseRegistry(data []byte) (envapi.RegistrySnapshot, error) {
	n, err := ipld.Decode(data, json.Decode)
	if err != nil {
		return envapi.RegistrySnapshot{}, envapi.ErrorSerialization("decoding environment list", err)
	}
	if n.Kind() != datamodel.Kind_Map {
		return envapi.RegistrySnapshot{}, envapi.ErrorSerialization("decoding environment list",
			fmt.Errorf("expected a map, got %s", n.Kind()))
	}
	envs, err := n.LookupByString("envs")
	if err != nil {
		return envapi.RegistrySnapshot{}, envapi.ErrorSerialization("decoding environment list",
			fmt.Errorf("missing \"envs\": %w", err))
	}
	if envs.Kind() != datamodel.Kind_List {
		return envapi.RegistrySnapshot{}, envapi.ErrorSerialization("decoding environment list",
			fmt.Errorf("\"envs\" must be a list, got %s", envs.Kind()))
	}

	snapshot := envapi.RegistrySnapshot{
		Envs: make([]envapi.InstalledEnvironment, 0, envs.Length()),
	}
	itr := envs.ListIterator()
	for !itr.Done() {
		idx, v, err := itr.Next()
		if err != nil {
			return envapi.RegistrySnapshot{}, envapi.ErrorSerialization("decoding environment list", err)
		}
		prefix, err := v.AsString()
		if err != nil {
			return envapi.RegistrySnapshot{}, envapi.ErrorSerialization("decoding environment list",
				fmt.Errorf("entry %d: %w", idx, err))
		}
		if !filepath.IsAbs(prefix) {
			return envapi.RegistrySnapshot{}, envapi.ErrorSerialization("decoding environment list",
				fmt.Errorf("entry %d: %q is not an absolute path", idx, prefix))
		}
		snapshot.Envs = append(snapshot.Envs, envapi.InstalledEnvironmentAt(prefix))
	}
	return snapshot, nil
}
