package conda

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/warpfork/go-fsx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/warptools/envforge/pkg/envapi"
	"github.com/warptools/envforge/pkg/logging"
	"github.com/warptools/envforge/pkg/subproc"
	"github.com/warptools/envforge/pkg/tracing"
)

// DefaultSpecFilenames is the search order used when no spec file is named explicitly.
var DefaultSpecFilenames = []string{
	"environment.yml",
	"environment.yaml",
	"env.yml",
	"env.yaml",
}

// FindSpecFile returns the first of names that is a regular file.
// Relative names are looked up in dir.
// fsys must be rooted at "/", and dir must be absolute.
// The second return is false if none of the names exist.
//
// Errors:
//
//   - envforge-error-io -- when a candidate cannot be checked
func FindSpecFile(fsys fsx.FS, dir string, names []string) (string, bool, error) {
	for _, name := range names {
		p := name
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		p = filepath.Clean(p)
		isFile, err := fsx.IsPathFile(fsys, strings.TrimPrefix(p, "/"))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", false, envapi.ErrorIo("looking for spec file", p, err)
		}
		if isFile {
			return p, true, nil
		}
	}
	return "", false, nil
}

// Installer reconciles spec files with the environments installed by one environment manager.
type Installer struct {
	Runner   subproc.Runner
	Chooser  Chooser
	Defaults ResolutionDefaults
}

// Resolve loads the spec at path and decides what Install would do with it,
// without provisioning anything or touching the file.
// A malformed spec fails before the environment manager is consulted.
//
// Errors:
//
//   - envforge-error-missing -- when there is no spec file at path
//   - envforge-error-io -- when the spec cannot be read, or an answer cannot be read
//   - envforge-error-config-parse -- when the spec is malformed
//   - envforge-error-conflicting-identity -- when the spec's name and prefix disagree
//   - envforge-error-invalid-argument -- when the spec declares no identity and the default name is not a single path segment
//   - envforge-error-registry-unavailable -- when installed environments cannot be listed
//   - envforge-error-choice-required -- when a choice is needed but the chooser refuses
//   - envforge-error-internal -- when the chooser misbehaves
func (in *Installer) Resolve(ctx context.Context, path string) (envapi.ResolutionOutcome, *EnvironmentSpec, error) {
	spec, err := LoadSpec(path)
	if err != nil {
		return envapi.ResolutionOutcome{}, nil, err
	}
	if spec.Name == "" && spec.Prefix == "" {
		if err := ValidateEnvName(in.Defaults.Name); err != nil {
			return envapi.ResolutionOutcome{}, nil, envapi.ErrorArgument("unusable default environment name",
				[2]string{"name", in.Defaults.Name},
				[2]string{"reason", err.Error()},
			)
		}
	}
	registry, err := ReadRegistry(ctx, in.Runner)
	if err != nil {
		return envapi.ResolutionOutcome{}, nil, err
	}
	candidate := Match(spec, in.Defaults, registry)
	logging.Ctx(ctx).Debug(logTag, "%s: %s", spec.Path, candidate.Kind)
	outcome, err := Resolve(ctx, spec, in.Defaults, candidate, in.Chooser)
	if err != nil {
		return envapi.ResolutionOutcome{}, nil, err
	}
	return outcome, spec, nil
}

// Install resolves the spec at path, provisions the environment,
// then writes the resolved identity back into the spec file.
// The spec file is left untouched unless provisioning succeeded.
//
// Errors:
//
//   - envforge-error-missing -- when there is no spec file at path
//   - envforge-error-io -- when the spec cannot be read or written, or an answer cannot be read
//   - envforge-error-config-parse -- when the spec is malformed
//   - envforge-error-conflicting-identity -- when the spec's name and prefix disagree
//   - envforge-error-invalid-argument -- when the spec declares no identity and the default name is not a single path segment
//   - envforge-error-registry-unavailable -- when installed environments cannot be listed
//   - envforge-error-choice-required -- when a choice is needed but the chooser refuses
//   - envforge-error-provision-failed -- when the environment manager fails to create or update
//   - envforge-error-serialization -- when the spec cannot be re-encoded
//   - envforge-error-internal -- when the chooser misbehaves
func (in *Installer) Install(ctx context.Context, path string) (envapi.ResolutionOutcome, error) {
	ctx, span := tracing.StartFn(ctx, "install")
	span.SetAttributes(attribute.String(tracing.AttrKeyEnvforgeSpecFile, path))
	var err error
	defer func() { tracing.EndWithStatus(span, err) }()

	outcome, spec, err := in.Resolve(ctx, path)
	if err != nil {
		return envapi.ResolutionOutcome{}, err
	}
	if err = Provision(ctx, in.Runner, outcome); err != nil {
		return envapi.ResolutionOutcome{}, err
	}
	ApplyOutcome(spec, outcome)
	if err = WriteSpec(spec); err != nil {
		return envapi.ResolutionOutcome{}, err
	}
	return outcome, nil
}
