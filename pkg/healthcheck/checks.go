package healthcheck

import (
	"context"
	"fmt"

	"github.com/serum-errors/go-serum"
	"github.com/warpfork/go-fsx"

	"github.com/warptools/envforge/pkg/conda"
	"github.com/warptools/envforge/pkg/subproc"
)

// PlatformInfo reports what envforge is running on. It never fails a health check.
type PlatformInfo struct{}

func (p *PlatformInfo) String() string {
	return "Platform"
}

// RegistryCheck lists the installed environments, exactly as install would.
type RegistryCheck struct {
	Runner subproc.Runner
}

func (c *RegistryCheck) String() string {
	return "Environment registry"
}

// Run lists installed environments.
//
// Errors:
//
//   - envforge-healthcheck-okay -- when environments can be listed
//   - envforge-healthcheck-fail -- when they cannot
func (c *RegistryCheck) Run(ctx context.Context) error {
	snapshot, err := conda.ReadRegistry(ctx, c.Runner)
	if err != nil {
		return serum.Errorf(CodeRunFailure, "cannot list installed environments: %w", err)
	}
	return serum.Errorf(CodeRunOkay, "%d environments installed", len(snapshot.Envs))
}

// SpecFileCheck finds the project's environment spec file and checks that it loads.
type SpecFileCheck struct {
	FS        fsx.FS // Rooted at "/".
	SourceDir string
	Names     []string
}

func (c *SpecFileCheck) String() string {
	return "Environment spec file"
}

// Run looks for and parses the spec file.
//
// Errors:
//
//   - envforge-healthcheck-okay -- when a spec file is found and valid
//   - envforge-healthcheck-ambiguous -- when there is no spec file
//   - envforge-healthcheck-fail -- when the spec file is unusable
func (c *SpecFileCheck) Run(ctx context.Context) error {
	path, found, err := conda.FindSpecFile(c.FS, c.SourceDir, c.Names)
	if err != nil {
		return serum.Errorf(CodeRunFailure, "cannot search for a spec file: %w", err)
	}
	if !found {
		return serum.Errorf(CodeRunAmbiguous, "no spec file in %s (looked for %v)", c.SourceDir, c.Names)
	}
	spec, err := conda.LoadSpec(path)
	if err != nil {
		return serum.Errorf(CodeRunFailure, "%q is unusable: %w", path, err)
	}
	identity := "no identity declared"
	switch {
	case spec.Prefix != "":
		identity = "prefix " + spec.Prefix
	case spec.Name != "":
		identity = fmt.Sprintf("name %q", spec.Name)
	}
	return serum.Errorf(CodeRunOkay, "%s (%s)", path, identity)
}
