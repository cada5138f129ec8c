//go:build !unix

package healthcheck

import (
	"context"
	"runtime"

	"github.com/serum-errors/go-serum"
)

func executionAccess(path string) error {
	return nil
}

// Run reports the operating system and machine type.
//
// Errors:
//
//   - envforge-healthcheck-ambiguous -- always, carrying the platform description
func (p *PlatformInfo) Run(ctx context.Context) error {
	return serum.Errorf(CodeRunAmbiguous, "%s (%s)", runtime.GOOS, runtime.GOARCH)
}
