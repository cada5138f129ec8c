//go:build unix

package healthcheck

import (
	"context"
	"fmt"

	"github.com/serum-errors/go-serum"
	"golang.org/x/sys/unix"
)

func executionAccess(path string) error {
	return unix.Access(path, unix.X_OK)
}

// Run reports the operating system and machine type.
//
// Errors:
//
//   - envforge-healthcheck-ambiguous -- always, carrying the platform description
//   - envforge-healthcheck-fail -- when the uname syscall fails
func (p *PlatformInfo) Run(ctx context.Context) error {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return serum.Error(CodeRunFailure, serum.WithCause(err),
			serum.WithMessageLiteral("uname syscall failed"),
		)
	}
	return serum.Errorf(CodeRunAmbiguous, "%s",
		fmt.Sprintf("%s %s (%s)",
			unix.ByteSliceToString(u.Sysname[:]),
			unix.ByteSliceToString(u.Release[:]),
			unix.ByteSliceToString(u.Machine[:]),
		))
}
