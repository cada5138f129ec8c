package healthcheck

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/serum-errors/go-serum"
)

// BinCheck looks for an executable on PATH, or at an explicit path.
type BinCheck struct {
	Name string
	// Optional marks tools that only some commands need; a missing optional tool is ambiguous rather than a failure.
	Optional bool
}

func (c *BinCheck) String() string {
	return fmt.Sprintf("Executable: %q", c.Name)
}

func (c *BinCheck) missing(cause error, tmpl string, details ...[2]string) error {
	code := CodeRunFailure
	if c.Optional {
		code = CodeRunAmbiguous
	}
	opts := []serum.WithConstruction{serum.WithMessageTemplate(tmpl)}
	for _, d := range details {
		opts = append(opts, serum.WithDetail(d[0], d[1]))
	}
	if cause != nil {
		opts = append(opts, serum.WithCause(cause))
	}
	return serum.Error(code, opts...)
}

// Run checks that the executable resolves to a regular file this process may execute.
//
// Errors:
//
//   - envforge-healthcheck-okay -- when the executable is usable
//   - envforge-healthcheck-fail -- when a required executable is missing or unusable
//   - envforge-healthcheck-ambiguous -- when an optional executable is missing or unusable
func (c *BinCheck) Run(ctx context.Context) error {
	path, err := exec.LookPath(c.Name)
	if err != nil {
		return c.missing(err, "could not find {{name|q}} on PATH", [2]string{"name", c.Name})
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	fi, err := os.Stat(path)
	if err != nil {
		return c.missing(err, "could not stat {{path|q}}", [2]string{"path", path})
	}
	if !fi.Mode().IsRegular() {
		return c.missing(nil, "{{path|q}} is not a regular file", [2]string{"path", path})
	}
	if err := executionAccess(path); err != nil {
		return c.missing(err, "no execution access to {{path|q}}", [2]string{"path", path})
	}
	if target, err := filepath.EvalSymlinks(path); err == nil && target != path {
		return serum.Errorf(CodeRunOkay, "symlink: %q -> %q", path, target)
	}
	return serum.Errorf(CodeRunOkay, "path: %s", path)
}
