package project

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/warptools/envforge/pkg/envapi"
	"github.com/warptools/envforge/pkg/logging"
	"github.com/warptools/envforge/pkg/subproc"
	"github.com/warptools/envforge/pkg/tracing"
)

// CompileMode says whether requirements are compiled before they are installed.
type CompileMode uint8

const (
	// CompileAuto compiles only when requirements.in does not exist yet.
	CompileAuto CompileMode = iota
	CompileAlways
	CompileNever
)

// ShouldCompile applies a CompileMode to the source dir.
//
// Errors:
//
//   - envforge-error-io -- when requirements.in cannot be checked
func ShouldCompile(mode CompileMode, sourceDir string) (bool, error) {
	switch mode {
	case CompileAlways:
		return true, nil
	case CompileNever:
		return false, nil
	}
	exists, err := isFile(filepath.Join(sourceDir, RequirementsIn))
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func isFile(path string) (bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, envapi.ErrorIo("checking file", path, err)
	}
	return fi.Mode().IsRegular(), nil
}

// BuildRequirements compiles requirements.in into a pinned requirements.txt with pip-tools.
// If there is no requirements.in yet, it is seeded from requirements.txt first.
// args are passed through to pip-compile.
//
// Errors:
//
//   - envforge-error-missing -- when neither requirements file exists
//   - envforge-error-io -- when requirements.in cannot be seeded
//   - envforge-error-command-failed -- when pip-compile fails
func BuildRequirements(ctx context.Context, python subproc.Runner, sourceDir string, stdout io.Writer, args []string) error {
	reqIn := filepath.Join(sourceDir, RequirementsIn)
	exists, err := isFile(reqIn)
	if err != nil {
		return err
	}
	if !exists {
		logging.Ctx(ctx).Info(logTag, "No %s found. Copying contents from %s...", RequirementsIn, RequirementsTxt)
		if err := copyFile(filepath.Join(sourceDir, RequirementsTxt), reqIn); err != nil {
			return err
		}
	}
	compileArgs := append([]string{"-m", "piptools", "compile", "-q"}, args...)
	compileArgs = append(compileArgs, reqIn)
	return call(ctx, python, tracing.AttrFullExecNamePython, stdout, compileArgs...)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return envapi.ErrorFileMissing(src)
		}
		return envapi.ErrorIo("opening file", src, err)
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return envapi.ErrorIo("creating file", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return envapi.ErrorIo("copying file", dst, err)
	}
	if err := out.Close(); err != nil {
		return envapi.ErrorIo("closing file", dst, err)
	}
	return nil
}
