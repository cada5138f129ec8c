package conda_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"
	"github.com/warpfork/go-fsx/osfs"

	"github.com/warptools/envforge/pkg/conda"
	"github.com/warptools/envforge/pkg/envapi"
	"github.com/warptools/envforge/pkg/subproc"
)

func writeSpec(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "environment.yml")
	qt.Assert(t, os.WriteFile(path, []byte(data), 0644), qt.IsNil)
	return path
}

func TestInstallFailsFastOnMalformedSpec(t *testing.T) {
	runner := scriptedConda(`{"envs": []}`)
	installer := &conda.Installer{Runner: runner, Chooser: conda.FailClosedChooser{}, Defaults: fixtureDefaults}
	_, err := installer.Install(context.Background(), writeSpec(t, "name: [oops\n"))
	qt.Assert(t, serum.Code(err), qt.Equals, envapi.ECodeConfigParse)
	qt.Assert(t, runner.Calls, qt.HasLen, 0)
}

func TestInstallLeavesSpecAloneWhenProvisioningFails(t *testing.T) {
	original := "name: fresh\ndependencies:\n  - python=3.11\n"
	path := writeSpec(t, original)
	runner := scriptedConda(`{"envs": []}`)
	runner.Default = &subproc.Response{Stdout: `{"success": false}`, ExitCode: 1}
	installer := &conda.Installer{Runner: runner, Chooser: conda.FailClosedChooser{}, Defaults: fixtureDefaults}

	_, err := installer.Install(context.Background(), path)
	qt.Assert(t, serum.Code(err), qt.Equals, envapi.ECodeProvisionFailed)
	qt.Assert(t, serum.Details(err), qt.Contains, [2]string{"exitStatus", "1"})
	qt.Assert(t, serum.Details(err), qt.Contains, [2]string{"action", "create"})
	qt.Assert(t, runner.Calls, qt.HasLen, 2)

	data, err := os.ReadFile(path)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, string(data), qt.Equals, original)
}

func TestInstallerResolveIsDry(t *testing.T) {
	original := "dependencies:\n  - python=3.11\n"
	path := writeSpec(t, original)
	runner := scriptedConda(`{"envs": []}`)
	installer := &conda.Installer{Runner: runner, Chooser: conda.FailClosedChooser{}, Defaults: fixtureDefaults}

	outcome, _, err := installer.Resolve(context.Background(), path)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, outcome.Action, qt.Equals, envapi.Action_Create)
	qt.Assert(t, outcome.Name, qt.Equals, "proj_env")
	qt.Assert(t, runner.Calls, qt.HasLen, 1)

	data, err := os.ReadFile(path)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, string(data), qt.Equals, original)
}

func TestInstallRejectsUnusableDefaultName(t *testing.T) {
	original := "dependencies:\n  - python=3.11\n"
	path := writeSpec(t, original)
	runner := scriptedConda(`{"envs": []}`)
	defaults := fixtureDefaults
	defaults.Name = "team/proj"
	installer := &conda.Installer{Runner: runner, Chooser: conda.FailClosedChooser{}, Defaults: defaults}

	_, err := installer.Install(context.Background(), path)
	qt.Assert(t, serum.Code(err), qt.Equals, envapi.ECodeArgument)
	qt.Assert(t, serum.Details(err), qt.Contains, [2]string{"name", "team/proj"})
	qt.Assert(t, runner.Calls, qt.HasLen, 0)

	data, err := os.ReadFile(path)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, string(data), qt.Equals, original)

	// A declared name makes the default irrelevant.
	_, err = installer.Install(context.Background(), writeSpec(t, "name: fresh\n"))
	qt.Assert(t, err, qt.IsNil)
}

func TestFindSpecFile(t *testing.T) {
	dir := t.TempDir()
	qt.Assert(t, os.WriteFile(filepath.Join(dir, "env.yml"), []byte("name: x\n"), 0644), qt.IsNil)
	qt.Assert(t, os.Mkdir(filepath.Join(dir, "environment.yml"), 0755), qt.IsNil)
	fsys := osfs.DirFS("/")

	path, found, err := conda.FindSpecFile(fsys, dir, conda.DefaultSpecFilenames)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, found, qt.IsTrue)
	qt.Assert(t, path, qt.Equals, filepath.Join(dir, "env.yml"))

	_, found, err = conda.FindSpecFile(fsys, dir, []string{"nope.yml"})
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, found, qt.IsFalse)

	abs := filepath.Join(dir, "env.yml")
	path, found, err = conda.FindSpecFile(fsys, "/elsewhere", []string{abs})
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, found, qt.IsTrue)
	qt.Assert(t, path, qt.Equals, abs)
}
