// Package testutil runs the envforge CLI in-process against a scratch project
// whose conda and python are shell scripts that record how they were called.
package testutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"

	envforgeapp "github.com/warptools/envforge/app"
)

// Project is a scratch project directory with fake tools.
// NewProject changes the process working directory into it, so tests using it cannot run in parallel.
type Project struct {
	Root      string // Project root and working directory.
	SourceDir string // Root/src.
	EnvRoot   string // Where new environments are placed.
	state     string // Logs and switches of the fake tools.
}

const fakeConda = `#!/bin/sh
echo "$*" >> '{{state}}/conda.log'
if [ "$1 $2" = "env list" ]; then
	if [ -f '{{state}}/list.fail' ]; then
		echo "conda is broken" >&2
		exit 1
	fi
	cat '{{state}}/registry.json'
	exit 0
fi
if [ -f '{{state}}/provision.fail' ]; then
	echo "solving environment failed" >&2
	exit 1
fi
exit 0
`

const fakeTool = `#!/bin/sh
echo "$*" >> '{{state}}/{{name}}.log'
exit 0
`

func NewProject(t *testing.T) *Project {
	t.Helper()
	root := t.TempDir()
	p := &Project{
		Root:      filepath.Join(root, "project"),
		SourceDir: filepath.Join(root, "project", "src"),
		EnvRoot:   filepath.Join(root, "conda", "envs"),
		state:     filepath.Join(root, "fake"),
	}
	for _, dir := range []string{p.SourceDir, p.EnvRoot, p.state, p.bin()} {
		qt.Assert(t, os.MkdirAll(dir, 0755), qt.IsNil)
	}
	p.writeScript(t, "conda", fakeConda)
	p.writeScript(t, "python", fakeTool)
	p.writeScript(t, "nbstripout", fakeTool)
	p.SetRegistry(t)

	t.Setenv("ENVFORGE_CONDA_EXE", filepath.Join(p.bin(), "conda"))
	t.Setenv("ENVFORGE_PYTHON", filepath.Join(p.bin(), "python"))
	t.Setenv("ENVFORGE_ENV_ROOT", p.EnvRoot)
	for _, key := range []string{"ENVFORGE_ENV_NAME", "ENVFORGE_SOURCE_DIR", "ENVFORGE_DEBUG", "CONDA_EXE", "CONDA_ROOT", "CONDA_PREFIX"} {
		t.Setenv(key, "")
	}
	t.Setenv("PATH", p.bin()+string(os.PathListSeparator)+os.Getenv("PATH"))

	pwd, err := os.Getwd()
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, os.Chdir(p.Root), qt.IsNil)
	t.Cleanup(func() { os.Chdir(pwd) })
	return p
}

func (p *Project) bin() string {
	return filepath.Join(p.state, "bin")
}

func (p *Project) writeScript(t *testing.T, name, tmpl string) {
	body := strings.NewReplacer("{{state}}", p.state, "{{name}}", name).Replace(tmpl)
	qt.Assert(t, os.WriteFile(filepath.Join(p.bin(), name), []byte(body), 0755), qt.IsNil)
}

// WriteSource writes a file into the source directory.
func (p *Project) WriteSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(p.SourceDir, name)
	qt.Assert(t, os.WriteFile(path, []byte(content), 0644), qt.IsNil)
	return path
}

// ReadSource reads a file from the source directory.
func (p *Project) ReadSource(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(p.SourceDir, name))
	qt.Assert(t, err, qt.IsNil)
	return string(data)
}

// SetRegistry sets the prefixes the fake conda reports as installed.
func (p *Project) SetRegistry(t *testing.T, prefixes ...string) {
	t.Helper()
	quoted := make([]string, len(prefixes))
	for i, prefix := range prefixes {
		quoted[i] = fmt.Sprintf("%q", prefix)
	}
	registry := fmt.Sprintf(`{"envs": [%s]}`, strings.Join(quoted, ", "))
	qt.Assert(t, os.WriteFile(filepath.Join(p.state, "registry.json"), []byte(registry), 0644), qt.IsNil)
}

// BreakListing makes the fake conda fail to list environments.
func (p *Project) BreakListing(t *testing.T) {
	qt.Assert(t, os.WriteFile(filepath.Join(p.state, "list.fail"), nil, 0644), qt.IsNil)
}

// BreakProvisioning makes the fake conda fail to create or update environments.
func (p *Project) BreakProvisioning(t *testing.T) {
	qt.Assert(t, os.WriteFile(filepath.Join(p.state, "provision.fail"), nil, 0644), qt.IsNil)
}

// Calls returns the argument lines a fake tool was called with, in order.
func (p *Project) Calls(t *testing.T, tool string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(p.state, tool+".log"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	qt.Assert(t, err, qt.IsNil)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

// Result is what one CLI invocation produced.
type Result struct {
	Stdout string
	Stderr string
	Err    error
}

// Run invokes the envforge CLI in-process.
//
// Warning: this mutates the shared App value to wire its IO streams.
func Run(t *testing.T, stdin string, args ...string) Result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	var in io.Reader = strings.NewReader(stdin)

	app := envforgeapp.App
	app.Reader = in
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(append([]string{"envforge"}, args...))

	t.Logf("Args: %v", args)
	for e := err; e != nil; e = errors.Unwrap(e) {
		t.Logf("Code: %s", serum.Code(e))
		t.Logf("Message: %s", serum.Message(e))
		t.Logf("Details: %v", serum.Details(e))
	}
	t.Logf("stdout:\n%s", stdout.String())
	t.Logf("stderr:\n%s", stderr.String())
	return Result{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}
