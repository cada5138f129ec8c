package config_test

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"

	"github.com/warptools/envforge/pkg/config"
)

func TestInstallRoot(t *testing.T) {
	home := "/home/user"
	for _, tc := range []struct {
		name   string
		env    map[string]string
		expect string
	}{
		{"override", map[string]string{config.EnvEnvforgeEnvRoot: "/srv/envs/", config.EnvCondaRoot: "/opt/conda"}, "/srv/envs"},
		{"conda-root", map[string]string{config.EnvCondaRoot: "/opt/conda"}, "/opt/conda/envs"},
		{"named-env-active", map[string]string{config.EnvCondaPrefix: "/opt/conda/envs/work"}, "/opt/conda/envs"},
		{"base-active", map[string]string{config.EnvCondaPrefix: "/opt/conda"}, "/opt/conda/envs"},
		{"nothing", map[string]string{}, "/home/user/.conda/envs"},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			state := config.State{Env: tc.env, HomeDirectory: home}
			qt.Assert(t, config.InstallRoot(state), qt.Equals, tc.expect)
		})
	}
}

func TestProjectName(t *testing.T) {
	for dir, expect := range map[string]string{
		"/work/My Project":   "my_project",
		"/work/data-pipe.v2": "data_pipe_v2",
		"/work/__x__":        "x",
		"/work/---":          "project_env",
	} {
		qt.Check(t, config.ProjectName(config.State{WorkingDirectory: dir}), qt.Equals, expect)
	}
}

func TestResolutionDefaults(t *testing.T) {
	state := config.State{
		Env:              map[string]string{config.EnvCondaRoot: "/opt/conda"},
		WorkingDirectory: "/work/Demo",
	}
	d := config.ResolutionDefaults(state)
	qt.Assert(t, d.Name, qt.Equals, "demo")
	qt.Assert(t, d.InstallRoot, qt.Equals, "/opt/conda/envs")

	state.Env[config.EnvEnvforgeEnvName] = "custom"
	qt.Assert(t, config.ResolutionDefaults(state).Name, qt.Equals, "custom")
}

func TestExecutablesAndSourceDir(t *testing.T) {
	state := config.State{Env: map[string]string{}, WorkingDirectory: "/work/demo"}
	qt.Assert(t, config.CondaExecutable(state), qt.Equals, "conda")
	qt.Assert(t, config.PythonExecutable(state), qt.Equals, "python")
	qt.Assert(t, config.SourceDir(state), qt.Equals, "/work/demo/src")

	state.Env[config.EnvCondaExe] = "/opt/conda/bin/conda"
	qt.Assert(t, config.CondaExecutable(state), qt.Equals, "/opt/conda/bin/conda")
	state.Env[config.EnvEnvforgeCondaExe] = "/usr/local/bin/mamba"
	qt.Assert(t, config.CondaExecutable(state), qt.Equals, "/usr/local/bin/mamba")

	state.Env[config.EnvEnvforgeSourceDir] = "python"
	qt.Assert(t, config.SourceDir(state), qt.Equals, "/work/demo/python")
	state.Env[config.EnvEnvforgeSourceDir] = "/elsewhere/src/"
	qt.Assert(t, config.SourceDir(state), qt.Equals, "/elsewhere/src")
}

func TestMergeProjectEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.ProjectEnvFilename)

	t.Run("missing-file", func(t *testing.T) {
		state := config.State{}
		qt.Assert(t, config.MergeProjectEnv(&state, path), qt.IsNil)
	})

	t.Run("process-wins", func(t *testing.T) {
		qt.Assert(t, os.WriteFile(path, []byte("ENVFORGE_ENV_NAME=fromfile\nENVFORGE_PYTHON=python3.11\nUNRELATED=1\n"), 0644), qt.IsNil)
		state := config.State{Env: map[string]string{config.EnvEnvforgeEnvName: "fromprocess"}}
		qt.Assert(t, config.MergeProjectEnv(&state, path), qt.IsNil)
		qt.Assert(t, state.Env, qt.DeepEquals, map[string]string{
			config.EnvEnvforgeEnvName: "fromprocess",
			config.EnvEnvforgePython:  "python3.11",
		})
	})

	t.Run("malformed", func(t *testing.T) {
		qt.Assert(t, os.WriteFile(path, []byte("ENVFORGE_ENV_NAME='unterminated\n"), 0644), qt.IsNil)
		err := config.MergeProjectEnv(&config.State{}, path)
		qt.Assert(t, serum.Code(err), qt.Equals, "envforge-error-config-parse")
	})
}
