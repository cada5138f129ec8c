package config

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/warptools/envforge/pkg/conda"
)

const (
	DefaultCondaExecutable  = "conda"
	DefaultPythonExecutable = "python"
	DefaultSourceDir        = "src"
	// fallbackProjectName is used when the project directory name has no usable characters.
	fallbackProjectName = "project_env"
)

// CondaExecutable returns the environment manager to invoke.
func CondaExecutable(state State) string {
	if v := state.Env[EnvEnvforgeCondaExe]; v != "" {
		return v
	}
	if v := state.Env[EnvCondaExe]; v != "" {
		return v
	}
	return DefaultCondaExecutable
}

// PythonExecutable returns the interpreter used for pip, piptools and pytest.
func PythonExecutable(state State) string {
	if v := state.Env[EnvEnvforgePython]; v != "" {
		return v
	}
	return DefaultPythonExecutable
}

// SourceDir returns the absolute path of the project source directory.
// Environment spec files and requirements files are looked up here.
func SourceDir(state State) string {
	dir := DefaultSourceDir
	if v := state.Env[EnvEnvforgeSourceDir]; v != "" {
		dir = v
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(state.WorkingDirectory, dir)
}

// ProjectName derives an environment-safe name from the project directory.
// Letters are lowercased; runs of anything other than letters, digits and
// underscores become a single underscore.
func ProjectName(state State) string {
	base := filepath.Base(state.WorkingDirectory)
	var b strings.Builder
	lastUnderscore := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return fallbackProjectName
	}
	return name
}

// InstallRoot returns the directory under which new environments are created
// when a spec file does not declare a prefix.
//
// In order of preference: an explicit override; the envs directory of the
// conda root; the envs directory implied by the active environment; the
// per-user conda envs directory.
func InstallRoot(state State) string {
	if v := state.Env[EnvEnvforgeEnvRoot]; v != "" {
		return filepath.Clean(v)
	}
	if v := state.Env[EnvCondaRoot]; v != "" {
		return filepath.Join(v, "envs")
	}
	if v := state.Env[EnvCondaPrefix]; v != "" {
		active := filepath.Clean(v)
		parent := filepath.Dir(active)
		if filepath.Base(parent) == "envs" {
			// A named environment is active; its siblings live here.
			return parent
		}
		// The base environment is active.
		return filepath.Join(active, "envs")
	}
	return filepath.Join(state.HomeDirectory, ".conda", "envs")
}

// ResolutionDefaults builds the identity used when a spec file declares neither name nor prefix.
func ResolutionDefaults(state State) conda.ResolutionDefaults {
	name := state.Env[EnvEnvforgeEnvName]
	if name == "" {
		name = ProjectName(state)
	}
	return conda.ResolutionDefaults{
		Name:        name,
		InstallRoot: InstallRoot(state),
	}
}
