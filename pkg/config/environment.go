package config

const (
	// EnvEnvforgeCondaExe overrides the environment manager executable.
	EnvEnvforgeCondaExe = "ENVFORGE_CONDA_EXE"
	// EnvCondaExe is set by conda itself when a conda shell hook is active.
	EnvCondaExe = "CONDA_EXE"
	// EnvEnvforgePython overrides the python interpreter used for pip, piptools and pytest.
	EnvEnvforgePython = "ENVFORGE_PYTHON"
	// EnvEnvforgeSourceDir overrides the project source directory, relative to the project root.
	EnvEnvforgeSourceDir = "ENVFORGE_SOURCE_DIR"
	// EnvEnvforgeEnvName overrides the default environment name.
	EnvEnvforgeEnvName = "ENVFORGE_ENV_NAME"
	// EnvEnvforgeEnvRoot overrides the directory new environments are installed under.
	EnvEnvforgeEnvRoot = "ENVFORGE_ENV_ROOT"
	// EnvCondaRoot is the conda installation root, when known.
	EnvCondaRoot = "CONDA_ROOT"
	// EnvCondaPrefix is the prefix of the currently active conda environment.
	EnvCondaPrefix = "CONDA_PREFIX"
)

// ProjectEnvFilename is the dotenv file consulted in the project root.
// Values in the process environment take precedence over it.
const ProjectEnvFilename = ".env"

// NOTE: keep this up to date or the config loader won't load them
var envKeys = []string{
	EnvEnvforgeCondaExe,
	EnvCondaExe,
	EnvEnvforgePython,
	EnvEnvforgeSourceDir,
	EnvEnvforgeEnvName,
	EnvEnvforgeEnvRoot,
	EnvCondaRoot,
	EnvCondaPrefix,
}
