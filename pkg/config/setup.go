package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/serum-errors/go-serum"

	"github.com/warptools/envforge/pkg/envapi"
)

/*
	Env vars and the working directory are process-wide and can change at runtime.
	Reading them at arbitrary points is a likely source of confusing behavior,
	so they're snapshotted once into a State, and everything downstream
	derives its configuration from that value.
*/

type State struct {
	Env              map[string]string
	HomeDirectory    string
	WorkingDirectory string
}

// LoadState snapshots the process environment and working directory,
// then fills in any keys not set in the process from the project's dotenv file.
// LoadState will halt on the first error.
//
// Errors:
//
//   - envforge-error-initialization -- when the working directory or home directory cannot be found
//   - envforge-error-config-parse -- when the project dotenv file is malformed
func LoadState() (State, error) {
	state := State{
		Env: make(map[string]string, len(envKeys)),
	}
	for _, key := range envKeys {
		if v, ok := os.LookupEnv(key); ok {
			state.Env[key] = v
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return State{}, serum.Error(envapi.ECodeInitialization,
			serum.WithMessageLiteral("unable to get working directory"),
			serum.WithCause(err),
		)
	}
	state.WorkingDirectory = cwd
	home, err := os.UserHomeDir()
	if err != nil {
		return State{}, serum.Error(envapi.ECodeInitialization,
			serum.WithMessageLiteral("unable to find user home directory"),
			serum.WithCause(err),
		)
	}
	state.HomeDirectory = home
	if err := MergeProjectEnv(&state, filepath.Join(cwd, ProjectEnvFilename)); err != nil {
		return State{}, err
	}
	return state, nil
}

// MergeProjectEnv reads a dotenv file and copies recognized keys into the state,
// unless the state already has a value for them.
// A missing file is not an error.
//
// Errors:
//
//   - envforge-error-config-parse -- when the dotenv file cannot be read or parsed
func MergeProjectEnv(state *State, path string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return envapi.ErrorConfigParse(path, "invalid dotenv file", err)
	}
	if state.Env == nil {
		state.Env = make(map[string]string, len(envKeys))
	}
	for _, key := range envKeys {
		if _, exists := state.Env[key]; exists {
			continue
		}
		if v, ok := values[key]; ok {
			state.Env[key] = v
		}
	}
	return nil
}
