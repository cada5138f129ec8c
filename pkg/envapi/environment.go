package envapi

import "path/filepath"

// Action says what provisioning will do with a resolved environment.
type Action string

const (
	Action_Create Action = "create"
	Action_Update Action = "update"
)

// InstalledEnvironment is a read-only view of one environment the manager knows about.
// Name is always the final segment of PrefixPath.
type InstalledEnvironment struct {
	Name       string
	PrefixPath string
}

// InstalledEnvironmentAt builds the registry entry for an absolute prefix path.
func InstalledEnvironmentAt(prefixPath string) InstalledEnvironment {
	clean := filepath.Clean(prefixPath)
	return InstalledEnvironment{
		Name:       filepath.Base(clean),
		PrefixPath: clean,
	}
}

// RegistrySnapshot holds installed environments in the order the manager listed them.
type RegistrySnapshot struct {
	Envs []InstalledEnvironment
}

// ResolutionOutcome is the authoritative decision for one environment spec file.
// Provisioning and persistence both read identity from here and nowhere else.
type ResolutionOutcome struct {
	Action   Action
	Name     string
	Prefix   string
	SpecFile string
	Prompted bool // True if an operator had to answer a question to reach this outcome.
}
