package conda

import (
	"path/filepath"

	"github.com/warptools/envforge/pkg/envapi"
)

const logTag = "conda"

// CandidateKind says how a spec's identity relates to the installed environments.
type CandidateKind uint8

const (
	// Candidate_NoMatch means nothing installed corresponds to the spec.
	Candidate_NoMatch CandidateKind = iota
	// Candidate_ExactMatch means an installed environment has exactly the declared identity.
	Candidate_ExactMatch
	// Candidate_NameMatches means one or more installed environments share the declared name,
	// but the spec does not pin down which one.
	Candidate_NameMatches
)

func (k CandidateKind) String() string {
	switch k {
	case Candidate_NoMatch:
		return "no match"
	case Candidate_ExactMatch:
		return "exact match"
	case Candidate_NameMatches:
		return "name matches"
	default:
		return "unknown"
	}
}

// Candidate is the result of Match.
type Candidate struct {
	Kind CandidateKind
	// Exact is set when Kind is Candidate_ExactMatch.
	Exact envapi.InstalledEnvironment
	// Matches is set when Kind is Candidate_NameMatches, in registry order.
	Matches []envapi.InstalledEnvironment
}

// ResolutionDefaults is the identity used for a spec that declares none.
type ResolutionDefaults struct {
	Name        string // Environment name derived from the project.
	InstallRoot string // Directory new environments are created under.
}

// effectiveName is the name a spec is matched by.
func effectiveName(spec *EnvironmentSpec, defaults ResolutionDefaults) string {
	switch {
	case spec.Name != "":
		return spec.Name
	case spec.Prefix != "":
		return filepath.Base(spec.Prefix)
	default:
		return defaults.Name
	}
}

// Match compares a spec's identity against a registry snapshot.
//
// A declared prefix is authoritative: the spec matches only the environment installed at that path.
// Otherwise every installed environment whose name equals the effective name is a candidate,
// and the user may have to choose between them.
func Match(spec *EnvironmentSpec, defaults ResolutionDefaults, registry envapi.RegistrySnapshot) Candidate {
	if spec.Prefix != "" {
		for _, env := range registry.Envs {
			if env.PrefixPath == spec.Prefix {
				return Candidate{Kind: Candidate_ExactMatch, Exact: env}
			}
		}
		return Candidate{Kind: Candidate_NoMatch}
	}

	name := effectiveName(spec, defaults)
	var matches []envapi.InstalledEnvironment
	for _, env := range registry.Envs {
		if env.Name == name {
			matches = append(matches, env)
		}
	}
	if len(matches) == 0 {
		return Candidate{Kind: Candidate_NoMatch}
	}
	return Candidate{Kind: Candidate_NameMatches, Matches: matches}
}
