package conda

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/warptools/envforge/pkg/envapi"
	"github.com/warptools/envforge/pkg/logging"
)

type resolutionState uint8

const (
	state_Start resolutionState = iota
	state_ExactResolve
	state_AmbiguousResolve
	state_UserChoicePending
	state_Resolved
	state_Failed
)

func (s resolutionState) String() string {
	switch s {
	case state_Start:
		return "start"
	case state_ExactResolve:
		return "exact-resolve"
	case state_AmbiguousResolve:
		return "ambiguous-resolve"
	case state_UserChoicePending:
		return "user-choice-pending"
	case state_Resolved:
		return "resolved"
	case state_Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// resolver holds one run of the resolution state machine.
type resolver struct {
	spec      *EnvironmentSpec
	defaults  ResolutionDefaults
	candidate Candidate
	chooser   Chooser

	state   resolutionState
	outcome envapi.ResolutionOutcome
	err     error
}

// Resolve decides whether to create or update an environment, and with which identity.
//
// An exact match is updated in place. No match creates a new environment from
// the spec's identity, falling back to defaults for whatever the spec leaves out.
// Name-only matches are ambiguous, and the chooser decides:
// a single match is offered for reuse with a yes/no question,
// several matches are listed by index alongside an option to create a new one.
//
// Errors:
//
//   - envforge-error-choice-required -- when the chooser refuses to decide
//   - envforge-error-io -- when the chooser cannot read an answer
//   - envforge-error-internal -- when the chooser returns an index it did not offer
func Resolve(ctx context.Context, spec *EnvironmentSpec, defaults ResolutionDefaults, candidate Candidate, chooser Chooser) (envapi.ResolutionOutcome, error) {
	r := &resolver{
		spec:      spec,
		defaults:  defaults,
		candidate: candidate,
		chooser:   chooser,
		state:     state_Start,
		outcome:   envapi.ResolutionOutcome{SpecFile: spec.Path},
	}
	for r.state != state_Resolved && r.state != state_Failed {
		prev := r.state
		r.step(ctx)
		logging.Ctx(ctx).Debug(logTag, "resolution: %s -> %s", prev, r.state)
	}
	if r.state == state_Failed {
		return envapi.ResolutionOutcome{}, r.err
	}
	return r.outcome, nil
}

func (r *resolver) step(ctx context.Context) {
	switch r.state {
	case state_Start:
		switch r.candidate.Kind {
		case Candidate_ExactMatch:
			r.state = state_ExactResolve
		case Candidate_NameMatches:
			if len(r.candidate.Matches) == 1 && r.spec.Prefix == "" {
				r.state = state_AmbiguousResolve
			} else {
				r.state = state_UserChoicePending
			}
		default:
			r.create()
		}

	case state_ExactResolve:
		r.update(r.candidate.Exact)

	case state_AmbiguousResolve:
		env := r.candidate.Matches[0]
		choice := Choice{
			Prompt: fmt.Sprintf("Found an existing environment %q at %s. Reuse it?", env.Name, env.PrefixPath),
			Options: []Option{
				{Label: "reuse " + env.PrefixPath, Token: "y"},
				{Label: "create a new environment", Token: "n"},
			},
			Decline: 1,
		}
		idx, ok := r.choose(ctx, choice)
		switch {
		case !ok:
		case idx == 0:
			r.update(env)
		default:
			r.create()
		}

	case state_UserChoicePending:
		matches := r.candidate.Matches
		options := make([]Option, 0, len(matches)+1)
		for _, env := range matches {
			options = append(options, Option{Label: env.PrefixPath})
		}
		options = append(options, Option{Label: "create a new environment", Token: "n"})
		choice := Choice{
			Prompt:  fmt.Sprintf("Found %d existing environments named %q. Pick one to reuse, or create a new one", len(matches), matches[0].Name),
			Options: options,
			Decline: len(matches),
		}
		idx, ok := r.choose(ctx, choice)
		switch {
		case !ok:
		case idx == len(matches):
			r.create()
		default:
			r.update(matches[idx])
		}
	}
}

// choose asks the chooser and validates its answer.
// On failure the machine moves to the failed state and ok is false.
func (r *resolver) choose(ctx context.Context, c Choice) (idx int, ok bool) {
	idx, err := r.chooser.Choose(ctx, c)
	if err != nil {
		r.fail(err)
		return 0, false
	}
	if idx < 0 || idx >= len(c.Options) {
		r.fail(envapi.ErrorInternal("chooser returned an option that was not offered",
			fmt.Errorf("index %d of %d options", idx, len(c.Options))))
		return 0, false
	}
	if r.chooser.Interactive() {
		r.outcome.Prompted = true
	}
	return idx, true
}

func (r *resolver) update(env envapi.InstalledEnvironment) {
	r.outcome.Action = envapi.Action_Update
	r.outcome.Name = env.Name
	r.outcome.Prefix = env.PrefixPath
	r.state = state_Resolved
}

func (r *resolver) create() {
	name := effectiveName(r.spec, r.defaults)
	prefix := r.spec.Prefix
	if prefix == "" {
		prefix = filepath.Join(r.defaults.InstallRoot, name)
	}
	r.outcome.Action = envapi.Action_Create
	r.outcome.Name = name
	r.outcome.Prefix = prefix
	r.state = state_Resolved
}

func (r *resolver) fail(err error) {
	r.err = err
	r.state = state_Failed
}

// ApplyOutcome records a resolved identity on the spec, ready for WriteSpec.
func ApplyOutcome(spec *EnvironmentSpec, outcome envapi.ResolutionOutcome) {
	spec.SetIdentity(outcome.Name, outcome.Prefix)
}
