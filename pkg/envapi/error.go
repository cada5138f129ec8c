package envapi

import (
	"fmt"
	"strings"

	"github.com/serum-errors/go-serum"
)

const (
	ECodeConfigParse         = "envforge-error-config-parse"
	ECodeConflictingIdentity = "envforge-error-conflicting-identity"
	ECodeRegistryUnavailable = "envforge-error-registry-unavailable"
	ECodeProvisionFailed     = "envforge-error-provision-failed"
	ECodeInvalidChoice       = "envforge-error-invalid-choice"
	ECodeChoiceRequired      = "envforge-error-choice-required"
	ECodeCommandFailed       = "envforge-error-command-failed"
	ECodeGit                 = "envforge-error-git"
	ECodeIo                  = "envforge-error-io"
	ECodeSerialization       = "envforge-error-serialization"
	ECodeMissing             = "envforge-error-missing"
	ECodeArgument            = "envforge-error-invalid-argument"
	ECodeInitialization      = "envforge-error-initialization"
	ECodeInternal            = "envforge-error-internal"
	ECodeUnknown             = "envforge-error-unknown"
)

// ErrorUnknown is returned when an unknown error occurs
//
// Errors:
//
//   - envforge-error-unknown --
func ErrorUnknown(msgTmpl string, cause error) error {
	return serum.Errorf(ECodeUnknown, "%s: %w", msgTmpl, cause)
}

// ErrorInternal is for errors an end user has no viable intervention for.
// Prefer more specific errors.
//
// Errors:
//
//   - envforge-error-internal --
func ErrorInternal(msgTmpl string, cause error) error {
	return serum.Errorf(ECodeInternal, "%s: %w", msgTmpl, cause)
}

// ErrorConfigParse is returned when an environment spec file is malformed,
// empty, or holds values of the wrong shape.
//
// Errors:
//
//   - envforge-error-config-parse --
func ErrorConfigParse(path string, reason string, cause error) error {
	var result error
	if cause != nil {
		result = serum.Errorf(ECodeConfigParse,
			"cannot parse environment file %q: %s: %w", path, reason, cause)
	} else {
		result = serum.Errorf(ECodeConfigParse,
			"cannot parse environment file %q: %s", path, reason)
	}
	addDetails(result, [][2]string{
		{"path", path},
		{"reason", reason},
	})
	return result
}

// ErrorConflictingIdentity is returned when an environment spec declares
// both a name and a prefix that point at different environments.
//
// Errors:
//
//   - envforge-error-conflicting-identity --
func ErrorConflictingIdentity(path, name, prefix string) error {
	return serum.Error(ECodeConflictingIdentity,
		serum.WithMessageTemplate("environment file {{path|q}} declares name {{name|q}} and prefix {{prefix|q}}, which designate different environments"),
		serum.WithDetail("path", path),
		serum.WithDetail("name", name),
		serum.WithDetail("prefix", prefix),
	)
}

// ErrorRegistryUnavailable is returned when the environment manager cannot
// list installed environments.
// An exitCode of -1 means the process never ran or never exited normally.
//
// Errors:
//
//   - envforge-error-registry-unavailable --
func ErrorRegistryUnavailable(args []string, exitCode int, cause error) error {
	cmdline := strings.Join(args, " ")
	if cause == nil {
		cause = fmt.Errorf("exit status %d", exitCode)
	}
	result := serum.Errorf(ECodeRegistryUnavailable,
		"cannot list installed environments (cmd=%q; exit_status=%d); the environment manager may not be installed: %w",
		cmdline, exitCode, cause)
	addDetails(result, [][2]string{
		{"cmd", cmdline},
		{"exitStatus", fmt.Sprint(exitCode)},
	})
	return result
}

// ErrorProvisionFailed is returned when an environment create or update
// exits unsuccessfully.
//
// Errors:
//
//   - envforge-error-provision-failed --
func ErrorProvisionFailed(action Action, args []string, exitCode int, cause error) error {
	cmdline := strings.Join(args, " ")
	if cause == nil {
		cause = fmt.Errorf("exit status %d", exitCode)
	}
	result := serum.Errorf(ECodeProvisionFailed,
		"environment %s failed (cmd=%q; exit_status=%d): %w", action, cmdline, exitCode, cause)
	addDetails(result, [][2]string{
		{"action", string(action)},
		{"cmd", cmdline},
		{"exitStatus", fmt.Sprint(exitCode)},
	})
	return result
}

// ErrorInvalidChoice is returned when an operator answer does not select
// any of the offered options.
// Choosers consume this error by asking again; it is not expected to escape them.
//
// Errors:
//
//   - envforge-error-invalid-choice --
func ErrorInvalidChoice(answer string, reason string) error {
	return serum.Error(ECodeInvalidChoice,
		serum.WithMessageTemplate("invalid answer {{answer|q}}: {{reason}}"),
		serum.WithDetail("answer", answer),
		serum.WithDetail("reason", reason),
	)
}

// ErrorChoiceRequired is returned by non-interactive choosers that refuse to
// guess on behalf of an operator.
//
// Errors:
//
//   - envforge-error-choice-required --
func ErrorChoiceRequired(prompt string) error {
	return serum.Error(ECodeChoiceRequired,
		serum.WithMessageTemplate("an operator choice is required but prompting is disabled: {{prompt}}"),
		serum.WithDetail("prompt", prompt),
	)
}

// ErrorCommandFailed is returned when a passthrough tool exits unsuccessfully.
//
// Errors:
//
//   - envforge-error-command-failed --
func ErrorCommandFailed(args []string, exitCode int, cause error) error {
	cmdline := strings.Join(args, " ")
	if cause == nil {
		cause = fmt.Errorf("exit status %d", exitCode)
	}
	result := serum.Errorf(ECodeCommandFailed,
		"command failed (cmd=%q; exit_status=%d): %w", cmdline, exitCode, cause)
	addDetails(result, [][2]string{
		{"cmd", cmdline},
		{"exitStatus", fmt.Sprint(exitCode)},
	})
	return result
}

// ErrorGit is returned when a git repository cannot be inspected
//
// Errors:
//
//   - envforge-error-git --
func ErrorGit(message string, cause error) error {
	if cause == nil {
		return serum.Error(ECodeGit, serum.WithMessageLiteral(message))
	}
	return serum.Errorf(ECodeGit, "%s: %w", message, cause)
}

// ErrorIo wraps generic I/O errors from the Go stdlib
//
// Errors:
//
//   - envforge-error-io --
func ErrorIo(context string, path string, cause error) error {
	result := serum.Errorf(ECodeIo,
		"io error: %s: %w", context, cause)
	addDetails(result, [][2]string{{"context", context}, {"path", path}})
	return result
}

// ErrorSerialization is returned when a serialization or deserialization error occurs
//
// Errors:
//
//   - envforge-error-serialization --
func ErrorSerialization(context string, cause error) error {
	result := serum.Errorf(ECodeSerialization,
		"serialization error: %s: %w", context, cause)
	addDetails(result, [][2]string{
		{"context", context},
	})
	return result
}

// ErrorFileMissing is used when an expected file does not exist
//
// Errors:
//
//   - envforge-error-missing --
func ErrorFileMissing(path string) error {
	return serum.Error(ECodeMissing,
		serum.WithMessageTemplate("file missing at path: {{path|q}}"),
		serum.WithDetail("path", path),
	)
}

// ErrorArgument is returned when a command line argument or setting is unusable.
//
// Errors:
//
//   - envforge-error-invalid-argument --
func ErrorArgument(message string, deets ...[2]string) error {
	opts := make([]serum.WithConstruction, 0, len(deets)+1)
	for _, d := range deets {
		opts = append(opts, serum.WithDetail(d[0], d[1]))
	}
	opts = append(opts, serum.WithMessageLiteral(message))
	return serum.Error(ECodeArgument, opts...)
}

// addDetails works around serum not supporting details on serum.Errorf values.
func addDetails(err error, details [][2]string) {
	s := err.(*serum.ErrorValue)
	s.Data.Details = append(s.Data.Details, details...)
}
