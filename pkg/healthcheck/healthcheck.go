// Package healthcheck inspects the machine for problems that would stop envforge from working.
package healthcheck

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/serum-errors/go-serum"

	"github.com/warptools/envforge/pkg/envapi"
	"github.com/warptools/envforge/pkg/logging"
)

// Checks report their verdict through these codes.
const (
	CodeRunOkay      = "envforge-healthcheck-okay"
	CodeRunFailure   = "envforge-healthcheck-fail"
	CodeRunAmbiguous = "envforge-healthcheck-ambiguous"
)

type Status int

const (
	// StatusNone is the zero value and used for unset status value
	StatusNone Status = iota
	StatusOkay
	StatusFail
	StatusAmbiguous
	StatusUnknown
)

// Characters used to display status
const (
	StatusCharacter_None      = "∅"
	StatusCharacter_Okay      = "✔"
	StatusCharacter_Failure   = "✘"
	StatusCharacter_Ambiguous = "?"
	StatusCharacter_Unknown   = "!"
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return StatusCharacter_None
	case StatusOkay:
		return StatusCharacter_Okay
	case StatusAmbiguous:
		return StatusCharacter_Ambiguous
	case StatusFail:
		return StatusCharacter_Failure
	default:
		return StatusCharacter_Unknown
	}
}

// Check is one thing to look at.
type Check interface {
	// Run returns a serum error carrying a human readable message and one of the CodeRun codes.
	// It should never return nil.
	//
	// Errors:
	//
	//   - envforge-healthcheck-okay --
	//   - envforge-healthcheck-fail --
	//   - envforge-healthcheck-ambiguous --
	Run(context.Context) error
	// String is the header the result is printed under.
	String() string
}

type HealthCheck struct {
	Checks  []Check
	Results []serum.ErrorInterfaceWithMessage
}

// Run executes every check in order. Check outcomes are stored in Results, never returned.
func (h *HealthCheck) Run(ctx context.Context) {
	log := logging.Ctx(ctx)
	h.Results = make([]serum.ErrorInterfaceWithMessage, 0, len(h.Checks))
	for _, check := range h.Checks {
		log.Debug("", "healthcheck: %s", check)
		err := check.Run(ctx)
		result, ok := err.(serum.ErrorInterfaceWithMessage)
		if !ok {
			result = serum.Errorf(CodeRunFailure, "check has invalid result: %w", err).(serum.ErrorInterfaceWithMessage)
		}
		h.Results = append(h.Results, result)
	}
}

// Failed reports whether any check failed.
func (h *HealthCheck) Failed() bool {
	for _, r := range h.Results {
		if StatusOf(r) == StatusFail {
			return true
		}
	}
	return false
}

// Fprint writes one status line per check.
//
// Errors:
//
//   - envforge-error-internal -- when the health check was not run before printing results
func (h *HealthCheck) Fprint(w io.Writer) error {
	if len(h.Checks) != len(h.Results) {
		return serum.Error(envapi.ECodeInternal,
			serum.WithMessageLiteral("health check must run before printing results"),
		)
	}
	headers := make([]string, 0, len(h.Checks))
	width := 0
	for _, check := range h.Checks {
		header := check.String()
		headers = append(headers, header)
		if len(header) > width {
			width = len(header)
		}
	}
	for i, result := range h.Results {
		status := StatusOf(result)
		fmt.Fprintf(w, " %s  %-*s\t%s\n", TermColor(status).Sprint(status), width, headers[i], result.Message())
	}
	return nil
}

func TermColor(s Status) *color.Color {
	result := color.New()
	switch s {
	case StatusNone:
		return result.Add(color.Reset)
	case StatusOkay:
		return result.Add(color.FgHiGreen, color.Bold)
	case StatusAmbiguous:
		return result.Add(color.FgHiYellow, color.Bold)
	case StatusFail:
		return result.Add(color.FgHiRed, color.Bold)
	default:
		return result.Add(color.FgHiMagenta, color.Bold)
	}
}

// StatusOf converts a check result to a Status.
func StatusOf(err error) Status {
	if err == nil {
		return StatusNone
	}
	if _, ok := err.(serum.ErrorInterface); !ok {
		return StatusNone
	}
	switch serum.Code(err) {
	case CodeRunFailure:
		return StatusFail
	case CodeRunOkay:
		return StatusOkay
	case CodeRunAmbiguous:
		return StatusAmbiguous
	default:
		return StatusUnknown
	}
}
