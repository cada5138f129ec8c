package subproc

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Scripted is a Runner that replays canned responses instead of running anything.
// It records every invocation, which makes it the usual Runner in tests.
type Scripted struct {
	Executable string
	// Responses are keyed by the space-joined args of an invocation.
	Responses map[string]Response
	// Default answers invocations with no matching response.
	// If nil, such invocations fail as if the tool were missing.
	Default *Response
	Calls   [][]string
}

// Response is the canned result of one Scripted invocation.
type Response struct {
	Stdout   string
	ExitCode int
}

var _ Runner = (*Scripted)(nil)

func (s *Scripted) Argv(args ...string) []string {
	exe := s.Executable
	if exe == "" {
		exe = "fake"
	}
	return append([]string{exe}, args...)
}

func (s *Scripted) Run(ctx context.Context, stdout io.Writer, args ...string) (int, error) {
	s.Calls = append(s.Calls, append([]string(nil), args...))
	resp, ok := s.Responses[strings.Join(args, " ")]
	if !ok && s.Default != nil {
		resp, ok = *s.Default, true
	}
	if !ok {
		return -1, fmt.Errorf("no scripted response for %q", strings.Join(args, " "))
	}
	if _, err := io.WriteString(stdout, resp.Stdout); err != nil {
		return -1, err
	}
	if resp.ExitCode != 0 {
		return resp.ExitCode, fmt.Errorf("exit status %d", resp.ExitCode)
	}
	return 0, nil
}
