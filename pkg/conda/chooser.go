package conda

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/warptools/envforge/pkg/envapi"
)

// Chooser asks an operator to pick one option of a Choice.
// Implementations return the index of the chosen option in Choice.Options.
type Chooser interface {
	Choose(ctx context.Context, c Choice) (int, error)
	// Interactive reports whether answers come from an operator.
	Interactive() bool
}

// Option is one answer to a Choice.
// An option with a Token is chosen by typing that token.
// An option without one is chosen by typing its index in Choice.Options.
type Option struct {
	Label string
	Token string
}

// Choice is a question with a fixed set of answers.
type Choice struct {
	Prompt  string
	Options []Option
	// Decline is the index of the option meaning "do not reuse anything".
	// Non-interactive choosers may pick it without asking.
	Decline int
}

func (c Choice) indexed() []int {
	var idxs []int
	for i, opt := range c.Options {
		if opt.Token == "" {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// Hint summarizes the accepted answers, e.g. "[y/n]" or "[0-2/n]".
func (c Choice) Hint() string {
	var parts []string
	if idxs := c.indexed(); len(idxs) == 1 {
		parts = append(parts, strconv.Itoa(idxs[0]))
	} else if len(idxs) > 1 {
		parts = append(parts, fmt.Sprintf("%d-%d", idxs[0], idxs[len(idxs)-1]))
	}
	for _, opt := range c.Options {
		if opt.Token != "" {
			parts = append(parts, opt.Token)
		}
	}
	return "[" + strings.Join(parts, "/") + "]"
}

// Parse maps an answer to an option index.
// Tokens are matched case-insensitively; surrounding whitespace is ignored.
//
// Errors:
//
//   - envforge-error-invalid-choice -- when the answer selects no option
func (c Choice) Parse(answer string) (int, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return 0, envapi.ErrorInvalidChoice(answer, "an answer is required")
	}
	for i, opt := range c.Options {
		if opt.Token != "" && strings.EqualFold(opt.Token, answer) {
			return i, nil
		}
	}
	n, err := strconv.Atoi(answer)
	if err != nil {
		return 0, envapi.ErrorInvalidChoice(answer, "expected one of "+c.Hint())
	}
	if n < 0 || n >= len(c.Options) || c.Options[n].Token != "" {
		return 0, envapi.ErrorInvalidChoice(answer, "out of range, expected one of "+c.Hint())
	}
	return n, nil
}

// PromptChooser asks on a text stream and reads answers line by line.
// It asks again until an answer is valid.
type PromptChooser struct {
	in    *bufio.Reader
	out   io.Writer
	index lipgloss.Style
	hint  lipgloss.Style
	warn  lipgloss.Style
}

var _ Chooser = (*PromptChooser)(nil)

func NewPromptChooser(in io.Reader, out io.Writer) *PromptChooser {
	r := lipgloss.NewRenderer(out)
	return &PromptChooser{
		in:    bufio.NewReader(in),
		out:   out,
		index: r.NewStyle().Bold(true),
		hint:  r.NewStyle().Foreground(lipgloss.Color("6")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

// Choose blocks until a valid answer is read.
//
// Errors:
//
//   - envforge-error-io -- when the input ends or cannot be read before a valid answer
func (p *PromptChooser) Choose(ctx context.Context, c Choice) (int, error) {
	if len(c.indexed()) > 0 {
		for i, opt := range c.Options {
			key := opt.Token
			if key == "" {
				key = strconv.Itoa(i)
			}
			fmt.Fprintf(p.out, "  %s %s\n", p.index.Render("["+key+"]"), opt.Label)
		}
	}
	for {
		fmt.Fprintf(p.out, "%s %s: ", c.Prompt, p.hint.Render(c.Hint()))
		line, readErr := p.in.ReadString('\n')
		if readErr != nil && !(errors.Is(readErr, io.EOF) && line != "") {
			fmt.Fprintln(p.out)
			return 0, envapi.ErrorIo("reading operator answer", "stdin", readErr)
		}
		idx, err := c.Parse(line)
		if err == nil {
			return idx, nil
		}
		fmt.Fprintln(p.out, p.warn.Render(err.Error()))
		if readErr != nil {
			return 0, envapi.ErrorIo("reading operator answer", "stdin", readErr)
		}
	}
}

func (p *PromptChooser) Interactive() bool { return true }

// DeclineChooser never reuses anything: it always picks Choice.Decline.
type DeclineChooser struct{}

var _ Chooser = DeclineChooser{}

func (DeclineChooser) Choose(ctx context.Context, c Choice) (int, error) {
	return c.Decline, nil
}

func (DeclineChooser) Interactive() bool { return false }

// FailClosedChooser refuses every choice.
// It suits unattended runs where guessing is worse than stopping.
type FailClosedChooser struct{}

var _ Chooser = FailClosedChooser{}

// Errors:
//
//   - envforge-error-choice-required -- always
func (FailClosedChooser) Choose(ctx context.Context, c Choice) (int, error) {
	return 0, envapi.ErrorChoiceRequired(c.Prompt)
}

func (FailClosedChooser) Interactive() bool { return false }
