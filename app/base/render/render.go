// Package render writes the markdown reports commands produce,
// styled when they go to a terminal and verbatim otherwise.
package render

import (
	"io"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

type Mode uint8

const (
	Mode_Markdown Mode = iota // Plain markdown, exactly as produced.
	Mode_ANSI                 // Styled with ANSI codes and wrapped to the terminal width.
)

const minWidth = 60

type fder interface {
	Fd() uintptr
}

// ModeFor picks Mode_ANSI when w is a terminal.
func ModeFor(w io.Writer) Mode {
	if f, ok := w.(fder); ok && term.IsTerminal(int(f.Fd())) {
		return Mode_ANSI
	}
	return Mode_Markdown
}

// Render writes markdown to w in the given mode.
// Options are applied after the defaults, so they can replace the auto-detected style.
func Render(markdown []byte, w io.Writer, m Mode, opts ...glamour.TermRendererOption) error {
	if m == Mode_Markdown {
		_, err := w.Write(markdown)
		return err
	}
	width := 80
	if f, ok := w.(fder); ok {
		if physical, _, err := term.GetSize(int(f.Fd())); err == nil && physical > 0 {
			width = physical
		}
	}
	if width < minWidth {
		width = minWidth
	}
	r, err := glamour.NewTermRenderer(append([]glamour.TermRendererOption{
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	}, opts...)...)
	if err != nil {
		return err
	}
	out, err := r.RenderBytes(markdown)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
