package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

type ctxKey struct{}

type Logger struct {
	out     io.Writer
	err     io.Writer
	json    bool
	quiet   bool
	verbose bool
}

func DefaultLogger() *Logger {
	return &Logger{
		out: os.Stdout,
		err: os.Stderr,
	}
}

// NewLogger builds a logger for the given streams.
// json suppresses all human-oriented output, since stdout is then reserved for API output.
// quiet suppresses Info; verbose enables Debug.
func NewLogger(out, err io.Writer, json, quiet, verbose bool) *Logger {
	return &Logger{
		out:     out,
		err:     err,
		json:    json,
		quiet:   quiet,
		verbose: verbose,
	}
}

// Ctx returns the logger stored in ctx.
// If there is none, a logger that writes to the process's standard streams is returned.
func Ctx(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return DefaultLogger()
}

// WithContext returns a copy of ctx that carries l.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	if existing, ok := ctx.Value(ctxKey{}).(*Logger); ok && existing == l {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, l)
}

// ErrWriter is where diagnostics of child processes should be passed through to.
func (l *Logger) ErrWriter() io.Writer {
	return l.err
}

// Out prints a line of primary output.
func (l *Logger) Out(f string, args ...interface{}) {
	if l.json {
		return
	}
	fmt.Fprintf(l.out, f+"\n", args...)
}

func (l *Logger) Info(tag string, f string, args ...interface{}) {
	if l.quiet || l.json {
		return
	}
	print(l.err, color.New(color.FgHiGreen), tag, f, args...)
}

func (l *Logger) Warn(tag string, f string, args ...interface{}) {
	if l.json {
		return
	}
	print(l.err, color.New(color.FgHiYellow), tag, f, args...)
}

func (l *Logger) Debug(tag string, f string, args ...interface{}) {
	if l.verbose {
		print(l.err, color.New(color.FgGreen), tag, f, args...)
	}
}

func print(w io.Writer, tagColor *color.Color, tag, f string, args ...interface{}) {
	str := fmt.Sprintf(f, args...)
	for _, line := range strings.Split(str, "\n") {
		fmt.Fprintf(w, "%s  %s\n",
			tagColor.Sprint(tag),
			color.WhiteString(line))
	}
}

// Writer prefixes every line written to it with a tag, for relaying the output of child processes.
type Writer struct {
	pipe io.Writer
	tag  string
}

func (l *Logger) InfoWriter(tag string) *Writer {
	return &Writer{
		pipe: l.err,
		tag:  tag,
	}
}

func (w *Writer) Write(data []byte) (n int, err error) {
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		fmt.Fprintf(w.pipe, "%s  %s\n",
			color.HiYellowString(w.tag),
			color.HiWhiteString(line))
	}
	return len(data), nil
}
