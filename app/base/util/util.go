package util

import (
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"github.com/warpfork/go-fsx"
	"github.com/warpfork/go-fsx/osfs"
	"golang.org/x/term"

	"github.com/warptools/envforge/pkg/conda"
	"github.com/warptools/envforge/pkg/config"
	"github.com/warptools/envforge/pkg/envapi"
	"github.com/warptools/envforge/pkg/logging"
	"github.com/warptools/envforge/pkg/subproc"
)

const (
	ChoiceModePrompt  = "prompt"
	ChoiceModeDecline = "decline"
	ChoiceModeFail    = "fail"
)

// ChoiceModeFlag selects how questions about reusing environments get answered.
var ChoiceModeFlag = &cli.StringFlag{
	Name:  "choice-mode",
	Usage: "How to answer questions about reusing installed environments: prompt, decline, or fail. Defaults to prompt on a terminal and fail otherwise.",
}

// ChildStdout is where child process output should go.
// With --json, stdout is reserved for the result, so children write to stderr.
func ChildStdout(c *cli.Context) io.Writer {
	if c.Bool("json") {
		return c.App.ErrWriter
	}
	return c.App.Writer
}

// CondaRunner builds the environment manager runner from configuration.
// Its diagnostics are relayed line by line under a "conda" tag.
func CondaRunner(c *cli.Context, state config.State) subproc.Runner {
	return &subproc.Command{
		Executable: config.CondaExecutable(state),
		Dir:        state.WorkingDirectory,
		Stderr:     logging.Ctx(c.Context).InfoWriter("conda"),
	}
}

// PythonRunner builds the interpreter runner from configuration.
// A real stdin is passed through, since tools such as pytest's debugger may read it.
func PythonRunner(c *cli.Context, state config.State) subproc.Runner {
	cmd := &subproc.Command{
		Executable: config.PythonExecutable(state),
		Dir:        state.WorkingDirectory,
		Stderr:     logging.Ctx(c.Context).ErrWriter(),
	}
	if f, ok := c.App.Reader.(*os.File); ok {
		cmd.Stdin = f
	}
	return cmd
}

type fder interface {
	Fd() uintptr
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(fder)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Chooser returns the conda.Chooser selected by --choice-mode.
// Prompts are written to stderr so they never mix with results.
//
// Errors:
//
//   - envforge-error-invalid-argument -- when the mode is not recognized
func Chooser(c *cli.Context) (conda.Chooser, error) {
	mode := c.String(ChoiceModeFlag.Name)
	if mode == "" {
		mode = ChoiceModeFail
		if isTerminal(c.App.Reader) {
			mode = ChoiceModePrompt
		}
	}
	switch mode {
	case ChoiceModePrompt:
		return conda.NewPromptChooser(c.App.Reader, c.App.ErrWriter), nil
	case ChoiceModeDecline:
		return conda.DeclineChooser{}, nil
	case ChoiceModeFail:
		return conda.FailClosedChooser{}, nil
	}
	return nil, envapi.ErrorArgument("unknown choice mode",
		[2]string{"mode", mode},
		[2]string{"allowed", ChoiceModePrompt + ", " + ChoiceModeDecline + ", " + ChoiceModeFail},
	)
}

// Installer assembles a conda.Installer from configuration and flags.
//
// Errors:
//
//   - envforge-error-invalid-argument -- when the choice mode is not recognized
func Installer(c *cli.Context, state config.State) (*conda.Installer, error) {
	chooser, err := Chooser(c)
	if err != nil {
		return nil, err
	}
	return &conda.Installer{
		Runner:   CondaRunner(c, state),
		Chooser:  chooser,
		Defaults: config.ResolutionDefaults(state),
	}, nil
}

// RootFS is the filesystem spec files are searched for in.
func RootFS() fsx.FS {
	return osfs.DirFS("/")
}
