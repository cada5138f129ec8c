package nbstripoutcli

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/urfave/cli/v2"

	appbase "github.com/warptools/envforge/app/base"
	"github.com/warptools/envforge/app/base/util"
	"github.com/warptools/envforge/pkg/config"
	"github.com/warptools/envforge/pkg/logging"
	"github.com/warptools/envforge/pkg/project"
	"github.com/warptools/envforge/pkg/subproc"
)

func init() {
	appbase.App.Commands = append(appbase.App.Commands, activateCmdDef)
}

var activateCmdDef = &cli.Command{
	Name:  "activate-nbstripout",
	Usage: "Install the nbstripout git filter so notebook outputs are not committed",
	Description: heredoc.Doc(`
		The project must be inside a git repository, and nbstripout must be
		installed (list it in requirements.txt and run envforge install).
	`),
	Action: util.ChainCmdMiddleware(cmdActivate,
		util.CmdMiddlewareLogging,
		util.CmdMiddlewareTracingConfig,
		util.CmdMiddlewareTracingSpan,
	),
}

func cmdActivate(c *cli.Context) error {
	state, err := config.LoadState()
	if err != nil {
		return err
	}
	exe, err := project.RequireTool(project.NbstripoutExecutable, config.SourceDir(state))
	if err != nil {
		return err
	}
	runner := &subproc.Command{
		Executable: exe,
		Dir:        state.WorkingDirectory,
		Stderr:     logging.Ctx(c.Context).ErrWriter(),
	}
	return project.ActivateNbstripout(c.Context, runner, state.WorkingDirectory, util.ChildStdout(c))
}
