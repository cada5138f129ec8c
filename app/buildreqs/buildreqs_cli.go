package buildreqscli

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/urfave/cli/v2"

	appbase "github.com/warptools/envforge/app/base"
	"github.com/warptools/envforge/app/base/util"
	"github.com/warptools/envforge/pkg/config"
	"github.com/warptools/envforge/pkg/logging"
	"github.com/warptools/envforge/pkg/project"
)

func init() {
	appbase.App.Commands = append(appbase.App.Commands, buildReqsCmdDef)
}

var buildReqsCmdDef = &cli.Command{
	Name:      "build-reqs",
	Usage:     "Compile requirements.in into a pinned requirements.txt",
	ArgsUsage: "[pip-compile args...]",
	Description: heredoc.Doc(`
		Runs pip-compile on the source directory's requirements.in.
		If requirements.in does not exist yet, it is first created as a
		copy of requirements.txt.

		All arguments are passed through to pip-compile.
	`),
	SkipFlagParsing: true,
	Action: util.ChainCmdMiddleware(cmdBuildReqs,
		util.CmdMiddlewareLogging,
		util.CmdMiddlewareTracingConfig,
		util.CmdMiddlewareTracingSpan,
	),
}

func cmdBuildReqs(c *cli.Context) error {
	state, err := config.LoadState()
	if err != nil {
		return err
	}
	err = project.BuildRequirements(c.Context,
		util.PythonRunner(c, state),
		config.SourceDir(state),
		util.ChildStdout(c),
		c.Args().Slice(),
	)
	if err != nil {
		return err
	}
	logging.Ctx(c.Context).Out("Requirements built! Please update %s if you'd like to make a change in your project's dependencies, and re-run build-reqs to generate the new %s.",
		project.RequirementsIn, project.RequirementsTxt)
	return nil
}
