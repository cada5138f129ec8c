package pytestcli

import (
	"github.com/urfave/cli/v2"

	appbase "github.com/warptools/envforge/app/base"
	"github.com/warptools/envforge/app/base/util"
	"github.com/warptools/envforge/pkg/config"
	"github.com/warptools/envforge/pkg/project"
)

func init() {
	appbase.App.Commands = append(appbase.App.Commands, testCmdDef)
}

var testCmdDef = &cli.Command{
	Name:            "test",
	Usage:           "Run the test suite with pytest; all arguments are passed through",
	ArgsUsage:       "[pytest args...]",
	SkipFlagParsing: true,
	Action: util.ChainCmdMiddleware(cmdTest,
		util.CmdMiddlewareLogging,
		util.CmdMiddlewareTracingConfig,
		util.CmdMiddlewareTracingSpan,
	),
}

func cmdTest(c *cli.Context) error {
	state, err := config.LoadState()
	if err != nil {
		return err
	}
	return project.RunTests(c.Context, util.PythonRunner(c, state), util.ChildStdout(c), c.Args().Slice())
}
