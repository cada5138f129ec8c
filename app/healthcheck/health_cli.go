package healthcheckcli

import (
	"github.com/serum-errors/go-serum"
	"github.com/urfave/cli/v2"

	appbase "github.com/warptools/envforge/app/base"
	"github.com/warptools/envforge/app/base/util"
	"github.com/warptools/envforge/pkg/conda"
	"github.com/warptools/envforge/pkg/config"
	"github.com/warptools/envforge/pkg/healthcheck"
	"github.com/warptools/envforge/pkg/logging"
	"github.com/warptools/envforge/pkg/project"
)

func init() {
	appbase.App.Commands = append(appbase.App.Commands, healthcheckCmdDef)
}

var healthcheckCmdDef = &cli.Command{
	Name:  "healthcheck",
	Usage: "Check that the tools envforge drives are installed and usable",
	Action: util.ChainCmdMiddleware(cmdHealth,
		util.CmdMiddlewareLogging,
		util.CmdMiddlewareTracingConfig,
		util.CmdMiddlewareTracingSpan,
	),
}

func cmdHealth(c *cli.Context) error {
	log := logging.Ctx(c.Context)
	state, err := config.LoadState()
	if err != nil {
		return err
	}
	hc := &healthcheck.HealthCheck{
		Checks: []healthcheck.Check{
			&healthcheck.PlatformInfo{},
			&healthcheck.BinCheck{Name: config.CondaExecutable(state)},
			&healthcheck.BinCheck{Name: config.PythonExecutable(state)},
			&healthcheck.BinCheck{Name: "git", Optional: true},
			&healthcheck.BinCheck{Name: project.NbstripoutExecutable, Optional: true},
			&healthcheck.RegistryCheck{Runner: util.CondaRunner(c, state)},
			&healthcheck.SpecFileCheck{
				FS:        util.RootFS(),
				SourceDir: config.SourceDir(state),
				Names:     conda.DefaultSpecFilenames,
			},
		},
	}
	hc.Run(c.Context)
	log.Debug("", "checks=%d, results=%d", len(hc.Checks), len(hc.Results))

	if err := hc.Fprint(c.App.Writer); err != nil {
		return err
	}
	if hc.Failed() {
		return serum.Error(healthcheck.CodeRunFailure, serum.WithMessageLiteral("one or more health checks failed"))
	}
	return nil
}
