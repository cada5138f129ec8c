package envcli

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/facette/natsort"
	"github.com/urfave/cli/v2"

	appbase "github.com/warptools/envforge/app/base"
	"github.com/warptools/envforge/app/base/render"
	"github.com/warptools/envforge/app/base/util"
	"github.com/warptools/envforge/pkg/conda"
	"github.com/warptools/envforge/pkg/config"
	"github.com/warptools/envforge/pkg/envapi"
	"github.com/warptools/envforge/pkg/logging"
)

func init() {
	appbase.App.Commands = append(appbase.App.Commands, envCmdDef)
}

var envCmdDef = &cli.Command{
	Name:  "env",
	Usage: "Inspect conda environments",
	Subcommands: []*cli.Command{
		{
			Name:  "list",
			Usage: "List installed conda environments",
			Action: util.ChainCmdMiddleware(cmdEnvList,
				util.CmdMiddlewareLogging,
				util.CmdMiddlewareTracingConfig,
				util.CmdMiddlewareTracingSpan,
			),
		},
		{
			Name:      "resolve",
			Usage:     "Show which environment install would create or update, without changing anything",
			ArgsUsage: "[environment file]",
			Description: heredoc.Doc(`
				Reads the environment file and the installed environments,
				and reports the decision install would make. Nothing is
				provisioned and the environment file is not rewritten.

				Without an argument, the environment file is searched for in
				the source directory the same way install does.
			`),
			Flags: []cli.Flag{
				&cli.StringSliceFlag{
					Name:    "conda-yml",
					Aliases: []string{"c"},
					Usage:   "Conda environment file(s) to look for, relative to the source directory",
					Value:   cli.NewStringSlice(conda.DefaultSpecFilenames...),
				},
				util.ChoiceModeFlag,
			},
			Action: util.ChainCmdMiddleware(cmdEnvResolve,
				util.CmdMiddlewareLogging,
				util.CmdMiddlewareTracingConfig,
				util.CmdMiddlewareTracingSpan,
			),
		},
	},
}

func cmdEnvList(c *cli.Context) error {
	state, err := config.LoadState()
	if err != nil {
		return err
	}
	snapshot, err := conda.ReadRegistry(c.Context, util.CondaRunner(c, state))
	if err != nil {
		return err
	}
	if c.Bool("json") {
		appbase.SetResult(c, envapi.Node(&snapshot, "RegistrySnapshot"))
		return nil
	}
	return render.Render(formatRegistry(snapshot), c.App.Writer, render.ModeFor(c.App.Writer))
}

// formatRegistry lays out environments as a markdown table, in natural order by name.
func formatRegistry(snapshot envapi.RegistrySnapshot) []byte {
	envs := make([]envapi.InstalledEnvironment, len(snapshot.Envs))
	copy(envs, snapshot.Envs)
	sort.SliceStable(envs, func(i, j int) bool {
		if envs[i].Name == envs[j].Name {
			return false
		}
		return natsort.Compare(envs[i].Name, envs[j].Name)
	})
	var buf bytes.Buffer
	if len(envs) == 0 {
		buf.WriteString("No environments installed.\n")
		return buf.Bytes()
	}
	buf.WriteString("| name | prefix |\n")
	buf.WriteString("| ---- | ------ |\n")
	for _, env := range envs {
		fmt.Fprintf(&buf, "| %s | `%s` |\n", env.Name, env.PrefixPath)
	}
	return buf.Bytes()
}

func cmdEnvResolve(c *cli.Context) error {
	if c.NArg() > 1 {
		return envapi.ErrorArgument("env resolve takes at most one environment file")
	}
	state, err := config.LoadState()
	if err != nil {
		return err
	}
	sourceDir := config.SourceDir(state)
	names := c.StringSlice("conda-yml")
	if c.NArg() == 1 {
		names = []string{c.Args().First()}
	}
	path, found, err := conda.FindSpecFile(util.RootFS(), sourceDir, names)
	if err != nil {
		return err
	}
	if !found {
		return envapi.ErrorFileMissing(fmt.Sprintf("%s/{%s}", sourceDir, strings.Join(names, ",")))
	}
	installer, err := util.Installer(c, state)
	if err != nil {
		return err
	}
	outcome, _, err := installer.Resolve(c.Context, path)
	if err != nil {
		return err
	}
	logging.Ctx(c.Context).Debug("", "resolved %s: %s %s", path, outcome.Action, outcome.Prefix)
	if c.Bool("json") {
		appbase.SetResult(c, envapi.Node(&outcome, "ResolutionOutcome"))
		return nil
	}
	return render.Render(formatOutcome(outcome), c.App.Writer, render.ModeFor(c.App.Writer))
}

func formatOutcome(outcome envapi.ResolutionOutcome) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", outcome.SpecFile)
	fmt.Fprintf(&buf, "- **action**: %s\n", outcome.Action)
	fmt.Fprintf(&buf, "- **name**: %s\n", outcome.Name)
	fmt.Fprintf(&buf, "- **prefix**: `%s`\n", outcome.Prefix)
	if outcome.Prompted {
		buf.WriteString("- decided by operator answer\n")
	}
	return buf.Bytes()
}
