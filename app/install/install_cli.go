package installcli

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/urfave/cli/v2"

	appbase "github.com/warptools/envforge/app/base"
	"github.com/warptools/envforge/app/base/util"
	"github.com/warptools/envforge/pkg/conda"
	"github.com/warptools/envforge/pkg/config"
	"github.com/warptools/envforge/pkg/envapi"
	"github.com/warptools/envforge/pkg/logging"
	"github.com/warptools/envforge/pkg/project"
)

func init() {
	appbase.App.Commands = append(appbase.App.Commands, installCmdDef)
}

var installCmdDef = &cli.Command{
	Name:  "install",
	Usage: "Install project dependencies from the conda environment file and requirements.txt",
	Description: heredoc.Doc(`
		Creates or updates the conda environment described by the first
		environment file found in the source directory, records the
		environment's name and prefix back into that file, then installs
		requirements.txt with pip.

		requirements.txt is compiled from requirements.in first when
		--build-reqs is given, or when requirements.in does not exist yet.
	`),
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "conda-yml",
			Aliases: []string{"c"},
			Usage:   "Conda environment file(s) to look for, relative to the source directory. The first one found is used.",
			Value:   cli.NewStringSlice(conda.DefaultSpecFilenames...),
		},
		&cli.BoolFlag{
			Name:  "no-conda",
			Usage: "Skip the conda environment entirely",
		},
		&cli.BoolFlag{
			Name:  "build-reqs",
			Usage: "Always run pip-compile on requirements.in before installing",
		},
		&cli.BoolFlag{
			Name:  "no-build-reqs",
			Usage: "Never run pip-compile before installing",
		},
		util.ChoiceModeFlag,
	},
	Action: util.ChainCmdMiddleware(cmdInstall,
		util.CmdMiddlewareLogging,
		util.CmdMiddlewareTracingConfig,
		util.CmdMiddlewareTracingSpan,
	),
}

func compileMode(c *cli.Context) (project.CompileMode, error) {
	switch {
	case c.Bool("build-reqs") && c.Bool("no-build-reqs"):
		return 0, envapi.ErrorArgument("--build-reqs and --no-build-reqs are mutually exclusive")
	case c.Bool("build-reqs"):
		return project.CompileAlways, nil
	case c.Bool("no-build-reqs"):
		return project.CompileNever, nil
	}
	return project.CompileAuto, nil
}

func cmdInstall(c *cli.Context) error {
	ctx := c.Context
	log := logging.Ctx(ctx)
	if c.Args().Present() {
		return envapi.ErrorArgument("install takes no positional arguments")
	}
	mode, err := compileMode(c)
	if err != nil {
		return err
	}
	state, err := config.LoadState()
	if err != nil {
		return err
	}
	sourceDir := config.SourceDir(state)

	if !c.Bool("no-conda") {
		names := c.StringSlice("conda-yml")
		path, found, err := conda.FindSpecFile(util.RootFS(), sourceDir, names)
		if err != nil {
			return err
		}
		if !found {
			log.Info("", "no conda environment file found in %s (looked for %v); skipping", sourceDir, names)
		} else {
			log.Info("", "found conda environment file %s", path)
			installer, err := util.Installer(c, state)
			if err != nil {
				return err
			}
			outcome, err := installer.Install(ctx, path)
			if err != nil {
				return err
			}
			log.Info("", "conda environment %q is up to date at %s", outcome.Name, outcome.Prefix)
			appbase.SetResult(c, envapi.Node(&outcome, "ResolutionOutcome"))
		}
	}

	python := util.PythonRunner(c, state)
	stdout := util.ChildStdout(c)
	compile, err := project.ShouldCompile(mode, sourceDir)
	if err != nil {
		return err
	}
	if compile {
		if err := project.BuildRequirements(ctx, python, sourceDir, stdout, nil); err != nil {
			return err
		}
	}
	if err := project.InstallRequirements(ctx, python, sourceDir, stdout); err != nil {
		return err
	}
	log.Out("Requirements installed!")
	return nil
}
