package project

import (
	"context"
	"errors"
	"io"
	"os/exec"

	"github.com/go-git/go-git/v5"
	"github.com/serum-errors/go-serum"

	"github.com/warptools/envforge/pkg/envapi"
	"github.com/warptools/envforge/pkg/logging"
	"github.com/warptools/envforge/pkg/subproc"
	"github.com/warptools/envforge/pkg/tracing"
)

const NbstripoutExecutable = "nbstripout"

// FindRepository returns the worktree root of the git repository containing dir.
// Parent directories are searched for the .git directory.
//
// Errors:
//
//   - envforge-error-git -- when dir is not inside a git repository, or the repository cannot be opened
func FindRepository(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return "", envapi.ErrorGit("Not a git repository. Run `git init` first.", nil)
	}
	if err != nil {
		return "", envapi.ErrorGit("failed to open git repository", err)
	}
	wt, err := repo.Worktree()
	if errors.Is(err, git.ErrIsBareRepository) {
		return dir, nil
	}
	if err != nil {
		return "", envapi.ErrorGit("failed to open git worktree", err)
	}
	return wt.Filesystem.Root(), nil
}

// RequireTool checks that a tool the project is expected to provide is on PATH.
//
// Errors:
//
//   - envforge-error-missing -- when the tool cannot be found
func RequireTool(name, sourceDir string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", serum.Error(envapi.ECodeMissing,
			serum.WithMessageTemplate("{{tool}} is not installed. Please make sure {{tool}} is in {{src}}/requirements.txt and run `envforge install`."),
			serum.WithDetail("tool", name),
			serum.WithDetail("src", sourceDir),
			serum.WithCause(err),
		)
	}
	return path, nil
}

// ActivateNbstripout installs the nbstripout git filter, so notebook outputs are cleared on commit.
// dir must be inside a git repository.
//
// Errors:
//
//   - envforge-error-git -- when dir is not inside a git repository
//   - envforge-error-command-failed -- when nbstripout fails
func ActivateNbstripout(ctx context.Context, nbstripout subproc.Runner, dir string, stdout io.Writer) error {
	log := logging.Ctx(ctx)
	log.Warn(logTag, "Notebook output cells will be automatically cleared before committing to git.")
	root, err := FindRepository(dir)
	if err != nil {
		return err
	}
	log.Debug(logTag, "git repository: %s", root)
	return call(ctx, nbstripout, tracing.AttrFullExecNameNbstripout, stdout, "--install")
}
