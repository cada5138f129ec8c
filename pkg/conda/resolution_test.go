package conda_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"
	"github.com/warpfork/go-testmark"
	"go.uber.org/goleak"

	"github.com/warptools/envforge/pkg/conda"
	"github.com/warptools/envforge/pkg/envapi"
	"github.com/warptools/envforge/pkg/subproc"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixtureDefaults = conda.ResolutionDefaults{
	Name:        "proj_env",
	InstallRoot: "/opt/conda/envs",
}

func formatOutcome(o envapi.ResolutionOutcome) string {
	return fmt.Sprintf("action: %s\nname: %s\nprefix: %s\nprompted: %t\n", o.Action, o.Name, o.Prefix, o.Prompted)
}

func scriptedConda(registry string) *subproc.Scripted {
	return &subproc.Scripted{
		Executable: "conda",
		Responses: map[string]subproc.Response{
			strings.Join(conda.RegistryListArgs, " "): {Stdout: registry},
		},
		Default: &subproc.Response{},
	}
}

func TestResolutionFixtures(t *testing.T) {
	filename := "../../examples/100-env-resolution/resolution.md"
	t.Logf("file://%s", filename)
	doc, err := testmark.ReadFile(filename)
	qt.Assert(t, err, qt.IsNil)

	doc.BuildDirIndex()
	for _, dir := range doc.DirEnt.ChildrenList {
		dir := dir
		t.Run(dir.Name, func(t *testing.T) {
			ctx := context.Background()
			specPath := filepath.Join(t.TempDir(), "environment.yml")
			original := dir.Children["spec"].Hunk.Body
			qt.Assert(t, os.WriteFile(specPath, original, 0644), qt.IsNil)

			runner := scriptedConda(string(dir.Children["registry"].Hunk.Body))
			var chooser conda.Chooser = conda.FailClosedChooser{}
			if dir.Children["answers"] != nil {
				chooser = conda.NewPromptChooser(strings.NewReader(string(dir.Children["answers"].Hunk.Body)), io.Discard)
			}
			installer := &conda.Installer{
				Runner:   runner,
				Chooser:  chooser,
				Defaults: fixtureDefaults,
			}

			outcome, err := installer.Install(ctx, specPath)
			expected := string(dir.Children["outcome"].Hunk.Body)
			if strings.HasPrefix(expected, "error: ") {
				qt.Assert(t, err, qt.IsNotNil)
				qt.Assert(t, serum.Code(err), qt.Equals, strings.TrimSpace(strings.TrimPrefix(expected, "error: ")))
				after, err := os.ReadFile(specPath)
				qt.Assert(t, err, qt.IsNil)
				qt.Assert(t, string(after), qt.Equals, string(original))
				return
			}
			qt.Assert(t, err, qt.IsNil)
			qt.Assert(t, formatOutcome(outcome), qt.Equals, expected)
			qt.Assert(t, outcome.SpecFile, qt.Equals, specPath)

			qt.Assert(t, runner.Calls, qt.HasLen, 2)
			qt.Assert(t, runner.Calls[1], qt.DeepEquals, conda.ProvisionArgs(outcome))

			after, err := os.ReadFile(specPath)
			qt.Assert(t, err, qt.IsNil)
			if dir.Children["spec.after"] != nil {
				qt.Assert(t, string(after), qt.Equals, string(dir.Children["spec.after"].Hunk.Body))
			}

			t.Run("rerun-is-exact", func(t *testing.T) {
				runner := scriptedConda(fmt.Sprintf(`{"envs": [%q]}`, outcome.Prefix))
				installer := &conda.Installer{
					Runner:   runner,
					Chooser:  conda.FailClosedChooser{},
					Defaults: fixtureDefaults,
				}
				again, err := installer.Install(ctx, specPath)
				qt.Assert(t, err, qt.IsNil)
				qt.Assert(t, again.Action, qt.Equals, envapi.Action_Update)
				qt.Assert(t, again.Name, qt.Equals, outcome.Name)
				qt.Assert(t, again.Prefix, qt.Equals, outcome.Prefix)
				qt.Assert(t, again.Prompted, qt.IsFalse)

				unchanged, err := os.ReadFile(specPath)
				qt.Assert(t, err, qt.IsNil)
				qt.Assert(t, string(unchanged), qt.Equals, string(after))
			})
		})
	}
}
