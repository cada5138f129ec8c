package conda_test

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"

	"github.com/warptools/envforge/pkg/conda"
	"github.com/warptools/envforge/pkg/envapi"
	"github.com/warptools/envforge/pkg/subproc"
)

func TestParseRegistry(t *testing.T) {
	snapshot, err := conda.ParseRegistry([]byte(`{"envs": ["/opt/conda", "/opt/conda/envs/a", "/home/u/.conda/envs/b/"], "active_prefix": null}`))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, snapshot.Envs, qt.DeepEquals, []envapi.InstalledEnvironment{
		{Name: "conda", PrefixPath: "/opt/conda"},
		{Name: "a", PrefixPath: "/opt/conda/envs/a"},
		{Name: "b", PrefixPath: "/home/u/.conda/envs/b"},
	})

	for _, tc := range []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not-json", "conda: command not found"},
		{"not-a-map", `["/opt/conda"]`},
		{"no-envs", `{"other": []}`},
		{"envs-not-a-list", `{"envs": "/opt/conda"}`},
		{"entry-not-a-string", `{"envs": [1]}`},
		{"relative-entry", `{"envs": ["envs/a"]}`},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := conda.ParseRegistry([]byte(tc.data))
			qt.Assert(t, serum.Code(err), qt.Equals, envapi.ECodeSerialization)
		})
	}
}

func TestReadRegistry(t *testing.T) {
	ctx := context.Background()
	t.Run("ok", func(t *testing.T) {
		runner := scriptedConda(`{"envs": ["/opt/conda/envs/a"]}`)
		snapshot, err := conda.ReadRegistry(ctx, runner)
		qt.Assert(t, err, qt.IsNil)
		qt.Assert(t, snapshot.Envs, qt.HasLen, 1)
		qt.Assert(t, runner.Calls, qt.DeepEquals, [][]string{{"env", "list", "--json", "-q"}})
	})
	t.Run("exit-status-is-reported", func(t *testing.T) {
		runner := &subproc.Scripted{
			Executable: "conda",
			Responses: map[string]subproc.Response{
				"env list --json -q": {ExitCode: 3},
			},
		}
		_, err := conda.ReadRegistry(ctx, runner)
		qt.Assert(t, serum.Code(err), qt.Equals, envapi.ECodeRegistryUnavailable)
		qt.Assert(t, serum.Details(err), qt.Contains, [2]string{"exitStatus", "3"})
		qt.Assert(t, serum.Details(err), qt.Contains, [2]string{"cmd", "conda env list --json -q"})
		qt.Assert(t, runner.Calls, qt.HasLen, 1)
	})
	t.Run("missing-tool", func(t *testing.T) {
		runner := &subproc.Scripted{Executable: "conda"}
		_, err := conda.ReadRegistry(ctx, runner)
		qt.Assert(t, serum.Code(err), qt.Equals, envapi.ECodeRegistryUnavailable)
		qt.Assert(t, serum.Details(err), qt.Contains, [2]string{"exitStatus", "-1"})
	})
}
