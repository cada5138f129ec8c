package conda_test

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"

	"github.com/warptools/envforge/pkg/conda"
	"github.com/warptools/envforge/pkg/envapi"
)

func TestParseSpec(t *testing.T) {
	for _, tc := range []struct {
		name   string
		data   string
		ecode  string
		expect [2]string // name, prefix
	}{
		{"name-only", "name: foo\ndependencies:\n  - pip\n", "", [2]string{"foo", ""}},
		{"prefix-only", "prefix: /opt/envs/foo\n", "", [2]string{"", "/opt/envs/foo"}},
		{"prefix-cleaned", "prefix: /opt/envs//foo/\n", "", [2]string{"", "/opt/envs/foo"}},
		{"both-agree", "name: foo\nprefix: /opt/envs/foo\n", "", [2]string{"foo", "/opt/envs/foo"}},
		{"null-name", "name:\ndependencies: []\n", "", [2]string{"", ""}},
		{"no-identity", "dependencies:\n  - pip\n", "", [2]string{"", ""}},
		{"both-disagree", "name: foo\nprefix: /opt/envs/bar\n", envapi.ECodeConflictingIdentity, [2]string{}},
		{"empty", "", envapi.ECodeConfigParse, [2]string{}},
		{"only-comments", "# nothing here\n", envapi.ECodeConfigParse, [2]string{}},
		{"null-document", "~\n", envapi.ECodeConfigParse, [2]string{}},
		{"empty-mapping", "{}\n", envapi.ECodeConfigParse, [2]string{}},
		{"not-a-mapping", "- pip\n- numpy\n", envapi.ECodeConfigParse, [2]string{}},
		{"malformed", "name: [unclosed\n", envapi.ECodeConfigParse, [2]string{}},
		{"relative-prefix", "prefix: envs/foo\n", envapi.ECodeConfigParse, [2]string{}},
		{"name-not-scalar", "name:\n  - a\n", envapi.ECodeConfigParse, [2]string{}},
		{"duplicate-name", "name: a\nname: a\n", envapi.ECodeConfigParse, [2]string{}},
		{"name-with-separator", "name: team/proj\n", envapi.ECodeConfigParse, [2]string{}},
		{"name-with-backslash", "name: team\\proj\n", envapi.ECodeConfigParse, [2]string{}},
		{"name-dotdot", "name: ..\n", envapi.ECodeConfigParse, [2]string{}},
		{"name-dot", "name: .\n", envapi.ECodeConfigParse, [2]string{}},
		{"prefix-root", "prefix: /\n", envapi.ECodeConfigParse, [2]string{}},
		{"multiple-documents", "dependencies:\n  - numpy\n---\nextra: 1\n", envapi.ECodeConfigParse, [2]string{}},
		{"second-document-malformed", "name: foo\n---\nname: [unclosed\n", envapi.ECodeConfigParse, [2]string{}},
		{"leading-document-marker", "---\nname: foo\n", "", [2]string{"foo", ""}},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			spec, err := conda.ParseSpec("/proj/environment.yml", []byte(tc.data))
			if tc.ecode != "" {
				qt.Assert(t, err, qt.IsNotNil)
				qt.Assert(t, serum.Code(err), qt.Equals, tc.ecode)
				return
			}
			qt.Assert(t, err, qt.IsNil)
			qt.Assert(t, [2]string{spec.Name, spec.Prefix}, qt.Equals, tc.expect)
			qt.Assert(t, spec.Path, qt.Equals, "/proj/environment.yml")
			qt.Assert(t, spec.Dirty(), qt.IsFalse)
		})
	}
}

func TestValidateEnvName(t *testing.T) {
	qt.Assert(t, conda.ValidateEnvName("proj_env"), qt.IsNil)
	qt.Assert(t, conda.ValidateEnvName("proj.env-2"), qt.IsNil)
	for _, bad := range []string{"", ".", "..", "team/proj", "/abs", "trailing/", `win\dows`} {
		qt.Check(t, conda.ValidateEnvName(bad), qt.IsNotNil, qt.Commentf("%q", bad))
	}
}

func TestSpecRawConfigKeepsOrder(t *testing.T) {
	spec, err := conda.ParseSpec("/proj/environment.yml", []byte("channels:\n  - conda-forge\nname: foo\nvariables:\n  A: b\ndependencies:\n  - pip\n"))
	qt.Assert(t, err, qt.IsNil)
	var keys []string
	for _, entry := range spec.RawConfig() {
		keys = append(keys, entry.Key)
	}
	qt.Assert(t, keys, qt.DeepEquals, []string{"channels", "variables", "dependencies"})
}

func TestLoadSpecMissing(t *testing.T) {
	_, err := conda.LoadSpec(filepath.Join(t.TempDir(), "environment.yml"))
	qt.Assert(t, serum.Code(err), qt.Equals, envapi.ECodeMissing)
}

func TestSetIdentity(t *testing.T) {
	t.Run("inserts-name-first-and-prefix-after", func(t *testing.T) {
		spec, err := conda.ParseSpec("/p/environment.yml", []byte("channels:\n  - defaults\ndependencies:\n  - pip\n"))
		qt.Assert(t, err, qt.IsNil)
		spec.SetIdentity("foo", "/opt/envs/foo")
		qt.Assert(t, spec.Dirty(), qt.IsTrue)
		out, err := conda.EncodeSpec(spec)
		qt.Assert(t, err, qt.IsNil)
		qt.Assert(t, string(out), qt.Equals, "name: foo\nprefix: /opt/envs/foo\nchannels:\n  - defaults\ndependencies:\n  - pip\n")
	})
	t.Run("overwrites-in-place", func(t *testing.T) {
		spec, err := conda.ParseSpec("/p/environment.yml", []byte("channels:\n  - defaults\nname: old\ndependencies:\n  - pip\n"))
		qt.Assert(t, err, qt.IsNil)
		spec.SetIdentity("foo", "/opt/envs/foo")
		out, err := conda.EncodeSpec(spec)
		qt.Assert(t, err, qt.IsNil)
		qt.Assert(t, string(out), qt.Equals, "channels:\n  - defaults\nname: foo\nprefix: /opt/envs/foo\ndependencies:\n  - pip\n")
	})
	t.Run("same-identity-stays-clean", func(t *testing.T) {
		spec, err := conda.ParseSpec("/p/environment.yml", []byte("name: foo\nprefix: /opt/envs/foo\n"))
		qt.Assert(t, err, qt.IsNil)
		spec.SetIdentity("foo", "/opt/envs/foo")
		qt.Assert(t, spec.Dirty(), qt.IsFalse)
	})
	t.Run("numeric-looking-name-stays-a-string", func(t *testing.T) {
		spec, err := conda.ParseSpec("/p/environment.yml", []byte("dependencies: []\n"))
		qt.Assert(t, err, qt.IsNil)
		spec.SetIdentity("2024", "/opt/envs/2024")
		out, err := conda.EncodeSpec(spec)
		qt.Assert(t, err, qt.IsNil)
		reparsed, err := conda.ParseSpec("/p/environment.yml", out)
		qt.Assert(t, err, qt.IsNil)
		qt.Assert(t, reparsed.Name, qt.Equals, "2024")
	})
}

func TestWriteSpec(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "environment.yml")
	original := "# pinned for the lab machines\nchannels:\n  - conda-forge\ndependencies:\n  - python=3.10 # keep in sync with CI\n"
	qt.Assert(t, os.WriteFile(path, []byte(original), 0600), qt.IsNil)

	spec, err := conda.LoadSpec(path)
	qt.Assert(t, err, qt.IsNil)

	t.Run("clean-spec-is-not-written", func(t *testing.T) {
		qt.Assert(t, conda.WriteSpec(spec), qt.IsNil)
		data, err := os.ReadFile(path)
		qt.Assert(t, err, qt.IsNil)
		qt.Assert(t, string(data), qt.Equals, original)
	})

	spec.SetIdentity("lab", "/opt/envs/lab")
	qt.Assert(t, conda.WriteSpec(spec), qt.IsNil)
	qt.Assert(t, spec.Dirty(), qt.IsFalse)

	data, err := os.ReadFile(path)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, string(data), qt.Contains, "keep in sync with CI")
	qt.Assert(t, string(data), qt.Contains, "pinned for the lab machines")

	reloaded, err := conda.LoadSpec(path)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, reloaded.Name, qt.Equals, "lab")
	qt.Assert(t, reloaded.Prefix, qt.Equals, "/opt/envs/lab")
	qt.Assert(t, len(reloaded.RawConfig()), qt.Equals, 2)

	fi, err := os.Stat(path)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, fi.Mode().Perm(), qt.Equals, os.FileMode(0600))

	entries, err := os.ReadDir(dir)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, entries, qt.HasLen, 1)
}
