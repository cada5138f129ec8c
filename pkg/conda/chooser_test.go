package conda_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/serum-errors/go-serum"

	"github.com/warptools/envforge/pkg/conda"
	"github.com/warptools/envforge/pkg/envapi"
)

var (
	binaryChoice = conda.Choice{
		Prompt: "Reuse it?",
		Options: []conda.Option{
			{Label: "reuse", Token: "y"},
			{Label: "create", Token: "n"},
		},
		Decline: 1,
	}
	indexedChoice = conda.Choice{
		Prompt: "Pick one",
		Options: []conda.Option{
			{Label: "/a/envs/x"},
			{Label: "/b/envs/x"},
			{Label: "/c/envs/x"},
			{Label: "create", Token: "n"},
		},
		Decline: 3,
	}
)

func TestChoiceHint(t *testing.T) {
	qt.Assert(t, binaryChoice.Hint(), qt.Equals, "[y/n]")
	qt.Assert(t, indexedChoice.Hint(), qt.Equals, "[0-2/n]")
}

func TestChoiceParse(t *testing.T) {
	for _, tc := range []struct {
		choice conda.Choice
		answer string
		expect int // -1 means invalid
	}{
		{binaryChoice, "y", 0},
		{binaryChoice, " Y \n", 0},
		{binaryChoice, "n", 1},
		{binaryChoice, "yes", -1},
		{binaryChoice, "0", -1},
		{binaryChoice, "", -1},
		{indexedChoice, "0", 0},
		{indexedChoice, "2\n", 2},
		{indexedChoice, "N", 3},
		{indexedChoice, "3", -1},
		{indexedChoice, "-1", -1},
		{indexedChoice, "10", -1},
		{indexedChoice, "two", -1},
	} {
		tc := tc
		t.Run(tc.choice.Prompt+"/"+strings.TrimSpace(tc.answer), func(t *testing.T) {
			idx, err := tc.choice.Parse(tc.answer)
			if tc.expect < 0 {
				qt.Assert(t, serum.Code(err), qt.Equals, envapi.ECodeInvalidChoice)
				return
			}
			qt.Assert(t, err, qt.IsNil)
			qt.Assert(t, idx, qt.Equals, tc.expect)
		})
	}
}

func TestPromptChooser(t *testing.T) {
	ctx := context.Background()
	t.Run("reprompts-until-valid", func(t *testing.T) {
		var out bytes.Buffer
		chooser := conda.NewPromptChooser(strings.NewReader("5\nabc\n1\n"), &out)
		idx, err := chooser.Choose(ctx, indexedChoice)
		qt.Assert(t, err, qt.IsNil)
		qt.Assert(t, idx, qt.Equals, 1)
		qt.Assert(t, out.String(), qt.Contains, "[0] /a/envs/x")
		qt.Assert(t, out.String(), qt.Contains, "[n] create")
		qt.Assert(t, strings.Count(out.String(), "Pick one [0-2/n]: "), qt.Equals, 3)
	})
	t.Run("binary-choice-lists-nothing", func(t *testing.T) {
		var out bytes.Buffer
		chooser := conda.NewPromptChooser(strings.NewReader("n\n"), &out)
		idx, err := chooser.Choose(ctx, binaryChoice)
		qt.Assert(t, err, qt.IsNil)
		qt.Assert(t, idx, qt.Equals, 1)
		qt.Assert(t, out.String(), qt.Equals, "Reuse it? [y/n]: ")
	})
	t.Run("answer-without-newline", func(t *testing.T) {
		chooser := conda.NewPromptChooser(strings.NewReader("y"), &bytes.Buffer{})
		idx, err := chooser.Choose(ctx, binaryChoice)
		qt.Assert(t, err, qt.IsNil)
		qt.Assert(t, idx, qt.Equals, 0)
	})
	t.Run("eof-is-an-error", func(t *testing.T) {
		chooser := conda.NewPromptChooser(strings.NewReader("maybe\n"), &bytes.Buffer{})
		_, err := chooser.Choose(ctx, binaryChoice)
		qt.Assert(t, serum.Code(err), qt.Equals, envapi.ECodeIo)
	})
}

func TestNonInteractiveChoosers(t *testing.T) {
	ctx := context.Background()
	idx, err := conda.DeclineChooser{}.Choose(ctx, indexedChoice)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, idx, qt.Equals, 3)

	_, err = conda.FailClosedChooser{}.Choose(ctx, indexedChoice)
	qt.Assert(t, serum.Code(err), qt.Equals, envapi.ECodeChoiceRequired)

	qt.Assert(t, conda.DeclineChooser{}.Interactive(), qt.IsFalse)
	qt.Assert(t, conda.FailClosedChooser{}.Interactive(), qt.IsFalse)
	qt.Assert(t, conda.NewPromptChooser(strings.NewReader(""), &bytes.Buffer{}).Interactive(), qt.IsTrue)
}
