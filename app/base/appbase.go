package appbase

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ipld/go-ipld-prime"
	ipldjson "github.com/ipld/go-ipld-prime/codec/json"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/urfave/cli/v2"
)

const VERSION = "v0.1.0"

// MetadataKeyResult is where commands leave a datamodel.Node to be printed as the JSON API result.
const MetadataKeyResult = "result"

var App = &cli.App{
	Name:    "envforge",
	Version: VERSION,
	Usage:   "reconcile project conda environments and Python requirements",

	Reader:    closedReader{}, // Replace with os.Stdin in real application; or other wiring, in tests.
	Writer:    panicWriter{},  // Replace with os.Stdout in real application; or other wiring, in tests.
	ErrWriter: panicWriter{},  // Replace with os.Stderr in real application; or other wiring, in tests.

	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			EnvVars: []string{"ENVFORGE_DEBUG"},
		},
		&cli.BoolFlag{
			Name: "quiet",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Enable JSON API output",
		},
		&cli.StringFlag{
			Name:      "trace.file",
			Usage:     "Enable tracing and emit output to file",
			TakesFile: true,
		},
		&cli.BoolFlag{
			Name:  "trace.http.enable",
			Usage: "Enable remote tracing over http",
		},
		&cli.BoolFlag{
			Name:  "trace.http.insecure",
			Usage: "Allows insecure http",
		},
		&cli.StringFlag{
			Name:  "trace.http.endpoint",
			Usage: "Sets an endpoint for remote open-telemetry tracing collection",
		},
	},

	// The commands slice is updated by each package that contains commands.
	// Import the parent of this package to get that all done for you!
	Commands: []*cli.Command{},

	ExitErrHandler: exitErrHandler,
	After:          afterFunc,
}

// Aaaand the other modifications to `urfave/cli` that are unfortunately only possible by manipulating globals:
func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:               "version", // And no short aliases.  "-v" is for "verbose"!
		Usage:              "print the version",
		DisableDefaultText: true,
	}
}

// exitErrHandler prints a failed command's error to stderr.
func exitErrHandler(c *cli.Context, err error) {
	if err == nil {
		return
	}
	if c.Bool("json") {
		bytes, err := json.Marshal(err)
		if err != nil {
			panic("error marshaling json")
		}
		fmt.Fprintf(c.App.ErrWriter, "%s\n", string(bytes))
	} else {
		fmt.Fprintf(c.App.ErrWriter, "error: %s\n", err)
	}
}

// afterFunc prints the command result left in c.App.Metadata, if any, as JSON on stdout.
// Results are only printed with --json.
// The result is consumed so that a later run of the same App starts clean.
func afterFunc(c *cli.Context) error {
	result, exists := c.App.Metadata[MetadataKeyResult]
	if !exists {
		return nil
	}
	delete(c.App.Metadata, MetadataKeyResult)
	if result == nil || !c.Bool("json") {
		return nil
	}
	n, ok := result.(datamodel.Node)
	if !ok {
		panic("invalid result value - not a datamodel.Node")
	}
	serial, err := ipld.Encode(n, ipldjson.Encode)
	if err != nil {
		return fmt.Errorf("failed to serialize output: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "%s\n", serial)
	return nil
}

// SetResult records n as the command's JSON API result.
func SetResult(c *cli.Context, n datamodel.Node) {
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[MetadataKeyResult] = n
}

type closedReader struct{}

// Read is a dummy method that always returns EOF.
func (c closedReader) Read(p []byte) (int, error) {
	return 0, io.EOF
}

type panicWriter struct{}

// Write is a dummy method that always panics.  You're supposed to replace panicWriter values before use.
func (p panicWriter) Write(data []byte) (int, error) {
	panic("replace the Writer and ErrWriter on the App value in packages that use it!")
}
