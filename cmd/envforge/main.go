package main

import (
	"os"

	envforgeapp "github.com/warptools/envforge/app"
)

func main() {
	app := envforgeapp.App
	app.Reader = os.Stdin
	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr
	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
