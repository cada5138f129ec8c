// Package envforgeapp assembles the envforge CLI.
// Importing it registers every command into appbase.App.
package envforgeapp

import (
	appbase "github.com/warptools/envforge/app/base"
	_ "github.com/warptools/envforge/app/buildreqs"
	_ "github.com/warptools/envforge/app/env"
	_ "github.com/warptools/envforge/app/healthcheck"
	_ "github.com/warptools/envforge/app/install"
	_ "github.com/warptools/envforge/app/nbstripout"
	_ "github.com/warptools/envforge/app/pytest"
)

var App = appbase.App
