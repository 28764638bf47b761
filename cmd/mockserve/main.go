// mockserve - runtime-configurable HTTP mock responder
package main

import (
	"os"

	"github.com/getmockd/mockserve/pkg/cli"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cli.Version, cli.Commit, cli.BuildDate = Version, Commit, BuildDate
	cli.Execute(os.Args[1:])
}
