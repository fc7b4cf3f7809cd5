// contractguard CLI - validates HTTP traffic against OpenAPI contracts
package main

import (
	"github.com/getmockd/contractguard/pkg/cli"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	cli.Version = Version
	cli.Commit = Commit
	cli.BuildDate = BuildDate
	cli.Execute()
}
