// ABOUTME: mdtranslate binary: injects build metadata and runs the CLI
// ABOUTME: Exits 2 when a batch finished with failed files and 1 on any other error
package main

import (
	"fmt"
	"os"

	"github.com/harper/mdtranslate/cmd/mdtranslate/commands"
)

// Overridden with -ldflags "-X main.version=..." by goreleaser
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersion(version, commit, date)

	err := commands.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mdtranslate: %v\n", err)
	}
	os.Exit(commands.ExitCode(err))
}
