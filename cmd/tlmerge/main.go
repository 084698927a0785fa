// Command tlmerge scans a project tree of dated, grouped RAW photo sets,
// extracts and merges their metadata into a local database, and renders
// thumbnails according to per-date and per-group configuration.
package main

import (
	"os"

	"github.com/billysbar/tlmerge/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
