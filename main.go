// ABOUTME: Entry point for the outreach CLI, HTTP server and MCP server
// ABOUTME: All commands are defined in the cli package
package main

import (
	"os"

	"github.com/harperreed/outreach/cli"
)

const version = "0.2.0"

func main() {
	os.Exit(cli.Execute(version))
}
