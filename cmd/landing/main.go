// Command landing manages and serves versioned community landing pages.
package main

import "github.com/mesh-intelligence/landing/internal/cli"

// Set through -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version string
	commit  string
	date    string
)

func main() {
	cli.SetVersion(version, commit, date)
	cli.Execute()
}
