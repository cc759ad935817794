// Package cmd holds the tracelog build metadata, injected with
//
//	go build -ldflags "-X github.com/thoreinstein/tracelog/cmd.Version=v1.2.3"
package cmd

var (
	// Version is the release tag, or "dev" for local builds.
	Version = "dev"
	// Commit is the git commit SHA of the build.
	Commit = "none"
	// Date is the build date.
	Date = "unknown"
)
