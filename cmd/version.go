// Package cmd holds build information shared by the service binaries.
package cmd

// Set at build time with -ldflags "-X github.com/circleci/setupwiz/cmd.Version=..."
var (
	Version = "dev"
	Date    = "unknown"
)
