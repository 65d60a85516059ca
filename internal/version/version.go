// Package version holds build-time version information.
package version

import "fmt"

// Version is the application version, set via build-time ldflags:
// go build -ldflags "-X github.com/docsmith/docsmith/internal/version.Version=v1.2.0".
var Version = "dev"

// Build metadata, also set via ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns the human-readable version line.
func String() string {
	return fmt.Sprintf("docsmith %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
