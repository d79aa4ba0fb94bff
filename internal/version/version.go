// Package version carries build metadata injected via -ldflags.
package version

import "fmt"

var (
	// Version is the current generator version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String returns a single-line description of the build, suitable for the
// -version flag.
func String() string {
	return fmt.Sprintf("iwave-kernels %s (%s, built %s)", Version, GitSHA, BuildTime)
}
