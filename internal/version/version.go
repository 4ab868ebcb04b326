package version

import "fmt"

// Build metadata, set with -ldflags "-X freight-rate-hub/internal/version.Version=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// String renders the metadata on one line.
func String() string {
	return fmt.Sprintf("ratehub %s (commit %s, built %s)", Version, Commit, BuildDate)
}
