// Package version exposes build-time version information.
package version

// Set via -ldflags at release time.
var (
	Version = "dev"
	Commit  = "unknown"
)

// String returns a human-readable version string.
func String() string {
	return Version + " (" + Commit + ")"
}
