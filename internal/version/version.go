// Package version holds the build version of advising-notify.
package version

// Version is set at build time with -ldflags "-X .../internal/version.Version=...".
var Version = "development"

// Commit is the git commit hash, set at build time like Version.
var Commit = "unknown"

// String returns the version, with "+commit" appended when the commit is known.
func String() string {
	if Commit != "unknown" {
		return Version + "+" + Commit
	}
	return Version
}
