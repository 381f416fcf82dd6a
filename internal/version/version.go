// Package version provides the build version of warntrace.
package version

// These variables can be overridden at build time using ldflags:
// go build -ldflags "-X warntrace/internal/version.Version=1.0.0 -X warntrace/internal/version.Commit=abc123"
var (
	Version   = "0.4.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info returns "version" or "version (shortcommit)".
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// Full returns the multi-line version banner printed by `warntrace version`.
func Full() string {
	return "warntrace version " + Version + "\n" +
		"Commit: " + Commit + "\n" +
		"Built: " + BuildDate
}
