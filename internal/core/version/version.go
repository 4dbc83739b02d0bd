// Package version reports build metadata stamped in at link time
package version

// BuildInfo holds version information about a binary
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// set with -ldflags "-X 'newsletter/internal/core/version.version=v0.1.0'
// -X 'newsletter/internal/core/version.commit=abcd' -X 'newsletter/internal/core/version.date=2025-09-02'"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info returns the build information for service
func Info(service string) BuildInfo {
	return BuildInfo{Service: service, Version: version, Commit: commit, Date: date}
}

// String is the one line form printed by --version
func (b BuildInfo) String() string {
	return b.Service + " " + b.Version + " (" + b.Commit + ", " + b.Date + ")"
}
