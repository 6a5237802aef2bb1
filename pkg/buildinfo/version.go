// Package buildinfo reports which morphtree build is running.
//
// Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/morphtree/pkg/buildinfo.Version=v0.3.0" ./cmd/morphtree
//
// Commit and Date fall back to the VCS stamp the Go toolchain embeds, so a
// plain `go install` still reports the revision it was built from.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"

	// Commit is the git revision.
	Commit = ""

	// Date is the commit or build time in RFC 3339.
	Date = ""
)

// Revision returns Commit and Date, filling empty values from the
// embedded VCS settings.
func Revision() (commit, date string) {
	commit, date = Commit, Date
	if commit != "" && date != "" {
		return commit, date
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && commit == "":
				commit = s.Value
			case s.Key == "vcs.time" && date == "":
				date = s.Value
			}
		}
	}
	if commit == "" {
		commit = "unknown"
	}
	if date == "" {
		date = "unknown"
	}
	return commit, date
}

// Template returns the cobra version template.
func Template() string {
	commit, date := Revision()
	return fmt.Sprintf("{{.Name}} %s (%s, %s)\n", Version, commit, date)
}

// UserAgent is sent as the Server header by the preview server.
func UserAgent() string {
	return "morphtree/" + Version
}
