// Where: internal/version/version.go
// What: Version information retrieval.
// Why: Report a release tag when one was linked in, or VCS metadata otherwise.
package version

import (
	"fmt"
	"runtime/debug"
)

// Release is set via -ldflags at build time for tagged releases. When empty,
// GetVersion falls back to VCS build info.
var Release = ""

// GetVersion returns the version string for the running binary. It prefers
// the linked-in release tag, then the VCS revision (shortened, with a dirty
// marker), and finally "dev".
func GetVersion() string {
	if Release != "" {
		return Release
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}

	var revision string
	var modified bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
			if len(revision) > 7 {
				revision = revision[:7]
			}
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}

	if revision == "" {
		return "dev"
	}
	if modified {
		return fmt.Sprintf("%s (dirty)", revision)
	}
	return revision
}
