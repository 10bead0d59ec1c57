// Package buildtime holds values fixed when vocabfab is built.
//
// VERSION and revision files are rewritten by the build script before go build.
package buildtime

import (
	_ "embed"
	"strings"
)

var (
	//go:embed VERSION
	rawVersion string

	//go:embed revision
	rawRevision string
)

// Version is the release of vocabfab this binary belongs to.
func Version() string {
	return strings.TrimSpace(rawVersion)
}

// Revision is the commit hash the binary is built from. Empty for dev builds.
func Revision() string {
	return strings.TrimSpace(rawRevision)
}

// VersionString returns a human readable version, like "v1.0.0 (commit: abcdef)".
func VersionString() string {
	rev := Revision()
	if rev == "" {
		rev = "unknown"
	}
	return Version() + " (commit: " + rev + ")"
}
