// Package version holds the current server version and helpers for
// comparing schema versions during migration.
package version

import (
	"golang.org/x/mod/semver"
)

// Version is the current released version of forumkit.
var Version = "0.3.1"

// DevVersion is the suffix appended in dev mode builds.
var DevVersion = "dev"

// GetCurrentVersion returns the version string for the given mode.
func GetCurrentVersion(mode string) string {
	if mode == "dev" {
		return Version + "-" + DevVersion
	}
	return Version
}

// GetSchemaVersion returns the schema version for the current build,
// which is the minor release line (patch upgrades never change schema).
func GetSchemaVersion(mode string) string {
	current := GetCurrentVersion(mode)
	return semver.MajorMinor("v"+current)[1:] + ".0"
}

// IsVersionGreaterThan returns true when version is strictly newer than target.
func IsVersionGreaterThan(version, target string) bool {
	return semver.Compare("v"+version, "v"+target) > 0
}

// IsVersionGreaterOrEqualThan returns true when version is not older than target.
func IsVersionGreaterOrEqualThan(version, target string) bool {
	return semver.Compare("v"+version, "v"+target) >= 0
}
