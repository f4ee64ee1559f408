// Package version holds the build version, overridable at link time with
// -ldflags "-X xlate/internal/version.Version=...".
package version

// Version is the current xlate version.
var Version = "0.1.0"
