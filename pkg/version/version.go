// Package version holds the build version, set at link time with
// -ldflags "-X github.com/maxvaer/dirprobe/pkg/version.Version=1.2.3".
package version

// Version is the released version, or "dev" for local builds.
var Version = "dev"
