// Package config provides build metadata for ObraGuard binaries.
package config

import (
	"fmt"
	"runtime"
)

// Build information. Populated at build time via -ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// VersionString returns a formatted version string.
func VersionString() string {
	return fmt.Sprintf("obraguard %s (%s) built at %s with %s",
		Version, Commit, BuildTime, runtime.Version())
}
