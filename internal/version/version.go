// Package version carries build metadata stamped via ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Overridden at build time, e.g.
//
//	go build -ldflags "-X github.com/kestrelhq/kestrel/internal/version.Version=1.0.0 \
//	  -X github.com/kestrelhq/kestrel/internal/version.Commit=abc123 \
//	  -X github.com/kestrelhq/kestrel/internal/version.Date=2026-01-01"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info renders the version line printed by `kestrel version`.
func Info() string {
	return fmt.Sprintf("kestrel %s (commit %s, built %s, %s/%s)",
		Version, shortCommit(Commit), Date, runtime.GOOS, runtime.GOARCH)
}

// shortCommit truncates a full commit hash to its familiar 7-char form.
func shortCommit(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
