// Package version holds build metadata injected with -ldflags, e.g.
//
//	go build -ldflags "-X apicontract/internal/version.Version=v0.3.0" ./cmd/apicontract
package version

import (
	"fmt"
	"runtime"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns a one-line version string.
func Info() string {
	return fmt.Sprintf("%s (commit %s, built %s, %s)", Version, Commit, Date, runtime.Version())
}
