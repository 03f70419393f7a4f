// Package version exposes the build-stamped installer version.
package version

// Version is set at build time via -ldflags "-X github.com/pg-ecdsa/pgev/pkg/version.Version=...".
//
//nolint:gochecknoglobals // Build-time version injection requires a package-level variable.
var Version = "dev"

// GetVersion returns the installer version string.
func GetVersion() string {
	return Version
}
