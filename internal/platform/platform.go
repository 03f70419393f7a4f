// Package platform detects and normalizes the host CPU architecture used to
// select release artifacts.
package platform

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// ErrUnsupportedArch indicates the host architecture has no published artifacts.
var ErrUnsupportedArch = errors.New("unsupported architecture")

// Supported artifact architecture names.
const (
	ArchAMD64 = "x86_64"
	ArchARM64 = "aarch64"
)

// NormalizeArch maps a raw kernel architecture string (uname -m) to the
// artifact naming scheme. Only x86_64 and aarch64 artifacts are published.
func NormalizeArch(raw string) (string, error) {
	switch raw {
	case "x86_64":
		return ArchAMD64, nil
	case "aarch64", "arm64":
		return ArchARM64, nil
	default:
		return "", fmt.Errorf("%w: %s (supported: x86_64, aarch64)", ErrUnsupportedArch, raw)
	}
}

// DetectArch queries the OS for the host architecture and normalizes it.
// When the OS query fails, the compile-time architecture is used instead.
func DetectArch(ctx context.Context) (string, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil || info.KernelArch == "" {
		if ctx.Err() != nil {
			return "", fmt.Errorf("architecture detection cancelled: %w", ctx.Err())
		}
		return NormalizeArch(goarchToKernelArch(runtime.GOARCH))
	}
	return NormalizeArch(info.KernelArch)
}

// goarchToKernelArch translates GOARCH values into uname -m vocabulary.
func goarchToKernelArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	default:
		return goarch
	}
}
