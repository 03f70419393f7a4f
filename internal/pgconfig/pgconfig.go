// Package pgconfig locates the pg_config tool for a requested PostgreSQL
// major version and queries it for installation directories and the server
// version it belongs to.
package pgconfig

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pg-ecdsa/pgev/internal/logging"
	"github.com/pg-ecdsa/pgev/internal/shell"
)

// ErrNotFound indicates pg_config could not be located for the requested
// major version.
var ErrNotFound = errors.New("pg_config not found")

// Distro-specific install layouts probed after the PATH lookup.
const (
	debianPathFmt = "/usr/lib/postgresql/%d/bin/pg_config"
	rhelPathFmt   = "/usr/pgsql-%d/bin/pg_config"
)

// Locator finds pg_config. The lookup functions are injectable for tests.
type Locator struct {
	LookPath func(string) (string, error)
	Stat     func(string) (os.FileInfo, error)
}

// NewLocator returns a Locator backed by the real PATH and filesystem.
func NewLocator() *Locator {
	return &Locator{
		LookPath: exec.LookPath,
		Stat:     os.Stat,
	}
}

// Locate searches for pg_config in three tiers: the generic name on PATH,
// the Debian versioned layout, then the RHEL versioned layout. The first hit
// wins; exhausting all three yields ErrNotFound.
func (l *Locator) Locate(major int) (string, error) {
	if path, err := l.LookPath("pg_config"); err == nil {
		return path, nil
	}

	for _, candidate := range []string{
		fmt.Sprintf(debianPathFmt, major),
		fmt.Sprintf(rhelPathFmt, major),
	} {
		if info, err := l.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w for PostgreSQL %d: install the server development package or add pg_config to PATH",
		ErrNotFound, major)
}

// Tool wraps a located pg_config binary.
type Tool struct {
	Path   string
	Runner shell.Runner
}

// NewTool returns a Tool for the pg_config binary at path.
func NewTool(path string, runner shell.Runner) *Tool {
	return &Tool{Path: path, Runner: runner}
}

// query runs pg_config with a single flag and returns the trimmed output.
func (t *Tool) query(ctx context.Context, flag string) (string, error) {
	stdout, stderr, err := t.Runner.Run(ctx, t.Path, flag)
	if err != nil {
		return "", fmt.Errorf("running %s %s: %w: %s", t.Path, flag, err, strings.TrimSpace(string(stderr)))
	}

	out := strings.TrimSpace(string(stdout))
	if out == "" {
		return "", fmt.Errorf("%s %s returned no output", t.Path, flag)
	}
	return out, nil
}

// PkgLibDir returns the directory for dynamically loadable modules.
func (t *Tool) PkgLibDir(ctx context.Context) (string, error) {
	return t.query(ctx, "--pkglibdir")
}

// ShareDir returns the architecture-independent support file directory.
func (t *Tool) ShareDir(ctx context.Context) (string, error) {
	return t.query(ctx, "--sharedir")
}

// MajorVersion parses the server major version out of `pg_config --version`
// output such as "PostgreSQL 17.4" or "PostgreSQL 18.1 (Ubuntu 18.1-1)".
func (t *Tool) MajorVersion(ctx context.Context) (int, error) {
	out, err := t.query(ctx, "--version")
	if err != nil {
		return 0, err
	}

	major, err := parseMajorVersion(out)
	if err != nil {
		return 0, err
	}

	logging.FromContext(ctx).Debug().
		Str("component", "pgconfig").
		Str("pg_config", t.Path).
		Int("major_version", major).
		Msg("pg_config version detected")

	return major, nil
}

// parseMajorVersion extracts the leading major number from a version banner.
func parseMajorVersion(banner string) (int, error) {
	fields := strings.Fields(banner)
	if len(fields) < 2 {
		return 0, fmt.Errorf("unexpected pg_config version output: %q", banner)
	}

	numeric := fields[1]
	if idx := strings.IndexAny(numeric, ".+"); idx >= 0 {
		numeric = numeric[:idx]
	}

	major, err := strconv.Atoi(numeric)
	if err != nil {
		return 0, fmt.Errorf("unexpected pg_config version output: %q", banner)
	}
	return major, nil
}
