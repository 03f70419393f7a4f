package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pg-ecdsa/pgev/internal/pgconfig"
)

// Targets holds the two directories files are installed into.
type Targets struct {
	// LibDir receives the shared library (pg_config --pkglibdir).
	LibDir string

	// ExtensionDir receives .control and .sql files
	// (pg_config --sharedir + /extension).
	ExtensionDir string
}

// resolveTargets derives the installation directories, preferring explicit
// overrides and falling back to pg_config queries. Directories that do not
// exist yet produce warnings only; creation happens during the copy step so
// the operator sees both paths before any filesystem mutation.
func resolveTargets(ctx context.Context, tool *pgconfig.Tool, libDirOverride, shareDirOverride string) (Targets, []string, error) {
	libDir := libDirOverride
	if libDir == "" {
		queried, err := tool.PkgLibDir(ctx)
		if err != nil {
			return Targets{}, nil, fmt.Errorf("resolving library directory: %w", err)
		}
		libDir = queried
	}

	shareDir := shareDirOverride
	if shareDir == "" {
		queried, err := tool.ShareDir(ctx)
		if err != nil {
			return Targets{}, nil, fmt.Errorf("resolving share directory: %w", err)
		}
		shareDir = queried
	}

	targets := Targets{
		LibDir:       libDir,
		ExtensionDir: filepath.Join(shareDir, "extension"),
	}

	var warnings []string
	for _, dir := range []string{targets.LibDir, targets.ExtensionDir} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			warnings = append(warnings, fmt.Sprintf("target directory %s does not exist yet and will be created", dir))
		}
	}

	return targets, warnings, nil
}
