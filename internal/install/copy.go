package install

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pg-ecdsa/pgev/internal/shell"
)

// applyPlan creates the target directories and copies every planned file,
// overwriting files of the same name so re-runs converge on the same end
// state. When the plan requires escalation, directory creation and copies are
// re-invoked through sudo instead of running in-process. A failed copy aborts
// immediately; earlier copies stay in place.
func applyPlan(ctx context.Context, runner shell.Runner, plan *Plan) ([]string, error) {
	if plan.Escalate {
		if err := shell.Require("sudo"); err != nil {
			return nil, fmt.Errorf("%w: target directories are not writable and %w", ErrInstallationFailed, err)
		}
	}

	dirs := map[string]struct{}{}
	for _, file := range plan.Files {
		dirs[file.DestDir] = struct{}{}
	}
	for dir := range dirs {
		if err := makeDir(ctx, runner, dir, plan.Escalate); err != nil {
			return nil, err
		}
	}

	var installed []string
	for _, file := range plan.Files {
		dest := filepath.Join(file.DestDir, filepath.Base(file.Source))
		if err := copyInto(ctx, runner, file.Source, file.DestDir, plan.Escalate); err != nil {
			return installed, err
		}
		installed = append(installed, dest)
	}
	return installed, nil
}

// makeDir creates dir (and parents), directly or via sudo. Existing
// directories are not an error.
func makeDir(ctx context.Context, runner shell.Runner, dir string, escalate bool) error {
	if escalate {
		if _, stderr, err := runner.Run(ctx, "sudo", "mkdir", "-p", dir); err != nil {
			return fmt.Errorf("%w: creating %s: %w: %s", ErrInstallationFailed, dir, err, strings.TrimSpace(string(stderr)))
		}
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // PostgreSQL install dirs are world-readable.
		return fmt.Errorf("%w: creating %s: %w", ErrInstallationFailed, dir, err)
	}
	return nil
}

// copyInto places src inside destDir, directly or via sudo.
func copyInto(ctx context.Context, runner shell.Runner, src, destDir string, escalate bool) error {
	if escalate {
		if _, stderr, err := runner.Run(ctx, "sudo", "cp", src, destDir+string(os.PathSeparator)); err != nil {
			return fmt.Errorf("%w: copying %s to %s: %w: %s",
				ErrInstallationFailed, src, destDir, err, strings.TrimSpace(string(stderr)))
		}
		return nil
	}

	dest := filepath.Join(destDir, filepath.Base(src))
	if err := copyFile(src, dest); err != nil {
		return fmt.Errorf("%w: copying %s to %s: %w", ErrInstallationFailed, src, dest, err)
	}
	return nil
}

// copyFile copies src to dst, preserving the source file mode and truncating
// any existing destination.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src) //nolint:gosec // Source comes from the run-scoped extraction dir.
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode()) //nolint:gosec // Destination is the resolved install dir.
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	if _, copyErr := io.Copy(dstFile, srcFile); copyErr != nil {
		_ = dstFile.Close()
		return fmt.Errorf("copying file: %w", copyErr)
	}

	if syncErr := dstFile.Sync(); syncErr != nil {
		_ = dstFile.Close()
		return fmt.Errorf("syncing destination: %w", syncErr)
	}

	if closeErr := dstFile.Close(); closeErr != nil {
		return fmt.Errorf("closing destination: %w", closeErr)
	}
	return nil
}
