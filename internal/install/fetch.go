package install

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pg-ecdsa/pgev/internal/logging"
	"github.com/pg-ecdsa/pgev/internal/shell"
)

// downloadArtifact fetches url into destPath with curl. A transport error,
// non-2xx status (curl -f), or zero-byte result is a download failure naming
// the URL that was attempted.
func downloadArtifact(ctx context.Context, runner shell.Runner, url, destPath string) error {
	logging.FromContext(ctx).Debug().
		Str("component", "install").
		Str("url", url).
		Str("dest", destPath).
		Msg("downloading artifact")

	_, stderr, err := runner.Run(ctx, "curl", "-fsSL", "-o", destPath, url)
	if err != nil {
		return fmt.Errorf("%w: %s: %w: %s", ErrDownloadFailed, url, err, strings.TrimSpace(string(stderr)))
	}

	info, err := os.Stat(destPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDownloadFailed, url, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s: empty response", ErrDownloadFailed, url)
	}
	return nil
}

// extractArchive unpacks a gzipped tarball into destDir.
func extractArchive(ctx context.Context, runner shell.Runner, archivePath, destDir string) error {
	_, stderr, err := runner.Run(ctx, "tar", "-xzf", archivePath, "-C", destDir)
	if err != nil {
		return fmt.Errorf("%w: %s: %w: %s", ErrExtractionFailed, archivePath, err, strings.TrimSpace(string(stderr)))
	}
	return nil
}
