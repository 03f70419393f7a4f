// Package install implements the installation pipeline for the
// pg_ecdsa_verify extension: environment probing, target directory
// resolution, release resolution, artifact download and extraction, and
// privilege-aware file placement.
//
// The pipeline is strictly sequential and every failure is terminal. The one
// suspension point is the server version mismatch confirmation, answered by
// the caller through an injected ConfirmFunc so the pipeline itself never
// touches stdin.
package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pg-ecdsa/pgev/internal/logging"
	"github.com/pg-ecdsa/pgev/internal/pgconfig"
	"github.com/pg-ecdsa/pgev/internal/platform"
	"github.com/pg-ecdsa/pgev/internal/registry"
	"github.com/pg-ecdsa/pgev/internal/shell"
)

// SupportedMajors lists the PostgreSQL major versions artifacts are built for.
//
//nolint:gochecknoglobals // Fixed support matrix shared with the CLI layer.
var SupportedMajors = []int{17, 18}

// VersionMismatch describes a disagreement between the requested PostgreSQL
// major version and the one pg_config reports.
type VersionMismatch struct {
	Requested int
	Reported  int
}

// ConfirmFunc answers a version mismatch. Returning false aborts the run.
type ConfirmFunc func(VersionMismatch) bool

// Options configures a single installation run.
type Options struct {
	// PGMajor is the requested PostgreSQL major version (17 or 18). Required.
	PGMajor int

	// Version is a release tag or "latest".
	Version string

	// LibDirOverride replaces the pg_config --pkglibdir query when non-empty.
	LibDirOverride string

	// ShareDirOverride replaces the pg_config --sharedir query when non-empty.
	ShareDirOverride string

	// Client queries the release registry. Defaults to the public GitHub API.
	Client *registry.GitHubClient

	// Runner executes external commands. Defaults to real subprocesses.
	Runner shell.Runner

	// Locator finds pg_config. Defaults to the real PATH and filesystem.
	Locator *pgconfig.Locator

	// ConfirmMismatch is consulted when pg_config reports a different major
	// version than requested. Nil declines, aborting the run.
	ConfirmMismatch ConfirmFunc

	// Progress receives step messages for user display. Optional.
	Progress func(string)

	// Warn receives advisory warnings. Optional.
	Warn func(string)
}

// Result describes a completed installation.
type Result struct {
	Tag          string
	Architecture string
	PGConfigPath string
	LibDir       string
	ExtensionDir string
	Escalated    bool
	Files        []string
	Warnings     []string
}

// Run executes the full installation pipeline. Any step's failure aborts the
// run; the temporary download directory is removed on every exit path.
func Run(ctx context.Context, opts Options) (*Result, error) {
	opts = withDefaults(opts)
	log := logging.ComponentLogger(*logging.FromContext(ctx), "install")

	if !supportedMajor(opts.PGMajor) {
		return nil, fmt.Errorf("unsupported PostgreSQL major version %d (supported: 17, 18)", opts.PGMajor)
	}

	// External tools needed before any of them run.
	if err := shell.Require("curl", "tar"); err != nil {
		return nil, err
	}

	result := &Result{}
	warn := func(msg string) {
		result.Warnings = append(result.Warnings, msg)
		opts.Warn(msg)
		log.Warn().Msg(msg)
	}

	arch, err := platform.DetectArch(ctx)
	if err != nil {
		return nil, err
	}
	result.Architecture = arch

	pgConfigPath, err := opts.Locator.Locate(opts.PGMajor)
	if err != nil {
		return nil, err
	}
	result.PGConfigPath = pgConfigPath
	tool := pgconfig.NewTool(pgConfigPath, opts.Runner)

	reported, err := tool.MajorVersion(ctx)
	if err != nil {
		return nil, err
	}
	if reported != opts.PGMajor {
		warn(fmt.Sprintf("pg_config at %s reports PostgreSQL %d but --pg%d was requested",
			pgConfigPath, reported, opts.PGMajor))
		if !opts.ConfirmMismatch(VersionMismatch{Requested: opts.PGMajor, Reported: reported}) {
			return nil, ErrUserAborted
		}
	}

	targets, targetWarnings, err := resolveTargets(ctx, tool, opts.LibDirOverride, opts.ShareDirOverride)
	if err != nil {
		return nil, err
	}
	for _, msg := range targetWarnings {
		warn(msg)
	}
	result.LibDir = targets.LibDir
	result.ExtensionDir = targets.ExtensionDir
	opts.Progress(fmt.Sprintf("installing to %s (library) and %s (extension metadata)",
		targets.LibDir, targets.ExtensionDir))

	tag, err := opts.Client.ResolveVersion(ctx, opts.Version)
	if err != nil {
		return nil, err
	}
	result.Tag = tag

	artifact := opts.Client.BuildArtifact(tag, opts.PGMajor, arch)
	opts.Progress(fmt.Sprintf("downloading %s", artifact.FileName))

	tmpDir, err := os.MkdirTemp("", "pgev-install-*")
	if err != nil {
		return nil, fmt.Errorf("%w: creating temp directory: %w", ErrDownloadFailed, err)
	}
	defer os.RemoveAll(tmpDir)

	archivePath := filepath.Join(tmpDir, artifact.FileName)
	if err := downloadArtifact(ctx, opts.Runner, artifact.DownloadURL, archivePath); err != nil {
		return nil, err
	}

	if err := extractArchive(ctx, opts.Runner, archivePath, tmpDir); err != nil {
		return nil, err
	}

	plan, err := buildPlan(tmpDir, targets)
	if err != nil {
		return nil, err
	}
	result.Escalated = plan.Escalate
	if plan.Escalate {
		opts.Progress("target directories are not writable; escalating with sudo")
	}

	installed, err := applyPlan(ctx, opts.Runner, plan)
	result.Files = installed
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("tag", tag).
		Str("arch", arch).
		Str("libdir", targets.LibDir).
		Str("extension_dir", targets.ExtensionDir).
		Bool("escalated", plan.Escalate).
		Int("files", len(installed)).
		Msg("installation complete")

	return result, nil
}

// withDefaults fills optional collaborators with their production defaults.
func withDefaults(opts Options) Options {
	if opts.Client == nil {
		opts.Client = registry.NewGitHubClient()
	}
	if opts.Runner == nil {
		opts.Runner = shell.NewRunner()
	}
	if opts.Locator == nil {
		opts.Locator = pgconfig.NewLocator()
	}
	if opts.ConfirmMismatch == nil {
		opts.ConfirmMismatch = func(VersionMismatch) bool { return false }
	}
	if opts.Progress == nil {
		opts.Progress = func(string) {}
	}
	if opts.Warn == nil {
		opts.Warn = func(string) {}
	}
	if opts.Version == "" {
		opts.Version = registry.VersionLatest
	}
	return opts
}

func supportedMajor(major int) bool {
	for _, m := range SupportedMajors {
		if m == major {
			return true
		}
	}
	return false
}
