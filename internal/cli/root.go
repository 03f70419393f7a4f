// Package cli wires the pgev command-line interface: the root install
// command, release listing, and environment diagnosis.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/pg-ecdsa/pgev/internal/install"
	"github.com/pg-ecdsa/pgev/internal/registry"
)

// ErrUsage indicates the command line itself was invalid.
var ErrUsage = errors.New("invalid usage")

// runInstallPipeline is the installation entry point, injectable for tests.
//
//nolint:gochecknoglobals // Required for test injection.
var runInstallPipeline = install.Run

// installFlags holds the raw flag values of the root command.
type installFlags struct {
	pg17      bool
	pg18      bool
	version   string
	pkglibdir string
	sharedir  string
}

// NewRootCmd creates the pgev root command. Running it with no subcommand
// performs the installation.
func NewRootCmd(ver string) *cobra.Command {
	var flags installFlags

	cmd := &cobra.Command{
		Use:     "pgev",
		Short:   "Install the pg_ecdsa_verify PostgreSQL extension",
		Long:    rootCmdLong,
		Example: rootCmdExample,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogging(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return runInstall(cmd, flags)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.Flags().BoolVar(&flags.pg17, "pg17", false, "install for PostgreSQL 17")
	cmd.Flags().BoolVar(&flags.pg18, "pg18", false, "install for PostgreSQL 18")
	cmd.Flags().StringVar(&flags.version, "version", registry.VersionLatest,
		`release tag to install, or "latest"`)
	cmd.Flags().StringVar(&flags.pkglibdir, "pkglibdir", "",
		"override the shared library directory (default: pg_config --pkglibdir)")
	cmd.Flags().StringVar(&flags.sharedir, "sharedir", "",
		"override the share directory; extension files go to <sharedir>/extension (default: pg_config --sharedir)")

	cmd.AddCommand(newVersionsCmd(), newDoctorCmd(), newVersionCmd(ver))
	return cmd
}

const rootCmdLong = `pgev downloads a pg_ecdsa_verify release artifact for this host's
architecture and PostgreSQL major version, then installs the shared library
into the server's pkglibdir and the extension metadata into
<sharedir>/extension, escalating with sudo only when those directories are
not writable.`

const rootCmdExample = `  # Install the latest release for PostgreSQL 17
  pgev --pg17

  # Install a specific release for PostgreSQL 18
  pgev --pg18 --version v1.2.0

  # Install into explicit directories
  pgev --pg17 --pkglibdir /opt/pg/lib --sharedir /opt/pg/share

  # List installable releases
  pgev versions

  # Check this host before installing
  pgev doctor

  # Print the installer's own version
  pgev version`

// resolveRequest validates the flag set and expands directory overrides.
func resolveRequest(flags installFlags) (int, string, string, error) {
	if flags.pg17 == flags.pg18 {
		return 0, "", "", fmt.Errorf("%w: exactly one of --pg17 or --pg18 is required", ErrUsage)
	}
	major := 17
	if flags.pg18 {
		major = 18
	}

	if flags.version == "" {
		return 0, "", "", fmt.Errorf("%w: --version must not be empty", ErrUsage)
	}

	pkglibdir, err := expandOverride(flags.pkglibdir)
	if err != nil {
		return 0, "", "", err
	}
	sharedir, err := expandOverride(flags.sharedir)
	if err != nil {
		return 0, "", "", err
	}
	return major, pkglibdir, sharedir, nil
}

// expandOverride expands a leading ~ in a directory override.
func expandOverride(dir string) (string, error) {
	if dir == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return "", fmt.Errorf("%w: expanding %s: %v", ErrUsage, dir, err)
	}
	return expanded, nil
}

// runInstall executes the installation pipeline for the parsed request.
func runInstall(cmd *cobra.Command, flags installFlags) error {
	major, pkglibdir, sharedir, err := resolveRequest(flags)
	if err != nil {
		cmd.SilenceUsage = false
		return err
	}

	opts := install.Options{
		PGMajor:          major,
		Version:          flags.version,
		LibDirOverride:   pkglibdir,
		ShareDirOverride: sharedir,
		ConfirmMismatch: func(m install.VersionMismatch) bool {
			return ConfirmVersionMismatch(cmd.OutOrStdout(), cmd.InOrStdin(), m).Accepted
		},
		Progress: func(msg string) {
			cmd.Println(msg)
		},
		Warn: func(msg string) {
			cmd.PrintErrln(color.YellowString("warning: %s", msg))
		},
	}

	result, err := runInstallPipeline(cmd.Context(), opts)
	if err != nil {
		if errors.Is(err, install.ErrUserAborted) {
			cmd.PrintErrln("aborted")
		}
		return err
	}

	cmd.Println(color.GreenString("pg_ecdsa_verify %s installed for PostgreSQL %d (%s)",
		result.Tag, major, result.Architecture))
	for _, file := range result.Files {
		cmd.Printf("  %s\n", file)
	}
	cmd.Println(`Enable it with: CREATE EXTENSION pg_ecdsa_verify;`)
	return nil
}

// isTTY reports whether stdin is an interactive terminal. Overridable in tests.
//
//nolint:gochecknoglobals // Required for test injection.
var isTTY = func() bool {
	return isTerminal(os.Stdin)
}
