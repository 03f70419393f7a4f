// Command pgev installs the pg_ecdsa_verify PostgreSQL extension from its
// GitHub release artifacts.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pg-ecdsa/pgev/internal/cli"
	"github.com/pg-ecdsa/pgev/internal/install"
	"github.com/pg-ecdsa/pgev/pkg/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func run() error {
	return cli.NewRootCmd(version.GetVersion()).Execute()
}

// exitCode maps error classes to process exit codes: 2 for command-line
// misuse, 3 for an operator-declined installation, 1 for everything else.
func exitCode(err error) int {
	switch {
	case errors.Is(err, cli.ErrUsage):
		return 2
	case errors.Is(err, install.ErrUserAborted):
		return 3
	default:
		return 1
	}
}
