// Package shell executes the external commands the installer depends on
// (curl, tar, pg_config, sudo) behind a small interface so tests can run
// without spawning real subprocesses.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// ErrMissingDependency indicates a required external command is not on PATH.
var ErrMissingDependency = errors.New("required command not found")

// Runner executes an external command and returns its stdout, stderr, and error.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

// execRunner is the default Runner backed by exec.CommandContext.
type execRunner struct{}

// NewRunner returns the default subprocess-backed Runner.
func NewRunner() Runner {
	return &execRunner{}
}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// LookPath resolves a command name on PATH. Declared as a variable so tests
// can substitute a fake resolver.
//
//nolint:gochecknoglobals // Required for test injection.
var LookPath = exec.LookPath

// Require verifies every named command is resolvable on PATH, returning
// ErrMissingDependency naming the first missing one.
func Require(names ...string) error {
	for _, name := range names {
		if _, err := LookPath(name); err != nil {
			return fmt.Errorf("%w: %s", ErrMissingDependency, name)
		}
	}
	return nil
}
