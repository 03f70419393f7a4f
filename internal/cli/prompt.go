package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/pg-ecdsa/pgev/internal/install"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// PromptResult contains the result of a user prompt interaction.
type PromptResult struct {
	// Accepted is true if the user accepted the prompt (typed "y"/"yes").
	Accepted bool
	// Cancelled is true if reading the response failed.
	Cancelled bool
}

// ConfirmVersionMismatch asks the operator whether to install against a
// pg_config that reports a different PostgreSQL major version than requested.
// It declines immediately in non-interactive (non-TTY) environments, and
// defaults to "No" on an empty response.
func ConfirmVersionMismatch(writer io.Writer, reader io.Reader, m install.VersionMismatch) PromptResult {
	if !isTTY() {
		return PromptResult{Accepted: false}
	}

	fmt.Fprintf(writer, "\npg_config reports PostgreSQL %d but --pg%d was requested.\n", m.Reported, m.Requested)
	fmt.Fprintf(writer, "? Install the PostgreSQL %d artifact anyway? [y/N] ", m.Requested)

	scanner := bufio.NewScanner(reader)
	if !scanner.Scan() {
		if scanner.Err() != nil {
			return PromptResult{Cancelled: true}
		}
		// EOF without error: treat as decline.
		return PromptResult{Accepted: false}
	}

	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "y", "yes":
		return PromptResult{Accepted: true}
	default:
		return PromptResult{Accepted: false}
	}
}
