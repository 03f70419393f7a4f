package cli

import (
	"github.com/spf13/cobra"
)

// newVersionCmd creates the version command printing the installer's own
// build-stamped version.
func newVersionCmd(ver string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the pgev installer version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("pgev %s\n", ver)
		},
	}
}
