package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pg-ecdsa/pgev/internal/doctor"
	"github.com/pg-ecdsa/pgev/internal/install"
)

// newDoctor builds the environment checker, injectable for tests.
//
//nolint:gochecknoglobals // Required for test injection.
var newDoctor = doctor.New

// newDoctorCmd creates the doctor command.
func newDoctorCmd() *cobra.Command {
	var pg17, pg18 bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check this host's readiness to install the extension",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			majors := install.SupportedMajors
			switch {
			case pg17 && !pg18:
				majors = []int{17}
			case pg18 && !pg17:
				majors = []int{18}
			}

			results := newDoctor().Run(cmd.Context(), majors)
			failed := false
			for _, result := range results {
				cmd.Printf("%s %-28s %s\n", statusMarker(result.Status), result.Name, result.Message)
				if result.Recommendation != "" {
					cmd.Printf("  %s\n", result.Recommendation)
				}
				if result.Status == doctor.StatusFail {
					failed = true
				}
			}

			if failed {
				return fmt.Errorf("environment checks failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pg17, "pg17", false, "check only PostgreSQL 17")
	cmd.Flags().BoolVar(&pg18, "pg18", false, "check only PostgreSQL 18")
	return cmd
}

// statusMarker renders a colorized status cell.
func statusMarker(status doctor.Status) string {
	switch status {
	case doctor.StatusOK:
		return color.GreenString("[ ok ]")
	case doctor.StatusWarn:
		return color.YellowString("[warn]")
	default:
		return color.RedString("[fail]")
	}
}
