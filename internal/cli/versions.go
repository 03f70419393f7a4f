package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pg-ecdsa/pgev/internal/registry"
)

// newRegistryClient builds the release registry client, injectable for tests.
//
//nolint:gochecknoglobals // Required for test injection.
var newRegistryClient = registry.NewGitHubClient

// newVersionsCmd creates the versions command listing installable releases.
func newVersionsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List installable pg_ecdsa_verify releases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			client := newRegistryClient()
			releases, err := client.ListStableReleases(cmd.Context(),
				registry.DefaultOwner, registry.DefaultRepo, limit)
			if err != nil {
				return err
			}
			if len(releases) == 0 {
				return fmt.Errorf("%w: no stable releases published", registry.ErrReleaseLookup)
			}

			registry.SortReleasesDesc(releases)
			for i, release := range releases {
				if i == 0 {
					cmd.Printf("%s (latest)\n", release.TagName)
					continue
				}
				cmd.Println(release.TagName)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of releases to list (0 = all)")
	return cmd
}
