package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/pg-ecdsa/pgev/internal/logging"
)

// VersionLatest is the symbolic version resolved against the registry.
const VersionLatest = "latest"

// ResolveVersion turns a version spec into a concrete release tag. The
// symbolic "latest" is resolved via the registry's latest-release endpoint;
// explicit tags pass through verbatim without existence checks (a bad tag
// surfaces later as a failed download).
func (c *GitHubClient) ResolveVersion(ctx context.Context, spec string) (string, error) {
	if spec != VersionLatest {
		return spec, nil
	}

	release, err := c.GetLatestRelease(ctx, DefaultOwner, DefaultRepo)
	if err != nil {
		return "", err
	}
	if release.TagName == "" {
		return "", fmt.Errorf("%w: latest release has no tag", ErrReleaseLookup)
	}

	logging.FromContext(ctx).Debug().
		Str("component", "registry").
		Str("tag", release.TagName).
		Msg("resolved latest release")

	return release.TagName, nil
}

// SortReleasesDesc orders releases newest-first by semantic version. Tags
// that do not parse as semver sort after the parseable ones, preserving the
// registry ordering among themselves.
func SortReleasesDesc(releases []GitHubRelease) {
	sort.SliceStable(releases, func(i, j int) bool {
		vi, errI := semver.NewVersion(releases[i].TagName)
		vj, errJ := semver.NewVersion(releases[j].TagName)
		switch {
		case errI != nil && errJ != nil:
			return false
		case errI != nil:
			return false
		case errJ != nil:
			return true
		default:
			return vi.GreaterThan(vj)
		}
	})
}
