// Package registry talks to the GitHub release registry hosting the
// pg_ecdsa_verify artifacts: release tag lookup, stable release listing, and
// deterministic artifact naming.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pg-ecdsa/pgev/internal/logging"
)

// Release coordinates for the extension.
const (
	DefaultOwner = "pg-ecdsa"
	DefaultRepo  = "pg_ecdsa_verify"

	// ExtensionName is the name embedded in artifact filenames and the
	// installed .control/.sql files.
	ExtensionName = "pg_ecdsa_verify"
)

const (
	defaultAPIBaseURL      = "https://api.github.com"
	defaultDownloadBaseURL = "https://github.com"

	apiTimeout = 30 * time.Second
)

// ErrReleaseLookup indicates the release registry could not produce a usable
// release tag. Network failures, non-2xx statuses, malformed responses, and
// repositories with no published releases all fold into this error.
var ErrReleaseLookup = errors.New("release lookup failed")

// GitHubRelease is the subset of the release API response the installer reads.
type GitHubRelease struct {
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

// GitHubClient queries the GitHub REST API. BaseURL and DownloadBaseURL are
// overridable so tests can point the client at an httptest server.
type GitHubClient struct {
	BaseURL         string
	DownloadBaseURL string
	HTTPClient      *http.Client
}

// NewGitHubClient returns a client for the public GitHub API.
func NewGitHubClient() *GitHubClient {
	return &GitHubClient{
		BaseURL:         defaultAPIBaseURL,
		DownloadBaseURL: defaultDownloadBaseURL,
		HTTPClient:      &http.Client{Timeout: apiTimeout},
	}
}

// GetLatestRelease fetches the newest published release of owner/repo.
func (c *GitHubClient) GetLatestRelease(ctx context.Context, owner, repo string) (*GitHubRelease, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.BaseURL, owner, repo)
	return c.fetchRelease(ctx, url)
}

// fetchRelease GETs a single release object from url.
func (c *GitHubClient) fetchRelease(ctx context.Context, url string) (*GitHubRelease, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var release GitHubRelease
	if err := json.NewDecoder(body).Decode(&release); err != nil {
		return nil, fmt.Errorf("%w: decoding response from %s: %w", ErrReleaseLookup, url, err)
	}
	return &release, nil
}

// ListStableReleases returns up to limit published releases that are neither
// drafts nor prereleases, in the API's ordering (newest first).
func (c *GitHubClient) ListStableReleases(ctx context.Context, owner, repo string, limit int) ([]GitHubRelease, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases", c.BaseURL, owner, repo)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var releases []GitHubRelease
	if err := json.NewDecoder(body).Decode(&releases); err != nil {
		return nil, fmt.Errorf("%w: decoding response from %s: %w", ErrReleaseLookup, url, err)
	}

	stable := make([]GitHubRelease, 0, len(releases))
	for _, release := range releases {
		if release.Draft || release.Prerelease {
			continue
		}
		stable = append(stable, release)
		if limit > 0 && len(stable) == limit {
			break
		}
	}
	return stable, nil
}

// get issues a GET request with GitHub API headers and returns the body on 200.
func (c *GitHubClient) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request for %s: %w", ErrReleaseLookup, url, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "pgev")

	logging.FromContext(ctx).Debug().
		Str("component", "registry").
		Str("url", url).
		Msg("querying release registry")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReleaseLookup, url, err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %s", ErrReleaseLookup, url, strings.TrimSpace(resp.Status))
	}
	return resp.Body, nil
}
