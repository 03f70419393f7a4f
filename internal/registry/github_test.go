package registry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient returns a GitHubClient pointed at server for both API and
// download traffic.
func testClient(server *httptest.Server) *GitHubClient {
	client := NewGitHubClient()
	client.BaseURL = server.URL
	client.DownloadBaseURL = server.URL
	client.HTTPClient = server.Client()
	return client
}

func TestGetLatestRelease(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/pg-ecdsa/pg_ecdsa_verify/releases/latest" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(GitHubRelease{TagName: "v1.2.0", Name: "Release 1.2.0"}))
	}))
	defer server.Close()

	release, err := testClient(server).GetLatestRelease(context.Background(), DefaultOwner, DefaultRepo)
	require.NoError(t, err)
	assert.Equal(t, "v1.2.0", release.TagName)
}

func TestGetLatestReleaseNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := testClient(server).GetLatestRelease(context.Background(), DefaultOwner, DefaultRepo)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReleaseLookup))
}

func TestGetLatestReleaseMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	_, err := testClient(server).GetLatestRelease(context.Background(), DefaultOwner, DefaultRepo)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReleaseLookup))
}

func TestGetLatestReleaseNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	client := testClient(server)
	server.Close() // Connection refused from here on.

	_, err := client.GetLatestRelease(context.Background(), DefaultOwner, DefaultRepo)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReleaseLookup))
}

func TestListStableReleases(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/pg-ecdsa/pg_ecdsa_verify/releases" {
			http.NotFound(w, r)
			return
		}
		releases := []GitHubRelease{
			{TagName: "v2.0.0"},
			{TagName: "v2.1.0-beta", Prerelease: true},
			{TagName: "v1.5.0"},
			{TagName: "v1.4.0", Draft: true},
			{TagName: "v1.0.0"},
		}
		require.NoError(t, json.NewEncoder(w).Encode(releases))
	}))
	defer server.Close()

	t.Run("drafts and prereleases filtered", func(t *testing.T) {
		releases, err := testClient(server).ListStableReleases(context.Background(), DefaultOwner, DefaultRepo, 0)
		require.NoError(t, err)
		require.Len(t, releases, 3)
		assert.Equal(t, "v2.0.0", releases[0].TagName)
		assert.Equal(t, "v1.5.0", releases[1].TagName)
		assert.Equal(t, "v1.0.0", releases[2].TagName)
	})

	t.Run("limit applies after filtering", func(t *testing.T) {
		releases, err := testClient(server).ListStableReleases(context.Background(), DefaultOwner, DefaultRepo, 2)
		require.NoError(t, err)
		require.Len(t, releases, 2)
		assert.Equal(t, "v2.0.0", releases[0].TagName)
		assert.Equal(t, "v1.5.0", releases[1].TagName)
	})
}
