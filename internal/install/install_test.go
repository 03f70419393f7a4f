package install

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pg-ecdsa/pgev/internal/pgconfig"
	"github.com/pg-ecdsa/pgev/internal/registry"
)

// pipelineRunner fakes every external command the pipeline shells out to.
// curl writes a marker archive, tar "extracts" a conventional artifact layout
// into the requested directory, pg_config answers from canned values.
type pipelineRunner struct {
	t         *testing.T
	pgVersion string
	libDir    string
	shareDir  string
	commands  []string
}

func (p *pipelineRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	p.commands = append(p.commands, name+" "+strings.Join(args, " "))
	switch name {
	case "curl":
		for i, arg := range args {
			if arg == "-o" {
				return nil, nil, os.WriteFile(args[i+1], []byte("fake-tarball"), 0o644)
			}
		}
		return nil, nil, errors.New("missing -o")
	case "tar":
		dest := args[len(args)-1]
		writeFiles(p.t, dest,
			"lib/pg_ecdsa_verify.so",
			"extension/pg_ecdsa_verify.control",
			"extension/pg_ecdsa_verify--1.2.0.sql",
		)
		return nil, nil, nil
	default: // pg_config
		switch args[0] {
		case "--version":
			return []byte(p.pgVersion + "\n"), nil, nil
		case "--pkglibdir":
			return []byte(p.libDir + "\n"), nil, nil
		case "--sharedir":
			return []byte(p.shareDir + "\n"), nil, nil
		}
		return nil, nil, errors.New("unexpected command: " + name)
	}
}

// fakeLocator always finds pg_config at a fixed path.
func fakeLocator() *pgconfig.Locator {
	return &pgconfig.Locator{
		LookPath: func(string) (string, error) { return "/usr/bin/pg_config", nil },
		Stat:     func(string) (os.FileInfo, error) { return nil, os.ErrNotExist },
	}
}

// latestServer serves a latest-release response with the given tag.
func latestServer(t *testing.T, tag string) (*httptest.Server, *registry.GitHubClient, *int) {
	t.Helper()
	calls := new(int)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		require.NoError(t, json.NewEncoder(w).Encode(registry.GitHubRelease{TagName: tag}))
	}))
	t.Cleanup(server.Close)

	client := registry.NewGitHubClient()
	client.BaseURL = server.URL
	client.DownloadBaseURL = server.URL
	client.HTTPClient = server.Client()
	return server, client, calls
}

func testOptions(t *testing.T, runner *pipelineRunner, client *registry.GitHubClient) Options {
	t.Helper()
	stubLookPath(t)
	return Options{
		PGMajor: 17,
		Version: registry.VersionLatest,
		Client:  client,
		Runner:  runner,
		Locator: fakeLocator(),
	}
}

func newPipelineRunner(t *testing.T) *pipelineRunner {
	t.Helper()
	return &pipelineRunner{
		t:         t,
		pgVersion: "PostgreSQL 17.4",
		libDir:    t.TempDir(),
		shareDir:  t.TempDir(),
	}
}

func TestRunInstallsArtifact(t *testing.T) {
	runner := newPipelineRunner(t)
	_, client, _ := latestServer(t, "v1.2.0")

	result, err := Run(context.Background(), testOptions(t, runner, client))
	require.NoError(t, err)

	assert.Equal(t, "v1.2.0", result.Tag)
	assert.Equal(t, runner.libDir, result.LibDir)
	assert.Equal(t, filepath.Join(runner.shareDir, "extension"), result.ExtensionDir)
	assert.False(t, result.Escalated)
	assert.Len(t, result.Files, 3)

	assert.FileExists(t, filepath.Join(runner.libDir, "pg_ecdsa_verify.so"))
	assert.FileExists(t, filepath.Join(runner.shareDir, "extension", "pg_ecdsa_verify.control"))
	assert.FileExists(t, filepath.Join(runner.shareDir, "extension", "pg_ecdsa_verify--1.2.0.sql"))

	// The download URL embeds the tag verbatim and the stripped filename.
	var curlCmd string
	for _, cmd := range runner.commands {
		if strings.HasPrefix(cmd, "curl") {
			curlCmd = cmd
		}
	}
	assert.Contains(t, curlCmd, "/releases/download/v1.2.0/pg_ecdsa_verify-1.2.0-pg17-linux-")
}

func TestRunTwiceIsIdempotent(t *testing.T) {
	runner := newPipelineRunner(t)
	_, client, _ := latestServer(t, "v1.2.0")
	opts := testOptions(t, runner, client)

	snapshot := func() map[string]string {
		state := map[string]string{}
		for _, dir := range []string{runner.libDir, filepath.Join(runner.shareDir, "extension")} {
			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			for _, e := range entries {
				data, err := os.ReadFile(filepath.Join(dir, e.Name()))
				require.NoError(t, err)
				state[filepath.Join(dir, e.Name())] = string(data)
			}
		}
		return state
	}

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	first := snapshot()

	_, err = Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, first, snapshot())
}

func TestRunVersionMismatch(t *testing.T) {
	t.Run("decline aborts with nothing touched", func(t *testing.T) {
		runner := newPipelineRunner(t)
		runner.pgVersion = "PostgreSQL 18.1"
		_, client, apiCalls := latestServer(t, "v1.2.0")

		opts := testOptions(t, runner, client)
		opts.ConfirmMismatch = func(m VersionMismatch) bool {
			assert.Equal(t, 17, m.Requested)
			assert.Equal(t, 18, m.Reported)
			return false
		}

		_, err := Run(context.Background(), opts)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUserAborted))

		assert.Equal(t, 0, *apiCalls, "no registry call after abort")
		for _, cmd := range runner.commands {
			assert.False(t, strings.HasPrefix(cmd, "curl"), "no download after abort")
		}
		entries, err := os.ReadDir(runner.libDir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("nil confirm declines", func(t *testing.T) {
		runner := newPipelineRunner(t)
		runner.pgVersion = "PostgreSQL 18.1"
		_, client, _ := latestServer(t, "v1.2.0")

		_, err := Run(context.Background(), testOptions(t, runner, client))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUserAborted))
	})

	t.Run("accept proceeds with warning", func(t *testing.T) {
		runner := newPipelineRunner(t)
		runner.pgVersion = "PostgreSQL 18.1"
		_, client, _ := latestServer(t, "v1.2.0")

		opts := testOptions(t, runner, client)
		opts.ConfirmMismatch = func(VersionMismatch) bool { return true }

		result, err := Run(context.Background(), opts)
		require.NoError(t, err)
		require.NotEmpty(t, result.Warnings)
		assert.Contains(t, result.Warnings[0], "PostgreSQL 18")
	})
}

func TestRunReleaseLookupFailure(t *testing.T) {
	runner := newPipelineRunner(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)
	client := registry.NewGitHubClient()
	client.BaseURL = server.URL
	client.HTTPClient = server.Client()

	_, err := Run(context.Background(), testOptions(t, runner, client))
	require.Error(t, err)
	assert.True(t, errors.Is(err, registry.ErrReleaseLookup))

	for _, cmd := range runner.commands {
		assert.False(t, strings.HasPrefix(cmd, "curl"), "lookup failure must not trigger a download")
	}
}

func TestRunExplicitTagSkipsRegistry(t *testing.T) {
	runner := newPipelineRunner(t)
	_, client, apiCalls := latestServer(t, "v9.9.9")

	opts := testOptions(t, runner, client)
	opts.Version = "v1.0.0"

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", result.Tag)
	assert.Equal(t, 0, *apiCalls)
}

func TestRunUnsupportedMajor(t *testing.T) {
	_, err := Run(context.Background(), Options{PGMajor: 16})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported PostgreSQL major version")
}
