package registry

import (
	"fmt"
	"strings"
)

// Artifact identifies a single downloadable release archive.
type Artifact struct {
	// FileName is the archive name, built from the tag with its leading "v"
	// stripped: pg_ecdsa_verify-1.2.0-pg17-linux-x86_64.tar.gz
	FileName string

	// DownloadURL is the full asset URL. The path segment keeps the tag
	// exactly as published, leading "v" included.
	DownloadURL string
}

// BuildArtifact derives the artifact descriptor for a release tag, PostgreSQL
// major version, and architecture. The tag appears in two forms: stripped of
// a leading "v" inside the filename, verbatim in the URL path.
func (c *GitHubClient) BuildArtifact(tag string, pgMajor int, arch string) Artifact {
	fileName := fmt.Sprintf("%s-%s-pg%d-linux-%s.tar.gz",
		ExtensionName, strings.TrimPrefix(tag, "v"), pgMajor, arch)

	return Artifact{
		FileName: fileName,
		DownloadURL: fmt.Sprintf("%s/%s/%s/releases/download/%s/%s",
			c.DownloadBaseURL, DefaultOwner, DefaultRepo, tag, fileName),
	}
}
