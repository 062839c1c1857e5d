package interfaces

import (
	"context"

	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

// GitHubClient defines operations for interacting with GitHub API
type GitHubClient interface {
	// DownloadArchive downloads the source code zipball for a ref
	DownloadArchive(ctx context.Context, owner, repo, ref string) ([]byte, error)

	// CreateRelease creates a release for the tag described by release.
	// The returned result carries the identifier assigned by GitHub.
	CreateRelease(ctx context.Context, release *model.Release) (*model.ReleaseResult, error)

	// ResolveTagSHA returns the commit SHA the given tag points at
	ResolveTagSHA(ctx context.Context, owner, repo, tag string) (string, error)
}
