package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

type client struct {
	githubClient *github.Client
}

type config struct {
	baseURL   string
	transport http.RoundTripper
}

// Option configures the GitHub client
type Option func(*config)

// WithBaseURL points the client at a different API endpoint, for
// GitHub Enterprise and tests.
func WithBaseURL(rawURL string) Option {
	return func(c *config) {
		c.baseURL = rawURL
	}
}

// WithTransport replaces the underlying HTTP transport
func WithTransport(rt http.RoundTripper) Option {
	return func(c *config) {
		c.transport = rt
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{
		transport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// NewClient creates a GitHub client authenticated as a GitHub App
// installation.
func NewClient(appID, installationID int64, privateKey []byte, opts ...Option) (interfaces.GitHubClient, error) {
	cfg := newConfig(opts)

	// Create GitHub App transport
	itr, err := ghinstallation.New(cfg.transport, appID, installationID, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub App transport: %w", err)
	}

	return newClient(github.NewClient(&http.Client{Transport: itr}), cfg)
}

// NewClientWithToken creates a GitHub client authenticated with a
// personal access token.
func NewClientWithToken(token string, opts ...Option) (interfaces.GitHubClient, error) {
	cfg := newConfig(opts)

	ghc := github.NewClient(&http.Client{Transport: cfg.transport})
	if token != "" {
		ghc = ghc.WithAuthToken(token)
	}
	return newClient(ghc, cfg)
}

func newClient(ghc *github.Client, cfg *config) (interfaces.GitHubClient, error) {
	if cfg.baseURL != "" {
		u, err := url.Parse(cfg.baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL %s: %w", cfg.baseURL, err)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		ghc.BaseURL = u
		ghc.UploadURL = u
	}

	return &client{githubClient: ghc}, nil
}

// DownloadArchive downloads the source code zipball for a ref
func (c *client) DownloadArchive(ctx context.Context, owner, repo, ref string) ([]byte, error) {
	// Get download URL for zipball
	url, _, err := c.githubClient.Repositories.GetArchiveLink(ctx, owner, repo, github.Zipball, &github.RepositoryContentGetOptions{
		Ref: ref,
	}, 3) // Follow up to 3 redirects

	if err != nil {
		return nil, fmt.Errorf("failed to get zipball download URL for %s/%s@%s: %w", owner, repo, ref, err)
	}

	// Create HTTP request for download
	req, err := http.NewRequestWithContext(ctx, "GET", url.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request for %s: %w", url.String(), err)
	}

	// Use the same client transport for authentication
	httpClient := &http.Client{Transport: c.githubClient.Client().Transport}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download zipball from %s: %w", url.String(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, url.String())
	}

	// Read the entire response
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// CreateRelease creates a published release for the tag. Draft and
// prerelease flags are taken from the release as-is.
func (c *client) CreateRelease(ctx context.Context, release *model.Release) (*model.ReleaseResult, error) {
	req := &github.RepositoryRelease{
		TagName:    github.Ptr(release.TagName),
		Name:       github.Ptr(release.Name),
		Draft:      github.Ptr(release.Draft),
		Prerelease: github.Ptr(release.Prerelease),
	}
	if release.CommitSHA != "" {
		req.TargetCommitish = github.Ptr(release.CommitSHA)
	}

	created, _, err := c.githubClient.Repositories.CreateRelease(ctx, release.Owner, release.Repo, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create release for %s/%s@%s: %w", release.Owner, release.Repo, release.TagName, err)
	}

	return &model.ReleaseResult{
		ID:  created.GetID(),
		URL: created.GetHTMLURL(),
	}, nil
}

// ResolveTagSHA returns the commit SHA the given tag points at
func (c *client) ResolveTagSHA(ctx context.Context, owner, repo, tag string) (string, error) {
	sha, _, err := c.githubClient.Repositories.GetCommitSHA1(ctx, owner, repo, tag, "")
	if err != nil {
		return "", fmt.Errorf("failed to resolve tag %s for %s/%s: %w", tag, owner, repo, err)
	}
	return sha, nil
}
