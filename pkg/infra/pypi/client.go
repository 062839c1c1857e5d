package pypi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

// DefaultUploadURL is the production upload endpoint of PyPI.
const DefaultUploadURL = "https://upload.pypi.org/legacy/"

// TokenUsername is the fixed username for API token authentication.
const TokenUsername = "__token__"

type client struct {
	uploadURL  string
	username   string
	password   string
	httpClient *http.Client
}

// Option configures the package index client
type Option func(*client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

// WithUsername overrides the upload username. The default __token__
// is what API token authentication expects.
func WithUsername(username string) Option {
	return func(c *client) {
		c.username = username
	}
}

// NewClient creates a package index client for the legacy upload API.
// An empty uploadURL selects the production PyPI endpoint; password is
// the API token or account password.
func NewClient(uploadURL, password string, opts ...Option) interfaces.PackageIndex {
	c := &client{
		uploadURL:  uploadURL,
		username:   TokenUsername,
		password:   password,
		httpClient: http.DefaultClient,
	}
	if c.uploadURL == "" {
		c.uploadURL = DefaultUploadURL
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload publishes one distribution file through the legacy upload
// API: a multipart form with the file metadata, digests and content.
func (c *client) Upload(ctx context.Context, artifact *model.Artifact, r io.Reader) error {
	if err := artifact.Validate(); err != nil {
		return err
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	fields := map[string]string{
		":action":          "file_upload",
		"protocol_version": "1",
		"metadata_version": "2.1",
		"name":             artifact.Name,
		"version":          artifact.Version,
		"filetype":         artifact.FileType,
		"pyversion":        "source",
		"sha256_digest":    artifact.SHA256,
		"md5_digest":       artifact.MD5,
	}
	for key, value := range fields {
		if value == "" {
			continue
		}
		if err := form.WriteField(key, value); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", key, err)
		}
	}

	part, err := form.CreateFormFile("content", artifact.Filename)
	if err != nil {
		return fmt.Errorf("failed to create content part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("failed to write content of %s: %w", artifact.Filename, err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return fmt.Errorf("failed to create upload request for %s: %w", c.uploadURL, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload %s to %s: %w", artifact.Filename, c.uploadURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return goerr.New("upload rejected by package index",
			goerr.V("status", resp.StatusCode),
			goerr.V("file", artifact.Filename),
			goerr.V("response", strings.TrimSpace(string(msg))),
		)
	}

	return nil
}
