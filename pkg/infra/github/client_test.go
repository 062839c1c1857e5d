package github_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/shipwright/pkg/domain/model"
	githubinfra "github.com/m-mizutani/shipwright/pkg/infra/github"
)

func TestClient_CreateRelease(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Method).Equal(http.MethodPost)
		gt.Value(t, r.URL.Path).Equal("/repos/owner/mylib/releases")
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 42, "html_url": "https://github.com/owner/mylib/releases/tag/v1.2.3"}`))
	}))
	defer server.Close()

	client, err := githubinfra.NewClientWithToken("test-token", githubinfra.WithBaseURL(server.URL))
	gt.NoError(t, err)

	result, err := client.CreateRelease(context.Background(), &model.Release{
		Owner:      "owner",
		Repo:       "mylib",
		TagName:    "v1.2.3",
		Name:       "Release v1.2.3",
		CommitSHA:  "abc123",
		Draft:      false,
		Prerelease: false,
	})
	gt.NoError(t, err)
	gt.Number(t, result.ID).Equal(int64(42))
	gt.String(t, result.URL).Contains("v1.2.3")

	gt.Value(t, gotBody["tag_name"]).Equal("v1.2.3")
	gt.Value(t, gotBody["name"]).Equal("Release v1.2.3")
	gt.Value(t, gotBody["target_commitish"]).Equal("abc123")
	gt.Value(t, gotBody["draft"]).Equal(false)
	gt.Value(t, gotBody["prerelease"]).Equal(false)
}

func TestClient_CreateRelease_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message": "Validation Failed"}`))
	}))
	defer server.Close()

	client, err := githubinfra.NewClientWithToken("test-token", githubinfra.WithBaseURL(server.URL))
	gt.NoError(t, err)

	_, err = client.CreateRelease(context.Background(), &model.Release{
		Owner:   "owner",
		Repo:    "mylib",
		TagName: "v1.2.3",
		Name:    "Release v1.2.3",
	})
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("failed to create release")
}

func TestClient_ResolveTagSHA(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/repos/owner/mylib/commits/v1.2.3")

		w.Header().Set("Content-Type", "application/vnd.github.sha")
		_, _ = w.Write([]byte("4b2e63aa7ea0953797757ccefa215e150be6c13f"))
	}))
	defer server.Close()

	client, err := githubinfra.NewClientWithToken("", githubinfra.WithBaseURL(server.URL))
	gt.NoError(t, err)

	sha, err := client.ResolveTagSHA(context.Background(), "owner", "mylib", "v1.2.3")
	gt.NoError(t, err)
	gt.Value(t, sha).Equal("4b2e63aa7ea0953797757ccefa215e150be6c13f")
}

func TestClient_DownloadArchive(t *testing.T) {
	zipContent := []byte("fake zip content")

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/owner/mylib/zipball/abc123":
			http.Redirect(w, r, server.URL+"/download/archive.zip", http.StatusFound)
		case "/download/archive.zip":
			w.Header().Set("Content-Type", "application/zip")
			_, _ = w.Write(zipContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := githubinfra.NewClientWithToken("", githubinfra.WithBaseURL(server.URL))
	gt.NoError(t, err)

	data, err := client.DownloadArchive(context.Background(), "owner", "mylib", "abc123")
	gt.NoError(t, err)
	gt.Value(t, string(data)).Equal(string(zipContent))
}

func TestClient_AppAuth(t *testing.T) {
	// This test requires GitHub App credentials from environment variables
	appID := os.Getenv("TEST_GITHUB_APP_ID")
	installationID := os.Getenv("TEST_GITHUB_INSTALLATION_ID")
	privateKey := os.Getenv("TEST_GITHUB_PRIVATE_KEY")

	if appID == "" || installationID == "" || privateKey == "" {
		t.Skip("Test GitHub App credentials not provided via environment variables")
	}

	// Parse string IDs to int64
	appIDInt, err := strconv.ParseInt(appID, 10, 64)
	gt.NoError(t, err)

	installationIDInt, err := strconv.ParseInt(installationID, 10, 64)
	gt.NoError(t, err)

	client, err := githubinfra.NewClient(appIDInt, installationIDInt, []byte(privateKey))
	gt.NoError(t, err)
	gt.Value(t, client).NotNil()
}
