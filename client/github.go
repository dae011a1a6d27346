// Package client builds authenticated GitHub API clients.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"
)

// NewGitHub returns an authenticated GitHub client. GH_TOKEN wins over
// GITHUB_TOKEN so a manually issued token is not shadowed by the
// workflow-provided one. GITHUB_API_URL, which Actions sets on GitHub
// Enterprise, points the client at that instance instead of github.com.
func NewGitHub() (*github.Client, error) {
	token := os.Getenv("GH_TOKEN")
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("a GitHub token is required: set GH_TOKEN or GITHUB_TOKEN")
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	cl := github.NewClient(oauth2.NewClient(context.Background(), src))

	if api := os.Getenv("GITHUB_API_URL"); api != "" {
		// go-github requires a trailing slash on the base URL.
		base, err := url.Parse(strings.TrimSuffix(api, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid GITHUB_API_URL: %w", err)
		}
		cl.BaseURL = base
	}

	return cl, nil
}

// NewMockGitHub wraps a prepared HTTP client, for tests backed by a
// mock transport.
func NewMockGitHub(httpClient *http.Client) *github.Client {
	return github.NewClient(httpClient)
}
