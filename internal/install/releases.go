package install

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"bap/internal/registry"
)

const (
	userAgent       = "bap-cli"
	releasesPerPage = 100
	tokenEnv        = "GITHUB_TOKEN"
)

type githubRelease struct {
	TagName    string `json:"tag_name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

// Release is one remotely available version.
type Release struct {
	Version    string `json:"version"`
	Tag        string `json:"tag"`
	Prerelease bool   `json:"prerelease,omitempty"`
}

// ReleaseLister enumerates published agent releases from the GitHub API.
type ReleaseLister struct {
	APIBaseURL string
	Repository string
	Client     *http.Client
	Token      string
	Cache      *ReleaseCache
}

// NewReleaseLister returns a lister for repo ("owner/name") that
// authenticates with $GITHUB_TOKEN when it is set.
func NewReleaseLister(apiBaseURL, repo string, timeout time.Duration) *ReleaseLister {
	return &ReleaseLister{
		APIBaseURL: strings.TrimRight(apiBaseURL, "/"),
		Repository: repo,
		Client:     &http.Client{Timeout: timeout},
		Token:      os.Getenv(tokenEnv),
	}
}

// List returns every published, non-draft release newest first, as the API
// orders them. A fresh cached listing is returned without touching the
// network unless refresh is set.
func (l *ReleaseLister) List(ctx context.Context, refresh bool) ([]Release, error) {
	if l.Cache != nil && !refresh {
		if cached, ok := l.Cache.Load(l.Repository); ok {
			return cached, nil
		}
	}

	var out []Release
	for page := 1; ; page++ {
		batch, err := l.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		for _, rel := range batch {
			if rel.Draft || rel.TagName == "" {
				continue
			}
			out = append(out, Release{
				Version:    registry.Normalize(rel.TagName),
				Tag:        rel.TagName,
				Prerelease: rel.Prerelease,
			})
		}
	}

	if l.Cache != nil {
		l.Cache.Store(l.Repository, out)
	}
	return out, nil
}

func (l *ReleaseLister) pageURL(page int) string {
	return fmt.Sprintf("%s/repos/%s/releases?page=%d&per_page=%d", l.APIBaseURL, l.Repository, page, releasesPerPage)
}

func (l *ReleaseLister) fetchPage(ctx context.Context, page int) ([]githubRelease, error) {
	endpoint := l.pageURL(page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	if l.Token != "" {
		req.Header.Set("Authorization", "token "+l.Token)
	}

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &registry.DownloadError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &registry.DownloadError{URL: endpoint, Status: resp.Status}
	}

	var releases []githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, fmt.Errorf("decode releases page %d: %w", page, err)
	}
	return releases, nil
}
