// Package release is the GitHub Releases boundary: it locates a release by
// tag, latest, or tag glob pattern, enumerates its downloadable assets, and
// fetches their bytes. The manifest core never talks to the network; it is
// handed the data this package produces.
package release

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Asset is one downloadable artifact attached to a release.
type Asset struct {
	Name string `json:"name"`
	URL  string `json:"browser_download_url"`
	Size int64  `json:"size"`
}

// Release is a published release and its assets.
type Release struct {
	TagName string  `json:"tag_name"`
	Assets  []Asset `json:"assets"`
}

// HTTPFetcher abstracts HTTP calls for testability.
type HTTPFetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the GitHub Releases API for one repository.
type Client struct {
	owner   string
	repo    string
	token   string
	baseURL string
	fetcher HTTPFetcher
}

// NewClient creates a production client. token may be empty; when set it is
// sent as an Authorization header, which raises the API rate limit.
func NewClient(owner, repo, token string) *Client {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
	return NewClientWithFetcher(owner, repo, token, "https://api.github.com", httpClient)
}

// NewClientWithFetcher creates a client with injectable HTTP and base URL for
// testing.
func NewClientWithFetcher(owner, repo, token, baseURL string, fetcher HTTPFetcher) *Client {
	return &Client{owner: owner, repo: repo, token: token, baseURL: baseURL, fetcher: fetcher}
}

// ByTag fetches the release published under an exact tag.
func (c *Client) ByTag(tag string) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", c.baseURL, c.owner, c.repo, tag)
	var rel Release
	if err := c.getJSON(url, &rel); err != nil {
		return nil, err
	}
	return &rel, nil
}

// Latest fetches the most recent non-draft, non-prerelease release.
func (c *Client) Latest() (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, c.owner, c.repo)
	var rel Release
	if err := c.getJSON(url, &rel); err != nil {
		return nil, err
	}
	return &rel, nil
}

// ByTagPattern lists releases (newest first, as GitHub returns them) and
// returns the first whose tag matches the glob pattern, e.g. "v*".
func (c *Client) ByTagPattern(pattern string) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases", c.baseURL, c.owner, c.repo)
	var releases []Release
	if err := c.getJSON(url, &releases); err != nil {
		return nil, err
	}
	for i := range releases {
		ok, err := doublestar.Match(pattern, releases[i].TagName)
		if err != nil {
			return nil, fmt.Errorf("bad tag pattern %q: %w", pattern, err)
		}
		if ok {
			return &releases[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no tag matches %q", ErrNotFound, pattern)
}

// Download opens the byte stream of an asset. The caller must close it.
func (c *Client) Download(asset Asset) (io.ReadCloser, error) {
	req, err := http.NewRequest(http.MethodGet, asset.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", asset.Name, err)
	}
	req.Header.Set("User-Agent", "assetmanifest")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.fetcher.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: asset.URL, Wrapped: err}
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: asset %s", ErrNotFound, asset.Name)
		}
		return nil, &NetworkError{URL: asset.URL, Wrapped: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}
	return resp.Body, nil
}

func (c *Client) getJSON(url string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "assetmanifest")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.fetcher.Do(req)
	if err != nil {
		return &NetworkError{URL: url, Wrapped: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s/%s", ErrNotFound, c.owner, c.repo)
	case resp.StatusCode == http.StatusForbidden, resp.StatusCode == http.StatusTooManyRequests:
		return &NetworkError{URL: url, Wrapped: fmt.Errorf("GitHub rate limit exceeded (HTTP %d)", resp.StatusCode)}
	case resp.StatusCode >= 500:
		return &NetworkError{URL: url, Wrapped: fmt.Errorf("GitHub server error: HTTP %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("GitHub API error: HTTP %d for %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ParseError{URL: url, Wrapped: err}
	}
	return nil
}
