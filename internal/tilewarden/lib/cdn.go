package lib

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Client talks to a CDN that publishes a newline-delimited listing of its
// object paths at /files.txt. Both the image CDN and the assets CDN follow
// this convention.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient creates a CDN client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// ListObjects fetches the remote listing and returns one object path per
// line. Network failures and non-success statuses surface as a
// *TransientFetchError so callers can abort the current area without
// crashing the whole run.
func (c *Client) ListObjects(ctx context.Context) ([]string, error) {
	url := c.BaseURL + "/" + ListingFileName

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &TransientFetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransientFetchError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientFetchError{URL: url, Err: err}
	}

	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(string(body)), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// ResolveLatest returns the most recent version published for an area.
// Listing lines look like areas/planet/20240101_120000_pt/tiles.btrfs.gz;
// the version segment is extracted from every matching line and the
// lexicographic maximum wins. This is only correct because versions are
// fixed-width zero-padded timestamps; the comparison is deliberately NOT
// semantic. Malformed lines are skipped, not fatal.
func (c *Client) ResolveLatest(ctx context.Context, area string) (string, error) {
	lines, err := c.ListObjects(ctx)
	if err != nil {
		return "", err
	}

	var versions []string
	for _, line := range lines {
		if !strings.Contains(line, "areas/"+area+"/") || !strings.Contains(line, CompressedImageName) {
			continue
		}
		parts := strings.Split(line, "/")
		if len(parts) >= 4 {
			versions = append(versions, parts[2])
		}
	}

	if len(versions) == 0 {
		return "", fmt.Errorf("area %s: %w", area, ErrNotFound)
	}

	sort.Strings(versions)
	return versions[len(versions)-1], nil
}

// SpriteArchives returns the listing entries for published sprite archives,
// e.g. sprites/ofm_f384.tar.gz.
func (c *Client) SpriteArchives(ctx context.Context) ([]string, error) {
	lines, err := c.ListObjects(ctx)
	if err != nil {
		return nil, err
	}

	var archives []string
	for _, line := range lines {
		if strings.HasPrefix(line, "sprites/") && strings.HasSuffix(line, ".tar.gz") {
			archives = append(archives, line)
		}
	}
	return archives, nil
}

// ImageURL returns the download URL for an area's compressed btrfs image.
func (c *Client) ImageURL(area, version string) string {
	return fmt.Sprintf("%s/areas/%s/%s/%s", c.BaseURL, area, version, CompressedImageName)
}

// AssetURL returns the download URL for a named asset archive.
func (c *Client) AssetURL(name string) string {
	return fmt.Sprintf("%s/%s/%s.tar.gz", c.BaseURL, name, AssetMarkerDirName)
}

// ObjectURL returns the download URL for an arbitrary listed object path.
func (c *Client) ObjectURL(objectPath string) string {
	return c.BaseURL + "/" + strings.TrimLeft(objectPath, "/")
}

// RemoteSize probes an object's size with a HEAD request. Size probing is
// best-effort: any failure, non-200 status or missing Content-Length yields
// 0, which callers treat as "unknown" (warn and proceed, per the preflight
// soft-fail rule).
func (c *Client) RemoteSize(ctx context.Context, url string) int64 {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0
	}
	size, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	if err != nil || size < 0 {
		return 0
	}
	return size
}
