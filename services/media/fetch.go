package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single remote fetch. The feeds point at hosts we
// do not control; a hanging download must not stall an import forever.
const DefaultTimeout = 30 * time.Second

// ImageExtensions are the suffixes treated as downloadable images when
// classifying gallery entries.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// IsImagePath reports whether the path ends in a known image extension.
func IsImagePath(p string) bool {
	lower := strings.ToLower(p)
	for _, ext := range ImageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Fetcher downloads remote media referenced by the feeds. Relative paths
// resolve against the base CDN URL; absolute URLs are used as-is.
type Fetcher struct {
	baseURL string
	client  *http.Client
}

// NewFetcher creates a fetcher resolving relative paths against baseURL.
func NewFetcher(baseURL string) *Fetcher {
	return &Fetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
}

// EncodeURL makes an incoming URL or relative CDN path safe to request:
// NBSPs cleaned, path segments percent-encoded.
func (f *Fetcher) EncodeURL(raw string) string {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, " ", " "))
	cleaned = strings.TrimLeft(cleaned, "/")
	if cleaned == "" {
		return ""
	}

	if strings.HasPrefix(cleaned, "http://") || strings.HasPrefix(cleaned, "https://") {
		scheme, rest, _ := strings.Cut(cleaned, "://")
		return scheme + "://" + encodePath(rest)
	}

	base := strings.TrimRight(f.baseURL, "/")
	return base + "/" + encodePath(cleaned)
}

// Fetch downloads the media behind raw, returning its bytes. Any failure
// (bad URL, network error, non-2xx status) comes back as an error; callers
// treat that as "no file attached".
func (f *Fetcher) Fetch(ctx context.Context, raw string) ([]byte, error) {
	target := f.EncodeURL(raw)
	if target == "" {
		return nil, fmt.Errorf("empty media path")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", target, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// encodePath percent-encodes every path segment, leaving slashes intact.
func encodePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
