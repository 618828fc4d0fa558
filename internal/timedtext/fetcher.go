package timedtext

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/Taichi-iskw/yt-search/internal/errors"
)

const (
	defaultDialTimeout     = 10 * time.Second
	defaultResponseHeader  = 15 * time.Second
	defaultIdleConnTimeout = 90 * time.Second
	defaultUserAgent       = "ytsearch/1.0"

	// maxPayloadBytes bounds a single caption download
	maxPayloadBytes = 32 << 20
)

// Fetcher downloads raw timed-text payloads
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherOption configures an HTTPFetcher
type FetcherOption func(*HTTPFetcher)

// WithTimeout sets the overall per-request timeout
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *HTTPFetcher) { f.client.Timeout = d }
}

// WithHTTPClient replaces the underlying client
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *HTTPFetcher) { f.client = c }
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) FetcherOption {
	return func(f *HTTPFetcher) { f.userAgent = ua }
}

// HTTPFetcher is the HTTP transport for caption payloads
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// NewHTTPFetcher creates a fetcher with bounded dial and header timeouts
func NewHTTPFetcher(opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   defaultDialTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: defaultResponseHeader,
				IdleConnTimeout:       defaultIdleConnTimeout,
				MaxIdleConns:          20,
				MaxIdleConnsPerHost:   5,
				ForceAttemptHTTP2:     true,
			},
		},
		userAgent: defaultUserAgent,
		maxBytes:  maxPayloadBytes,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch downloads url. Network failures and non-2xx responses are CaptionFetchErrors.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeCaptionFetch, fmt.Sprintf("invalid caption url %q", url))
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeCaptionFetch, "failed to download caption")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return nil, errors.New(errors.CodeCaptionFetch, fmt.Sprintf("caption download returned HTTP %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeCaptionFetch, "failed to read caption body")
	}
	if int64(len(body)) > f.maxBytes {
		return nil, errors.New(errors.CodeCaptionFetch, fmt.Sprintf("caption body exceeds %d bytes", f.maxBytes))
	}
	return body, nil
}
