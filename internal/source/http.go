package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// HTTP serves documents relative to a base URL.
type HTTP struct {
	base   *url.URL
	client *http.Client
}

// NewHTTP constructs an HTTP source. A nil client falls back to a client without a
// timeout; requests are bounded by the caller's context only.
func NewHTTP(base string, client *http.Client) (*HTTP, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return nil, fmt.Errorf("source: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("source: unsupported scheme %q", u.Scheme)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if client == nil {
		client = &http.Client{}
	}
	return &HTTP{base: u, client: client}, nil
}

// Open issues a GET for name relative to the base URL.
func (h *HTTP) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	ref, err := url.Parse(clean)
	if err != nil {
		return nil, fmt.Errorf("source: parse name %q: %w", clean, err)
	}
	target := h.base.ResolveReference(ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-store")
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fmt.Errorf("source: %s: %w", target, ErrNotExist)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("source: %s: status %d", target, resp.StatusCode)
	}
	return resp.Body, nil
}

// Close releases idle connections.
func (h *HTTP) Close() error {
	h.client.CloseIdleConnections()
	return nil
}

func (h *HTTP) String() string { return h.base.String() }
