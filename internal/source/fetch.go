package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/ZebulonRouseFrantzich/webdrivermanager/internal/logger"
)

// maxBodySize caps metadata responses. Listings and release pages are far smaller.
const maxBodySize = 32 << 20

// fetcher performs metadata GETs and buffers the whole body.
type fetcher struct {
	client    *http.Client
	userAgent string
	log       logger.Logger
}

type response struct {
	StatusCode int
	Body       []byte
	// URL is the final URL after redirects.
	URL *url.URL
}

func (r *response) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *response) upstreamError(rawURL string) *UpstreamError {
	return &UpstreamError{URL: rawURL, StatusCode: r.StatusCode, Body: string(r.Body)}
}

func (f *fetcher) get(ctx context.Context, rawURL string, header http.Header) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	f.log.Debug("Attempting to access URL", "url", rawURL)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", rawURL, err)
	}

	return &response{StatusCode: resp.StatusCode, Body: body, URL: resp.Request.URL}, nil
}

// getOK is get with any non-2xx status turned into an UpstreamError.
func (f *fetcher) getOK(ctx context.Context, rawURL string, header http.Header) (*response, error) {
	resp, err := f.get(ctx, rawURL, header)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, resp.upstreamError(rawURL)
	}
	return resp, nil
}
