package spotify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const apiBaseURL = "https://api.spotify.com/v1"

// UpstreamResponse is a fully-read upstream reply. Status and body are
// relayed to the caller verbatim whether or not the upstream succeeded.
type UpstreamResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func (r *UpstreamResponse) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Proxy forwards passthrough requests to the Spotify Web API under a caller
// supplied bearer token. It never reinterprets upstream error semantics.
type Proxy struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

func NewProxy() *Proxy {
	return NewProxyWithBaseURL(apiBaseURL)
}

// NewProxyWithBaseURL exists so tests can forward to a local upstream.
func NewProxyWithBaseURL(baseURL string) *Proxy {
	return &Proxy{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		// Spotify rate-limits per app in a rolling 30s window; staying under
		// ten requests a second keeps this client well clear of 429s.
		limiter: rate.NewLimiter(rate.Limit(10), 20),
	}
}

// Forward sends one request upstream: the path and raw query are preserved
// verbatim, the method is kept, the bearer header is replaced with the
// supplied token, and the body (already serialized) rides along on non-read
// methods. A returned error means a transport-level failure; upstream HTTP
// errors come back as an UpstreamResponse instead.
func (p *Proxy) Forward(ctx context.Context, method string, path string, rawQuery string, body []byte, accessToken string) (*UpstreamResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	target := p.baseURL + path
	if rawQuery != "" {
		target += "?" + rawQuery
	}

	var reader io.Reader
	if method != http.MethodGet && len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}

	return &UpstreamResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        respBody,
	}, nil
}
