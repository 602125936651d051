package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

var _ Client = (*DefaultClient)(nil)

// DefaultClient performs plain GETs through an injected http.Client.
// Budgeting is the transport's business; this client only shapes the
// request and drains the response.
type DefaultClient struct {
	userAgent string
	maxBody   int64
	http      *http.Client
}

// Params holds configuration for creating a DefaultClient.
type Params struct {
	UserAgent    string
	MaxBodyBytes int64
	HTTPClient   *http.Client
}

// New creates a new DefaultClient from the given params.
func New(p Params) *DefaultClient {
	httpClient := p.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	maxBody := p.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	return &DefaultClient{
		userAgent: p.UserAgent,
		maxBody:   maxBody,
		http:      httpClient,
	}
}

func (c *DefaultClient) Get(ctx context.Context, rawURL string) (Result, error) {
	endpoint, err := url.Parse(rawURL)
	if err != nil {
		return Result{}, fmt.Errorf("fetch: parse url %q: %w", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Accept", "*/*")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(io.Discard, io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return Result{}, err
	}

	return Result{
		URL:        endpoint.String(),
		StatusCode: resp.StatusCode,
		BodyBytes:  n,
	}, nil
}
