// Package openlibrary is a small client for the OpenLibrary search API.
package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// Client defaults.
const (
	DefaultBaseURL   = "https://openlibrary.org"
	DefaultTimeout   = 5 * time.Second
	DefaultUserAgent = "shelf/1.0"
	DefaultRPS       = 5.0

	authorSearchPath = "/search/authors.json"
	maxResponseBytes = 4 << 20
)

// Client performs rate-limited GETs against OpenLibrary.
type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
}

// NewClient creates a client. Every option has a working default.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  DefaultUserAgent,
		baseURL:    DefaultBaseURL,
		limiter:    rate.NewLimiter(rate.Limit(DefaultRPS), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchAuthors queries authors.json for name and returns the upstream JSON body as-is.
// The name is always query-escaped.
func (c *Client) SearchAuthors(ctx context.Context, name string) (json.RawMessage, error) {
	body, err := c.RawGet(ctx, c.AuthorSearchURL(name))
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: author search returned invalid JSON", ErrDecode)
	}
	return json.RawMessage(body), nil
}

// AuthorSearchURL returns the URL SearchAuthors would request for name.
func (c *Client) AuthorSearchURL(name string) string {
	return c.baseURL + authorSearchPath + "?" + url.Values{"q": {name}}.Encode()
}

// RawGet performs a single GET and returns the body of a 200 response.
// Non-200 responses yield a *StatusError. No retries are attempted.
// The client timeout bounds the whole call, time spent in the limiter included.
func (c *Client) RawGet(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.httpClient.Timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() == nil {
			// The limiter refuses up front when the next token is past the deadline.
			return nil, fmt.Errorf("%w: %w: %w", ErrRequest, ErrRateLimited, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a bounded amount so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &StatusError{Code: resp.StatusCode, URL: rawURL}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrRequest, err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, maxResponseBytes)
	}
	return body, nil
}

// IsTimeout reports whether err was caused by a deadline, a client timeout
// or a limiter wait that could not finish in time.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrRateLimited) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
