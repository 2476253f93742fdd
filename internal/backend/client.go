// Package backend is the HTTP client for the external FinJar API, the
// system of record for jars and deposits. The reporting service only ever
// reads from it; all writes happen elsewhere.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrAuthMissing means no bearer credential is available; no request is
	// attempted in that case.
	ErrAuthMissing = errors.New("no authentication token available")

	// ErrUnauthorized means the backend rejected the credential. It is not
	// retried here; the caller surfaces it as a re-login prompt.
	ErrUnauthorized = errors.New("backend rejected the authentication token")
)

// TokenSource supplies the bearer credential for each request. The settings
// store implements it so a token saved at runtime takes effect immediately.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource for a fixed credential, e.g. from the
// environment in the export CLI.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }

// Client talks to the FinJar backend REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// NewClient creates a backend client for the given base URL. A zero timeout
// falls back to 10 seconds.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

// get issues an authenticated GET and decodes the JSON body into out.
// A body that fails JSON decoding is a hard error: the backend owns one
// wire schema and unparseable payloads are an upstream defect, not
// something to recover from.
func (c *Client) get(ctx context.Context, path string, out any) error {
	if c == nil || c.baseURL == "" {
		return fmt.Errorf("backend client not configured")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if token == "" {
		return ErrAuthMissing
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
