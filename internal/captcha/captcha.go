// Package captcha verifies reCAPTCHA challenge tokens before any paid
// downstream service is invoked.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const siteverifyURL = "https://www.google.com/recaptcha/api/siteverify"

// Verifier reports whether a client-supplied challenge token passes.
type Verifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// Client calls Google's siteverify endpoint.
type Client struct {
	secret  string
	baseURL string
	http    *http.Client
}

// Opts holds parameters for creating a Client.
type Opts struct {
	Secret  string
	BaseURL string        // override for tests; defaults to Google's endpoint
	Timeout time.Duration // defaults to 10s
}

// New creates a siteverify Client.
func New(opts Opts) (*Client, error) {
	if opts.Secret == "" {
		return nil, fmt.Errorf("captcha: secret is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = siteverifyURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Client{
		secret:  opts.Secret,
		baseURL: opts.BaseURL,
		http:    &http.Client{Timeout: opts.Timeout},
	}, nil
}

// Verify submits the token and returns the provider's verdict. A missing or
// empty token is a failed verdict, not an error.
func (c *Client) Verify(ctx context.Context, token string) (bool, error) {
	form := url.Values{
		"secret":   {c.secret},
		"response": {token},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("captcha: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("captcha: siteverify: %w", err)
	}
	defer res.Body.Close()

	var verdict struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(res.Body).Decode(&verdict); err != nil {
		return false, fmt.Errorf("captcha: decode verdict: %w", err)
	}
	return verdict.Success, nil
}
