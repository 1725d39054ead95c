// Package telephony places outbound calls through the Twilio REST API and
// renders the TwiML documents Twilio fetches back during a call.
package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.twilio.com"

// Caller places an outbound call that fetches voice instructions from
// callbackURL once answered. Returns the provider's call handle.
type Caller interface {
	PlaceCall(ctx context.Context, to, callbackURL string) (string, error)
}

// Client calls the Twilio Calls endpoint for one account.
type Client struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	http       *http.Client
}

// Opts holds parameters for creating a Client.
type Opts struct {
	AccountSID string
	AuthToken  string
	From       string        // E.164 source number calls are placed from
	BaseURL    string        // override for tests; defaults to the Twilio API
	Timeout    time.Duration // defaults to 30s
}

// New creates a Twilio Client.
func New(opts Opts) (*Client, error) {
	if opts.AccountSID == "" || opts.AuthToken == "" {
		return nil, fmt.Errorf("telephony: account sid and auth token are required")
	}
	if opts.From == "" {
		return nil, fmt.Errorf("telephony: source number is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Client{
		accountSID: opts.AccountSID,
		authToken:  opts.AuthToken,
		from:       opts.From,
		baseURL:    opts.BaseURL,
		http:       &http.Client{Timeout: opts.Timeout},
	}, nil
}

// PlaceCall instructs Twilio to dial `to` and fetch TwiML from callbackURL.
func (c *Client) PlaceCall(ctx context.Context, to, callbackURL string) (string, error) {
	form := url.Values{
		"To":   {to},
		"From": {c.from},
		"Url":  {callbackURL},
	}
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("telephony: build request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("telephony: place call: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusCreated && res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", fmt.Errorf("telephony: place call: status %d: %s", res.StatusCode, msg)
	}

	var call struct {
		SID string `json:"sid"`
	}
	if err := json.NewDecoder(res.Body).Decode(&call); err != nil {
		return "", fmt.Errorf("telephony: decode response: %w", err)
	}
	return call.SID, nil
}
