// Package speech turns message text into audio via the ElevenLabs
// text-to-speech API.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.elevenlabs.io"

// Synthesizer produces an audio rendering of the given text.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// VoiceSettings are the fixed rendering parameters sent with every request.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Client calls the ElevenLabs text-to-speech endpoint for one voice.
type Client struct {
	apiKey   string
	voiceID  string
	settings VoiceSettings
	baseURL  string
	http     *http.Client
}

// Opts holds parameters for creating a Client.
type Opts struct {
	APIKey   string
	VoiceID  string
	Settings VoiceSettings
	BaseURL  string        // override for tests; defaults to the ElevenLabs API
	Timeout  time.Duration // defaults to 60s: synthesis of long messages is slow
}

// New creates an ElevenLabs Client.
func New(opts Opts) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("speech: api key is required")
	}
	if opts.VoiceID == "" {
		return nil, fmt.Errorf("speech: voice id is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Client{
		apiKey:   opts.APIKey,
		voiceID:  opts.VoiceID,
		settings: opts.Settings,
		baseURL:  opts.BaseURL,
		http:     &http.Client{Timeout: opts.Timeout},
	}, nil
}

// Synthesize sends text to the voice endpoint and returns the audio payload.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload := struct {
		Text          string        `json:"text"`
		VoiceSettings VoiceSettings `json:"voice_settings"`
	}{
		Text:          text,
		VoiceSettings: c.settings,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("speech: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("speech: build request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech: synthesize: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("speech: synthesize: status %d: %s", res.StatusCode, msg)
	}

	audio, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("speech: read audio: %w", err)
	}
	return audio, nil
}
