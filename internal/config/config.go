// Package config provides YAML and environment based configuration for voicecast.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level voicecast configuration, loaded from voicecast.yaml
// plus environment variables for secrets.
type Config struct {
	Port      int    `yaml:"port"`
	BaseURL   string `yaml:"base_url"`
	SQLite    string `yaml:"sqlite"`
	StaticDir string `yaml:"static_dir"`
	Voice     Voice  `yaml:"voice"`

	// RecaptchaSiteKey is the public widget key rendered into the call form.
	// The shared secret stays in Secrets.
	RecaptchaSiteKey string `yaml:"recaptcha_site_key"`

	Secrets Secrets `yaml:"-"`
}

// Voice holds the fixed ElevenLabs voice-rendering parameters.
type Voice struct {
	Stability       float64 `yaml:"stability"`
	SimilarityBoost float64 `yaml:"similarity_boost"`
}

// Secrets holds credentials read from the environment, never from YAML.
type Secrets struct {
	GoogleClientID     string
	GoogleClientSecret string
	SessionKey         string
	RecaptchaSecret    string
	ElevenLabsAPIKey   string
	ElevenLabsVoiceID  string
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioPhoneNumber  string
}

// Load reads a YAML config file from path, merges environment secrets, and
// returns a validated Config. A missing file is not an error: defaults apply
// and only the environment is consulted.
func Load(path string) (*Config, error) {
	// Best-effort .env loading for local development.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			data = nil
		} else {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config with secrets taken
// from the current environment.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse: %w", err)
		}
	}
	cfg.Secrets = secretsFromEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func secretsFromEnv() Secrets {
	return Secrets{
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		SessionKey:         os.Getenv("SESSION_SECRET"),
		RecaptchaSecret:    os.Getenv("RECAPTCHA_SECRET_KEY"),
		ElevenLabsAPIKey:   os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsVoiceID:  os.Getenv("ELEVENLABS_VOICE_ID"),
		TwilioAccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber:  os.Getenv("TWILIO_PHONE_NUMBER"),
	}
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 5000
	}
	if c.BaseURL == "" {
		c.BaseURL = fmt.Sprintf("http://localhost:%d", c.Port)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.SQLite == "" {
		c.SQLite = "calls.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "static"
	}
	if c.Voice.Stability == 0 {
		c.Voice.Stability = 0.4
	}
	if c.Voice.SimilarityBoost == 0 {
		c.Voice.SimilarityBoost = 0.75
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("port %d out of range", c.Port))
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		errs = append(errs, fmt.Sprintf("base_url %q must start with http:// or https://", c.BaseURL))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// RequireSecrets verifies that every credential needed to serve real traffic
// is present. Called by the serve command rather than Load so the migrate
// command and tests can run without a full environment.
func (c *Config) RequireSecrets() error {
	var missing []string
	check := func(name, v string) {
		if v == "" {
			missing = append(missing, name)
		}
	}
	check("GOOGLE_CLIENT_ID", c.Secrets.GoogleClientID)
	check("GOOGLE_CLIENT_SECRET", c.Secrets.GoogleClientSecret)
	check("SESSION_SECRET", c.Secrets.SessionKey)
	check("RECAPTCHA_SECRET_KEY", c.Secrets.RecaptchaSecret)
	check("ELEVENLABS_API_KEY", c.Secrets.ElevenLabsAPIKey)
	check("ELEVENLABS_VOICE_ID", c.Secrets.ElevenLabsVoiceID)
	check("TWILIO_ACCOUNT_SID", c.Secrets.TwilioAccountSID)
	check("TWILIO_AUTH_TOKEN", c.Secrets.TwilioAuthToken)
	check("TWILIO_PHONE_NUMBER", c.Secrets.TwilioPhoneNumber)
	if len(missing) > 0 {
		return fmt.Errorf("config: missing environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}
