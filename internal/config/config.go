package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config aggregates configuration for the whole service.
type Config struct {
	Server    ServerConfig
	Twilio    TwilioConfig
	TryOn     TryOnConfig
	Artifacts ArtifactsConfig
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
}

// Addr returns the listen address. PORT may be a bare port or a full
// address such as ":8080" or "127.0.0.1:8080".
func (c ServerConfig) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// TwilioConfig holds the messaging transport credentials.
type TwilioConfig struct {
	AccountSID   string `env:"TWILIO_ACCOUNT_SID"`
	AuthToken    string `env:"TWILIO_AUTH_TOKEN"`
	WhatsAppFrom string `env:"TWILIO_WHATSAPP_FROM" envDefault:"whatsapp:+14155238886"`
}

// TryOnConfig describes the external synthesis service.
type TryOnConfig struct {
	BaseURL        string `env:"TRYON_BASE_URL" envDefault:"https://nymbo-virtual-try-on.hf.space"`
	TimeoutSeconds int    `env:"TRYON_TIMEOUT_SECONDS" envDefault:"300"`
}

// Timeout bounds one whole synthesis attempt.
func (c TryOnConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ArtifactsConfig describes where result images live and how their
// public links are built.
type ArtifactsConfig struct {
	Dir           string `env:"ARTIFACTS_DIR" envDefault:"static"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
}

// Load parses configuration from the environment. Missing transport
// credentials or the public base URL are hard errors: without them the
// service cannot reply to anyone or hand out working result links.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Server.Port = strings.TrimSpace(cfg.Server.Port)
	if strings.Contains(cfg.Server.Port, " ") {
		return nil, fmt.Errorf("invalid PORT value: %q", cfg.Server.Port)
	}

	cfg.Twilio.AccountSID = strings.TrimSpace(cfg.Twilio.AccountSID)
	cfg.Twilio.AuthToken = strings.TrimSpace(cfg.Twilio.AuthToken)
	if cfg.Twilio.AccountSID == "" || cfg.Twilio.AuthToken == "" {
		return nil, fmt.Errorf("TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN are required")
	}

	cfg.Artifacts.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.Artifacts.PublicBaseURL), "/")
	if cfg.Artifacts.PublicBaseURL == "" {
		return nil, fmt.Errorf("PUBLIC_BASE_URL is required")
	}

	if cfg.TryOn.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid TRYON_TIMEOUT_SECONDS value: %d", cfg.TryOn.TimeoutSeconds)
	}

	return cfg, nil
}
