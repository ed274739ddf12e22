package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mwirth/tippbot/internal/predict"
)

type Config struct {
	Site      SiteConfig     `yaml:"site"`
	Tipping   TippingConfig  `yaml:"tipping"`
	Predictor predict.Policy `yaml:"predictor"`
	Notify    NotifyConfig   `yaml:"notify"`
	Health    HealthConfig   `yaml:"health"`
	Logging   LoggingConfig  `yaml:"logging"`
}

type SiteConfig struct {
	BaseURL        string `yaml:"base_url"`
	Email          string `yaml:"email"`    // env KICKTIPP_EMAIL overrides
	Password       string `yaml:"password"` // env KICKTIPP_PASSWORD overrides
	Competition    string `yaml:"competition"`
	BrowserPath    string `yaml:"browser_path"` // chrome binary, empty = PATH lookup
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (s SiteConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

type TippingConfig struct {
	LeadTimeHours       int  `yaml:"lead_time_hours"`
	IntervalMinutes     int  `yaml:"interval_minutes"`
	MaxSubmitAttempts   int  `yaml:"max_submit_attempts"`
	RetryBackoffSeconds int  `yaml:"retry_backoff_seconds"`
	OverwriteTips       bool `yaml:"overwrite_tips"` // resubmit matches the site already holds a tip for
}

func (t TippingConfig) LeadTime() time.Duration {
	return time.Duration(t.LeadTimeHours) * time.Hour
}

func (t TippingConfig) Interval() time.Duration {
	return time.Duration(t.IntervalMinutes) * time.Minute
}

func (t TippingConfig) RetryBackoff() time.Duration {
	return time.Duration(t.RetryBackoffSeconds) * time.Second
}

type NotifyConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Webhook  WebhookConfig  `yaml:"webhook"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

func (t TelegramConfig) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

type WebhookConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (w WebhookConfig) Enabled() bool {
	return w.URL != ""
}

func (w WebhookConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutSeconds) * time.Second
}

type HealthConfig struct {
	Port                     int `yaml:"port"`
	ReadHeaderTimeoutSeconds int `yaml:"read_header_timeout_seconds"`
}

func (h HealthConfig) ReadHeaderTimeout() time.Duration {
	return time.Duration(h.ReadHeaderTimeoutSeconds) * time.Second
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Load reads the yaml config, applies environment overrides for the
// credentials, fills defaults, and validates everything once. Validation
// failures are fatal at startup; no cycle runs with a half-valid config.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("KICKTIPP_EMAIL"); v != "" {
		c.Site.Email = v
	}
	if v := os.Getenv("KICKTIPP_PASSWORD"); v != "" {
		c.Site.Password = v
	}
	if v := os.Getenv("KICKTIPP_COMPETITION"); v != "" {
		c.Site.Competition = v
	}
}

func (c *Config) applyDefaults() {
	if c.Site.TimeoutSeconds <= 0 {
		c.Site.TimeoutSeconds = 30
	}
	if c.Tipping.LeadTimeHours <= 0 {
		c.Tipping.LeadTimeHours = 2
	}
	if c.Tipping.IntervalMinutes <= 0 {
		c.Tipping.IntervalMinutes = 60
	}
	if c.Tipping.MaxSubmitAttempts <= 0 {
		c.Tipping.MaxSubmitAttempts = 3
	}
	if c.Tipping.RetryBackoffSeconds <= 0 {
		c.Tipping.RetryBackoffSeconds = 2
	}
	if len(c.Predictor.Tiers) == 0 {
		c.Predictor = predict.DefaultPolicy()
	}
	if c.Health.Port <= 0 {
		c.Health.Port = 8080
	}
	if c.Health.ReadHeaderTimeoutSeconds <= 0 {
		c.Health.ReadHeaderTimeoutSeconds = 5
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) Validate() error {
	if c.Site.Email == "" {
		return fmt.Errorf("site.email is required (or set KICKTIPP_EMAIL)")
	}
	if c.Site.Password == "" {
		return fmt.Errorf("site.password is required (or set KICKTIPP_PASSWORD)")
	}
	if c.Site.Competition == "" {
		return fmt.Errorf("site.competition is required (or set KICKTIPP_COMPETITION)")
	}
	if err := c.Predictor.Validate(); err != nil {
		return fmt.Errorf("invalid predictor policy: %w", err)
	}
	return nil
}
