// Package config loads and validates the TOML configuration.
//
// Every key can come from three places; the first match wins:
// environment variable, config file, built-in default. A missing config
// file is seeded from the embedded default on first run.
package config

import (
	_ "embed"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"

	"github.com/excoffierleonard/downdetector/internal/domain"
)

//go:embed config.default.toml
var defaultConfig []byte

const (
	DefaultTimeoutSecs  = 30
	DefaultIntervalSecs = 300

	// check_interval_secs must stay below one day
	maxIntervalSecs = 86399
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const (
	webhookHost   = "discord.com"
	webhookPrefix = "/api/webhooks/"
)

// OptionsConfig is the [config] table: global probe tuning plus the
// Discord notification settings.
type OptionsConfig struct {
	TimeoutSecs       uint64 `mapstructure:"timeout_secs"`
	CheckIntervalSecs uint64 `mapstructure:"check_interval_secs"`
	WebhookURL        string `mapstructure:"webhook_url"`
	DiscordID         uint64 `mapstructure:"discord_id"`
}

// SiteOverride tunes one site away from the globals. Zero values inherit.
type SiteOverride struct {
	URL               string `mapstructure:"url"`
	CheckIntervalSecs uint64 `mapstructure:"check_interval_secs"`
	TimeoutSecs       uint64 `mapstructure:"timeout_secs"`
}

type SitesConfig struct {
	URLs      []string       `mapstructure:"urls"`
	Overrides []SiteOverride `mapstructure:"overrides"`
}

// APIConfig enables the status HTTP API when Addr is set.
type APIConfig struct {
	Addr string `mapstructure:"addr"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Dir   string `mapstructure:"dir"`
}

type Config struct {
	Options OptionsConfig `mapstructure:"config"`
	Sites   SitesConfig   `mapstructure:"sites"`
	API     APIConfig     `mapstructure:"api"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ResolvePath returns the config file to use. An explicit path wins; with
// none given, the per-user default location is used and seeded from the
// embedded default config when absent.
func ResolvePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	path := filepath.Join(base, "downdetector", "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, defaultConfig, 0o644); err != nil {
		return "", fmt.Errorf("write default config: %w", err)
	}
	return path, nil
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	v.SetDefault("config.timeout_secs", DefaultTimeoutSecs)
	v.SetDefault("config.check_interval_secs", DefaultIntervalSecs)
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("logging.dir", "logs")

	// environment wins over the file
	_ = v.BindEnv("config.webhook_url", "WEBHOOK_URL")
	_ = v.BindEnv("config.discord_id", "DISCORD_ID")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Options,
			validation.Required,
			validation.By(func(value interface{}) error {
				oc, ok := value.(OptionsConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be an OptionsConfig")
				}
				return validation.ValidateStruct(&oc,
					validation.Field(&oc.TimeoutSecs,
						validation.Required.Error("must be greater than 0"),
						validation.Min(uint64(1)),
					),
					validation.Field(&oc.CheckIntervalSecs,
						validation.Required.Error("must be greater than 0"),
						validation.Min(uint64(1)),
						validation.Max(uint64(maxIntervalSecs)),
					),
					validation.Field(&oc.WebhookURL,
						validation.By(validateWebhookURL),
					),
				)
			}),
		),
		validation.Field(&c.Sites,
			validation.By(func(value interface{}) error {
				sc, ok := value.(SitesConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a SitesConfig")
				}
				return sc.validate()
			}),
		),
		validation.Field(&c.API,
			validation.By(func(value interface{}) error {
				ac, ok := value.(APIConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be an APIConfig")
				}
				if ac.Addr == "" {
					// status API disabled
					return nil
				}
				return validateHostPort(ac.Addr)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
	)
}

func (s SitesConfig) validate() error {
	if err := validation.Validate(s.URLs, validation.Each(validation.By(validateSiteURL))); err != nil {
		return err
	}

	listed := make(map[string]bool, len(s.URLs))
	for _, u := range s.URLs {
		listed[u] = true
	}
	for i, o := range s.Overrides {
		if o.URL == "" {
			return validation.NewError("validation_override_url",
				fmt.Sprintf("overrides[%d]: url is required", i))
		}
		if !listed[o.URL] {
			return validation.NewError("validation_override_unknown",
				fmt.Sprintf("overrides[%d]: %s is not a configured site", i, o.URL))
		}
		if o.CheckIntervalSecs > maxIntervalSecs {
			return validation.NewError("validation_override_interval",
				fmt.Sprintf("overrides[%d]: check_interval_secs must be less than 86400", i))
		}
	}
	return nil
}

// MentionID renders the Discord user id for mentions, empty when unset.
func (c *Config) MentionID() string {
	if c.Options.DiscordID == 0 {
		return ""
	}
	return strconv.FormatUint(c.Options.DiscordID, 10)
}

// Targets expands the configured sites into probe targets. Duplicate URLs
// collapse into one target, first occurrence wins. Overrides replace the
// global interval or timeout per site, zero meaning inherit.
func (c *Config) Targets() []domain.Target {
	overrides := make(map[string]SiteOverride, len(c.Sites.Overrides))
	for _, o := range c.Sites.Overrides {
		if _, dup := overrides[o.URL]; !dup {
			overrides[o.URL] = o
		}
	}

	seen := make(map[string]bool, len(c.Sites.URLs))
	targets := make([]domain.Target, 0, len(c.Sites.URLs))
	for _, u := range c.Sites.URLs {
		if seen[u] {
			continue
		}
		seen[u] = true

		t := domain.Target{
			URL:      u,
			Interval: time.Duration(c.Options.CheckIntervalSecs) * time.Second,
			Timeout:  time.Duration(c.Options.TimeoutSecs) * time.Second,
		}
		if o, ok := overrides[u]; ok {
			if o.CheckIntervalSecs > 0 {
				t.Interval = time.Duration(o.CheckIntervalSecs) * time.Second
			}
			if o.TimeoutSecs > 0 {
				t.Timeout = time.Duration(o.TimeoutSecs) * time.Second
			}
		}
		targets = append(targets, t)
	}
	return targets
}

func validateWebhookURL(value interface{}) error {
	raw, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if raw == "" {
		// notifications disabled
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}
	if u.Scheme != "https" || u.Host != webhookHost || !strings.HasPrefix(u.Path, webhookPrefix) {
		return validation.NewError("validation_invalid_webhook",
			"must be a Discord webhook starting with https://"+webhookHost+webhookPrefix)
	}
	return nil
}

func validateSiteURL(value interface{}) error {
	raw, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if raw == "" {
		return validation.NewError("validation_empty_url", "site URL cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}
	if u.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}
	return nil
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}
	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}
	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}
	return nil
}
