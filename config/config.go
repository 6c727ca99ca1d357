/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/robfig/cron/v3"

	"github.com/PivotLLM/ClickBridge/global"
)

// Config provides access to application configuration.
// It is built once at startup and injected into the gateway, the scheduler
// and the tool adapter.
type Config struct {
	configPath      string        // optional JSON config file
	data            *configData   // parsed configuration
	upstreamTimeout time.Duration // parsed from data.UpstreamTimeout
}

// configData holds the parsed configuration (internal).
// Environment variables override values from the config file.
type configData struct {
	ListenAddr      string `json:"listen_addr" env:"GATEWAY_LISTEN_ADDR" env-default:":8787"`
	SharedSecret    string `json:"shared_secret" env:"PD_SHARED_SECRET"`
	APIToken        string `json:"api_token" env:"CLICKUP_API_TOKEN"`
	DefaultListID   string `json:"default_list_id" env:"CLICKUP_DEFAULT_LIST_ID"`
	APIURL          string `json:"api_url" env:"CLICKUP_API_URL" env-default:"https://api.clickup.com/api/v2"`
	UpstreamTimeout string `json:"upstream_timeout" env:"CLICKUP_UPSTREAM_TIMEOUT" env-default:"30s"`
	WeeklySchedule  string `json:"weekly_schedule" env:"CLICKUP_WEEKLY_SCHEDULE" env-default:"0 9 * * 1"`
	GoalsFile       string `json:"goals_file" env:"CLICKUP_GOALS_FILE"`
	WorkerURL       string `json:"worker_url" env:"CLICKUP_WORKER_URL" env-default:"http://localhost:8787"`
	ClientSecret    string `json:"client_secret" env:"CLICKUP_SHARED_SECRET"`
	LogFile         string `json:"log_file" env:"LOG_FILE"`
	LogLevel        string `json:"log_level" env:"LOG_LEVEL" env-default:"INFO"`
}

// Option is a functional option for configuring Config
type Option func(*Config)

// New creates a new Config instance with optional configuration
func New(opts ...Option) *Config {
	c := &Config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithConfigPath sets an explicit config file path
func WithConfigPath(path string) Option {
	return func(c *Config) {
		c.configPath = path
	}
}

// Load reads the optional config file and the environment, then validates
func (c *Config) Load() error {
	var cfg configData

	if c.configPath != "" {
		path := global.ExpandHomePath(c.configPath)
		if !global.FileExists(path) {
			return fmt.Errorf("config file not found: %s", path)
		}
		c.configPath = path
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	c.data = &cfg

	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

// validate validates and normalizes the configuration
func (c *Config) validate() error {
	c.data.LogLevel = strings.ToUpper(strings.TrimSpace(c.data.LogLevel))
	if c.data.LogLevel == "" {
		c.data.LogLevel = global.LogLevelInfo
	}
	if !global.ValidLogLevel(c.data.LogLevel) {
		return fmt.Errorf("unknown log_level %q", c.data.LogLevel)
	}

	if err := validateHTTPURL("api_url", c.data.APIURL); err != nil {
		return err
	}
	if err := validateHTTPURL("worker_url", c.data.WorkerURL); err != nil {
		return err
	}
	c.data.APIURL = strings.TrimRight(c.data.APIURL, "/")
	c.data.WorkerURL = strings.TrimRight(c.data.WorkerURL, "/")

	timeout := c.data.UpstreamTimeout
	if timeout == "" {
		timeout = global.DefaultUpstreamTimeout
	}
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return fmt.Errorf("upstream_timeout %q: %w", timeout, err)
	}
	if d < 0 {
		return fmt.Errorf("upstream_timeout cannot be negative")
	}
	c.upstreamTimeout = d

	if strings.TrimSpace(c.data.WeeklySchedule) == "" {
		c.data.WeeklySchedule = global.DefaultWeeklySchedule
	}
	if _, err := CronParser.Parse(c.data.WeeklySchedule); err != nil {
		return fmt.Errorf("weekly_schedule %q: %w", c.data.WeeklySchedule, err)
	}

	if c.data.GoalsFile != "" {
		c.data.GoalsFile = global.ExpandHomePath(c.data.GoalsFile)
	}
	if c.data.LogFile != "" {
		c.data.LogFile = global.ExpandHomePath(c.data.LogFile)
	}

	return nil
}

func validateHTTPURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s %q: %w", name, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", name, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing a host: %q", name, raw)
	}
	return nil
}

// CronParser parses standard five-field cron expressions
var CronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

var bearerPrefix = regexp.MustCompile(`(?i)^bearer\s+`)

// NormalizeToken strips an optional "Bearer " prefix (any case) and
// surrounding whitespace from an API credential
func NormalizeToken(token string) string {
	return strings.TrimSpace(bearerPrefix.ReplaceAllString(strings.TrimSpace(token), ""))
}

// Getter methods

// ConfigPath returns the path to the loaded config file (empty if env only)
func (c *Config) ConfigPath() string {
	return c.configPath
}

// ListenAddr returns the gateway listen address
func (c *Config) ListenAddr() string {
	return c.data.ListenAddr
}

// SharedSecret returns the secret inbound gateway requests must present
func (c *Config) SharedSecret() string {
	return c.data.SharedSecret
}

// APIToken returns the normalized upstream credential (empty if unset)
func (c *Config) APIToken() string {
	return NormalizeToken(c.data.APIToken)
}

// DefaultListID returns the default upstream list identifier
func (c *Config) DefaultListID() string {
	return strings.TrimSpace(c.data.DefaultListID)
}

// APIURL returns the upstream API base URL without a trailing slash
func (c *Config) APIURL() string {
	return c.data.APIURL
}

// UpstreamTimeout returns the per-call upstream timeout (0 means none)
func (c *Config) UpstreamTimeout() time.Duration {
	return c.upstreamTimeout
}

// WeeklySchedule returns the cron expression for the weekly learning task
func (c *Config) WeeklySchedule() string {
	return c.data.WeeklySchedule
}

// GoalsFile returns the goals persistence file (empty for static goals)
func (c *Config) GoalsFile() string {
	return c.data.GoalsFile
}

// WorkerURL returns the gateway base URL used by the tool adapter
func (c *Config) WorkerURL() string {
	return c.data.WorkerURL
}

// ClientSecret returns the secret the tool adapter sends to the gateway.
// Falls back to the gateway's own shared secret.
func (c *Config) ClientSecret() string {
	if c.data.ClientSecret != "" {
		return c.data.ClientSecret
	}
	return c.data.SharedSecret
}

// LogFile returns the log file path (empty for stderr)
func (c *Config) LogFile() string {
	return c.data.LogFile
}

// LogLevel returns the configured log level
func (c *Config) LogLevel() string {
	return c.data.LogLevel
}

// GatewayWarnings returns non-fatal gateway configuration problems worth
// logging at startup
func (c *Config) GatewayWarnings() []string {
	var warnings []string
	if c.data.SharedSecret == "" {
		warnings = append(warnings, "no shared secret configured - every gateway request will be rejected")
	}
	if c.APIToken() == "" {
		warnings = append(warnings, "CLICKUP_API_TOKEN is not set - upstream calls will fail with configuration_error")
	}
	if c.DefaultListID() == "" {
		warnings = append(warnings, "CLICKUP_DEFAULT_LIST_ID is not set - callers must supply list_id")
	}
	return warnings
}

