package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Logging     LoggingConfig   `toml:"logging"`
	Browser     BrowserConfig   `toml:"browser"`
	Artifacts   ArtifactsConfig `toml:"artifacts"`
	Target      TargetConfig    `toml:"target"`
	Notify      NotifyConfig    `toml:"notify"`
	Schedule    ScheduleConfig  `toml:"schedule"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// Duration wraps time.Duration so TOML values like "5m" or "30s" decode
// through encoding.TextUnmarshaler
type Duration time.Duration

// UnmarshalText parses a Go duration string
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the standard library representation
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// BrowserConfig controls how isolated browser sessions are launched
type BrowserConfig struct {
	Headless          bool     `toml:"headless"`
	NoSandbox         bool     `toml:"no_sandbox"`
	DisableGPU        bool     `toml:"disable_gpu"`
	UserAgent         string   `toml:"user_agent"`
	ScenarioTimeout   Duration `toml:"scenario_timeout"`   // hard cap per scenario run
	NavigationTimeout Duration `toml:"navigation_timeout"` // cap for individual waits inside session helpers
}

// ArtifactsConfig controls where failure diagnostics are written and how
// long they are retained
type ArtifactsConfig struct {
	Dir           string `toml:"dir"`
	RetentionDays int    `toml:"retention_days"`
}

// TargetConfig identifies the web application under test. URL and
// credentials are startup preconditions: runs never start without them.
type TargetConfig struct {
	URL      string `toml:"url"`
	Email    string `toml:"email"`
	Password string `toml:"password"`
}

// NotifyConfig holds process-wide notification defaults, used when a job
// request enables a channel without an explicit target
type NotifyConfig struct {
	EmailTo    string     `toml:"email_to"`    // default recipient(s), comma separated
	WebhookURL string     `toml:"webhook_url"` // default webhook delivery URL
	SMTP       SMTPConfig `toml:"smtp"`
}

type SMTPConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
	FromName string `toml:"from_name"`
	UseTLS   bool   `toml:"use_tls"`
}

// ScheduleConfig enables unattended suite runs on a cron schedule
type ScheduleConfig struct {
	Enabled bool   `toml:"enabled"`
	Cron    string `toml:"cron"` // standard 5-field cron expression
}

// NewDefaultConfig returns configuration with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 3000,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Browser: BrowserConfig{
			Headless:          true,
			NoSandbox:         true,
			DisableGPU:        true,
			UserAgent:         "Herrold-TestRunner/1.0",
			ScenarioTimeout:   Duration(5 * time.Minute),
			NavigationTimeout: Duration(30 * time.Second),
		},
		Artifacts: ArtifactsConfig{
			Dir:           "./test-artifacts",
			RetentionDays: 7,
		},
		Notify: NotifyConfig{
			SMTP: SMTPConfig{
				Port:     587,
				FromName: "Herrold Test Runner",
				UseTLS:   true,
			},
		},
	}
}

// LoadFromFile loads configuration from a TOML file, applying defaults
// first and environment overrides last
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	return config, nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("HERROLD_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("HERROLD_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("HERROLD_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("HANDRAISE_URL"); v != "" {
		config.Target.URL = v
	}
	if v := os.Getenv("HANDRAISE_EMAIL"); v != "" {
		config.Target.Email = v
	}
	if v := os.Getenv("HANDRAISE_PASSWORD"); v != "" {
		config.Target.Password = v
	}
	if v := os.Getenv("EMAIL_TO"); v != "" {
		config.Notify.EmailTo = v
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		config.Notify.WebhookURL = v
	} else if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		config.Notify.WebhookURL = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		config.Notify.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Notify.SMTP.Port = port
		}
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		config.Notify.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASS"); v != "" {
		config.Notify.SMTP.Password = v
	}
	if v := os.Getenv("EMAIL_FROM"); v != "" {
		config.Notify.SMTP.From = v
	}
}

// ApplyFlagOverrides applies command-line flag values (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks startup preconditions. A missing target URL or missing
// credentials is fatal: no run can succeed without them.
func (c *Config) Validate() error {
	if c.Target.URL == "" {
		return fmt.Errorf("target URL not configured (set target.url or HANDRAISE_URL)")
	}
	if c.Target.Email == "" || c.Target.Password == "" {
		return fmt.Errorf("target credentials not configured (set target.email/target.password or HANDRAISE_EMAIL/HANDRAISE_PASSWORD)")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	return nil
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
