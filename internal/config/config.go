package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultConfig []byte

// EvaluatorConfig describes how to reach the monitoring evaluator service.
type EvaluatorConfig struct {
	BaseURL  string `yaml:"base_url" env:"EVALBOARD_EVALUATOR_URL"`
	Timeout  string `yaml:"timeout" env:"EVALBOARD_EVALUATOR_TIMEOUT"`
	ProxyURL string `yaml:"proxy_url" env:"EVALBOARD_EVALUATOR_PROXY_URL"`
	PageSize int    `yaml:"page_size" env:"EVALBOARD_EVALUATOR_PAGE_SIZE"`
}

// DefaultEvaluatorTimeout is used when evaluator.timeout is empty or invalid.
const DefaultEvaluatorTimeout = 30 * time.Second

// GetTimeout returns the parsed evaluator timeout.
func (c *EvaluatorConfig) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return DefaultEvaluatorTimeout
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return DefaultEvaluatorTimeout
	}
	return d
}

type DashboardConfig struct {
	Language   string `yaml:"language" env:"EVALBOARD_LANGUAGE"`
	Timezone   string `yaml:"timezone" env:"EVALBOARD_TIMEZONE"`
	PageSize   int    `yaml:"page_size" env:"EVALBOARD_PAGE_SIZE"`
	SessionTTL string `yaml:"session_ttl" env:"EVALBOARD_SESSION_TTL"`
}

// DefaultSessionTTL is how long an idle dashboard session is kept in memory.
const DefaultSessionTTL = 30 * time.Minute

// DefaultPageSize is the number of table rows shown per page.
const DefaultPageSize = 10

// GetSessionTTL returns the parsed session TTL, falling back to DefaultSessionTTL.
func (c *DashboardConfig) GetSessionTTL() time.Duration {
	if c.SessionTTL == "" {
		return DefaultSessionTTL
	}
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return DefaultSessionTTL
	}
	return d
}

// GetPageSize returns the table page size.
func (c *DashboardConfig) GetPageSize() int {
	if c.PageSize <= 0 {
		return DefaultPageSize
	}
	return c.PageSize
}

// GetLocation resolves the display timezone. Unknown names fall back to UTC.
func (c *DashboardConfig) GetLocation() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FixtureConfig configures the development evaluator served by cmd/fakeevaluator.
type FixtureConfig struct {
	ListenPort   string `yaml:"listen_port" env:"EVALBOARD_FIXTURE_PORT"`
	DatabasePath string `yaml:"database_path" env:"EVALBOARD_FIXTURE_DATABASE_PATH"`
	SeedPath     string `yaml:"seed_path" env:"EVALBOARD_FIXTURE_SEED_PATH"`
	Version      string `yaml:"version" env:"EVALBOARD_FIXTURE_VERSION"`
}

type Config struct {
	Log struct {
		Level string `yaml:"level" env:"EVALBOARD_LOG_LEVEL"`
	} `yaml:"log"`
	Server struct {
		ListenPort string `yaml:"listen_port" env:"EVALBOARD_SERVER_PORT"`
	} `yaml:"server"`
	Evaluator EvaluatorConfig `yaml:"evaluator"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Fixture   FixtureConfig   `yaml:"fixture"`
}

// Load loads configuration from the specified file path.
// It first loads the embedded default configuration, then merges the user config on top.
// Finally, it overrides values with environment variables.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfig, &cfg); err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			slog.Warn("config file not found, using defaults", "path", path)
		} else {
			expandedData := []byte(os.ExpandEnv(string(data)))
			if err := yaml.Unmarshal(expandedData, &cfg); err != nil {
				return nil, err
			}
			slog.Info("loaded user config", "path", path)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadDefault loads the embedded default configuration.
func LoadDefault() (*Config, error) {
	return Load("")
}

// DefaultConfigBytes returns the raw embedded default configuration.
func DefaultConfigBytes() []byte {
	return defaultConfig
}

// Validate checks configuration for required fields and valid ranges.
// Returns an error describing all validation failures.
//
// An empty evaluator.base_url is allowed: the dashboard starts and every
// evaluator call fails with a network error until it is configured.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.ListenPort == "" {
		errs = append(errs, errors.New("server.listen_port is required"))
	}

	if c.Evaluator.BaseURL != "" {
		u, err := url.Parse(c.Evaluator.BaseURL)
		if err != nil {
			errs = append(errs, fmt.Errorf("evaluator.base_url: %w", err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, fmt.Errorf("evaluator.base_url: scheme must be http or https, got %q", u.Scheme))
		}
	}
	if c.Evaluator.ProxyURL != "" {
		if _, err := url.Parse(c.Evaluator.ProxyURL); err != nil {
			errs = append(errs, fmt.Errorf("evaluator.proxy_url: %w", err))
		}
	}
	if c.Evaluator.Timeout != "" {
		if _, err := time.ParseDuration(c.Evaluator.Timeout); err != nil {
			errs = append(errs, fmt.Errorf("evaluator.timeout: invalid duration format %q: %w", c.Evaluator.Timeout, err))
		}
	}
	if c.Evaluator.PageSize < 0 {
		errs = append(errs, fmt.Errorf("evaluator.page_size must not be negative, got %d", c.Evaluator.PageSize))
	}

	if c.Dashboard.Timezone != "" {
		if _, err := time.LoadLocation(c.Dashboard.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("dashboard.timezone: %w", err))
		}
	}
	if c.Dashboard.PageSize < 0 {
		errs = append(errs, fmt.Errorf("dashboard.page_size must not be negative, got %d", c.Dashboard.PageSize))
	}
	if c.Dashboard.SessionTTL != "" {
		if _, err := time.ParseDuration(c.Dashboard.SessionTTL); err != nil {
			errs = append(errs, fmt.Errorf("dashboard.session_ttl: invalid duration format %q: %w", c.Dashboard.SessionTTL, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
