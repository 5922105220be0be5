package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides (NEWSLINE_BACKEND_URL, ...).
const EnvPrefix = "NEWSLINE"

// Config holds the newsline viewer configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Backend  BackendConfig  `yaml:"backend"`
	Feedback FeedbackConfig `yaml:"feedback"`
	Cache    CacheConfig    `yaml:"cache"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds viewer HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// BackendConfig points at the news-search backend.
type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSec     int    `yaml:"timeout_sec"`
	MaxIdleConns   int    `yaml:"max_idle_conns"`
	IdleConnTTLSec int    `yaml:"idle_conn_timeout_sec"`
}

// FeedbackConfig sizes the fire-and-forget dispatcher.
type FeedbackConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"` // per worker
	// RatePerSec limits feedback clicks per client IP (0 = unlimited).
	RatePerSec float64 `yaml:"rate_per_sec"`
	RateBurst  int     `yaml:"rate_burst"`
}

// CacheConfig holds search result cache settings.
type CacheConfig struct {
	Driver   string   `yaml:"driver"` // none, memory, redis, valkey (default: memory)
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
	TTLSec   int      `yaml:"ttl_sec"`
}

// ViewerConfig holds presentation settings.
type ViewerConfig struct {
	Title          string `yaml:"title"`
	DefaultResults int    `yaml:"default_results"`
	MaxResults     int    `yaml:"max_results"`
	// SearchBarWidth is the search bar width in pixels; replaces reading the window size.
	SearchBarWidth int `yaml:"search_bar_width"`
}

// envOverrides are applied on top of the YAML file.
type envOverrides struct {
	BackendURL string   `envconfig:"BACKEND_URL"`
	HTTPPort   int      `envconfig:"HTTP_PORT"`
	LogLevel   string   `envconfig:"LOG_LEVEL"`
	CacheAddrs []string `envconfig:"CACHE_ADDRS"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod)
// and applies NEWSLINE_* environment overrides.
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML config bytes, expands ${VAR} references, applies
// environment overrides and defaults, then validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

func (c *Config) applyEnv() error {
	var o envOverrides
	if err := envconfig.Process(EnvPrefix, &o); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	if o.BackendURL != "" {
		c.Backend.BaseURL = o.BackendURL
	}
	if o.HTTPPort != 0 {
		c.HTTP.Port = o.HTTPPort
	}
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if len(o.CacheAddrs) > 0 {
		c.Cache.Addrs = o.CacheAddrs
	}
	return nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 3000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Backend.TimeoutSec <= 0 {
		c.Backend.TimeoutSec = 30
	}
	if c.Backend.MaxIdleConns <= 0 {
		c.Backend.MaxIdleConns = 100
	}
	if c.Backend.IdleConnTTLSec <= 0 {
		c.Backend.IdleConnTTLSec = 90
	}
	if c.Feedback.Workers <= 0 {
		c.Feedback.Workers = 4
	}
	if c.Feedback.QueueSize <= 0 {
		c.Feedback.QueueSize = 256
	}
	if c.Feedback.RateBurst <= 0 {
		c.Feedback.RateBurst = 20
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "memory"
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 600
	}
	if c.Viewer.Title == "" {
		c.Viewer.Title = "NewsLine"
	}
	if c.Viewer.DefaultResults <= 0 {
		c.Viewer.DefaultResults = 20
	}
	if c.Viewer.MaxResults <= 0 {
		c.Viewer.MaxResults = 100
	}
	if c.Viewer.SearchBarWidth <= 0 {
		c.Viewer.SearchBarWidth = 860
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an absolute http(s) URL, got %q", c.Backend.BaseURL)
	}
	switch c.Cache.Driver {
	case "none", "memory":
	case "redis", "valkey":
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for driver %q", c.Cache.Driver)
		}
	default:
		return fmt.Errorf("cache.driver must be none, memory, redis or valkey, got %q", c.Cache.Driver)
	}
	if c.Viewer.DefaultResults > c.Viewer.MaxResults {
		return fmt.Errorf("viewer.default_results (%d) exceeds viewer.max_results (%d)",
			c.Viewer.DefaultResults, c.Viewer.MaxResults)
	}
	if c.Feedback.RatePerSec < 0 {
		return fmt.Errorf("feedback.rate_per_sec must not be negative")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
