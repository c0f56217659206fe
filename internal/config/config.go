// Package config loads druggraph settings from a TOML file and DRUGGRAPH_*
// environment variables.
//
// File format (default ~/.druggraph/config.toml):
//
//	api_base = "http://druginteractions.azurewebsites.net/apiV1/drugs"
//	seed = "DB00001"
//	debounce = "200ms"
//	timeout = "30s"
//	depth = 1
//	rate_limit = 10.0
//	burst = 4
//	http3 = false
//	insecure = false
//	log_level = "info"
//	log_format = "text"
//
// Environment variables override the file; command-line flags override both.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/josephst/druginteractions/internal/controller"
	"github.com/josephst/druginteractions/internal/drugapi"
)

// Config holds the client configuration.
type Config struct {
	APIBase   string        `toml:"api_base"`
	SeedID    string        `toml:"seed"`
	Debounce  time.Duration `toml:"debounce"`
	Timeout   time.Duration `toml:"timeout"`
	Depth     int           `toml:"depth"`
	RateLimit float64       `toml:"rate_limit"`
	Burst     int           `toml:"burst"`
	HTTP3     bool          `toml:"http3"`
	Insecure  bool          `toml:"insecure"`
	LogLevel  string        `toml:"log_level"`
	LogFormat string        `toml:"log_format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIBase:   drugapi.DefaultBaseURL,
		SeedID:    controller.DefaultSeedID,
		Debounce:  200 * time.Millisecond,
		Timeout:   30 * time.Second,
		Depth:     1,
		RateLimit: 10,
		Burst:     4,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// DefaultPath returns the config file path: $DRUGGRAPH_CONFIG, or
// ~/.druggraph/config.toml.
func DefaultPath() string {
	if p := getEnv("DRUGGRAPH_CONFIG", ""); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".druggraph", "config.toml")
}

// Load reads the config file at path over the defaults and then applies
// environment overrides. A missing file, or an empty path, is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.APIBase = getEnv("DRUGGRAPH_API", c.APIBase)
	c.SeedID = getEnv("DRUGGRAPH_SEED", c.SeedID)
	c.Debounce = getEnvAsDuration("DRUGGRAPH_DEBOUNCE", c.Debounce)
	c.Timeout = getEnvAsDuration("DRUGGRAPH_TIMEOUT", c.Timeout)
	c.Depth = getEnvAsInt("DRUGGRAPH_DEPTH", c.Depth)
	c.RateLimit = getEnvAsFloat("DRUGGRAPH_RATE_LIMIT", c.RateLimit)
	c.Burst = getEnvAsInt("DRUGGRAPH_BURST", c.Burst)
	c.HTTP3 = getEnvAsBool("DRUGGRAPH_HTTP3", c.HTTP3)
	c.Insecure = getEnvAsBool("DRUGGRAPH_INSECURE", c.Insecure)
	c.LogLevel = getEnv("DRUGGRAPH_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("DRUGGRAPH_LOG_FORMAT", c.LogFormat)
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	if c.APIBase == "" {
		return errors.New("api_base must not be empty")
	}
	if c.SeedID == "" {
		return errors.New("seed must not be empty")
	}
	if c.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative, got %s", c.Debounce)
	}
	if c.Depth < 1 {
		return fmt.Errorf("depth must be at least 1, got %d", c.Depth)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %g", c.RateLimit)
	}
	if c.Burst < 1 {
		return fmt.Errorf("burst must be at least 1, got %d", c.Burst)
	}
	return nil
}

// ClientOptions returns the drug API options described by c.
func (c *Config) ClientOptions() drugapi.Options {
	return drugapi.Options{
		BaseURL:   c.APIBase,
		HTTP3:     c.HTTP3,
		Insecure:  c.Insecure,
		Timeout:   c.Timeout,
		RateLimit: c.RateLimit,
		Burst:     c.Burst,
	}
}

func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
