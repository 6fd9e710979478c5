// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - Validation failures wrap ErrInvalidConfig; source failures wrap ErrLoadConfig.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Config contains process configuration.
type Config struct {
	// Host is the bind address, e.g. "0.0.0.0".
	Host string `koanf:"host"`

	// Port is the TCP port to listen on.
	Port int `koanf:"port"`

	// Debug enables debug logging and the /debug/pprof routes.
	Debug bool `koanf:"debug"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoder: text or json.
	LogFormat string `koanf:"log_format"`

	// OpenLibraryURL is the base URL of the author search upstream.
	OpenLibraryURL string `koanf:"openlibrary_url"`

	// UpstreamTimeoutMS bounds each outbound call.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms"`

	// UpstreamRPS caps the outbound request rate across all callers.
	UpstreamRPS float64 `koanf:"upstream_rps"`

	// UserAgent is sent with outbound requests.
	UserAgent string `koanf:"user_agent"`

	// MaxBodyBytes caps request bodies accepted by the API.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		Host:              "0.0.0.0",
		Port:              5000,
		Debug:             false,
		LogLevel:          "info",
		LogFormat:         "text",
		OpenLibraryURL:    "https://openlibrary.org",
		UpstreamTimeoutMS: 5000,
		UpstreamRPS:       5,
		UserAgent:         "shelf/1.0 (+https://github.com/okian/shelf)",
		MaxBodyBytes:      1 << 20,
	}
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// UpstreamTimeout returns UpstreamTimeoutMS as a duration.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutMS) * time.Millisecond
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Host == "":
		return fmt.Errorf("%w: host must not be empty", ErrInvalidConfig)
	case c.Port < 1 || c.Port > 65535:
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	case c.OpenLibraryURL == "":
		return fmt.Errorf("%w: openlibrary_url must not be empty", ErrInvalidConfig)
	case c.UpstreamTimeoutMS <= 0:
		return fmt.Errorf("%w: upstream_timeout_ms must be positive", ErrInvalidConfig)
	case c.UpstreamRPS <= 0:
		return fmt.Errorf("%w: upstream_rps must be positive", ErrInvalidConfig)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	}
	return nil
}
