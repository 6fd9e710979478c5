package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	EnvPrefix     = "SHELF_"
	EnvConfigFile = "SHELF_CONFIG"
)

// LoadOption customises Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	file      string
	overrides map[string]interface{}
}

// WithFile loads the given YAML file instead of the one named by SHELF_CONFIG.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		if path != "" {
			o.file = path
		}
	}
}

// WithOverrides layers explicit values (typically CLI flags) on top of env.
// Keys use the koanf tags, e.g. "port".
func WithOverrides(values map[string]interface{}) LoadOption {
	return func(o *loadOptions) {
		for k, v := range values {
			o.overrides[k] = v
		}
	}
}

// Load builds a Config by layering defaults, optional file, env vars and overrides.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) from WithFile or SHELF_CONFIG
//  3. env (prefix SHELF_)
//  4. overrides
func Load(_ context.Context, opts ...LoadOption) (*Config, error) {
	o := loadOptions{file: os.Getenv(EnvConfigFile), overrides: map[string]interface{}{}}
	for _, opt := range opts {
		opt(&o)
	}

	base := New()
	k := koanf.New(".")

	if o.file != "" {
		if err := k.Load(file.Provider(o.file), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, o.file, err)
		}
	}

	// SHELF_UPSTREAM_TIMEOUT_MS -> upstream_timeout_ms (flat keys, underscores kept).
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	if len(o.overrides) > 0 {
		if err := k.Load(confmap.Provider(o.overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("%w: overrides: %w", ErrLoadConfig, err)
		}
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
