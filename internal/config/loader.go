package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/m-mizutani/goerr/v2"
)

const (
	EnvPrefix  = "REACTLAB_"
	EnvConfig  = "REACTLAB_CONFIG"
	DotEnvFile = ".env"
)

type loadOptions struct {
	file      string
	dotenv    []string
	overrides map[string]any
}

type LoadOption func(*loadOptions)

// WithFile reads a YAML file ahead of the environment. It takes precedence
// over REACTLAB_CONFIG.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) { o.file = path }
}

// WithDotEnv replaces the default ".env" lookup. Missing files are skipped.
func WithDotEnv(paths ...string) LoadOption {
	return func(o *loadOptions) { o.dotenv = paths }
}

// WithOverrides applies dotted keys (e.g. "participant.id") last, for
// values coming from command line flags.
func WithOverrides(values map[string]any) LoadOption {
	return func(o *loadOptions) { o.overrides = values }
}

// Load builds a Config by layering, from low to high precedence:
//  1. defaults (New)
//  2. YAML file from WithFile or REACTLAB_CONFIG
//  3. .env entries, which never override variables already set
//  4. REACTLAB_* env vars, "__" separating nested keys
//  5. overrides
func Load(_ context.Context, opts ...LoadOption) (*Config, error) {
	o := &loadOptions{dotenv: []string{DotEnvFile}}
	for _, opt := range opts {
		opt(o)
	}

	for _, path := range o.dotenv {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrLoadConfig, "read dotenv file", goerr.V("path", path), goerr.V("cause", err.Error()))
		}
	}

	k := koanf.New(".")

	path := o.file
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, goerr.Wrap(ErrLoadConfig, "read config file", goerr.V("path", path), goerr.V("cause", err.Error()))
		}
	}

	// REACTLAB_PARTICIPANT__ID -> participant.id, REACTLAB_LOG_LEVEL -> log_level
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, goerr.Wrap(ErrLoadConfig, "read environment", goerr.V("cause", err.Error()))
	}

	for key, val := range o.overrides {
		if err := k.Set(key, val); err != nil {
			return nil, goerr.Wrap(ErrLoadConfig, "apply override", goerr.V("key", key), goerr.V("cause", err.Error()))
		}
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, goerr.Wrap(ErrLoadConfig, "decode config", goerr.V("cause", err.Error()))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
