// Package config loads and validates the application configuration: which
// Evaluator backs the bridge, session limits, and logging.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	domainerrors "github.com/clara-ai/clara-go/domain/errors"
)

// Evaluator kinds selectable in configuration.
const (
	EvaluatorNative = "native"
	EvaluatorWasm   = "wasm"
	EvaluatorRemote = "remote"
)

// Config is the complete application configuration.
type Config struct {
	Evaluator EvaluatorConfig `yaml:"evaluator"`
	Sessions  SessionsConfig  `yaml:"sessions"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// EvaluatorConfig selects and parameterizes the Evaluator implementation.
type EvaluatorConfig struct {
	// Kind is one of native, wasm, remote.
	Kind string `yaml:"kind" validate:"required,oneof=native wasm remote"`

	// ModulePath is the evaluator WASM module path (kind: wasm).
	ModulePath string `yaml:"module_path" validate:"required_if=Kind wasm"`

	// Endpoint is the evaluation service URL (kind: remote).
	Endpoint string `yaml:"endpoint" validate:"required_if=Kind remote,omitempty,url"`

	// TimeoutMs bounds a remote evaluation request.
	TimeoutMs int `yaml:"timeout_ms" validate:"gte=0"`
}

// Timeout returns the configured request timeout, zero when unset.
func (c EvaluatorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// SessionsConfig bounds the session store.
type SessionsConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" validate:"gt=0"`
	MaxPerUser    int `yaml:"max_per_user" validate:"gt=0"`
	TTLSeconds    int `yaml:"ttl_seconds" validate:"gt=0"`
}

// TTL returns the configured idle TTL.
func (c SessionsConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// SlogLevel maps the configured level to a slog.Level.
func (c LoggingConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Evaluator: EvaluatorConfig{
			Kind:      EvaluatorNative,
			TimeoutMs: 30000,
		},
		Sessions: SessionsConfig{
			MaxConcurrent: 100,
			MaxPerUser:    5,
			TTLSeconds:    1800,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Parse unmarshals YAML bytes over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, &domainerrors.ConfigError{Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &domainerrors.ConfigError{Err: err}
	}
	return Parse(data)
}

// Validate checks the configuration against its struct tags.
func (c Config) Validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		first := errs[0]
		return &domainerrors.ConfigError{
			Field: first.Namespace(),
			Err:   fmt.Errorf("failed %q constraint", first.Tag()),
		}
	}
	return &domainerrors.ConfigError{Err: err}
}
