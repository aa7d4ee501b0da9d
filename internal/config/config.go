package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dshills/relay/internal/config/loader"
	"github.com/dshills/relay/internal/relay/pattern"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "RELAY_"

// Config holds relay settings.
type Config struct {
	Log   LogConfig
	Relay RelayConfig
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `validate:"oneof=debug info warn warning error"`

	// Format is text or json.
	Format string `validate:"oneof=text json"`
}

// RelayConfig controls binding defaults and dispatch.
type RelayConfig struct {
	// ForbiddenCharacters may not appear in channel or event-type names.
	ForbiddenCharacters string

	// DefaultChannel is used by bindings that declare no channel.
	DefaultChannel string `validate:"required"`

	// DefaultEventType is used by bindings that declare no event type.
	DefaultEventType string `validate:"required"`

	// HandlerTimeout bounds each listener invocation. Zero disables it.
	HandlerTimeout time.Duration `validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Relay: RelayConfig{
			ForbiddenCharacters: pattern.DefaultForbidden,
			DefaultChannel:      "DEFAULT",
			DefaultEventType:    "DEFAULT",
		},
	}
}

// defaultMap returns the built-in configuration as a layer.
func defaultMap() map[string]any {
	d := Default()
	return map[string]any{
		"log": map[string]any{
			"level":  d.Log.Level,
			"format": d.Log.Format,
		},
		"relay": map[string]any{
			"forbidden_characters": d.Relay.ForbiddenCharacters,
			"default_channel":      d.Relay.DefaultChannel,
			"default_event_type":   d.Relay.DefaultEventType,
			"handler_timeout":      d.Relay.HandlerTimeout.String(),
		},
	}
}

// envMapping returns the documented environment variable mappings.
func envMapping() map[string]string {
	return map[string]string{
		EnvPrefix + "LOG_LEVEL":            "log.level",
		EnvPrefix + "LOG_FORMAT":           "log.format",
		EnvPrefix + "FORBIDDEN_CHARACTERS": "relay.forbidden_characters",
		EnvPrefix + "HANDLER_TIMEOUT":      "relay.handler_timeout",
	}
}

// LoadOption configures Load.
type LoadOption func(*loadConfig)

type loadConfig struct {
	fs     loader.FileSystem
	env    bool
	dotenv []string
	prefix string
}

// WithFS reads config files from fsys.
func WithFS(fsys loader.FileSystem) LoadOption {
	return func(c *loadConfig) {
		if fsys != nil {
			c.fs = fsys
		}
	}
}

// WithoutEnv skips the environment layer.
func WithoutEnv() LoadOption {
	return func(c *loadConfig) {
		c.env = false
	}
}

// WithDotEnv loads the given .env files before reading the environment.
// Missing files are skipped.
func WithDotEnv(files ...string) LoadOption {
	return func(c *loadConfig) {
		c.dotenv = append(c.dotenv, files...)
	}
}

// Load builds a Config from defaults, the file at path and the
// environment, then validates it. An empty path skips the file layer;
// a path that does not exist is an error wrapping ErrFileNotFound.
func Load(path string, opts ...LoadOption) (*Config, error) {
	lc := loadConfig{
		fs:     loader.DefaultFS(),
		env:    true,
		prefix: EnvPrefix,
	}
	for _, opt := range opts {
		opt(&lc)
	}

	layers := []map[string]any{defaultMap()}

	if path != "" {
		fileData, err := loadFile(lc.fs, path)
		if err != nil {
			return nil, err
		}
		layers = append(layers, fileData)
	}

	if lc.env {
		envData, err := loader.NewEnvLoaderWithMapping(lc.prefix, envMapping()).
			WithDotEnv(lc.dotenv...).
			Load()
		if err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
		layers = append(layers, envData)
	}

	cfg, err := FromMap(loader.Merge(layers...))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile reads one config file with the loader matching its extension.
func loadFile(fsys loader.FileSystem, path string) (map[string]any, error) {
	l, err := loader.ForPath(fsys, path)
	if err != nil {
		return nil, err
	}
	data, err := l.Load()
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	return data, nil
}

// FromMap decodes a layered configuration map over the defaults.
// Unknown keys are ignored.
func FromMap(data map[string]any) (*Config, error) {
	cfg := Default()

	fields := []struct {
		path string
		dst  *string
	}{
		{"log.level", &cfg.Log.Level},
		{"log.format", &cfg.Log.Format},
		{"relay.forbidden_characters", &cfg.Relay.ForbiddenCharacters},
		{"relay.default_channel", &cfg.Relay.DefaultChannel},
		{"relay.default_event_type", &cfg.Relay.DefaultEventType},
	}
	for _, f := range fields {
		v, ok := getPath(data, f.path)
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, &FieldError{Path: f.path, Value: v, Message: fmt.Sprintf("%v: expected string, got %T", ErrTypeMismatch, v)}
		}
		*f.dst = s
	}

	if v, ok := getPath(data, "relay.handler_timeout"); ok {
		d, err := parseDuration(v)
		if err != nil {
			return nil, &FieldError{Path: "relay.handler_timeout", Value: v, Message: err.Error()}
		}
		cfg.Relay.HandlerTimeout = d
	}

	return cfg, nil
}

// parseDuration accepts a duration string ("1.5s"), a time.Duration, or
// an integer number of seconds.
func parseDuration(v any) (time.Duration, error) {
	switch d := v.(type) {
	case string:
		if n, err := strconv.ParseInt(d, 10, 64); err == nil {
			return time.Duration(n) * time.Second, nil
		}
		return time.ParseDuration(d)
	case time.Duration:
		return d, nil
	case int:
		return time.Duration(d) * time.Second, nil
	case int64:
		return time.Duration(d) * time.Second, nil
	default:
		return 0, fmt.Errorf("%w: expected duration, got %T", ErrTypeMismatch, v)
	}
}

// getPath retrieves a value from a nested map using a dot-separated path.
func getPath(m map[string]any, path string) (any, bool) {
	current := any(m)
	for _, part := range splitPath(path) {
		cm, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = cm[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

// splitPath splits a dot-separated path into parts.
func splitPath(path string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			parts = append(parts, path[start:i])
			start = i + 1
		}
	}
	return append(parts, path[start:])
}
