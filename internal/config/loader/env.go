package loader

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvLoader loads configuration from environment variables.
// Values are kept as strings; typing is left to the consumer.
type EnvLoader struct {
	prefix   string            // Environment variable prefix (e.g., "RELAY_")
	mapping  map[string]string // Env var -> config path
	dotenv   []string          // .env files loaded before reading
	lookup   func(string) (string, bool)
	environ  func() []string
	loadFile func(...string) error
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "RELAY_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:   prefix,
		mapping:  make(map[string]string),
		lookup:   os.LookupEnv,
		environ:  os.Environ,
		loadFile: godotenv.Load,
	}
}

// NewEnvLoaderWithMapping creates a loader with custom environment variable mappings.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	l := NewEnvLoader(prefix)
	for env, path := range mapping {
		l.mapping[env] = path
	}
	return l
}

// WithDotEnv sets .env files to load into the process environment
// before variables are read. Variables already set are not overridden
// and missing files are skipped.
func (l *EnvLoader) WithDotEnv(files ...string) *EnvLoader {
	l.dotenv = append(l.dotenv, files...)
	return l
}

// Load reads environment variables and returns a configuration map.
// Note: Empty string values are treated as valid values, not as unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	for _, file := range l.dotenv {
		if err := l.loadFile(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	config := make(map[string]any)

	// First, load explicitly mapped variables
	for env, path := range l.mapping {
		if val, ok := l.lookup(env); ok {
			setByPath(config, path, val)
		}
	}

	// Then, scan for additional prefixed variables not in mapping
	for _, env := range l.environ() {
		if !strings.HasPrefix(env, l.prefix) {
			continue
		}

		name, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}

		// Skip if already mapped
		if _, ok := l.mapping[name]; ok {
			continue
		}

		if path := l.envToPath(name); path != "" {
			setByPath(config, path, value)
		}
	}

	return config, nil
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	l.mapping[envVar] = configPath
}

// envToPath converts RELAY_RELAY_DEFAULT_CHANNEL to relay.default_channel.
// Variables without a section and a key yield "".
func (l *EnvLoader) envToPath(env string) string {
	name := strings.ToLower(strings.TrimPrefix(env, l.prefix))

	section, key, ok := strings.Cut(name, "_")
	if !ok || section == "" || key == "" {
		return ""
	}
	return section + "." + key
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	// Navigate/create intermediate maps
	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		if next, ok := current[part].(map[string]any); ok {
			current = next
		} else {
			next := make(map[string]any)
			current[part] = next
			current = next
		}
	}

	current[parts[len(parts)-1]] = value
}
