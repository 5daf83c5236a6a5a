// Package config provides the configuration loader for the governance core.
//
// Design philosophy:
// - File + environment variables, merged through a single viper instance
// - Components read their own section via Unmarshal(key, &cfg) during Init
// - Validation happens in each component's Config.Validate(), not here
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Loader configuration loader (file source with env override)
type Loader struct {
	v           *viper.Viper
	loadedFiles []string
}

// Options loader options
type Options struct {
	// ConfigFile explicit config file path (optional)
	ConfigFile string

	// ConfigName config file base name, default "governor"
	ConfigName string

	// ConfigPaths search paths, default ["./configs", "."]
	ConfigPaths []string

	// EnvPrefix environment variable prefix, default "TALENTMESH"
	// e.g. TALENTMESH_RATELIMIT_ENABLED overrides ratelimit.enabled
	EnvPrefix string
}

// NewLoader creates a configuration loader
func NewLoader(opts Options) *Loader {
	if opts.ConfigName == "" {
		opts.ConfigName = "governor"
	}
	if len(opts.ConfigPaths) == 0 {
		opts.ConfigPaths = []string{"./configs", "."}
	}
	if opts.EnvPrefix == "" {
		opts.EnvPrefix = "TALENTMESH"
	}

	v := viper.New()
	v.SetConfigName(opts.ConfigName)
	v.SetConfigType("yaml")
	for _, p := range opts.ConfigPaths {
		v.AddConfigPath(p)
	}
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	}

	// Environment variables override file values
	v.SetEnvPrefix(opts.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// Load reads and merges all sources
//
// A missing config file is tolerated (env-only deployments);
// a malformed file is a fatal configuration error.
func (l *Loader) Load() error {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config failed: %w", err)
	}

	l.loadedFiles = append(l.loadedFiles, l.v.ConfigFileUsed())
	return nil
}

// Unmarshal parses a config section into a struct
// An empty key parses the whole tree
func (l *Loader) Unmarshal(key string, out interface{}) error {
	if key == "" {
		return l.v.Unmarshal(out)
	}
	if !l.v.IsSet(key) {
		return fmt.Errorf("config section %q not found", key)
	}
	return l.v.UnmarshalKey(key, out)
}

// IsSet checks whether a config section exists
func (l *Loader) IsSet(key string) bool {
	return l.v.IsSet(key)
}

// GetString reads a string value
func (l *Loader) GetString(key string) string {
	return l.v.GetString(key)
}

// Set overrides a value programmatically (tests, CLI flags)
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}

// LoadedFiles returns the list of files actually read
func (l *Loader) LoadedFiles() []string {
	return append([]string(nil), l.loadedFiles...)
}
