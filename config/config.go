package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultProfile is used when no profile is selected.
const DefaultProfile = "default"

// ResolverConfig configures the layered config resolver.
type ResolverConfig struct {
	// EnvPrefix is prepended to key names for environment variable lookup.
	// For example, with EnvPrefix "HYLABLE_", key "course_id" maps to
	// HYLABLE_COURSE_ID. The same names are read from the .env file.
	EnvPrefix string

	// GlobalConfigDir is the name of the directory under ~/.config/
	// where the config file is stored.
	// For example, "hylable" results in ~/.config/hylable/config.yaml.
	GlobalConfigDir string

	// GlobalConfigFile is the filename for the config file.
	// Defaults to "config.yaml" if empty.
	GlobalConfigFile string

	// Profile selects the profiles.<name> section of the config file.
	// Defaults to DefaultProfile.
	Profile string

	// DotEnvPath is the .env file to read. Empty means ".env" in the
	// working directory; a missing file is not an error.
	DotEnvPath string

	// Defaults provides the default values for configuration keys.
	Defaults map[string]string

	// ValidKeys lists keys accepted from files and the environment.
	// If nil, all keys are valid.
	ValidKeys []string

	// ErrWriter is where warnings are written.
	// Defaults to os.Stderr if nil.
	ErrWriter io.Writer
}

func (c ResolverConfig) globalConfigFile() string {
	if c.GlobalConfigFile != "" {
		return c.GlobalConfigFile
	}
	return "config.yaml"
}

func (c ResolverConfig) profile() string {
	if c.Profile != "" {
		return c.Profile
	}
	return DefaultProfile
}

func (c ResolverConfig) dotEnvPath() string {
	if c.DotEnvPath != "" {
		return c.DotEnvPath
	}
	return ".env"
}

// Resolver handles layered configuration resolution.
type Resolver struct {
	config     ResolverConfig
	globalPath string

	// Warnings collects non-fatal issues during resolution.
	Warnings []string
}

// NewResolver creates a new configuration resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	resolver := &Resolver{
		config: cfg,
	}

	// Set default error writer
	if cfg.ErrWriter == nil {
		resolver.config.ErrWriter = os.Stderr
	}

	if cfg.GlobalConfigDir != "" {
		if home, err := os.UserHomeDir(); err == nil {
			resolver.globalPath = filepath.Join(
				home, ".config", cfg.GlobalConfigDir, cfg.globalConfigFile(),
			)
		}
	}

	return resolver
}

// NewResolverWithPath creates a resolver with an explicit config file path.
// This is useful for --config flags and tests.
func NewResolverWithPath(cfg ResolverConfig, globalPath string) *Resolver {
	resolver := NewResolver(cfg)
	resolver.globalPath = globalPath
	return resolver
}

// warn adds a warning and optionally prints it.
func (r *Resolver) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
	if r.config.ErrWriter != nil {
		fmt.Fprintf(r.config.ErrWriter, "Warning: %s\n", msg)
	}
}

// Resolved holds the final merged configuration.
type Resolved struct {
	profile string
	values  map[string]string
	sources map[string]Source
}

// Profile returns the profile the values were resolved for.
func (c *Resolved) Profile() string {
	return c.profile
}

// Get returns the value for a key, or empty string if not set.
func (c *Resolved) Get(key string) string {
	return c.values[key]
}

// Source returns the source of a key's value.
func (c *Resolved) Source(key string) Source {
	return c.sources[key]
}

// GetWithSource returns both the value and its source.
func (c *Resolved) GetWithSource(key string) (string, Source) {
	return c.values[key], c.sources[key]
}

// All returns a copy of all key-value pairs.
func (c *Resolved) All() map[string]string {
	result := make(map[string]string, len(c.values))
	for k, v := range c.values {
		result[k] = v
	}
	return result
}

// Keys returns all configuration keys, sorted.
func (c *Resolved) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (c *Resolved) set(key, value string, src Source) {
	c.values[key] = value
	c.sources[key] = src
}

// Resolve builds the final config by merging all sources.
// Priority (highest to lowest): env > .env > profile > file top level > defaults.
func (r *Resolver) Resolve() *Resolved {
	cfg := &Resolved{
		profile: r.config.profile(),
		values:  make(map[string]string),
		sources: make(map[string]Source),
	}

	// 1. Apply defaults (lowest priority)
	r.applyDefaults(cfg)

	// 2. Apply config file, shared keys then the selected profile
	r.applyGlobal(cfg)

	// 3. Apply .env file
	r.applyDotEnv(cfg)

	// 4. Apply environment variables
	r.applyEnv(cfg)

	return cfg
}

// ResolveWithFlags resolves config and applies flag overrides.
// Empty flag values are ignored.
func (r *Resolver) ResolveWithFlags(flags map[string]string) *Resolved {
	cfg := r.Resolve()

	for key, value := range flags {
		if value != "" {
			cfg.set(key, value, SourceFlag)
		}
	}

	return cfg
}

func (r *Resolver) applyDefaults(cfg *Resolved) {
	for key, value := range r.config.Defaults {
		cfg.set(key, value, SourceDefault)
	}
}

// configFile is the on-disk layout: shared scalar keys at the top level and
// per-profile overrides under profiles.
type configFile struct {
	Shared   map[string]any            `yaml:",inline"`
	Profiles map[string]map[string]any `yaml:"profiles"`
}

func (r *Resolver) readFile() (*configFile, error) {
	data, err := os.ReadFile(r.globalPath)
	if err != nil {
		return nil, err
	}

	var parsed configFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (r *Resolver) applyGlobal(cfg *Resolved) {
	if r.globalPath == "" {
		return
	}

	parsed, err := r.readFile()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.warn(fmt.Sprintf("could not parse %s: %v", r.globalPath, err))
		}
		return
	}

	r.applyMap(cfg, parsed.Shared)

	profile, ok := parsed.Profiles[cfg.profile]
	if !ok && cfg.profile != DefaultProfile {
		r.warn(fmt.Sprintf("profile %q not found in %s", cfg.profile, r.globalPath))
	}
	r.applyMap(cfg, profile)
}

func (r *Resolver) applyMap(cfg *Resolved, values map[string]any) {
	for key, value := range values {
		if !r.validKey(key) {
			continue
		}
		if strVal := toString(value); strVal != "" {
			cfg.set(key, strVal, SourceGlobal)
		}
	}
}

func (r *Resolver) applyDotEnv(cfg *Resolved) {
	if r.config.EnvPrefix == "" {
		return
	}

	path := r.config.dotEnvPath()
	env, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.warn(fmt.Sprintf("could not parse %s: %v", path, err))
		}
		return
	}

	for _, key := range r.knownKeys(cfg) {
		if value := env[r.envKey(key)]; value != "" {
			cfg.set(key, value, SourceDotEnv)
		}
	}
}

func (r *Resolver) applyEnv(cfg *Resolved) {
	if r.config.EnvPrefix == "" {
		return
	}

	for _, key := range r.knownKeys(cfg) {
		if value := os.Getenv(r.envKey(key)); value != "" {
			cfg.set(key, value, SourceEnv)
		}
	}
}

// knownKeys lists every key the environment may set.
func (r *Resolver) knownKeys(cfg *Resolved) []string {
	all := make(map[string]bool)
	for k := range r.config.Defaults {
		all[k] = true
	}
	for _, k := range r.config.ValidKeys {
		all[k] = true
	}
	for k := range cfg.values {
		all[k] = true
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	return keys
}

func (r *Resolver) envKey(key string) string {
	return r.config.EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

func (r *Resolver) validKey(key string) bool {
	return len(r.config.ValidKeys) == 0 || slices.Contains(r.config.ValidKeys, key)
}

// GlobalPath returns the path to the config file.
func (r *Resolver) GlobalPath() string {
	return r.globalPath
}

// Profile returns the selected profile name.
func (r *Resolver) Profile() string {
	return r.config.profile()
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int, int64, float64:
		return fmt.Sprintf("%v", val)
	default:
		return ""
	}
}
