package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// SaveConfig writes values into one profile of a config file.
type SaveConfig struct {
	// Path is the config file to update.
	Path string

	// Profile is the profiles.<name> section to write. Defaults to
	// DefaultProfile.
	Profile string

	// ValidKeys lists keys that can be saved. If nil, all keys are valid.
	ValidKeys []string
}

func (c SaveConfig) profile() string {
	if c.Profile != "" {
		return c.Profile
	}
	return DefaultProfile
}

// Set saves a key-value pair in the profile, creating the file and its
// directory as needed. Other profiles and shared keys are preserved.
func (c SaveConfig) Set(key, value string) error {
	if c.Path == "" {
		return fmt.Errorf("config path not configured")
	}

	// Validate key
	if len(c.ValidKeys) > 0 && !slices.Contains(c.ValidKeys, key) {
		return fmt.Errorf("unknown config key: %s\n\nValid keys: %s",
			key, strings.Join(c.ValidKeys, ", "))
	}

	existing, err := c.load()
	if err != nil {
		return err
	}
	profiles, _ := existing["profiles"].(map[string]any)
	if profiles == nil {
		profiles = make(map[string]any)
	}
	section, _ := profiles[c.profile()].(map[string]any)
	if section == nil {
		section = make(map[string]any)
	}

	section[key] = parseValue(value)
	profiles[c.profile()] = section
	existing["profiles"] = profiles

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o700); err != nil {
		return err
	}

	return c.write(existing)
}

// Delete removes a key from the profile. A missing file or key is not an
// error.
func (c SaveConfig) Delete(key string) error {
	if c.Path == "" {
		return fmt.Errorf("config path not configured")
	}

	if _, err := os.Stat(c.Path); err != nil {
		return nil // Nothing to delete
	}

	existing, err := c.load()
	if err != nil {
		return err
	}
	profiles, _ := existing["profiles"].(map[string]any)
	section, _ := profiles[c.profile()].(map[string]any)
	if section == nil {
		return nil
	}
	delete(section, key)

	return c.write(existing)
}

// load reads the file, treating a missing file as empty. A file that cannot
// be parsed is an error so a rewrite never drops the values it holds.
func (c SaveConfig) load() (map[string]any, error) {
	var existing map[string]any
	data, err := os.ReadFile(c.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", c.Path, err)
	default:
		if err := yaml.Unmarshal(data, &existing); err != nil {
			return nil, fmt.Errorf("parse %s: %w", c.Path, err)
		}
	}
	if existing == nil {
		existing = make(map[string]any)
	}
	return existing, nil
}

func (c SaveConfig) write(values map[string]any) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return err
	}
	// Credentials may be stored here.
	return os.WriteFile(c.Path, data, 0o600)
}

// parseValue converts string values to appropriate types for YAML.
func parseValue(value string) any {
	lower := strings.ToLower(value)
	if lower == "true" {
		return true
	}
	if lower == "false" {
		return false
	}
	return value
}
