package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/randalmurphal/discuss/auth"
	"github.com/randalmurphal/discuss/hylable"
	"github.com/randalmurphal/discuss/notify"
)

// Hylable configuration layout.
const (
	EnvPrefix = "HYLABLE_"
	AppDir    = "hylable"
)

// Configuration keys.
const (
	KeyURL          = "url"
	KeyCourseID     = "course_id"
	KeyAuthType     = "auth_type"
	KeyToken        = "token"
	KeyClientID     = "client_id"
	KeyClientSecret = "client_secret"
	KeyUsername     = "username"
	KeyPassword     = "password"
	KeyTokenURL     = "token_url"
	KeyTimeout      = "timeout"
	KeyBatchSize    = "batch_size"
	KeyPageSize     = "page_size"
	KeyMaxRetries   = "max_retries"
	KeyTimezone     = "timezone"
	KeyOutputDir    = "output_dir"
	KeyNotifyURL    = "notify_webhook"
	KeySlackURL     = "slack_webhook"
	KeySlackChannel = "slack_channel"
)

// Keys lists every recognized configuration key.
var Keys = []string{
	KeyURL, KeyCourseID, KeyAuthType, KeyToken, KeyClientID, KeyClientSecret,
	KeyUsername, KeyPassword, KeyTokenURL, KeyTimeout, KeyBatchSize,
	KeyPageSize, KeyMaxRetries, KeyTimezone, KeyOutputDir,
	KeyNotifyURL, KeySlackURL, KeySlackChannel,
}

// SecretKeys lists keys whose values must not be displayed.
var SecretKeys = []string{KeyToken, KeyClientSecret, KeyPassword, KeySlackURL}

// ErrInvalidValue indicates a key holds a value of the wrong shape.
var ErrInvalidValue = errors.New("invalid config value")

// Defaults returns the built-in value of every key that has one.
func Defaults() map[string]string {
	d := hylable.DefaultConfig()
	return map[string]string{
		KeyURL:        d.URL,
		KeyAuthType:   string(d.Auth.Type),
		KeyTimeout:    d.HTTP.Timeout.String(),
		KeyBatchSize:  strconv.Itoa(d.BatchSize),
		KeyPageSize:   strconv.Itoa(d.PageSize),
		KeyMaxRetries: strconv.Itoa(d.RateLimit.MaxRetries),
		KeyTimezone:   "Asia/Tokyo",
		KeyOutputDir:  ".",
	}
}

// ForProfile returns a resolver for the hylable keys. configPath overrides
// ~/.config/hylable/config.yaml when set.
func ForProfile(profile, configPath string) *Resolver {
	cfg := ResolverConfig{
		EnvPrefix:       EnvPrefix,
		GlobalConfigDir: AppDir,
		Profile:         profile,
		Defaults:        Defaults(),
		ValidKeys:       Keys,
	}
	if configPath != "" {
		return NewResolverWithPath(cfg, configPath)
	}
	return NewResolver(cfg)
}

// HylableConfig converts resolved values into a validated client config.
func HylableConfig(r *Resolved) (*hylable.Config, error) {
	cfg := hylable.DefaultConfig()

	cfg.URL = r.Get(KeyURL)
	cfg.CourseID = r.Get(KeyCourseID)
	cfg.Auth = hylable.AuthConfig{
		Type:         auth.Type(r.Get(KeyAuthType)),
		Token:        r.Get(KeyToken),
		ClientID:     r.Get(KeyClientID),
		ClientSecret: r.Get(KeyClientSecret),
		Username:     r.Get(KeyUsername),
		Password:     r.Get(KeyPassword),
		TokenURL:     r.Get(KeyTokenURL),
	}

	var err error
	if cfg.HTTP.Timeout, err = durationValue(r, KeyTimeout, cfg.HTTP.Timeout); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = intValue(r, KeyBatchSize, cfg.BatchSize); err != nil {
		return nil, err
	}
	if cfg.PageSize, err = intValue(r, KeyPageSize, cfg.PageSize); err != nil {
		return nil, err
	}
	if cfg.RateLimit.MaxRetries, err = intValue(r, KeyMaxRetries, cfg.RateLimit.MaxRetries); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location loads the timezone used to render recording times.
func Location(r *Resolved) (*time.Location, error) {
	name := r.Get(KeyTimezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q: %v", ErrInvalidValue, KeyTimezone, name, err)
	}
	return loc, nil
}

// NotifyTargets returns where export notifications are sent.
func NotifyTargets(r *Resolved) notify.Targets {
	return notify.Targets{
		WebhookURL:   r.Get(KeyNotifyURL),
		SlackURL:     r.Get(KeySlackURL),
		SlackChannel: r.Get(KeySlackChannel),
	}
}

func intValue(r *Resolved, key string, fallback int) (int, error) {
	raw := r.Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidValue, key, raw)
	}
	return v, nil
}

func durationValue(r *Resolved, key string, fallback time.Duration) (time.Duration, error) {
	raw := r.Get(key)
	if raw == "" {
		return fallback, nil
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	// Bare numbers are seconds.
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return 0, fmt.Errorf("%w: %s=%q is not a duration", ErrInvalidValue, key, raw)
}
