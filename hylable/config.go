package hylable

import (
	"fmt"
	"net/url"
	"time"

	"github.com/randalmurphal/discuss/auth"
)

// DefaultURL is the public Hylable API endpoint.
const DefaultURL = "https://api.hylable.com"

// Config holds the configuration for the Hylable client.
type Config struct {
	// URL is the base URL of the Hylable API.
	URL string `yaml:"url"`

	// CourseID scopes discussion listings. Single-discussion calls do not
	// need it.
	CourseID string `yaml:"course_id"`

	// Auth contains authentication configuration.
	Auth AuthConfig `yaml:"auth"`

	// HTTP contains HTTP client configuration.
	HTTP HTTPConfig `yaml:"http"`

	// RateLimit contains retry configuration.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// BatchSize is the largest id set sent to the bulk transcript endpoint.
	BatchSize int `yaml:"batch_size"`

	// PageSize is the per_page value used when listing discussions.
	PageSize int `yaml:"page_size"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// Type is the authentication method to use.
	Type auth.Type `yaml:"type"`

	// Token is the static bearer token for token auth.
	Token string `yaml:"token"`

	// OAuth2 client configuration.
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	TokenURL     string `yaml:"token_url"`

	// Username and Password are required for password auth.
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Credentials converts the auth section for the auth package.
func (a AuthConfig) Credentials() auth.Credentials {
	return auth.Credentials{
		Type:         a.Type,
		Token:        a.Token,
		ClientID:     a.ClientID,
		ClientSecret: a.ClientSecret,
		Username:     a.Username,
		Password:     a.Password,
		TokenURL:     a.TokenURL,
	}
}

// HTTPConfig holds HTTP client configuration.
type HTTPConfig struct {
	// Timeout is the request timeout.
	Timeout time.Duration `yaml:"timeout"`

	// MaxIdleConns is the maximum number of idle connections.
	MaxIdleConns int `yaml:"max_idle_conns"`

	// IdleConnTimeout is how long to keep idle connections open.
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// RateLimitConfig holds retry configuration.
type RateLimitConfig struct {
	// MaxRetries is how many times a failed request is retried after the
	// first attempt. 0 disables retrying.
	MaxRetries int `yaml:"max_retries"`

	// RetryWaitMin is the minimum wait between retries.
	RetryWaitMin time.Duration `yaml:"retry_wait_min"`

	// RetryWaitMax is the maximum wait between retries.
	RetryWaitMax time.Duration `yaml:"retry_wait_max"`

	// RetryJitter enables randomized jitter on retry waits.
	RetryJitter bool `yaml:"retry_jitter"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		URL: DefaultURL,
		Auth: AuthConfig{
			Type: auth.TypeToken,
		},
		HTTP: HTTPConfig{
			Timeout:         30 * time.Second,
			MaxIdleConns:    10,
			IdleConnTimeout: 90 * time.Second,
		},
		RateLimit: RateLimitConfig{
			MaxRetries:   2,
			RetryWaitMin: 1 * time.Second,
			RetryWaitMax: 30 * time.Second,
			RetryJitter:  true,
		},
		BatchSize: 50,
		PageSize:  100,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.URL == "" {
		return ErrConfigURLRequired
	}
	if u, err := url.Parse(c.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrConfigURLInvalid, c.URL)
	}

	if err := c.Auth.Credentials().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigAuth, err)
	}

	if c.BatchSize < 0 {
		return ErrConfigBatchSize
	}
	if c.PageSize < 0 {
		return ErrConfigPageSize
	}
	if c.RateLimit.MaxRetries < 0 {
		return ErrConfigMaxRetries
	}

	return nil
}

// Clone returns a copy of the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
