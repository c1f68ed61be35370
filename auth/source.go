package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Type selects how bearer tokens are obtained.
type Type string

const (
	TypeToken             Type = "token"              // static bearer token
	TypeClientCredentials Type = "client_credentials" // oauth2 client credentials grant
	TypePassword          Type = "password"           // oauth2 resource-owner password grant
)

// Credentials holds everything needed to obtain tokens.
type Credentials struct {
	Type Type

	// Token is the static bearer token for TypeToken.
	Token string

	ClientID     string
	ClientSecret string

	// Username and Password are used by TypePassword.
	Username string
	Password string

	// TokenURL is the oauth2 token endpoint.
	TokenURL string

	Scopes []string
}

// Validate checks that the fields required by Type are set.
func (c Credentials) Validate() error {
	var missing []string
	require := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	switch c.Type {
	case TypeToken:
		require("token", c.Token)
	case TypeClientCredentials:
		require("client_id", c.ClientID)
		require("client_secret", c.ClientSecret)
		require("token_url", c.TokenURL)
	case TypePassword:
		require("client_id", c.ClientID)
		require("username", c.Username)
		require("password", c.Password)
		require("token_url", c.TokenURL)
	default:
		return fmt.Errorf("%w: %q (want token, client_credentials, or password)", ErrUnsupportedType, c.Type)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s auth requires %s", ErrMissingCredentials, c.Type, strings.Join(missing, ", "))
	}
	return nil
}

// TokenSource returns a caching token source for the credentials. Token
// endpoint requests made by the source use the *http.Client stored in ctx
// under oauth2.HTTPClient, if any.
func TokenSource(ctx context.Context, c Credentials) (oauth2.TokenSource, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	switch c.Type {
	case TypeClientCredentials:
		cfg := clientcredentials.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			TokenURL:     c.TokenURL,
			Scopes:       c.Scopes,
		}
		return cfg.TokenSource(ctx), nil
	case TypePassword:
		cfg := &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: c.TokenURL},
			Scopes:       c.Scopes,
		}
		return oauth2.ReuseTokenSource(nil, &passwordSource{
			ctx:      ctx,
			cfg:      cfg,
			username: c.Username,
			password: c.Password,
		}), nil
	default:
		tok := &oauth2.Token{AccessToken: c.Token, TokenType: "Bearer"}
		if exp, err := TokenExpiry(c.Token); err == nil {
			tok.Expiry = exp
		}
		return oauth2.StaticTokenSource(tok), nil
	}
}

// HTTPClient returns an HTTP client that authenticates every request.
// base supplies the transport and timeout; nil means http.DefaultClient.
func HTTPClient(ctx context.Context, c Credentials, base *http.Client) (*http.Client, error) {
	if base == nil {
		base = http.DefaultClient
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	ts, err := TokenSource(ctx, c)
	if err != nil {
		return nil, err
	}

	client := oauth2.NewClient(ctx, ts)
	client.Timeout = base.Timeout
	return client, nil
}

// passwordSource performs the password grant once and then refreshes
// through the returned refresh token.
type passwordSource struct {
	ctx      context.Context
	cfg      *oauth2.Config
	username string
	password string

	mu   sync.Mutex
	next oauth2.TokenSource
}

func (s *passwordSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.next != nil {
		return s.next.Token()
	}

	tok, err := s.cfg.PasswordCredentialsToken(s.ctx, s.username, s.password)
	if err != nil {
		return nil, fmt.Errorf("password grant: %w", err)
	}
	s.next = s.cfg.TokenSource(s.ctx, tok)
	return tok, nil
}
