// Package auth provides bearer-token plumbing for the discussion service.
//
// This package includes:
//   - oauth2 token sources for static tokens, client credentials and the
//     resource-owner password grant
//   - JWT expiry inspection for tokens issued by the service
//   - Token fingerprints for logs and diagnostics
//
// # Token Sources
//
// Build an authenticated HTTP client from credentials:
//
//	creds := auth.Credentials{
//	    Type:         auth.TypeClientCredentials,
//	    ClientID:     "client-id",
//	    ClientSecret: "client-secret",
//	    TokenURL:     "https://api.hylable.com/oauth/token",
//	}
//
//	client, err := auth.HTTPClient(ctx, creds, nil)
//
// # Expiry
//
// Service tokens are JWTs. Their expiry can be read without the signing key:
//
//	exp, err := auth.TokenExpiry(token)
//	if err := auth.CheckExpiry(token, time.Now()); errors.Is(err, auth.ErrTokenExpired) {
//	    // refresh or ask for a new token
//	}
//
// # Fingerprints
//
// Never log a token. Log its fingerprint:
//
//	logger.Info("authenticated", "token", auth.Fingerprint(token))
package auth
