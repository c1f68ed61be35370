package auth

import "errors"

// Authentication errors.
var (
	// ErrInvalidToken indicates the token is malformed.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired indicates the token has expired.
	ErrTokenExpired = errors.New("token expired")

	// ErrMissingCredentials indicates a required credential field is empty.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrUnsupportedType indicates an unknown authentication type.
	ErrUnsupportedType = errors.New("unsupported auth type")
)
