package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// The signing key belongs to the service, so the claim is only advisory.
// A token without exp returns the zero time.
func TokenExpiry(token string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}

// CheckExpiry returns ErrTokenExpired when the token's exp claim is at or
// before now. Opaque (non-JWT) tokens and tokens without exp pass.
func CheckExpiry(token string, now time.Time) error {
	exp, err := TokenExpiry(token)
	if err != nil || exp.IsZero() {
		return nil
	}
	if !now.Before(exp) {
		return fmt.Errorf("%w at %s", ErrTokenExpired, exp.Format(time.RFC3339))
	}
	return nil
}
