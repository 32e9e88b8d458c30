package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the fields of the API bearer token the front end uses.
type TokenClaims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

type apiClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ParseTokenClaims reads the API token without verifying it. The signature
// is the API's concern; the claims only drive display and session expiry.
func ParseTokenClaims(token string) (*TokenClaims, error) {
	var claims apiClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("parse token claims: %w", err)
	}
	out := &TokenClaims{Subject: claims.Subject, Role: claims.Role}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	if out.Subject == "" {
		return nil, errors.New("parse token claims: missing sub")
	}
	return out, nil
}
