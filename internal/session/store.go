package session

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSession is returned by a Store when the cookie names no live session.
var ErrNoSession = errors.New("session: not found")

// Store persists sessions. The cookie value is opaque to callers: stores
// decide whether it is a signed reference or the sealed session itself.
type Store interface {
	// Get resolves a cookie value to a session, or ErrNoSession.
	Get(ctx context.Context, cookie string) (*Session, error)
	// Save persists s until its expiry and returns the cookie value to set.
	Save(ctx context.Context, s *Session, expiresAt time.Time) (string, error)
	// Delete forgets s.
	Delete(ctx context.Context, s *Session) error
}

// refClaims is the payload of the signed reference cookie.
type refClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// signer issues and checks HS256 reference cookies for server-side stores.
type signer struct {
	key []byte
}

func newSigner(secret string) *signer {
	return &signer{key: []byte(secret)}
}

func (g *signer) sign(sid string, expiresAt time.Time) (string, error) {
	claims := refClaims{
		SID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    "revomotors-web",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.key)
}

func (g *signer) verify(cookie string) (string, error) {
	token, err := jwt.ParseWithClaims(cookie, &refClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.key, nil
	})
	if err != nil {
		return "", ErrNoSession
	}
	claims, ok := token.Claims.(*refClaims)
	if !ok || !token.Valid || claims.SID == "" {
		return "", ErrNoSession
	}
	return claims.SID, nil
}

// deriveKey stretches the configured secret to a 32-byte AEAD key.
func deriveKey(secret, purpose string) []byte {
	sum := sha256.Sum256([]byte(purpose + ":" + secret))
	return sum[:]
}
