package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
)

// maxCookieValue keeps the Set-Cookie header under the 4KB browsers accept.
const maxCookieValue = 3800

// ErrCookieTooLarge is returned when a sealed session does not fit a cookie.
var ErrCookieTooLarge = errors.New("session: sealed cookie too large")

// sealed is the plaintext of a cookie session.
type sealed struct {
	Session   *Session  `json:"s"`
	ExpiresAt time.Time `json:"e"`
}

// CookieStore is stateless: the whole session travels in the cookie,
// encrypted and authenticated with XChaCha20-Poly1305.
type CookieStore struct {
	key []byte
}

// NewCookieStore derives the AEAD key from secret.
func NewCookieStore(secret string) *CookieStore {
	return &CookieStore{key: deriveKey(secret, "cookie-store")}
}

func (c *CookieStore) Get(_ context.Context, cookie string) (*Session, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cookie)
	if err != nil {
		return nil, ErrNoSession
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return nil, err
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrNoSession
	}
	nonce, box := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, box, nil)
	if err != nil {
		return nil, ErrNoSession
	}
	var v sealed
	if err := json.Unmarshal(plain, &v); err != nil || v.Session == nil {
		return nil, ErrNoSession
	}
	if time.Now().After(v.ExpiresAt) {
		return nil, ErrNoSession
	}
	return v.Session, nil
}

func (c *CookieStore) Save(_ context.Context, s *Session, expiresAt time.Time) (string, error) {
	plain, err := json.Marshal(sealed{Session: s, ExpiresAt: expiresAt})
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	value := base64.RawURLEncoding.EncodeToString(aead.Seal(nonce, nonce, plain, nil))
	if len(value) > maxCookieValue {
		return "", ErrCookieTooLarge
	}
	return value, nil
}

// Delete is a no-op; the manager expires the cookie.
func (c *CookieStore) Delete(context.Context, *Session) error { return nil }
