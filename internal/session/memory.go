package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/boddenberg/revomotors-web/internal/infra/cache"
	"github.com/boddenberg/revomotors-web/internal/port"
)

// MemoryStore keeps sessions in process as encoded JSON, so a loaded
// session never aliases the stored one. Sessions are lost on restart.
type MemoryStore struct {
	items  port.Cache[[]byte]
	signer *signer
}

// NewMemoryStore creates a MemoryStore whose entries default to ttl.
func NewMemoryStore(secret string, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		items:  cache.New[[]byte](ttl),
		signer: newSigner(secret),
	}
}

func (m *MemoryStore) Get(_ context.Context, cookie string) (*Session, error) {
	sid, err := m.signer.verify(cookie)
	if err != nil {
		return nil, err
	}
	raw, ok := m.items.Get(sid)
	if !ok {
		return nil, ErrNoSession
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session, expiresAt time.Time) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	m.items.SetWithTTL(s.ID, raw, time.Until(expiresAt))
	return m.signer.sign(s.ID, expiresAt)
}

func (m *MemoryStore) Delete(_ context.Context, s *Session) error {
	m.items.Delete(s.ID)
	return nil
}
