package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/boddenberg/revomotors-web/internal/domain"
	"github.com/boddenberg/revomotors-web/internal/infra/observability"
)

// CookieName is the session cookie.
const CookieName = "revomotors_session"

// Manager binds sessions to requests through the session cookie.
// It is the only place the bearer token is read from or written to.
type Manager struct {
	store   Store
	ttl     time.Duration
	secure  bool
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewManager creates a Manager over store. Sessions live at most ttl.
func NewManager(store Store, ttl time.Duration, secure bool, metrics *observability.Metrics, logger *zap.Logger) *Manager {
	return &Manager{store: store, ttl: ttl, secure: secure, metrics: metrics, logger: logger}
}

// Load returns the request's session, or a fresh one when the cookie is
// missing, invalid or expired. An expired token is treated as signed out.
func (m *Manager) Load(r *http.Request) *Session {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return New()
	}
	s, err := m.store.Get(r.Context(), c.Value)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			m.logger.Warn("session: load failed", zap.Error(err))
		}
		return New()
	}
	if s.Token != "" && !s.Authenticated() {
		s.SignOut()
		m.metrics.IncrSession(observability.SessionExpired)
	}
	return s
}

// SignIn stores res in s under a new id, forgetting the pre-login record.
func (m *Manager) SignIn(ctx context.Context, s *Session, res *domain.AuthResult) {
	if !s.isNew {
		if err := m.store.Delete(ctx, s); err != nil {
			m.logger.Warn("session: delete before sign-in failed", zap.Error(err))
		}
	}
	s.SignIn(res)
	m.metrics.IncrSession(observability.SessionOpened)
}

// Save writes s back and sets the cookie when it changed. Call it before
// the response header is written.
func (m *Manager) Save(w http.ResponseWriter, r *http.Request, s *Session) error {
	if !s.changed {
		return nil
	}
	expiresAt := m.expiry(s)
	value, err := m.store.Save(r.Context(), s, expiresAt)
	if errors.Is(err, ErrCookieTooLarge) && s.shed() {
		m.logger.Warn("session: cookie too large, dropped message drafts", zap.String("path", r.URL.Path))
		value, err = m.store.Save(r.Context(), s, expiresAt)
	}
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.changed, s.isNew = false, false
	return nil
}

// Destroy forgets s and expires the cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request, s *Session) {
	if err := m.store.Delete(r.Context(), s); err != nil {
		m.logger.Warn("session: delete failed", zap.Error(err))
	}
	if s.Token != "" {
		m.metrics.IncrSession(observability.SessionClosed)
	}
	s.SignOut()
	s.changed = false
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// expiry caps the session at the configured ttl and at the token expiry.
func (m *Manager) expiry(s *Session) time.Time {
	limit := time.Now().Add(m.ttl)
	if !s.ExpiresAt.IsZero() && s.ExpiresAt.Before(limit) {
		return s.ExpiresAt
	}
	return limit
}

type ctxKey struct{}

// WithSession returns ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the request session; never nil.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(ctxKey{}).(*Session); ok && s != nil {
		return s
	}
	return New()
}
