package handler

import (
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/boddenberg/revomotors-web/internal/infra/cache"
	"github.com/boddenberg/revomotors-web/internal/port"
	"github.com/boddenberg/revomotors-web/internal/session"
	"github.com/boddenberg/revomotors-web/internal/web"
)

// LoadSession resolves the session cookie and stores the session in the
// request context.
func LoadSession(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := sessions.Load(r)
			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
		})
	}
}

// RequireDealer sends signed-out browsers to the login page, remembering
// where they were going. A signed-in non-dealer gets 403.
func (k *kit) RequireDealer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := session.FromContext(r.Context())
		if !s.Authenticated() {
			k.logger.Debug("auth: no session", zap.String("path", r.URL.Path))
			k.redirect(w, r, "/dealer/login?next="+url.QueryEscape(r.URL.RequestURI()))
			return
		}
		if !s.IsDealer() {
			k.logger.Warn("auth: not a dealer", zap.String("path", r.URL.Path))
			k.render(w, r, http.StatusForbidden, web.PageError, &web.View{Title: "Forbidden", Error: msgForbidden})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ============================================================
// Per-IP rate limiting
// ============================================================

// IPRateLimiter hands out one token bucket per client IP. Idle buckets
// expire from the cache.
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters port.Cache[*rate.Limiter]
	limit    rate.Limit
	burst    int
}

// NewIPRateLimiter allows perMinute requests per IP, bursting to perMinute.
func NewIPRateLimiter(perMinute int) *IPRateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &IPRateLimiter{
		limiters: cache.New[*rate.Limiter](10 * time.Minute),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}
}

// Allow consumes one token for ip.
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters.Get(ip)
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
	}
	// re-set on every hit so active clients never expire mid-window
	l.limiters.Set(ip, lim)
	return lim.Allow()
}

// RateLimit rejects requests over the per-IP budget with 429.
func (k *kit) RateLimit(l *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(clientIP(r)) {
				k.logger.Warn("rate limited", zap.String("path", r.URL.Path), zap.String("remote_addr", r.RemoteAddr))
				w.Header().Set("Retry-After", "60")
				k.render(w, r, http.StatusTooManyRequests, web.PageError, &web.View{
					Title: "Slow down",
					Error: "Too many attempts. Please wait a minute and try again.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port; middleware.RealIP has already applied proxy headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
