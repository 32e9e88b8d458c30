// Package handler wires the chi router: page handlers, session and auth
// middleware and the operational endpoints.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/boddenberg/revomotors-web/internal/domain"
	"github.com/boddenberg/revomotors-web/internal/infra/observability"
	"github.com/boddenberg/revomotors-web/internal/port"
	"github.com/boddenberg/revomotors-web/internal/service"
	"github.com/boddenberg/revomotors-web/internal/session"
	"github.com/boddenberg/revomotors-web/internal/web"
)

var tracer = otel.Tracer("handler")

const readyTimeout = 2 * time.Second

// Services are the page use cases the router dispatches to.
type Services struct {
	Auth    *service.AuthService
	Dealer  *service.DealerService
	Filters *service.FilterService
	Leads   *service.LeadService
	Listing *service.ListingService
}

// Options tune request limits.
type Options struct {
	MaxUploadBytes   int64
	LoginPerMinute   int
	ListingPerMinute int
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svc Services, sessions *session.Manager, views *web.Renderer, health port.HealthChecker, opts Options, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	k := &kit{views: views, sessions: sessions, metrics: metrics, logger: logger}
	loginLimit := NewIPRateLimiter(opts.LoginPerMinute)
	listingLimit := NewIPRateLimiter(opts.ListingPerMinute)

	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler(health, logger))
	r.Get("/status", statusHandler(metrics))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- Pages ---
	r.Group(func(r chi.Router) {
		r.Use(LoadSession(sessions))
		r.NotFound(notFoundHandler(k))

		r.Get("/", landingHandler(k))

		// Auth
		r.Get("/dealer/login", loginPageHandler(k))
		r.With(k.RateLimit(loginLimit)).Post("/dealer/login", loginHandler(svc.Auth, k))
		r.Get("/dealer/register", registerPageHandler(k))
		r.With(k.RateLimit(loginLimit)).Post("/dealer/register", registerHandler(svc.Auth, k))
		r.Post("/logout", logoutHandler(k))

		// Seller
		r.Get("/seller/list-car", listCarPageHandler(k))
		r.With(k.RateLimit(listingLimit)).Post("/seller/list-car", listCarHandler(svc.Listing, opts.MaxUploadBytes, k))

		// Dealer (signed in)
		r.Group(func(r chi.Router) {
			r.Use(k.RequireDealer)

			r.Get("/dealer", http.RedirectHandler(dashboardPath, http.StatusSeeOther).ServeHTTP)
			r.Get("/dealer/dashboard", dashboardHandler(svc.Dealer, k))

			r.Get("/dealer/filters", filtersPageHandler(svc.Filters, k))
			r.Post("/dealer/filters", createFilterHandler(svc.Filters, k))
			r.Post("/dealer/filters/draft/make", draftMakeHandler(svc.Filters, k))
			r.Post("/dealer/filters/draft/model", draftModelHandler(svc.Filters, k))
			r.Post("/dealer/filters/draft/search", draftSearchHandler(k))
			r.Post("/dealer/filters/draft/reset", draftResetHandler(k))
			r.Post("/dealer/filters/{id}/pause", pauseFilterHandler(svc.Filters, k))
			r.Post("/dealer/filters/{id}/delete", deleteFilterHandler(svc.Filters, k))
			r.Get("/dealer/catalog/models", catalogModelsHandler(svc.Filters, k))
			r.Get("/dealer/catalog/years", catalogYearsHandler(svc.Filters, k))
			r.Get("/dealer/catalog/trims", catalogTrimsHandler(svc.Filters, k))
			r.Get("/dealer/catalog/body-types", catalogBodyTypesHandler(svc.Filters, k))

			r.Get("/dealer/leads/{id}", leadPageHandler(svc.Leads, k))
			r.Post("/dealer/leads/{id}/offer", leadOfferHandler(svc.Leads, k))
			r.Post("/dealer/leads/{id}/status", leadStatusHandler(svc.Leads, k))
			r.Post("/dealer/leads/{id}/messages/generate", generateMessageHandler(svc.Leads, k))
			r.Post("/dealer/leads/{id}/messages/send", sendMessageHandler(svc.Leads, k))
			r.Post("/dealer/leads/{id}/messages/discard", discardMessageHandler(k))

			r.Get("/dealer/settings", settingsPageHandler(svc.Dealer, k))
			r.Post("/dealer/settings/profile", updateProfileHandler(svc.Dealer, k))
			r.Post("/dealer/settings/communication", updateCommunicationHandler(svc.Dealer, k))
		})
	})

	return r
}

// ============================================================
// Operational endpoints
// ============================================================

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// readyzHandler probes the RevoMotors API. The web tier is ready only when
// the API answers within readyTimeout.
func readyzHandler(health port.HealthChecker, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		now := time.Now().UTC().Format(time.RFC3339)
		api := domain.ServiceHealth{Name: "revomotors-api", Status: "healthy", LastChecked: now}
		latency, err := health.Ping(ctx)
		api.LatencyMs = latency.Milliseconds()
		if err != nil {
			logger.Warn("readyz: api unreachable", zap.Error(err))
			api.Status = "unhealthy"
			api.Error = err.Error()
		}

		services := []domain.ServiceHealth{
			{Name: "web", Status: "healthy", LastChecked: now},
			api,
		}
		overall, code := "healthy", http.StatusOK
		if api.Status != "healthy" {
			overall, code = "unhealthy", http.StatusServiceUnavailable
		}
		writeJSON(w, code, domain.HealthStatus{Status: overall, Services: services})
	}
}

func statusHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
