package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/boddenberg/revomotors-web/internal/domain"
	"github.com/boddenberg/revomotors-web/internal/infra/observability"
	"github.com/boddenberg/revomotors-web/internal/service"
	"github.com/boddenberg/revomotors-web/internal/session"
	"github.com/boddenberg/revomotors-web/internal/web"
)

// ============================================================
// Shared helper functions
// ============================================================

const (
	msgSomethingWrong = "Something went wrong"
	msgForbidden      = "Access forbidden"
	msgNotFound       = "Not found"
)

// kit is what every page handler needs besides its service.
type kit struct {
	views    *web.Renderer
	sessions *session.Manager
	metrics  *observability.Metrics
	logger   *zap.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// save writes the session back. Call before anything is written to w.
func (k *kit) save(w http.ResponseWriter, r *http.Request, s *session.Session) {
	if err := k.sessions.Save(w, r, s); err != nil {
		k.logger.Error("session: save failed", zap.Error(err))
	}
}

// render pops the flashes, saves the session and writes page with status.
func (k *kit) render(w http.ResponseWriter, r *http.Request, status int, page string, v *web.View) {
	s := session.FromContext(r.Context())
	if s.Authenticated() {
		v.User = s.User
	}
	v.Flashes = s.PopFlashes()
	if v.Status == 0 {
		v.Status = status
	}
	k.save(w, r, s)

	outcome := "ok"
	if status >= 400 {
		outcome = "error"
	}
	k.metrics.IncrPageRender(page, outcome)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := k.views.Render(w, page, v); err != nil {
		k.logger.Error("render failed", zap.String("page", page), zap.Error(err))
	}
}

// redirect saves the session and answers 303 See Other.
func (k *kit) redirect(w http.ResponseWriter, r *http.Request, to string) {
	k.save(w, r, session.FromContext(r.Context()))
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// flashRedirect queues a banner and redirects.
func (k *kit) flashRedirect(w http.ResponseWriter, r *http.Request, kind, msg, to string) {
	session.FromContext(r.Context()).AddFlash(kind, msg)
	k.redirect(w, r, to)
}

// signedOut handles an API 401: the session is destroyed and the browser
// sent to the login page. It reports whether err was a 401.
func (k *kit) signedOut(w http.ResponseWriter, r *http.Request, err error) bool {
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		return false
	}
	k.logger.Info("api rejected token, signing out", zap.String("path", r.URL.Path))
	k.sessions.Destroy(w, r, session.FromContext(r.Context()))
	http.Redirect(w, r, "/dealer/login?expired=1", http.StatusSeeOther)
	return true
}

// explain maps a service error to the banner text and status of a page.
func (k *kit) explain(err error) (int, string) {
	var (
		notFound   *domain.ErrNotFound
		validation *domain.ErrValidation
		forbidden  *domain.ErrForbidden
	)
	switch {
	case errors.As(err, &validation):
		k.logger.Debug("validation error", zap.String("error", err.Error()))
		return http.StatusBadRequest, validation.Message
	case errors.As(err, &forbidden):
		k.logger.Warn("forbidden access", zap.String("error", err.Error()))
		return http.StatusForbidden, msgForbidden
	case errors.As(err, &notFound):
		k.logger.Debug("not found", zap.String("error", err.Error()))
		return http.StatusNotFound, msgNotFound
	case domain.IsUnavailable(err):
		k.logger.Error("api unavailable", zap.Error(err))
		return http.StatusServiceUnavailable, service.MsgCannotConnect
	default:
		k.logger.Error("unhandled error", zap.Error(err))
		return http.StatusInternalServerError, msgSomethingWrong
	}
}

// handleServiceError answers a failed page fetch: 401 signs out, anything
// else renders page with an inline banner.
func (k *kit) handleServiceError(w http.ResponseWriter, r *http.Request, page string, v *web.View, err error) {
	if k.signedOut(w, r, err) {
		return
	}
	status, msg := k.explain(err)
	v.Error = msg
	k.render(w, r, status, page, v)
}

// failAction answers a failed form action with a flash and a redirect back.
func (k *kit) failAction(w http.ResponseWriter, r *http.Request, err error, back string) {
	if k.signedOut(w, r, err) {
		return
	}
	_, msg := k.explain(err)
	k.flashRedirect(w, r, session.FlashError, msg, back)
}

// notFound renders the error page for an unknown or malformed resource.
func (k *kit) notFound(w http.ResponseWriter, r *http.Request) {
	k.render(w, r, http.StatusNotFound, web.PageError, &web.View{Title: "Not found", Error: msgNotFound})
}

// idParam reads a positive integer path parameter.
func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// localDealerPath accepts only same-site /dealer/ paths as redirect targets.
func localDealerPath(next string) string {
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" || strings.HasPrefix(next, "//") {
		return ""
	}
	if !strings.HasPrefix(u.Path, "/dealer/") || strings.HasPrefix(u.Path, "/dealer/login") {
		return ""
	}
	return u.RequestURI()
}

// returnTo picks the redirect target of a lead action: the form's
// return_to when it is a local dealer page, fallback otherwise.
func returnTo(r *http.Request, fallback string) string {
	if to := localDealerPath(r.PostFormValue("return_to")); to != "" {
		return to
	}
	return fallback
}

func checked(r *http.Request, name string) bool {
	switch r.PostFormValue(name) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func trimmed(r *http.Request, name string) string {
	return strings.TrimSpace(r.PostFormValue(name))
}
