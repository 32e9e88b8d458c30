package handler

import (
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/revomotors-web/internal/domain"
	"github.com/boddenberg/revomotors-web/internal/service"
	"github.com/boddenberg/revomotors-web/internal/session"
	"github.com/boddenberg/revomotors-web/internal/web"
)

const dashboardPath = "/dealer/dashboard"

type loginForm struct {
	Email  string
	Next   string
	Notice string
}

// ============================================================
// Login: GET/POST /dealer/login
// ============================================================

func loginPageHandler(k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if session.FromContext(r.Context()).IsDealer() {
			k.redirect(w, r, dashboardPath)
			return
		}
		form := loginForm{Next: localDealerPath(r.URL.Query().Get("next"))}
		if r.URL.Query().Get("expired") != "" {
			form.Notice = "Your session has expired. Please sign in again."
		}
		k.render(w, r, http.StatusOK, web.PageLogin, &web.View{Title: "Dealer login", Data: form})
	}
}

func loginHandler(svc *service.AuthService, k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /dealer/login")
		defer span.End()

		if err := r.ParseForm(); err != nil {
			k.render(w, r, http.StatusBadRequest, web.PageLogin, &web.View{Title: "Dealer login", Error: "Invalid form submission", Data: loginForm{}})
			return
		}
		creds := &domain.Credentials{Email: r.PostFormValue("email"), Password: r.PostFormValue("password")}
		form := loginForm{Email: creds.Email, Next: localDealerPath(r.PostFormValue("next"))}

		res, err := svc.Login(ctx, creds)
		if err != nil {
			status, msg := authFailure(err)
			k.logger.Info("login failed", zap.Int("status", status))
			k.render(w, r, status, web.PageLogin, &web.View{Title: "Dealer login", Error: msg, Data: form})
			return
		}
		span.SetAttributes(attribute.String("user.id", res.User.ID))

		s := session.FromContext(ctx)
		k.sessions.SignIn(ctx, s, res)
		to := form.Next
		if to == "" {
			to = dashboardPath
		}
		k.redirect(w, r, to)
	}
}

// ============================================================
// Register: GET/POST /dealer/register
// ============================================================

func registerPageHandler(k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		k.render(w, r, http.StatusOK, web.PageRegister, &web.View{Title: "Dealer registration", Data: domain.Registration{}})
	}
}

func registerHandler(svc *service.AuthService, k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /dealer/register")
		defer span.End()

		if err := r.ParseForm(); err != nil {
			k.render(w, r, http.StatusBadRequest, web.PageRegister, &web.View{Title: "Dealer registration", Error: "Invalid form submission", Data: domain.Registration{}})
			return
		}
		reg := &domain.Registration{
			FirstName:       r.PostFormValue("first_name"),
			LastName:        r.PostFormValue("last_name"),
			Email:           r.PostFormValue("email"),
			Password:        r.PostFormValue("password"),
			ConfirmPassword: r.PostFormValue("confirm_password"),
			DealershipName:  r.PostFormValue("dealership_name"),
			Phone:           r.PostFormValue("phone"),
			LicenseNumber:   r.PostFormValue("license_number"),
			Consent:         checked(r, "consent"),
		}

		res, err := svc.Register(ctx, reg)
		if err != nil {
			status, msg := authFailure(err)
			sticky := *reg
			sticky.Password, sticky.ConfirmPassword = "", ""
			k.render(w, r, status, web.PageRegister, &web.View{Title: "Dealer registration", Error: msg, Data: sticky})
			return
		}

		s := session.FromContext(ctx)
		k.sessions.SignIn(ctx, s, res)
		k.flashRedirect(w, r, session.FlashSuccess, "Registration successful", dashboardPath)
	}
}

// authFailure maps login/register errors to the form banner.
func authFailure(err error) (int, string) {
	var (
		validation   *domain.ErrValidation
		unauthorized *domain.ErrUnauthorized
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Message
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized, unauthorized.Error()
	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, service.MsgCannotConnect
	default:
		return http.StatusBadGateway, msgSomethingWrong
	}
}

// ============================================================
// Logout: POST /logout
// ============================================================

func logoutHandler(k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		k.sessions.Destroy(w, r, session.FromContext(r.Context()))
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
