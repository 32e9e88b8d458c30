// Package service holds the page use cases: each service validates input,
// calls the RevoMotors API through its ports and shapes the result for the
// handlers. No business rules of the marketplace live here.
package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/revomotors-web/internal/domain"
	"github.com/boddenberg/revomotors-web/internal/port"
	"github.com/boddenberg/revomotors-web/internal/session"
)

var authTracer = otel.Tracer("service/auth")

// Messages shown by the auth pages.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgCannotConnect      = "Cannot connect to server. Backend may be offline."
	MsgRegistrationFailed = "Registration failed. Email may already be in use."
)

// AuthService orchestrates dealer login and registration.
type AuthService struct {
	api    port.AuthAPI
	logger *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(api port.AuthAPI, logger *zap.Logger) *AuthService {
	return &AuthService{api: api, logger: logger}
}

// ============================================================
// Login: POST /api/auth/login
// ============================================================

// Login exchanges credentials for a token. Any non-2xx answer becomes
// ErrUnauthorized with MsgInvalidCredentials; an unreachable API is
// returned as is.
func (s *AuthService) Login(ctx context.Context, creds *domain.Credentials) (*domain.AuthResult, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	if err := creds.Validate(); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(creds.Email)

	tok, err := s.api.Login(ctx, email, creds.Password)
	if err != nil {
		if domain.IsUnavailable(err) {
			s.logger.Error("login: api unavailable", zap.Error(err))
			return nil, err
		}
		s.logger.Info("login: rejected", zap.Error(err))
		return nil, &domain.ErrUnauthorized{Message: MsgInvalidCredentials}
	}
	if tok.AccessToken == "" {
		return nil, &domain.ErrUnauthorized{Message: MsgInvalidCredentials}
	}

	res, err := s.result(tok, email)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", res.User.ID))
	return res, nil
}

// ============================================================
// Register: POST /api/auth/signup
// ============================================================

// Register validates the form and signs the dealer up. An API validation
// detail is passed through; other failures read MsgRegistrationFailed.
func (s *AuthService) Register(ctx context.Context, reg *domain.Registration) (*domain.AuthResult, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Register")
	defer span.End()

	if err := reg.Validate(); err != nil {
		return nil, err
	}
	req := reg.SignupRequest()

	tok, err := s.api.Signup(ctx, req)
	if err != nil {
		if domain.IsUnavailable(err) {
			s.logger.Error("register: api unavailable", zap.Error(err))
			return nil, err
		}
		var validation *domain.ErrValidation
		if errors.As(err, &validation) && validation.Message != "" {
			return nil, &domain.ErrValidation{Message: validation.Message}
		}
		s.logger.Warn("register: rejected", zap.Error(err))
		return nil, &domain.ErrValidation{Message: MsgRegistrationFailed}
	}

	res, err := s.result(tok, req.Email)
	if err != nil {
		return nil, err
	}
	res.User.FirstName = req.FirstName
	res.User.LastName = req.LastName
	s.logger.Info("dealer registered", zap.String("user_id", res.User.ID))
	return res, nil
}

// result builds the session payload from a token response. The token's own
// claims fill any gap in the body and bound the session lifetime.
func (s *AuthService) result(tok *domain.TokenResponse, email string) (*domain.AuthResult, error) {
	res := &domain.AuthResult{
		Token: tok.AccessToken,
		User: domain.User{
			Email: email,
			Role:  tok.Role,
		},
	}
	if tok.UserID != 0 {
		res.User.ID = strconv.FormatInt(tok.UserID, 10)
	}

	claims, err := session.ParseTokenClaims(tok.AccessToken)
	if err != nil {
		s.logger.Debug("auth: token claims unreadable", zap.Error(err))
	} else {
		if res.User.ID == "" {
			res.User.ID = claims.Subject
		}
		if res.User.Role == "" {
			res.User.Role = domain.Role(claims.Role)
		}
		res.ExpiresAt = claims.ExpiresAt
	}

	if !res.ExpiresAt.IsZero() && !res.ExpiresAt.After(time.Now()) {
		return nil, &domain.ErrUnauthorized{Message: "Session expired, please sign in again"}
	}
	if res.User.Role == "" {
		res.User.Role = domain.RoleDealer
	}
	return res, nil
}
