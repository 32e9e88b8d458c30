package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/boddenberg/revomotors-web/internal/domain"
)

// Login posts the OAuth2 password form; the API expects the email as username.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.TokenResponse, error) {
	var out domain.TokenResponse
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/api/auth/login",
		endpoint: "POST /api/auth/login",
		form:     url.Values{"username": {email}, "password": {password}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, req *domain.SignupRequest) (*domain.TokenResponse, error) {
	var out domain.TokenResponse
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/api/auth/signup",
		endpoint: "POST /api/auth/signup",
		body:     req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
