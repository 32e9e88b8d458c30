package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/boddenberg/revomotors-web/internal/domain"
)

// GetProfile fetches the signed-in dealer's profile.
func (c *Client) GetProfile(ctx context.Context, token string) (*domain.DealerProfile, error) {
	var out domain.DealerProfile
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/dealers/profile",
		endpoint: "GET /api/dealers/profile",
		token:    token,
		resource: "dealer profile",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile saves the profile form.
func (c *Client) UpdateProfile(ctx context.Context, token string, upd *domain.ProfileUpdate) (*domain.ActionResult, error) {
	var out domain.ActionResult
	err := c.do(ctx, call{
		method:   http.MethodPut,
		path:     "/api/dealers/profile",
		endpoint: "PUT /api/dealers/profile",
		token:    token,
		body:     upd,
		resource: "dealer profile",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCommunicationPreferences saves the follow-up toggles.
func (c *Client) UpdateCommunicationPreferences(ctx context.Context, token string, prefs *domain.CommunicationPreferences) (*domain.ActionResult, error) {
	var out domain.ActionResult
	err := c.do(ctx, call{
		method:   http.MethodPut,
		path:     "/api/dealers/communication-preferences",
		endpoint: "PUT /api/dealers/communication-preferences",
		token:    token,
		body:     prefs,
		resource: "dealer profile",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetStats fetches the dashboard counters.
func (c *Client) GetStats(ctx context.Context, token string) (*domain.DealerStats, error) {
	var out domain.DealerStats
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/dealers/stats",
		endpoint: "GET /api/dealers/stats",
		token:    token,
		resource: "dealer profile",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListFilters fetches the dealer's saved marketplace filters.
func (c *Client) ListFilters(ctx context.Context, token string) (*domain.FilterList, error) {
	var out domain.FilterList
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/dealers/filters",
		endpoint: "GET /api/dealers/filters",
		token:    token,
		resource: "dealer profile",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateFilter saves a new marketplace filter.
func (c *Client) CreateFilter(ctx context.Context, token string, in *domain.FilterInput) (*domain.FilterCreated, error) {
	var out domain.FilterCreated
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/api/dealers/filters",
		endpoint: "POST /api/dealers/filters",
		token:    token,
		body:     in,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateFilter replaces a saved filter.
func (c *Client) UpdateFilter(ctx context.Context, token string, id int64, in *domain.FilterInput) (*domain.ActionResult, error) {
	var out domain.ActionResult
	sid := strconv.FormatInt(id, 10)
	err := c.do(ctx, call{
		method:   http.MethodPut,
		path:     "/api/dealers/filters/" + sid,
		endpoint: "PUT /api/dealers/filters/{id}",
		token:    token,
		body:     in,
		resource: "filter",
		id:       sid,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteFilter removes a saved filter.
func (c *Client) DeleteFilter(ctx context.Context, token string, id int64) error {
	sid := strconv.FormatInt(id, 10)
	return c.do(ctx, call{
		method:   http.MethodDelete,
		path:     "/api/dealers/filters/" + sid,
		endpoint: "DELETE /api/dealers/filters/{id}",
		token:    token,
		resource: "filter",
		id:       sid,
	}, nil)
}
