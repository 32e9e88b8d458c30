package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/boddenberg/revomotors-web/internal/domain"
)

func leadPath(id int64, suffix string) (string, string) {
	sid := strconv.FormatInt(id, 10)
	return "/api/leads/" + sid + suffix, sid
}

// ListLeads fetches the dealer's leads, optionally narrowed by source/status.
func (c *Client) ListLeads(ctx context.Context, token string, q domain.LeadQuery) (*domain.LeadList, error) {
	query := url.Values{}
	if q.Source != "" {
		query.Set("source", q.Source)
	}
	if q.Status != "" {
		query.Set("status", q.Status)
	}
	var out domain.LeadList
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/leads/",
		endpoint: "GET /api/leads/",
		query:    query,
		token:    token,
		resource: "dealer profile",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLead fetches one lead with its listing and message history.
func (c *Client) GetLead(ctx context.Context, token string, id int64) (*domain.Lead, error) {
	path, sid := leadPath(id, "")
	var out domain.Lead
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     path,
		endpoint: "GET /api/leads/{id}",
		token:    token,
		resource: "lead",
		id:       sid,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStatus moves a lead to another pipeline stage.
func (c *Client) UpdateStatus(ctx context.Context, token string, id int64, status domain.LeadStatus) (*domain.ActionResult, error) {
	path, sid := leadPath(id, "/status")
	var out domain.ActionResult
	err := c.do(ctx, call{
		method:   http.MethodPut,
		path:     path,
		endpoint: "PUT /api/leads/{id}/status",
		token:    token,
		body:     map[string]string{"status": string(status)},
		resource: "lead",
		id:       sid,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateOffer records the dealer's custom offer.
func (c *Client) UpdateOffer(ctx context.Context, token string, id int64, amount float64) (*domain.OfferUpdate, error) {
	path, sid := leadPath(id, "/update-offer")
	var out domain.OfferUpdate
	err := c.do(ctx, call{
		method:   http.MethodPut,
		path:     path,
		endpoint: "PUT /api/leads/{id}/update-offer",
		query:    url.Values{"offer_amount": {strconv.FormatFloat(amount, 'f', -1, 64)}},
		token:    token,
		resource: "lead",
		id:       sid,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateMessage asks the API to draft an outreach message.
func (c *Client) GenerateMessage(ctx context.Context, token string, id int64, messageType string) (*domain.GeneratedMessage, error) {
	path, sid := leadPath(id, "/generate-message")
	var out domain.GeneratedMessage
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     path,
		endpoint: "POST /api/leads/{id}/generate-message",
		query:    url.Values{"message_type": {messageType}},
		token:    token,
		resource: "lead",
		id:       sid,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SendMessage sends a generated message, replacing its text with
// updatedBody when that is non-empty.
func (c *Client) SendMessage(ctx context.Context, token string, id int64, messageID int64, updatedBody string) (*domain.SendResult, error) {
	path, _ := leadPath(id, "/send-message")
	query := url.Values{"message_id": {strconv.FormatInt(messageID, 10)}}
	if updatedBody != "" {
		query.Set("updated_body", updatedBody)
	}
	var out domain.SendResult
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     path,
		endpoint: "POST /api/leads/{id}/send-message",
		query:    query,
		token:    token,
		resource: "message",
		id:       strconv.FormatInt(messageID, 10),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitListing posts a seller listing to the lead intake webhook.
func (c *Client) SubmitListing(ctx context.Context, payload *domain.ListingPayload) (*domain.ListingReceipt, error) {
	var out domain.ListingReceipt
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/api/leads/webhook/lead_received",
		endpoint: "POST /api/leads/webhook/lead_received",
		body:     payload,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
