package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/boddenberg/revomotors-web/internal/domain"
	"github.com/boddenberg/revomotors-web/internal/infra/observability"
	"github.com/boddenberg/revomotors-web/internal/infra/resilience"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *observability.Metrics) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	metrics := observability.NewMetrics()
	cfg := resilience.Config{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxConcurrency: 4}
	c := New(&http.Client{Timeout: 2 * time.Second}, srv.URL+"/", resilience.NewCircuitBreaker("test", nil), cfg, metrics, zap.NewNop())
	return c, metrics
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin_SendsFormAndDecodesToken(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "dealer@example.com", r.PostForm.Get("username"))
		assert.Equal(t, "s3cret", r.PostForm.Get("password"))
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "tok", "token_type": "bearer", "user_id": 7, "role": "dealer",
		})
	})

	tok, err := c.Login(context.Background(), "dealer@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "tok", tok.AccessToken)
	assert.Equal(t, int64(7), tok.UserID)
	assert.Equal(t, domain.RoleDealer, tok.Role)
}

func TestGetStats_InjectsBearer(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"total_leads": 3, "won_deals": 1, "conversion_rate": 33.33})
	})

	stats, err := c.GetStats(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalLeads)
	assert.InDelta(t, 33.33, stats.ConversionRate, 0.001)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"401", http.StatusUnauthorized, `{"detail":"Could not validate credentials"}`, func(t *testing.T, err error) {
			var e *domain.ErrUnauthorized
			require.ErrorAs(t, err, &e)
			assert.Equal(t, "Could not validate credentials", e.Message)
		}},
		{"403", http.StatusForbidden, `{"detail":"Not a dealer"}`, func(t *testing.T, err error) {
			var e *domain.ErrForbidden
			require.ErrorAs(t, err, &e)
		}},
		{"404", http.StatusNotFound, `{"detail":"Lead not found"}`, func(t *testing.T, err error) {
			var e *domain.ErrNotFound
			require.ErrorAs(t, err, &e)
			assert.Equal(t, "lead", e.Resource)
			assert.Equal(t, "42", e.ID)
		}},
		{"422 structured detail", http.StatusUnprocessableEntity, `{"detail":[{"loc":["query","id"],"msg":"bad"}]}`, func(t *testing.T, err error) {
			var e *domain.ErrValidation
			require.ErrorAs(t, err, &e)
			assert.Equal(t, `[{"loc":["query","id"],"msg":"bad"}]`, e.Message)
		}},
		{"400 without detail", http.StatusBadRequest, `{}`, func(t *testing.T, err error) {
			var e *domain.ErrValidation
			require.ErrorAs(t, err, &e)
			assert.Equal(t, "Bad Request", e.Message)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.GetLead(context.Background(), "tok", 42)
			require.Error(t, err)
			tt.check(t, err)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx must not be retried")
		})
	}
}

func TestGet_RetriesServerErrors(t *testing.T) {
	var calls int32
	c, metrics := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"makes": []string{"Honda", "Toyota"}})
	})

	makes, err := c.Makes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Honda", "Toyota"}, makes.Makes)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, int64(1), metrics.Snapshot().APICalls)
}

func TestWrite_NeverRetried(t *testing.T) {
	var calls int32
	c, metrics := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "boom"})
	})

	err := c.DeleteFilter(context.Background(), "tok", 9)
	var ext *domain.ErrExternalService
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, http.StatusInternalServerError, ext.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, int64(1), metrics.Snapshot().ErrorsByKind[observability.KindUpstream])
}

func TestSendMessage_UpdatedBodyInQuery(t *testing.T) {
	var got map[string][]string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/leads/5/send-message", r.URL.Path)
		got = r.URL.Query()
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "sent", "sent_at": "2025-01-02T10:00:00"})
	})

	res, err := c.SendMessage(context.Background(), "tok", 5, 11, "Edited text")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, []string{"11"}, got["message_id"])
	assert.Equal(t, []string{"Edited text"}, got["updated_body"])

	_, err = c.SendMessage(context.Background(), "tok", 5, 11, "")
	require.NoError(t, err)
	_, present := got["updated_body"]
	assert.False(t, present)
}

func TestListLeads_Query(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/leads/", r.URL.Path)
		assert.Equal(t, "hot_lead", r.URL.Query().Get("source"))
		assert.Equal(t, "", r.URL.Query().Get("status"))
		_, _ = io.WriteString(w, `{"total":1,"leads":[{"lead_id":3,"status":"new","created_at":"2025-03-01T09:30:00.123456",
			"listing":{"year":2019,"make":"Honda","model":"Civic","mileage":42000,"source":"hot_lead","location":{"city":"Austin","state":"TX"}},
			"ai_estimate":{"offer_fair":15000}}]}`)
	})

	list, err := c.ListLeads(context.Background(), "tok", domain.LeadQuery{Source: domain.SourceHotLead})
	require.NoError(t, err)
	require.Len(t, list.Leads, 1)
	lead := list.Leads[0]
	assert.Equal(t, int64(3), lead.ID)
	assert.Equal(t, "2019 Honda Civic", lead.Listing.Vehicle())
	assert.Equal(t, "Austin, TX", lead.Listing.Location.String())
	assert.Equal(t, "15000", lead.FairOffer())
	assert.Equal(t, "Mar 1, 2025", lead.CreatedAt.Date())
}

func TestSubmitListing_SendsJSON(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var p domain.ListingPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, "direct", p.Marketplace)
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "success", "listing_id": 77, "leads_created": 2,
			"ai_draft_offer": map[string]any{"low": 9000, "fair": 10000, "max": 11000},
		})
	})

	receipt, err := c.SubmitListing(context.Background(), &domain.ListingPayload{Marketplace: "direct"})
	require.NoError(t, err)
	assert.Equal(t, int64(77), receipt.ListingID)
	require.NotNil(t, receipt.DraftOffer)
	assert.Equal(t, 10000.0, *receipt.DraftOffer.Fair)
}

func TestCircuitOpens(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	for i := 0; i < 5; i++ {
		_, _ = c.UpdateStatus(context.Background(), "tok", 1, domain.LeadStatusWon)
	}
	_, err := c.UpdateStatus(context.Background(), "tok", 1, domain.LeadStatusWon)
	var open *domain.ErrCircuitOpen
	assert.ErrorAs(t, err, &open)
}

func TestTransportError(t *testing.T) {
	c := New(&http.Client{Timeout: time.Second}, "http://127.0.0.1:1",
		resilience.NewCircuitBreaker("test", nil),
		resilience.Config{MaxRetries: 0, InitialBackoff: time.Millisecond, MaxConcurrency: 1},
		observability.NewMetrics(), zap.NewNop())

	_, err := c.Login(context.Background(), "a@b.c", "x")
	var ext *domain.ErrExternalService
	require.ErrorAs(t, err, &ext)
	assert.Zero(t, ext.Status)
}

func TestDetail(t *testing.T) {
	assert.Equal(t, "Email already registered", Detail([]byte(`{"detail":"Email already registered"}`)))
	assert.Equal(t, `{"code":1}`, Detail([]byte(`{"detail": {"code": 1}}`)))
	assert.Equal(t, "", Detail([]byte(`not json`)))
	assert.Equal(t, "", Detail([]byte(`{"detail":null}`)))
}

func TestPing(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	_, err := c.Ping(context.Background())
	assert.NoError(t, err)
}
