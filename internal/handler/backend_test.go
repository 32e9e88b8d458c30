package handler_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/boddenberg/revomotors-web/internal/domain"
)

const dealerPassword = "s3cret"

// fakeBackend is an in-memory RevoMotors API that records every request.
type fakeBackend struct {
	t     *testing.T
	mu    sync.Mutex
	token string
	// revoked makes every authenticated endpoint answer 401.
	revoked bool

	hits     map[string]int
	queries  map[string][]url.Values
	listings []domain.ListingPayload
	filters  []domain.Filter
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "7", "role": "dealer", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("backend-key"))
	require.NoError(t, err)

	return &fakeBackend{
		t:       t,
		token:   tok,
		hits:    map[string]int{},
		queries: map[string][]url.Values{},
		filters: []domain.Filter{
			{ID: 3, Name: "Civics", IsActive: true, VehicleFilters: domain.VehicleFilters{Makes: []string{"Honda"}}},
			{ID: 4, Name: "Trucks", IsActive: true, VehicleFilters: domain.VehicleFilters{Makes: []string{"Ford"}}},
		},
	}
}

func (b *fakeBackend) count(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[key]
}

func (b *fakeBackend) lastQuery(key string) url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	qs := b.queries[key]
	if len(qs) == 0 {
		return nil
	}
	return qs[len(qs)-1]
}

func (b *fakeBackend) revoke() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked = true
}

func (b *fakeBackend) reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// record counts the request under key ("METHOD /route") and checks the
// bearer token when authed is set. It reports whether to continue.
func (b *fakeBackend) record(w http.ResponseWriter, r *http.Request, key string, authed bool) bool {
	b.mu.Lock()
	b.hits[key]++
	b.queries[key] = append(b.queries[key], r.URL.Query())
	revoked := b.revoked
	b.mu.Unlock()

	if authed && (revoked || r.Header.Get("Authorization") != "Bearer "+b.token) {
		b.reply(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
		return false
	}
	return true
}

func (b *fakeBackend) handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		b.reply(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		b.record(w, r, "POST /api/auth/login", false)
		if r.PostFormValue("username") != "dealer@example.com" || r.PostFormValue("password") != dealerPassword {
			b.reply(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
			return
		}
		b.reply(w, http.StatusOK, domain.TokenResponse{AccessToken: b.token, TokenType: "bearer", UserID: 7, Role: domain.RoleDealer})
	})

	r.Get("/api/dealers/profile", func(w http.ResponseWriter, r *http.Request) {
		if b.record(w, r, "GET /api/dealers/profile", true) {
			b.reply(w, http.StatusOK, domain.DealerProfile{ID: 7, CompanyName: "Austin Autos", VerificationStatus: "pending"})
		}
	})

	r.Get("/api/dealers/stats", func(w http.ResponseWriter, r *http.Request) {
		if b.record(w, r, "GET /api/dealers/stats", true) {
			b.reply(w, http.StatusOK, domain.DealerStats{TotalLeads: 1, HotLeads: 1, ConversionRate: 12.5})
		}
	})

	r.Get("/api/leads/", func(w http.ResponseWriter, r *http.Request) {
		if b.record(w, r, "GET /api/leads/", true) {
			b.reply(w, http.StatusOK, domain.LeadList{Total: 1, Leads: []domain.Lead{b.lead()}})
		}
	})

	r.Get("/api/leads/{id}", func(w http.ResponseWriter, r *http.Request) {
		if b.record(w, r, "GET /api/leads/{id}", true) {
			b.reply(w, http.StatusOK, b.lead())
		}
	})

	r.Post("/api/leads/{id}/generate-message", func(w http.ResponseWriter, r *http.Request) {
		if b.record(w, r, "POST /api/leads/{id}/generate-message", true) {
			b.reply(w, http.StatusOK, domain.GeneratedMessage{MessageID: 77, Subject: "Your Civic", Body: "Hello seller, is the car available?", GeneratedByAI: true})
		}
	})

	r.Post("/api/leads/{id}/send-message", func(w http.ResponseWriter, r *http.Request) {
		if b.record(w, r, "POST /api/leads/{id}/send-message", true) {
			b.reply(w, http.StatusOK, map[string]any{"success": true, "message": "Message sent"})
		}
	})

	r.Get("/api/dealers/filters", func(w http.ResponseWriter, r *http.Request) {
		if b.record(w, r, "GET /api/dealers/filters", true) {
			b.mu.Lock()
			list := domain.FilterList{Total: len(b.filters), Filters: append([]domain.Filter(nil), b.filters...)}
			b.mu.Unlock()
			b.reply(w, http.StatusOK, list)
		}
	})

	r.Put("/api/dealers/filters/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !b.record(w, r, "PUT /api/dealers/filters/{id}", true) {
			return
		}
		var in domain.FilterInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			b.reply(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
			return
		}
		id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		b.mu.Lock()
		kept := b.filters[:0]
		for _, f := range b.filters {
			// the list endpoint returns active filters only
			if f.ID == id && in.IsActive != nil && !*in.IsActive {
				continue
			}
			kept = append(kept, f)
		}
		b.filters = kept
		b.mu.Unlock()
		b.reply(w, http.StatusOK, domain.ActionResult{Success: true, Message: "Filter updated"})
	})

	r.Delete("/api/dealers/filters/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !b.record(w, r, "DELETE /api/dealers/filters/{id}", true) {
			return
		}
		id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		b.mu.Lock()
		kept := b.filters[:0]
		for _, f := range b.filters {
			if f.ID != id {
				kept = append(kept, f)
			}
		}
		b.filters = kept
		b.mu.Unlock()
		b.reply(w, http.StatusOK, domain.ActionResult{Success: true, Message: "Filter deleted"})
	})

	r.Get("/api/cars/makes", func(w http.ResponseWriter, r *http.Request) {
		b.record(w, r, "GET /api/cars/makes", false)
		b.reply(w, http.StatusOK, domain.MakeList{Makes: []string{"Ford", "Honda", "Toyota"}})
	})

	r.Get("/api/cars/models", func(w http.ResponseWriter, r *http.Request) {
		b.record(w, r, "GET /api/cars/models", false)
		models := map[string][]string{"Honda": {"Accord", "Civic"}, "Toyota": {"Camry"}, "Ford": {"F-150"}}
		carMake := r.URL.Query().Get("make")
		b.reply(w, http.StatusOK, domain.ModelList{Make: carMake, Models: models[carMake]})
	})

	r.Get("/api/cars/years", func(w http.ResponseWriter, r *http.Request) {
		b.record(w, r, "GET /api/cars/years", false)
		b.reply(w, http.StatusOK, domain.YearList{Years: []int{2019, 2020, 2021}})
	})

	r.Get("/api/cars/trims", func(w http.ResponseWriter, r *http.Request) {
		b.record(w, r, "GET /api/cars/trims", false)
		q := r.URL.Query()
		b.reply(w, http.StatusOK, domain.TrimList{Make: q.Get("make"), Model: q.Get("model"), Trims: []string{"EX", "LX"}})
	})

	r.Get("/api/cars/all-body-types", func(w http.ResponseWriter, r *http.Request) {
		b.record(w, r, "GET /api/cars/all-body-types", false)
		b.reply(w, http.StatusOK, domain.BodyTypeList{BodyTypes: []string{"Sedan", "SUV"}})
	})

	r.Post("/api/leads/webhook/lead_received", func(w http.ResponseWriter, r *http.Request) {
		b.record(w, r, "POST /api/leads/webhook/lead_received", false)
		var p domain.ListingPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			b.reply(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
			return
		}
		b.mu.Lock()
		b.listings = append(b.listings, p)
		b.mu.Unlock()
		fair, low, high := 14200.0, 13000.0, 15500.0
		b.reply(w, http.StatusOK, domain.ListingReceipt{
			Status: "success", ListingID: 501, LeadsCreated: 2,
			DraftOffer: &domain.DraftOffer{Low: &low, Fair: &fair, Max: &high},
		})
	})

	return r
}

func (b *fakeBackend) lead() domain.Lead {
	fair := 14200.0
	return domain.Lead{
		ID:     12,
		Status: domain.LeadStatusNew,
		Listing: domain.Listing{
			Year: 2018, Make: "Honda", Model: "Civic", Mileage: 52000, Source: "hot_lead",
			Seller: domain.Seller{Name: "Sam", Email: "sam@example.com"},
		},
		AIEstimate: domain.AIEstimate{OfferFair: &fair},
	}
}
