// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the service layer
// from the RevoMotors API client and the session backends.
package port

import (
	"context"
	"time"

	"github.com/boddenberg/revomotors-web/internal/domain"
)

// AuthAPI exchanges credentials for a bearer token.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*domain.TokenResponse, error)
	Signup(ctx context.Context, req *domain.SignupRequest) (*domain.TokenResponse, error)
}

// DealerAPI covers the dealer profile, stats and saved filters.
// Every call carries the dealer's bearer token.
type DealerAPI interface {
	GetProfile(ctx context.Context, token string) (*domain.DealerProfile, error)
	UpdateProfile(ctx context.Context, token string, upd *domain.ProfileUpdate) (*domain.ActionResult, error)
	UpdateCommunicationPreferences(ctx context.Context, token string, prefs *domain.CommunicationPreferences) (*domain.ActionResult, error)
	GetStats(ctx context.Context, token string) (*domain.DealerStats, error)

	ListFilters(ctx context.Context, token string) (*domain.FilterList, error)
	CreateFilter(ctx context.Context, token string, in *domain.FilterInput) (*domain.FilterCreated, error)
	UpdateFilter(ctx context.Context, token string, id int64, in *domain.FilterInput) (*domain.ActionResult, error)
	DeleteFilter(ctx context.Context, token string, id int64) error
}

// LeadAPI covers leads, offers and AI outreach messages.
type LeadAPI interface {
	ListLeads(ctx context.Context, token string, q domain.LeadQuery) (*domain.LeadList, error)
	GetLead(ctx context.Context, token string, id int64) (*domain.Lead, error)
	UpdateStatus(ctx context.Context, token string, id int64, status domain.LeadStatus) (*domain.ActionResult, error)
	UpdateOffer(ctx context.Context, token string, id int64, amount float64) (*domain.OfferUpdate, error)
	GenerateMessage(ctx context.Context, token string, id int64, messageType string) (*domain.GeneratedMessage, error)
	SendMessage(ctx context.Context, token string, id int64, messageID int64, updatedBody string) (*domain.SendResult, error)
}

// CatalogAPI serves car reference data. No token required.
type CatalogAPI interface {
	Makes(ctx context.Context) (*domain.MakeList, error)
	Models(ctx context.Context, carMake string) (*domain.ModelList, error)
	Years(ctx context.Context, carMake, model string) (*domain.YearList, error)
	Trims(ctx context.Context, carMake, model string) (*domain.TrimList, error)
	BodyTypes(ctx context.Context) (*domain.BodyTypeList, error)
}

// ListingAPI submits a seller listing. No token required.
type ListingAPI interface {
	SubmitListing(ctx context.Context, payload *domain.ListingPayload) (*domain.ListingReceipt, error)
}

// HealthChecker probes the API for /readyz.
type HealthChecker interface {
	Ping(ctx context.Context) (time.Duration, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	SetWithTTL(key string, value T, ttl time.Duration)
	Delete(key string)
}
