package service

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/revomotors-web/internal/domain"
	"github.com/boddenberg/revomotors-web/internal/port"
)

var listingTracer = otel.Tracer("service/listing")

// ListingService submits seller listings to the lead intake webhook.
type ListingService struct {
	api    port.ListingAPI
	logger *zap.Logger
}

// NewListingService creates a new listing service.
func NewListingService(api port.ListingAPI, logger *zap.Logger) *ListingService {
	return &ListingService{api: api, logger: logger}
}

// Submit validates the form, encodes photos and posts exactly one webhook.
func (s *ListingService) Submit(ctx context.Context, form *domain.ListingForm, photos []domain.Photo) (*domain.ListingReceipt, error) {
	ctx, span := listingTracer.Start(ctx, "ListingService.Submit")
	defer span.End()

	if err := form.Validate(); err != nil {
		return nil, err
	}

	encoded := make([]string, 0, len(photos))
	for _, p := range photos {
		url, err := DataURL(p)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, url)
	}
	span.SetAttributes(attribute.Int("listing.photos", len(encoded)))

	receipt, err := s.api.SubmitListing(ctx, form.Payload(encoded))
	if err != nil {
		return nil, err
	}
	s.logger.Info("listing submitted",
		zap.Int64("listing_id", receipt.ListingID),
		zap.Int("leads_created", receipt.LeadsCreated),
	)
	return receipt, nil
}

// DataURL encodes an uploaded photo as data:<mime>;base64,<data>. The mime
// type is sniffed when the upload did not declare an image type.
func DataURL(p domain.Photo) (string, error) {
	mime := p.ContentType
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if !strings.HasPrefix(mime, "image/") {
		mime = http.DetectContentType(p.Data)
	}
	if !strings.HasPrefix(mime, "image/") {
		return "", &domain.ErrValidation{Field: "photos", Message: p.Filename + " is not an image"}
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(p.Data), nil
}
