package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/boddenberg/revomotors-web/internal/domain"
	"github.com/boddenberg/revomotors-web/internal/port"
)

var dealerTracer = otel.Tracer("service/dealer")

// DealerService serves the dashboard and settings pages.
type DealerService struct {
	dealers port.DealerAPI
	leads   port.LeadAPI
	logger  *zap.Logger
}

// NewDealerService creates a new dealer service.
func NewDealerService(dealers port.DealerAPI, leads port.LeadAPI, logger *zap.Logger) *DealerService {
	return &DealerService{dealers: dealers, leads: leads, logger: logger}
}

// Dashboard fetches stats and the filtered lead list concurrently.
func (s *DealerService) Dashboard(ctx context.Context, token string, q domain.LeadQuery) (*domain.Dashboard, error) {
	ctx, span := dealerTracer.Start(ctx, "DealerService.Dashboard")
	defer span.End()
	span.SetAttributes(
		attribute.String("leads.source", q.Source),
		attribute.String("leads.status", q.Status),
	)

	if err := q.Validate(); err != nil {
		return nil, err
	}

	var (
		stats *domain.DealerStats
		list  *domain.LeadList
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.dealers.GetStats(gctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		list, err = s.leads.ListLeads(gctx, token, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	leads := list.Leads
	if leads == nil {
		leads = []domain.Lead{}
	}
	return &domain.Dashboard{Stats: *stats, Leads: leads, Query: q}, nil
}

// Profile fetches the dealer profile shown on the settings page.
func (s *DealerService) Profile(ctx context.Context, token string) (*domain.DealerProfile, error) {
	ctx, span := dealerTracer.Start(ctx, "DealerService.Profile")
	defer span.End()
	return s.dealers.GetProfile(ctx, token)
}

// UpdateProfile validates and saves the profile form.
func (s *DealerService) UpdateProfile(ctx context.Context, token string, upd *domain.ProfileUpdate) error {
	ctx, span := dealerTracer.Start(ctx, "DealerService.UpdateProfile")
	defer span.End()

	if err := upd.Validate(); err != nil {
		return err
	}
	if _, err := s.dealers.UpdateProfile(ctx, token, upd); err != nil {
		return err
	}
	s.logger.Info("dealer profile updated")
	return nil
}

// UpdateCommunication saves the follow-up preferences.
func (s *DealerService) UpdateCommunication(ctx context.Context, token string, prefs *domain.CommunicationPreferences) error {
	ctx, span := dealerTracer.Start(ctx, "DealerService.UpdateCommunication")
	defer span.End()

	_, err := s.dealers.UpdateCommunicationPreferences(ctx, token, prefs)
	return err
}
