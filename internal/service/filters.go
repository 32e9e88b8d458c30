package service

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/boddenberg/revomotors-web/internal/domain"
	"github.com/boddenberg/revomotors-web/internal/port"
)

var filterTracer = otel.Tracer("service/filters")

// FilterService serves the marketplace filters page and its make/model cascade.
type FilterService struct {
	dealers port.DealerAPI
	catalog port.CatalogAPI
	logger  *zap.Logger
}

// NewFilterService creates a new filter service.
func NewFilterService(dealers port.DealerAPI, catalog port.CatalogAPI, logger *zap.Logger) *FilterService {
	return &FilterService{dealers: dealers, catalog: catalog, logger: logger}
}

// Page fetches the saved filters and the make list.
func (s *FilterService) Page(ctx context.Context, token string) (*domain.FiltersPage, error) {
	ctx, span := filterTracer.Start(ctx, "FilterService.Page")
	defer span.End()

	var (
		filters *domain.FilterList
		makes   *domain.MakeList
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		filters, err = s.dealers.ListFilters(gctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		makes, err = s.catalog.Makes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	page := &domain.FiltersPage{Filters: filters.Filters, Makes: makes.Makes}
	if page.Filters == nil {
		page.Filters = []domain.Filter{}
	}
	return page, nil
}

// ToggleMake flips carMake in the draft and, while any make remains
// selected, loads the models of the first one. Exactly one catalog call is
// made per toggle; none when the selection becomes empty.
func (s *FilterService) ToggleMake(ctx context.Context, draft *domain.FilterDraft, carMake string) error {
	ctx, span := filterTracer.Start(ctx, "FilterService.ToggleMake")
	defer span.End()
	span.SetAttributes(attribute.String("car.make", carMake))

	first := draft.ToggleMake(carMake)
	if first == "" {
		return nil
	}
	models, err := s.catalog.Models(ctx, first)
	if err != nil {
		return err
	}
	draft.AvailableModels = models.Models
	return nil
}

// ToggleModel flips a model in the draft and loads the years of the first
// make/model pair.
func (s *FilterService) ToggleModel(ctx context.Context, draft *domain.FilterDraft, model string) error {
	ctx, span := filterTracer.Start(ctx, "FilterService.ToggleModel")
	defer span.End()
	span.SetAttributes(attribute.String("car.model", model))

	carMake, firstModel, ok := draft.ToggleModel(model)
	if !ok {
		return nil
	}
	years, err := s.catalog.Years(ctx, carMake, firstModel)
	if err != nil {
		return err
	}
	draft.AvailableYears = years.Years
	return nil
}

// Models proxies the model list for a make.
func (s *FilterService) Models(ctx context.Context, carMake string) (*domain.ModelList, error) {
	if carMake == "" {
		return nil, &domain.ErrValidation{Field: "make", Message: "make is required"}
	}
	return s.catalog.Models(ctx, carMake)
}

// Years proxies the year list for a make/model pair.
func (s *FilterService) Years(ctx context.Context, carMake, model string) (*domain.YearList, error) {
	if carMake == "" || model == "" {
		return nil, &domain.ErrValidation{Field: "model", Message: "make and model are required"}
	}
	return s.catalog.Years(ctx, carMake, model)
}

// Trims proxies the trim list for a make/model pair.
func (s *FilterService) Trims(ctx context.Context, carMake, model string) (*domain.TrimList, error) {
	if carMake == "" || model == "" {
		return nil, &domain.ErrValidation{Field: "model", Message: "make and model are required"}
	}
	return s.catalog.Trims(ctx, carMake, model)
}

// BodyTypes proxies the body type list.
func (s *FilterService) BodyTypes(ctx context.Context) (*domain.BodyTypeList, error) {
	return s.catalog.BodyTypes(ctx)
}

// Create validates and saves a new filter.
func (s *FilterService) Create(ctx context.Context, token string, in *domain.FilterInput) (*domain.FilterCreated, error) {
	ctx, span := filterTracer.Start(ctx, "FilterService.Create")
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.RadiusMiles == 0 {
		in.RadiusMiles = domain.DefaultRadiusMiles
	}
	if in.Models == nil {
		in.Models = []string{}
	}
	if in.ZipCodes == nil {
		in.ZipCodes = []string{}
	}

	created, err := s.dealers.CreateFilter(ctx, token, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("filter created", zap.Int64("filter_id", created.FilterID))
	return created, nil
}

// Pause switches a saved filter off. The API lists only active filters,
// so a paused filter drops out of the dealer's list.
func (s *FilterService) Pause(ctx context.Context, token string, id int64) error {
	ctx, span := filterTracer.Start(ctx, "FilterService.Pause")
	defer span.End()
	span.SetAttributes(attribute.Int64("filter.id", id))

	list, err := s.dealers.ListFilters(ctx, token)
	if err != nil {
		return err
	}
	var current *domain.Filter
	for i := range list.Filters {
		if list.Filters[i].ID == id {
			current = &list.Filters[i]
			break
		}
	}
	if current == nil {
		return &domain.ErrNotFound{Resource: "filter", ID: strconv.FormatInt(id, 10)}
	}

	in := domain.InputFromFilter(current)
	paused := false
	in.IsActive = &paused
	if _, err := s.dealers.UpdateFilter(ctx, token, id, in); err != nil {
		return err
	}
	s.logger.Info("filter paused", zap.Int64("filter_id", id))
	return nil
}

// Delete removes a saved filter with a single DELETE.
func (s *FilterService) Delete(ctx context.Context, token string, id int64) error {
	ctx, span := filterTracer.Start(ctx, "FilterService.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("filter.id", id))

	if err := s.dealers.DeleteFilter(ctx, token, id); err != nil {
		return err
	}
	s.logger.Info("filter deleted", zap.Int64("filter_id", id))
	return nil
}
