package handler

import (
	"net/http"
	"strconv"

	"github.com/boddenberg/revomotors-web/internal/domain"
	"github.com/boddenberg/revomotors-web/internal/service"
	"github.com/boddenberg/revomotors-web/internal/session"
	"github.com/boddenberg/revomotors-web/internal/web"
)

const filtersPath = "/dealer/filters"

// filterForm is the sticky create form besides the make/model draft.
type filterForm struct {
	Name         string
	YearMin      string
	YearMax      string
	MileageMax   string
	PriceMin     string
	PriceMax     string
	ZipCodes     string
	RadiusMiles  string
	Marketplaces domain.Marketplaces
}

func newFilterForm() filterForm {
	return filterForm{
		RadiusMiles:  strconv.Itoa(domain.DefaultRadiusMiles),
		Marketplaces: domain.DefaultMarketplaces(),
	}
}

type filtersData struct {
	Filters []domain.Filter
	Makes   []string
	Models  []string
	Draft   domain.FilterDraft
	Form    filterForm
}

// ============================================================
// Filters page: GET /dealer/filters
// ============================================================

func filtersPageHandler(svc *service.FilterService, k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /dealer/filters")
		defer span.End()
		k.renderFilters(w, r.WithContext(ctx), svc, http.StatusOK, newFilterForm(), "")
	}
}

// renderFilters fetches the saved filters and makes, then renders the page
// around the session draft. errMsg is an inline banner for a failed create.
func (k *kit) renderFilters(w http.ResponseWriter, r *http.Request, svc *service.FilterService, status int, form filterForm, errMsg string) {
	s := session.FromContext(r.Context())
	data := &filtersData{Draft: s.FilterDraft, Form: form, Models: s.FilterDraft.MatchingModels()}
	v := &web.View{Title: "Marketplace filters", Data: data, Error: errMsg}

	page, err := svc.Page(r.Context(), s.Token)
	if err != nil {
		k.handleServiceError(w, r, web.PageFilters, v, err)
		return
	}
	data.Filters = page.Filters
	data.Makes = s.FilterDraft.MatchingMakes(page.Makes)
	k.render(w, r, status, web.PageFilters, v)
}

// ============================================================
// Draft cascade: POST /dealer/filters/draft/{make,model,search,reset}
// ============================================================

func draftMakeHandler(svc *service.FilterService, k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /dealer/filters/draft/make")
		defer span.End()

		carMake := trimmed(r, "make")
		if carMake == "" {
			k.redirect(w, r, filtersPath)
			return
		}
		s := session.FromContext(ctx)
		draft := s.FilterDraft
		err := svc.ToggleMake(ctx, &draft, carMake)
		s.UpdateFilterDraft(func(d *domain.FilterDraft) { *d = draft })
		if err != nil {
			k.failAction(w, r, err, filtersPath)
			return
		}
		k.redirect(w, r, filtersPath)
	}
}

func draftModelHandler(svc *service.FilterService, k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /dealer/filters/draft/model")
		defer span.End()

		model := trimmed(r, "model")
		if model == "" {
			k.redirect(w, r, filtersPath)
			return
		}
		s := session.FromContext(ctx)
		draft := s.FilterDraft
		err := svc.ToggleModel(ctx, &draft, model)
		s.UpdateFilterDraft(func(d *domain.FilterDraft) { *d = draft })
		if err != nil {
			k.failAction(w, r, err, filtersPath)
			return
		}
		k.redirect(w, r, filtersPath)
	}
}

func draftSearchHandler(k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := session.FromContext(r.Context())
		s.UpdateFilterDraft(func(d *domain.FilterDraft) {
			d.MakeSearch = trimmed(r, "make_search")
			d.ModelSearch = trimmed(r, "model_search")
		})
		k.redirect(w, r, filtersPath)
	}
}

func draftResetHandler(k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session.FromContext(r.Context()).UpdateFilterDraft(func(d *domain.FilterDraft) { *d = domain.FilterDraft{} })
		k.redirect(w, r, filtersPath)
	}
}

// ============================================================
// Create: POST /dealer/filters
// ============================================================

func createFilterHandler(svc *service.FilterService, k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /dealer/filters")
		defer span.End()

		if err := r.ParseForm(); err != nil {
			k.flashRedirect(w, r, session.FlashError, "Invalid form submission", filtersPath)
			return
		}
		s := session.FromContext(ctx)
		form := filterForm{
			Name:        trimmed(r, "name"),
			YearMin:     trimmed(r, "year_min"),
			YearMax:     trimmed(r, "year_max"),
			MileageMax:  trimmed(r, "mileage_max"),
			PriceMin:    trimmed(r, "price_min"),
			PriceMax:    trimmed(r, "price_max"),
			ZipCodes:    trimmed(r, "zip_codes"),
			RadiusMiles: trimmed(r, "radius_miles"),
			Marketplaces: domain.Marketplaces{
				Facebook:   checked(r, "facebook_enabled"),
				OfferUp:    checked(r, "offerup_enabled"),
				Craigslist: checked(r, "craigslist_enabled"),
				AutoTrader: checked(r, "autotrader_enabled"),
				CarsCom:    checked(r, "carscom_enabled"),
			},
		}

		in, err := form.input(s.FilterDraft)
		if err == nil {
			_, err = svc.Create(ctx, s.Token, in)
		}
		if err != nil {
			if k.signedOut(w, r, err) {
				return
			}
			status, msg := k.explain(err)
			k.renderFilters(w, r, svc, status, form, msg)
			return
		}

		s.UpdateFilterDraft(func(d *domain.FilterDraft) { *d = domain.FilterDraft{} })
		k.flashRedirect(w, r, session.FlashSuccess, "Filter created successfully", filtersPath)
	}
}

// input parses the numeric fields and joins the draft's makes and models.
func (f filterForm) input(draft domain.FilterDraft) (*domain.FilterInput, error) {
	in := &domain.FilterInput{
		Name:              f.Name,
		Makes:             draft.Makes,
		Models:            draft.Models,
		ZipCodes:          domain.SplitZipCodes(f.ZipCodes),
		FacebookEnabled:   f.Marketplaces.Facebook,
		OfferUpEnabled:    f.Marketplaces.OfferUp,
		CraigslistEnabled: f.Marketplaces.Craigslist,
		AutoTraderEnabled: f.Marketplaces.AutoTrader,
		CarsComEnabled:    f.Marketplaces.CarsCom,
	}
	var err error
	if in.YearMin, err = domain.ParseOptionalInt("year_min", f.YearMin); err != nil {
		return nil, err
	}
	if in.YearMax, err = domain.ParseOptionalInt("year_max", f.YearMax); err != nil {
		return nil, err
	}
	if in.MileageMax, err = domain.ParseOptionalInt("mileage_max", f.MileageMax); err != nil {
		return nil, err
	}
	if in.PriceMin, err = domain.ParseOptionalFloat("price_min", f.PriceMin); err != nil {
		return nil, err
	}
	if in.PriceMax, err = domain.ParseOptionalFloat("price_max", f.PriceMax); err != nil {
		return nil, err
	}
	radius, err := domain.ParseOptionalInt("radius_miles", f.RadiusMiles)
	if err != nil {
		return nil, err
	}
	if radius != nil {
		in.RadiusMiles = *radius
	}
	return in, nil
}

// ============================================================
// Pause / delete: POST /dealer/filters/{id}/{pause,delete}
// ============================================================

func pauseFilterHandler(svc *service.FilterService, k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /dealer/filters/{id}/pause")
		defer span.End()

		id, ok := idParam(r, "id")
		if !ok {
			k.notFound(w, r)
			return
		}
		if err := svc.Pause(ctx, session.FromContext(ctx).Token, id); err != nil {
			k.failAction(w, r, err, filtersPath)
			return
		}
		k.flashRedirect(w, r, session.FlashSuccess, "Filter paused", filtersPath)
	}
}

func deleteFilterHandler(svc *service.FilterService, k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /dealer/filters/{id}/delete")
		defer span.End()

		id, ok := idParam(r, "id")
		if !ok {
			k.notFound(w, r)
			return
		}
		if r.PostFormValue("confirm") != "yes" {
			k.render(w, r, http.StatusOK, web.PageFilterDelete, &web.View{
				Title: "Delete filter",
				Data:  struct{ ID int64 }{id},
			})
			return
		}
		if err := svc.Delete(ctx, session.FromContext(ctx).Token, id); err != nil {
			k.failAction(w, r, err, filtersPath)
			return
		}
		k.flashRedirect(w, r, session.FlashSuccess, "Filter deleted", filtersPath)
	}
}

// ============================================================
// Catalog JSON: GET /dealer/catalog/{models,years,trims,body-types}
// ============================================================

func catalogModelsHandler(svc *service.FilterService, k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /dealer/catalog/models")
		defer span.End()

		models, err := svc.Models(ctx, r.URL.Query().Get("make"))
		if err != nil {
			status, msg := k.explain(err)
			writeError(w, status, msg)
			return
		}
		writeJSON(w, http.StatusOK, models)
	}
}

func catalogYearsHandler(svc *service.FilterService, k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /dealer/catalog/years")
		defer span.End()

		years, err := svc.Years(ctx, r.URL.Query().Get("make"), r.URL.Query().Get("model"))
		if err != nil {
			status, msg := k.explain(err)
			writeError(w, status, msg)
			return
		}
		writeJSON(w, http.StatusOK, years)
	}
}

func catalogTrimsHandler(svc *service.FilterService, k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /dealer/catalog/trims")
		defer span.End()

		trims, err := svc.Trims(ctx, r.URL.Query().Get("make"), r.URL.Query().Get("model"))
		if err != nil {
			status, msg := k.explain(err)
			writeError(w, status, msg)
			return
		}
		writeJSON(w, http.StatusOK, trims)
	}
}

func catalogBodyTypesHandler(svc *service.FilterService, k *kit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /dealer/catalog/body-types")
		defer span.End()

		types, err := svc.BodyTypes(ctx)
		if err != nil {
			status, msg := k.explain(err)
			writeError(w, status, msg)
			return
		}
		writeJSON(w, http.StatusOK, types)
	}
}
