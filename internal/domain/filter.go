package domain

import (
	"strconv"
	"strings"
)

// ============================================================
// Marketplace filters: dealer-defined matching criteria
// ============================================================

// DefaultRadiusMiles is used when the radius field is left empty.
const DefaultRadiusMiles = 50

// Filter mirrors one entry of GET /api/dealers/filters.
type Filter struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name,omitempty"`
	VehicleFilters  VehicleFilters  `json:"vehicle_filters"`
	LocationFilters LocationFilters `json:"location_filters"`
	Marketplaces    Marketplaces    `json:"marketplaces"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       APITime         `json:"created_at"`
}

// VehicleFilters are the vehicle criteria of a filter.
type VehicleFilters struct {
	Makes      []string `json:"makes"`
	Models     []string `json:"models"`
	YearMin    *int     `json:"year_min"`
	YearMax    *int     `json:"year_max"`
	MileageMax *int     `json:"mileage_max"`
	PriceMin   *float64 `json:"price_min"`
	PriceMax   *float64 `json:"price_max"`
}

// LocationFilters are the geographic criteria of a filter.
type LocationFilters struct {
	ZipCodes    []string `json:"zip_codes"`
	RadiusMiles int      `json:"radius_miles"`
}

// Marketplaces are the sources the backend monitors for this filter.
type Marketplaces struct {
	Facebook   bool `json:"facebook"`
	OfferUp    bool `json:"offerup"`
	Craigslist bool `json:"craigslist"`
	AutoTrader bool `json:"autotrader"`
	CarsCom    bool `json:"carscom"`
}

// DefaultMarketplaces are the toggles a new filter starts with.
func DefaultMarketplaces() Marketplaces {
	return Marketplaces{Facebook: true, OfferUp: true, Craigslist: true}
}

// Enabled returns the display names of the enabled marketplaces.
func (m Marketplaces) Enabled() []string {
	out := make([]string, 0, 5)
	if m.Facebook {
		out = append(out, "Facebook")
	}
	if m.OfferUp {
		out = append(out, "OfferUp")
	}
	if m.Craigslist {
		out = append(out, "Craigslist")
	}
	if m.AutoTrader {
		out = append(out, "AutoTrader")
	}
	if m.CarsCom {
		out = append(out, "Cars.com")
	}
	return out
}

// FilterList is the body of GET /api/dealers/filters.
type FilterList struct {
	Total   int      `json:"total"`
	Filters []Filter `json:"filters"`
}

// FiltersPage is everything the filters page renders besides the draft.
type FiltersPage struct {
	Filters []Filter
	Makes   []string
}

// FilterCreated is returned by POST /api/dealers/filters.
type FilterCreated struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	FilterID int64  `json:"filter_id"`
}

// FilterInput is the body of POST/PUT /api/dealers/filters.
type FilterInput struct {
	Name              string   `json:"name"`
	Makes             []string `json:"makes"`
	Models            []string `json:"models"`
	YearMin           *int     `json:"year_min"`
	YearMax           *int     `json:"year_max"`
	MileageMax        *int     `json:"mileage_max"`
	PriceMin          *float64 `json:"price_min"`
	PriceMax          *float64 `json:"price_max"`
	ZipCodes          []string `json:"zip_codes"`
	RadiusMiles       int      `json:"radius_miles"`
	FacebookEnabled   bool     `json:"facebook_enabled"`
	OfferUpEnabled    bool     `json:"offerup_enabled"`
	CraigslistEnabled bool     `json:"craigslist_enabled"`
	AutoTraderEnabled bool     `json:"autotrader_enabled"`
	CarsComEnabled    bool     `json:"carscom_enabled"`
	IsActive          *bool    `json:"is_active,omitempty"`
}

// Validate applies the create-filter rules.
func (f *FilterInput) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return &ErrValidation{Field: "name", Message: "Please give your filter a name"}
	}
	if len(f.Makes) == 0 {
		return &ErrValidation{Field: "makes", Message: "Please select at least one make"}
	}
	if f.YearMin != nil && f.YearMax != nil && *f.YearMin > *f.YearMax {
		return &ErrValidation{Field: "year_min", Message: "Minimum year must not exceed maximum year"}
	}
	if f.PriceMin != nil && f.PriceMax != nil && *f.PriceMin > *f.PriceMax {
		return &ErrValidation{Field: "price_min", Message: "Minimum price must not exceed maximum price"}
	}
	if f.RadiusMiles < 0 {
		return &ErrValidation{Field: "radius_miles", Message: "Radius must not be negative"}
	}
	return nil
}

// InputFromFilter rebuilds an update body from a saved filter.
func InputFromFilter(f *Filter) *FilterInput {
	active := f.IsActive
	return &FilterInput{
		Name:              f.Name,
		Makes:             f.VehicleFilters.Makes,
		Models:            f.VehicleFilters.Models,
		YearMin:           f.VehicleFilters.YearMin,
		YearMax:           f.VehicleFilters.YearMax,
		MileageMax:        f.VehicleFilters.MileageMax,
		PriceMin:          f.VehicleFilters.PriceMin,
		PriceMax:          f.VehicleFilters.PriceMax,
		ZipCodes:          f.LocationFilters.ZipCodes,
		RadiusMiles:       f.LocationFilters.RadiusMiles,
		FacebookEnabled:   f.Marketplaces.Facebook,
		OfferUpEnabled:    f.Marketplaces.OfferUp,
		CraigslistEnabled: f.Marketplaces.Craigslist,
		AutoTraderEnabled: f.Marketplaces.AutoTrader,
		CarsComEnabled:    f.Marketplaces.CarsCom,
		IsActive:          &active,
	}
}

// SplitZipCodes splits the comma separated zip field, dropping blanks.
func SplitZipCodes(s string) []string {
	out := []string{}
	for _, z := range strings.Split(s, ",") {
		if z = strings.TrimSpace(z); z != "" {
			out = append(out, z)
		}
	}
	return out
}

// ParseOptionalInt parses an optional integer form field. Empty means nil.
func ParseOptionalInt(field, s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, &ErrValidation{Field: field, Message: fieldLabel(field) + " must be a whole number"}
	}
	return &v, nil
}

// ParseOptionalFloat parses an optional decimal form field. Empty means nil.
func ParseOptionalFloat(field, s string) (*float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, &ErrValidation{Field: field, Message: fieldLabel(field) + " must be a number"}
	}
	return &v, nil
}

// fieldLabel turns "year_min" into "Year min".
func fieldLabel(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ============================================================
// Filter draft: the create form's dependent dropdown state
// ============================================================

// FilterDraft is the in-progress create form kept in the session between
// requests. Upstream changes clear everything downstream of them.
type FilterDraft struct {
	Makes           []string `json:"makes"`
	Models          []string `json:"models"`
	AvailableModels []string `json:"available_models"`
	AvailableYears  []int    `json:"available_years"`
	MakeSearch      string   `json:"make_search,omitempty"`
	ModelSearch     string   `json:"model_search,omitempty"`
}

// ToggleMake adds or removes carMake and clears every downstream selection.
// It returns the make whose models must now be fetched, or "" when none is selected.
func (d *FilterDraft) ToggleMake(carMake string) string {
	d.Makes = toggle(d.Makes, carMake)
	d.Models = nil
	d.AvailableModels = nil
	d.AvailableYears = nil
	d.ModelSearch = ""
	if len(d.Makes) == 0 {
		return ""
	}
	return d.Makes[0]
}

// ToggleModel adds or removes a model and clears the year suggestions.
// It returns the make/model pair whose years must be fetched, if any.
func (d *FilterDraft) ToggleModel(model string) (string, string, bool) {
	d.Models = toggle(d.Models, model)
	d.AvailableYears = nil
	if len(d.Models) == 0 || len(d.Makes) == 0 {
		return "", "", false
	}
	return d.Makes[0], d.Models[0], true
}

// HasMake reports whether carMake is selected.
func (d *FilterDraft) HasMake(carMake string) bool { return contains(d.Makes, carMake) }

// HasModel reports whether model is selected.
func (d *FilterDraft) HasModel(model string) bool { return contains(d.Models, model) }

// MatchingMakes narrows all by the make search input.
func (d *FilterDraft) MatchingMakes(all []string) []string {
	return matching(all, d.MakeSearch)
}

// MatchingModels narrows the available models by the model search input.
func (d *FilterDraft) MatchingModels() []string {
	return matching(d.AvailableModels, d.ModelSearch)
}

func toggle(list []string, v string) []string {
	out := make([]string, 0, len(list)+1)
	found := false
	for _, s := range list {
		if s == v {
			found = true
			continue
		}
		out = append(out, s)
	}
	if !found {
		out = append(out, v)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func matching(all []string, search string) []string {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return all
	}
	out := make([]string, 0, len(all))
	for _, s := range all {
		if strings.Contains(strings.ToLower(s), search) {
			out = append(out, s)
		}
	}
	return out
}
