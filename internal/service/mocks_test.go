package service_test

import (
	"context"
	"sync"

	"github.com/boddenberg/revomotors-web/internal/domain"
)

// --- Mocks ---

// fakeAPI implements every API port and records the calls it receives.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	token     *domain.TokenResponse
	loginErr  error
	signupReq *domain.SignupRequest

	stats    *domain.DealerStats
	leads    *domain.LeadList
	lead     *domain.Lead
	filters  *domain.FilterList
	created  *domain.FilterInput
	updated  *domain.FilterInput
	makes    []string
	models   map[string][]string
	years    []int
	message  *domain.GeneratedMessage
	sentBody string
	sentID   int64
	offer    float64
	status   domain.LeadStatus
	payload  *domain.ListingPayload
	err      error // returned by every non-auth call when set
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeAPI) Login(_ context.Context, _, _ string) (*domain.TokenResponse, error) {
	f.record("login")
	return f.token, f.loginErr
}

func (f *fakeAPI) Signup(_ context.Context, req *domain.SignupRequest) (*domain.TokenResponse, error) {
	f.record("signup")
	f.signupReq = req
	return f.token, f.loginErr
}

func (f *fakeAPI) GetProfile(context.Context, string) (*domain.DealerProfile, error) {
	f.record("profile")
	return &domain.DealerProfile{CompanyName: "Acme Motors"}, f.err
}

func (f *fakeAPI) UpdateProfile(context.Context, string, *domain.ProfileUpdate) (*domain.ActionResult, error) {
	f.record("update-profile")
	return &domain.ActionResult{Success: true}, f.err
}

func (f *fakeAPI) UpdateCommunicationPreferences(context.Context, string, *domain.CommunicationPreferences) (*domain.ActionResult, error) {
	f.record("update-prefs")
	return &domain.ActionResult{Success: true}, f.err
}

func (f *fakeAPI) GetStats(context.Context, string) (*domain.DealerStats, error) {
	f.record("stats")
	if f.err != nil {
		return nil, f.err
	}
	return f.stats, nil
}

func (f *fakeAPI) ListFilters(context.Context, string) (*domain.FilterList, error) {
	f.record("list-filters")
	if f.err != nil {
		return nil, f.err
	}
	return f.filters, nil
}

func (f *fakeAPI) CreateFilter(_ context.Context, _ string, in *domain.FilterInput) (*domain.FilterCreated, error) {
	f.record("create-filter")
	f.created = in
	return &domain.FilterCreated{Success: true, FilterID: 99}, f.err
}

func (f *fakeAPI) UpdateFilter(_ context.Context, _ string, _ int64, in *domain.FilterInput) (*domain.ActionResult, error) {
	f.record("update-filter")
	f.updated = in
	return &domain.ActionResult{Success: true}, f.err
}

func (f *fakeAPI) DeleteFilter(context.Context, string, int64) error {
	f.record("delete-filter")
	return f.err
}

func (f *fakeAPI) ListLeads(context.Context, string, domain.LeadQuery) (*domain.LeadList, error) {
	f.record("list-leads")
	if f.err != nil {
		return nil, f.err
	}
	return f.leads, nil
}

func (f *fakeAPI) GetLead(context.Context, string, int64) (*domain.Lead, error) {
	f.record("get-lead")
	return f.lead, f.err
}

func (f *fakeAPI) UpdateStatus(_ context.Context, _ string, _ int64, status domain.LeadStatus) (*domain.ActionResult, error) {
	f.record("update-status")
	f.status = status
	return &domain.ActionResult{Success: true}, f.err
}

func (f *fakeAPI) UpdateOffer(_ context.Context, _ string, id int64, amount float64) (*domain.OfferUpdate, error) {
	f.record("update-offer")
	f.offer = amount
	return &domain.OfferUpdate{Success: true, LeadID: id, DealerOfferAmount: amount}, f.err
}

func (f *fakeAPI) GenerateMessage(context.Context, string, int64, string) (*domain.GeneratedMessage, error) {
	f.record("generate")
	return f.message, f.err
}

func (f *fakeAPI) SendMessage(_ context.Context, _ string, _ int64, messageID int64, updatedBody string) (*domain.SendResult, error) {
	f.record("send")
	f.sentID = messageID
	f.sentBody = updatedBody
	return &domain.SendResult{Success: true}, f.err
}

func (f *fakeAPI) Makes(context.Context) (*domain.MakeList, error) {
	f.record("makes")
	return &domain.MakeList{Makes: f.makes}, f.err
}

func (f *fakeAPI) Models(_ context.Context, carMake string) (*domain.ModelList, error) {
	f.record("models:" + carMake)
	return &domain.ModelList{Make: carMake, Models: f.models[carMake]}, f.err
}

func (f *fakeAPI) Years(_ context.Context, carMake, model string) (*domain.YearList, error) {
	f.record("years:" + carMake + "/" + model)
	return &domain.YearList{Make: carMake, Model: model, Years: f.years}, f.err
}

func (f *fakeAPI) Trims(context.Context, string, string) (*domain.TrimList, error) {
	return &domain.TrimList{}, f.err
}

func (f *fakeAPI) BodyTypes(context.Context) (*domain.BodyTypeList, error) {
	return &domain.BodyTypeList{}, f.err
}

func (f *fakeAPI) SubmitListing(_ context.Context, p *domain.ListingPayload) (*domain.ListingReceipt, error) {
	f.record("submit-listing")
	f.payload = p
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ListingReceipt{Status: "success", ListingID: 5, LeadsCreated: 1}, nil
}
