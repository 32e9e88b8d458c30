// Package session keeps per-browser state (bearer token, user, flashes and
// in-progress form drafts) behind a signed or sealed cookie.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/boddenberg/revomotors-web/internal/domain"
)

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-shot banner shown on the next rendered page.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Session is the server-side state of one browser.
type Session struct {
	ID          string                            `json:"id"`
	Token       string                            `json:"token,omitempty"`
	User        *domain.User                      `json:"user,omitempty"`
	ExpiresAt   time.Time                         `json:"expires_at"`
	Flashes     []Flash                           `json:"flashes,omitempty"`
	FilterDraft domain.FilterDraft                `json:"filter_draft"`
	Drafts      map[int64]domain.GeneratedMessage `json:"drafts,omitempty"`

	changed bool
	isNew   bool
}

// New returns an empty, unsaved session.
func New() *Session {
	return &Session{ID: uuid.NewString(), isNew: true}
}

// Authenticated reports whether the session holds a live token.
func (s *Session) Authenticated() bool {
	if s == nil || s.Token == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || time.Now().Before(s.ExpiresAt)
}

// IsDealer reports whether the signed-in user is a dealer.
func (s *Session) IsDealer() bool {
	return s.Authenticated() && s.User != nil && s.User.Role == domain.RoleDealer
}

// SignIn stores the auth result and rotates the session id.
func (s *Session) SignIn(res *domain.AuthResult) {
	s.ID = uuid.NewString()
	s.Token = res.Token
	u := res.User
	s.User = &u
	s.ExpiresAt = res.ExpiresAt
	s.FilterDraft = domain.FilterDraft{}
	s.Drafts = nil
	s.changed = true
}

// SignOut drops the token and everything derived from it, keeping flashes.
func (s *Session) SignOut() {
	s.Token = ""
	s.User = nil
	s.ExpiresAt = time.Time{}
	s.FilterDraft = domain.FilterDraft{}
	s.Drafts = nil
	s.changed = true
}

// AddFlash queues a banner for the next page.
func (s *Session) AddFlash(kind, msg string) {
	s.Flashes = append(s.Flashes, Flash{Kind: kind, Message: msg})
	s.changed = true
}

// PopFlashes returns and clears the queued banners.
func (s *Session) PopFlashes() []Flash {
	if len(s.Flashes) == 0 {
		return nil
	}
	out := s.Flashes
	s.Flashes = nil
	s.changed = true
	return out
}

// Draft returns the generated message waiting to be sent for a lead.
func (s *Session) Draft(leadID int64) (domain.GeneratedMessage, bool) {
	d, ok := s.Drafts[leadID]
	return d, ok
}

// SetDraft keeps a generated message as the lead's draft.
func (s *Session) SetDraft(leadID int64, msg domain.GeneratedMessage) {
	if s.Drafts == nil {
		s.Drafts = map[int64]domain.GeneratedMessage{}
	}
	s.Drafts[leadID] = msg
	s.changed = true
}

// ClearDraft drops the lead's draft.
func (s *Session) ClearDraft(leadID int64) {
	if _, ok := s.Drafts[leadID]; !ok {
		return
	}
	delete(s.Drafts, leadID)
	s.changed = true
}

// msgDraftsDropped tells the dealer why a generated message disappeared.
const msgDraftsDropped = "Your unsent message drafts were too large to keep and were discarded. Generate them again."

// shed drops the message drafts and catalog suggestions so the session fits
// a cookie again, queueing a banner that says so. It reports whether
// anything was dropped.
func (s *Session) shed() bool {
	d := &s.FilterDraft
	if len(s.Drafts) == 0 && len(d.AvailableModels) == 0 && len(d.AvailableYears) == 0 {
		return false
	}
	s.Drafts = nil
	d.AvailableModels = nil
	d.AvailableYears = nil
	s.AddFlash(FlashError, msgDraftsDropped)
	return true
}

// UpdateFilterDraft applies fn to the filter draft and marks the session changed.
func (s *Session) UpdateFilterDraft(fn func(d *domain.FilterDraft)) {
	fn(&s.FilterDraft)
	s.changed = true
}

// Changed reports whether the session must be written back.
func (s *Session) Changed() bool { return s.changed }

// IsNew reports whether the session has never been saved.
func (s *Session) IsNew() bool { return s.isNew }
