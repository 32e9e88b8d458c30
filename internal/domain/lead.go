package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ============================================================
// Leads: listing routed to a dealer for outreach
// ============================================================

// LeadStatus is the dealer pipeline stage of a lead.
type LeadStatus string

const (
	LeadStatusNew         LeadStatus = "new"
	LeadStatusContacted   LeadStatus = "contacted"
	LeadStatusNegotiating LeadStatus = "negotiating"
	LeadStatusWon         LeadStatus = "won"
	LeadStatusLost        LeadStatus = "lost"
)

// LeadStatuses lists the statuses in pipeline order.
var LeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusNegotiating,
	LeadStatusWon,
	LeadStatusLost,
}

// ParseLeadStatus validates a status coming from a form or query string.
func ParseLeadStatus(s string) (LeadStatus, error) {
	for _, st := range LeadStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", &ErrValidation{Field: "status", Message: fmt.Sprintf("unknown lead status %q", s)}
}

// Lead sources as filtered by the dashboard.
const (
	SourceHotLead     = "hot_lead"
	SourceMarketplace = "marketplace"
)

// Lead mirrors the API lead shape (list and detail views share it).
type Lead struct {
	ID            int64          `json:"lead_id"`
	Status        LeadStatus     `json:"status"`
	CreatedAt     APITime        `json:"created_at"`
	Listing       Listing        `json:"listing"`
	AIEstimate    AIEstimate     `json:"ai_estimate"`
	DealerOffer   *float64       `json:"dealer_offer,omitempty"`
	Communication *Communication `json:"communication,omitempty"`
	Messages      []LeadMessage  `json:"messages,omitempty"`
}

// FairOffer returns the AI fair offer formatted for the custom offer field.
func (l *Lead) FairOffer() string {
	if l.AIEstimate.OfferFair == nil {
		return ""
	}
	return strconv.FormatFloat(*l.AIEstimate.OfferFair, 'f', -1, 64)
}

// HasHistory reports whether any message was created for this lead.
func (l *Lead) HasHistory() bool {
	if len(l.Messages) > 0 {
		return true
	}
	return l.Communication != nil && l.Communication.LatestMessage != nil
}

// Listing is the vehicle, seller and marketplace data embedded in a lead.
type Listing struct {
	ID              int64    `json:"id"`
	Title           string   `json:"title"`
	Year            int      `json:"year"`
	Make            string   `json:"make"`
	Model           string   `json:"model"`
	Trim            string   `json:"trim,omitempty"`
	Mileage         int      `json:"mileage"`
	Condition       string   `json:"condition,omitempty"`
	VIN             string   `json:"vin,omitempty"`
	Color           string   `json:"color,omitempty"`
	Transmission    string   `json:"transmission,omitempty"`
	FuelType        string   `json:"fuel_type,omitempty"`
	TitleStatus     string   `json:"title_status,omitempty"`
	AccidentHistory string   `json:"accident_history,omitempty"`
	Owners          int      `json:"number_of_owners,omitempty"`
	AskingPrice     *float64 `json:"asking_price,omitempty"`
	Description     string   `json:"description,omitempty"`
	Source          string   `json:"source"`
	ExternalURL     string   `json:"external_url,omitempty"`
	Location        Location `json:"location"`
	Seller          Seller   `json:"seller"`
	Photos          []string `json:"photos,omitempty"`
}

// Vehicle returns "<year> <make> <model> <trim>" without trailing blanks.
func (l *Listing) Vehicle() string {
	return strings.TrimSpace(fmt.Sprintf("%d %s %s %s", l.Year, l.Make, l.Model, l.Trim))
}

// Location is where the vehicle is.
type Location struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
}

// String renders "City, ST" or whatever part is known.
func (l Location) String() string {
	parts := make([]string, 0, 2)
	if l.City != "" {
		parts = append(parts, l.City)
	}
	if l.State != "" {
		parts = append(parts, l.State)
	}
	if len(parts) == 0 {
		return l.ZipCode
	}
	return strings.Join(parts, ", ")
}

// Seller is the seller contact attached to a listing.
type Seller struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// AIEstimate is the backend-computed offer range. Opaque to this client.
type AIEstimate struct {
	EstimatedValue *float64 `json:"estimated_value,omitempty"`
	OfferLow       *float64 `json:"offer_low,omitempty"`
	OfferFair      *float64 `json:"offer_fair,omitempty"`
	OfferHigh      *float64 `json:"offer_high,omitempty"`
	Rationale      string   `json:"rationale,omitempty"`
}

// Communication is the outreach state summarised on the lead list.
type Communication struct {
	FirstContactSent bool           `json:"first_contact_sent"`
	LastContactAt    APITime        `json:"last_contact_at"`
	NextFollowupAt   APITime        `json:"next_followup_at"`
	LatestMessage    *LatestMessage `json:"latest_message,omitempty"`
}

// LatestMessage is the newest message on a lead list row.
type LatestMessage struct {
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`
	Sent    bool   `json:"sent"`
}

// LeadMessage is one entry of a lead's message history.
type LeadMessage struct {
	ID               int64   `json:"id"`
	Type             string  `json:"type"`
	Subject          string  `json:"subject,omitempty"`
	Body             string  `json:"body"`
	GeneratedByAI    bool    `json:"generated_by_ai"`
	ModifiedByDealer bool    `json:"modified_by_dealer"`
	Sent             bool    `json:"sent"`
	SentAt           APITime `json:"sent_at"`
	Channel          string  `json:"channel,omitempty"`
	CreatedAt        APITime `json:"created_at"`
}

// LeadList is the body of GET /api/leads/.
type LeadList struct {
	Total int    `json:"total"`
	Leads []Lead `json:"leads"`
}

// LeadQuery narrows the dashboard lead list.
type LeadQuery struct {
	Source string
	Status string
}

// Validate rejects unknown source/status values before calling the API.
func (q LeadQuery) Validate() error {
	switch q.Source {
	case "", SourceHotLead, SourceMarketplace:
	default:
		return &ErrValidation{Field: "source", Message: fmt.Sprintf("unknown lead source %q", q.Source)}
	}
	if q.Status != "" {
		if _, err := ParseLeadStatus(q.Status); err != nil {
			return err
		}
	}
	return nil
}

// DealerStats is the body of GET /api/dealers/stats.
type DealerStats struct {
	TotalLeads       int     `json:"total_leads"`
	HotLeads         int     `json:"hot_leads"`
	MarketplaceLeads int     `json:"marketplace_leads"`
	NewLeads         int     `json:"new_leads"`
	ContactedLeads   int     `json:"contacted_leads"`
	WonDeals         int     `json:"won_deals"`
	ConversionRate   float64 `json:"conversion_rate"`
}

// Dashboard is everything the dashboard page renders.
type Dashboard struct {
	Stats DealerStats
	Leads []Lead
	Query LeadQuery
}

// ============================================================
// Offers and AI messages
// ============================================================

// ParseOffer parses the custom offer field.
func ParseOffer(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(s), "$"), ",", ""))
	if s == "" {
		return 0, &ErrValidation{Field: "offer_amount", Message: "Enter an offer amount"}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, &ErrValidation{Field: "offer_amount", Message: "Offer must be a positive number"}
	}
	return v, nil
}

// OfferUpdate is the body returned by PUT /api/leads/{id}/update-offer.
type OfferUpdate struct {
	Success           bool    `json:"success"`
	LeadID            int64   `json:"lead_id"`
	DealerOfferAmount float64 `json:"dealer_offer_amount"`
}

// Message types the API knows how to generate.
const (
	MessageInitialContact  = "initial_contact"
	MessageFollowUp1       = "follow_up_1"
	MessageFollowUp2       = "follow_up_2"
	MessageRequestMoreInfo = "request_more_info"
)

// MessageTypes lists the generate buttons in display order.
var MessageTypes = []string{
	MessageInitialContact,
	MessageFollowUp1,
	MessageFollowUp2,
	MessageRequestMoreInfo,
}

// ValidateMessageType rejects unknown generate-message templates.
func ValidateMessageType(t string) error {
	for _, mt := range MessageTypes {
		if mt == t {
			return nil
		}
	}
	return &ErrValidation{Field: "message_type", Message: fmt.Sprintf("unknown message type %q", t)}
}

// GeneratedMessage is returned by POST /api/leads/{id}/generate-message.
// It is kept as the lead's draft until sent or discarded.
type GeneratedMessage struct {
	MessageID     int64  `json:"message_id"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
	GeneratedByAI bool   `json:"generated_by_ai"`
}

// SendMessage is what the dealer submits from the draft textarea.
type SendMessage struct {
	MessageID int64
	Body      string
}

// UpdatedBody returns the edited text when it differs from the generated body.
// Form posts carry CRLF line breaks, so both sides are compared as LF.
func (s *SendMessage) UpdatedBody(original string) (string, bool) {
	body := normalizeNewlines(s.Body)
	if body == normalizeNewlines(original) || strings.TrimSpace(body) == "" {
		return "", false
	}
	return body, true
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// SendResult is returned by POST /api/leads/{id}/send-message.
type SendResult struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	SentAt  APITime `json:"sent_at"`
}
