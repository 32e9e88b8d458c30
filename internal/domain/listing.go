package domain

import (
	"strconv"
	"strings"
)

// ============================================================
// Seller listing submission: POST /api/leads/webhook/lead_received
// ============================================================

// MaxVINLength is the longest VIN the form accepts.
const MaxVINLength = 17

// Select options of the listing form, value first.
var (
	ConditionOptions    = []Option{{"excellent", "Excellent"}, {"good", "Good"}, {"fair", "Fair"}, {"poor", "Poor"}}
	TransmissionOptions = []Option{{"automatic", "Automatic"}, {"manual", "Manual"}, {"cvt", "CVT"}}
	FuelTypeOptions     = []Option{{"gasoline", "Gasoline"}, {"diesel", "Diesel"}, {"hybrid", "Hybrid"}, {"electric", "Electric"}}
	TitleOptions        = []Option{{"clean", "Clean"}, {"salvage", "Salvage"}, {"rebuilt", "Rebuilt"}, {"lien", "Lien"}}
	AccidentOptions     = []Option{{"none", "No Accidents"}, {"minor", "Minor Accident"}, {"moderate", "Moderate Damage"}, {"major", "Major Accident"}}
	OwnerOptions        = []Option{{"1", "1 Owner"}, {"2", "2 Owners"}, {"3", "3 Owners"}, {"4+", "4+ Owners"}}
)

// Option is one <option> of a select.
type Option struct {
	Value string
	Label string
}

// ListingForm is the seller form exactly as typed.
type ListingForm struct {
	Year         string
	Make         string
	Model        string
	Trim         string
	Mileage      string
	Condition    string
	VIN          string
	Color        string
	Transmission string
	FuelType     string
	Title        string
	Accidents    string
	Owners       string
	SellerName   string
	Email        string
	Phone        string
	ZipCode      string
	Description  string
	AskingPrice  string
}

// NewListingForm returns the form with its default selections.
func NewListingForm() ListingForm {
	return ListingForm{
		Condition:    "good",
		Transmission: "automatic",
		FuelType:     "gasoline",
		Title:        "clean",
		Accidents:    "none",
		Owners:       "1",
	}
}

// Validate checks required fields, numeric parsing and VIN length.
func (f *ListingForm) Validate() error {
	required := []struct{ field, value, label string }{
		{"year", f.Year, "Year"},
		{"make", f.Make, "Make"},
		{"model", f.Model, "Model"},
		{"mileage", f.Mileage, "Mileage"},
		{"vin", f.VIN, "VIN"},
		{"seller_name", f.SellerName, "Your name"},
		{"email", f.Email, "Email"},
		{"phone", f.Phone, "Phone"},
		{"zip_code", f.ZipCode, "ZIP code"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ErrValidation{Field: r.field, Message: r.label + " is required"}
		}
	}
	if _, err := strconv.Atoi(strings.TrimSpace(f.Year)); err != nil {
		return &ErrValidation{Field: "year", Message: "Year must be a whole number"}
	}
	if _, err := strconv.Atoi(strings.TrimSpace(f.Mileage)); err != nil {
		return &ErrValidation{Field: "mileage", Message: "Mileage must be a whole number"}
	}
	if len(strings.TrimSpace(f.VIN)) > MaxVINLength {
		return &ErrValidation{Field: "vin", Message: "VIN must be at most 17 characters"}
	}
	if _, err := ParseOptionalFloat("asking_price", f.AskingPrice); err != nil {
		return &ErrValidation{Field: "asking_price", Message: "Asking price must be a number"}
	}
	return nil
}

// Payload builds the webhook body. Call Validate first.
func (f *ListingForm) Payload(photos []string) *ListingPayload {
	year, _ := strconv.Atoi(strings.TrimSpace(f.Year))
	mileage, _ := strconv.Atoi(strings.TrimSpace(f.Mileage))
	price, _ := ParseOptionalFloat("asking_price", f.AskingPrice)
	if photos == nil {
		photos = []string{}
	}
	carMake := strings.TrimSpace(f.Make)
	model := strings.TrimSpace(f.Model)
	trim := strings.TrimSpace(f.Trim)
	return &ListingPayload{
		Marketplace:        "direct",
		Title:              strings.TrimSpace(strings.Join([]string{strings.TrimSpace(f.Year), carMake, model, trim}, " ")),
		Year:               year,
		Make:               carMake,
		Model:              model,
		Trim:               trim,
		Mileage:            mileage,
		Condition:          f.Condition,
		VIN:                strings.ToUpper(strings.TrimSpace(f.VIN)),
		Color:              strings.TrimSpace(f.Color),
		Transmission:       f.Transmission,
		FuelType:           f.FuelType,
		TitleStatus:        f.Title,
		AccidentHistory:    f.Accidents,
		NumberOfOwners:     parseOwners(f.Owners),
		AskingPrice:        price,
		Description:        strings.TrimSpace(f.Description),
		Region:             strings.TrimSpace(f.ZipCode),
		SellerContactName:  strings.TrimSpace(f.SellerName),
		SellerContactEmail: strings.TrimSpace(f.Email),
		SellerContactPhone: strings.TrimSpace(f.Phone),
		Photos:             photos,
	}
}

// parseOwners maps the owners select to a count; "4+" counts as 4.
func parseOwners(s string) int {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(s), "+"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ListingPayload is the body of the lead_received webhook.
type ListingPayload struct {
	Marketplace        string   `json:"marketplace"`
	Title              string   `json:"title"`
	Year               int      `json:"year"`
	Make               string   `json:"make"`
	Model              string   `json:"model"`
	Trim               string   `json:"trim"`
	Mileage            int      `json:"mileage"`
	Condition          string   `json:"condition"`
	VIN                string   `json:"vin"`
	Color              string   `json:"color"`
	Transmission       string   `json:"transmission"`
	FuelType           string   `json:"fuel_type"`
	TitleStatus        string   `json:"title_status"`
	AccidentHistory    string   `json:"accident_history"`
	NumberOfOwners     int      `json:"number_of_owners"`
	AskingPrice        *float64 `json:"asking_price"`
	Description        string   `json:"description"`
	Region             string   `json:"region"`
	SellerContactName  string   `json:"seller_contact_name"`
	SellerContactEmail string   `json:"seller_contact_email"`
	SellerContactPhone string   `json:"seller_contact_phone"`
	Photos             []string `json:"photos"`
}

// DraftOffer is the AI price range returned for a new listing.
type DraftOffer struct {
	Low       *float64 `json:"low"`
	Fair      *float64 `json:"fair"`
	Max       *float64 `json:"max"`
	Rationale string   `json:"rationale,omitempty"`
}

// ListingReceipt is the webhook response shown to the seller.
type ListingReceipt struct {
	Status       string      `json:"status"`
	ListingID    int64       `json:"listing_id"`
	LeadsCreated int         `json:"leads_created"`
	DraftOffer   *DraftOffer `json:"ai_draft_offer"`
}

// Photo is one uploaded image before encoding.
type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
}
