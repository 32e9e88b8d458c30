package domain

// ============================================================
// Dealer profile and communication preferences
// ============================================================

// DealerProfile is the body of GET /api/dealers/profile.
type DealerProfile struct {
	ID                       int64                    `json:"id"`
	UserID                   int64                    `json:"user_id"`
	CompanyName              string                   `json:"company_name"`
	DealershipName           string                   `json:"dealership_name"`
	LicenseNumber            string                   `json:"license_number"`
	Phone                    string                   `json:"phone"`
	Address                  string                   `json:"address"`
	City                     string                   `json:"city"`
	State                    string                   `json:"state"`
	ZipCode                  string                   `json:"zip_code"`
	Website                  string                   `json:"website"`
	VerificationStatus       string                   `json:"verification_status"`
	CommunicationPreferences CommunicationPreferences `json:"communication_preferences"`
	CreatedAt                APITime                  `json:"created_at"`
}

// ProfileUpdate is the body of PUT /api/dealers/profile.
type ProfileUpdate struct {
	CompanyName    string `json:"company_name"`
	DealershipName string `json:"dealership_name"`
	LicenseNumber  string `json:"license_number"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	City           string `json:"city"`
	State          string `json:"state"`
	ZipCode        string `json:"zip_code"`
	Website        string `json:"website"`
}

// Validate requires the company name, the one field the API cannot default.
func (p *ProfileUpdate) Validate() error {
	if p.CompanyName == "" {
		return &ErrValidation{Field: "company_name", Message: "Company name is required"}
	}
	return nil
}

// CommunicationPreferences are the automatic follow-up settings.
type CommunicationPreferences struct {
	AutoFollowupEnabled bool `json:"auto_followup_enabled"`
	FollowupDay1        bool `json:"followup_day_1"`
	FollowupDay3        bool `json:"followup_day_3"`
	FollowupDay7        bool `json:"followup_day_7"`
}

// ActionResult is the generic {success, message} acknowledgement.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
