package domain

import (
	"strings"
	"time"
)

// ============================================================
// Auth: users, credentials and tokens
// ============================================================

// Role is the account type the API assigns to a user.
type Role string

const (
	RoleDealer Role = "dealer"
	RoleSeller Role = "seller"
)

// User is the transient copy of the signed-in account kept in the session.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// DisplayName returns the best human label for the user.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Email
}

// Credentials are the login form fields.
type Credentials struct {
	Email    string
	Password string
}

// Validate checks the login form before anything is sent.
func (c *Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return &ErrValidation{Field: "email", Message: "Email is required"}
	}
	if c.Password == "" {
		return &ErrValidation{Field: "password", Message: "Password is required"}
	}
	return nil
}

// DealerInfo is the dealership part of a dealer signup.
type DealerInfo struct {
	DealershipName string `json:"dealership_name"`
	Phone          string `json:"phone"`
	LicenseNumber  string `json:"license_number"`
}

// SignupRequest is the body for POST /api/auth/signup.
type SignupRequest struct {
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Role        Role       `json:"role"`
	GDPRConsent bool       `json:"gdpr_consent"`
	CCPAConsent bool       `json:"ccpa_consent"`
	DealerInfo  DealerInfo `json:"dealer_info"`
}

// Registration is the dealer register form as submitted.
type Registration struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	DealershipName  string
	Phone           string
	LicenseNumber   string
	Consent         bool
}

// Validate applies the register form rules in the order the page reports them.
func (r *Registration) Validate() error {
	switch {
	case strings.TrimSpace(r.FirstName) == "":
		return &ErrValidation{Field: "first_name", Message: "First name is required"}
	case strings.TrimSpace(r.LastName) == "":
		return &ErrValidation{Field: "last_name", Message: "Last name is required"}
	case strings.TrimSpace(r.Email) == "":
		return &ErrValidation{Field: "email", Message: "Email is required"}
	case r.Password == "":
		return &ErrValidation{Field: "password", Message: "Password is required"}
	case r.Password != r.ConfirmPassword:
		return &ErrValidation{Field: "confirm_password", Message: "Passwords do not match"}
	case !r.Consent:
		return &ErrValidation{Field: "consent", Message: "Please accept the terms and conditions"}
	}
	return nil
}

// SignupRequest builds the API body. Consent covers both GDPR and CCPA.
func (r *Registration) SignupRequest() *SignupRequest {
	return &SignupRequest{
		Email:       strings.TrimSpace(r.Email),
		Password:    r.Password,
		FirstName:   strings.TrimSpace(r.FirstName),
		LastName:    strings.TrimSpace(r.LastName),
		Role:        RoleDealer,
		GDPRConsent: r.Consent,
		CCPAConsent: r.Consent,
		DealerInfo: DealerInfo{
			DealershipName: strings.TrimSpace(r.DealershipName),
			Phone:          strings.TrimSpace(r.Phone),
			LicenseNumber:  strings.TrimSpace(r.LicenseNumber),
		},
	}
}

// TokenResponse is returned by login and signup.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      int64  `json:"user_id"`
	Role        Role   `json:"role"`
}

// AuthResult is what the auth service hands to the session layer.
type AuthResult struct {
	Token     string
	User      User
	ExpiresAt time.Time
}
