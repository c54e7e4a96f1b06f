package realms

import "time"

// Credentials is the login payload shared by all realms.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PartnerProfile reflects partner account payloads.
type PartnerProfile struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"company_name"`
	Email       string    `json:"email"`
	WebsiteURL  string    `json:"website_url"`
	LogoURL     string    `json:"logo_url"`
	Plan        string    `json:"plan"`
	WebhookURL  string    `json:"webhook_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// AdminProfile reflects admin account payloads.
type AdminProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UserProfile reflects end-user account payloads.
type UserProfile struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Verification is one identity-verification run as reported by the backend.
type Verification struct {
	ID              string     `json:"id"`
	PartnerID       string     `json:"partner_id"`
	Status          string     `json:"status"`
	DocumentType    string     `json:"document_type"`
	DocumentCountry string     `json:"document_country"`
	FaceMatchScore  float64    `json:"face_match_score"`
	LivenessScore   float64    `json:"liveness_score"`
	RiskScore       float64    `json:"risk_score"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at"`
}

// WebhookLog is one delivery attempt record. Delivery itself happens
// server-side; this client only lists the log.
type WebhookLog struct {
	ID          string    `json:"id"`
	Event       string    `json:"event"`
	URL         string    `json:"url"`
	StatusCode  int       `json:"status_code"`
	Success     bool      `json:"success"`
	AttemptedAt time.Time `json:"attempted_at"`
}

// Certificate is the public verification certificate shown to end users.
type Certificate struct {
	VerificationID string     `json:"verification_id"`
	FullName       string     `json:"full_name"`
	DocumentType   string     `json:"document_type"`
	Status         string     `json:"status"`
	QRCodeURL      string     `json:"qr_code_url"`
	IssuedAt       time.Time  `json:"issued_at"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

// PartnerSummary is the admin-side listing row for a partner account.
type PartnerSummary struct {
	ID               string    `json:"id"`
	CompanyName      string    `json:"company_name"`
	Email            string    `json:"email"`
	Plan             string    `json:"plan"`
	VerificationsRun int       `json:"verifications_run"`
	CreatedAt        time.Time `json:"created_at"`
}
