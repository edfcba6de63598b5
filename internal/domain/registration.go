package domain

import "time"

// Submission is the raw guest form payload as it arrives on the wire.
// Dates travel as RFC3339 strings so a malformed value can be reported
// against its own field instead of failing the whole JSON decode.
type Submission struct {
	FullName        string `json:"fullName"`
	DocumentNumber  string `json:"documentNumber"`
	Nationality     string `json:"nationality"`
	ResidenceStatus string `json:"residenceStatus"`
	HomeAddress     string `json:"homeAddress"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`

	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
	Guests   int    `json:"guests"`

	SelfieImage    string `json:"selfieImage"`
	DocumentImage  string `json:"documentImage"`
	SignatureImage string `json:"signatureImage"`

	ConsentDataProcessing bool `json:"consentDataProcessing"`
	ConsentTerms          bool `json:"consentTerms"`
}

// Registration is the validated, stored record. It is written exactly once
// at submission time and never mutated afterwards.
type Registration struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"createdAt"` // epoch milliseconds

	FullName        string `json:"fullName"`
	DocumentNumber  string `json:"documentNumber"`
	Nationality     string `json:"nationality"`
	ResidenceStatus string `json:"residenceStatus"`
	HomeAddress     string `json:"homeAddress"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`

	CheckIn  time.Time `json:"checkIn"`
	CheckOut time.Time `json:"checkOut"`
	Guests   int       `json:"guests"`

	SelfieImage    string `json:"selfieImage"`
	DocumentImage  string `json:"documentImage"`
	SignatureImage string `json:"signatureImage"`

	ConsentDataProcessing bool `json:"consentDataProcessing"`
	ConsentTerms          bool `json:"consentTerms"`

	Meta RequestMeta `json:"meta"`
}

// RequestMeta is attached by the server at persist time and is not
// editable through the form.
type RequestMeta struct {
	RemoteIP    string `json:"remoteIp"`
	UserAgent   string `json:"userAgent"`
	SubmittedAt string `json:"submittedAt"` // ISO-8601
}

const (
	// MaxStayDuration bounds check-out relative to check-in.
	MaxStayDuration = 365 * 24 * time.Hour

	MinGuests = 1
	MaxGuests = 20

	// Decoded image size ceilings.
	MaxImageBytes     = 5 * 1024 * 1024
	MaxSignatureBytes = 1 * 1024 * 1024
)
