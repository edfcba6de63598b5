// Package validate holds the single authoritative rule set for guest
// registration submissions. The same table drives server-side validation
// and the /api/schema endpoint the form UI reads its client checks from,
// so the two can never drift apart.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/staysign/guestreg/internal/domain"
	"github.com/staysign/guestreg/internal/images"
)

// FieldError names a single violated rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violation found in one pass.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("validation failed: %s", e.Fields[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(e.Fields))
}

// TextRule is one declarative constraint on a free-text field.
type TextRule struct {
	Field   string `json:"field"`
	MinLen  int    `json:"minLength"`
	MaxLen  int    `json:"maxLength"`
	Pattern string `json:"pattern"`
	Message string `json:"message"`

	re    *regexp.Regexp
	value func(*domain.Submission) string
}

// TextRules is the shared field contract. Patterns are anchored and applied
// to the trimmed value; email is additionally lower-cased before storage.
var TextRules = []TextRule{
	{
		Field:   "fullName",
		MinLen:  2,
		MaxLen:  100,
		Pattern: `^[\p{L}][\p{L} .'-]*$`,
		Message: "fullName must be 2-100 characters of letters, spaces, hyphens, apostrophes or periods",
		value:   func(s *domain.Submission) string { return s.FullName },
	},
	{
		Field:   "documentNumber",
		MinLen:  5,
		MaxLen:  20,
		Pattern: `^[A-Za-z0-9-]+$`,
		Message: "documentNumber must be 5-20 alphanumeric characters or hyphens",
		value:   func(s *domain.Submission) string { return s.DocumentNumber },
	},
	{
		Field:   "nationality",
		MinLen:  2,
		MaxLen:  60,
		Pattern: `^[\p{L}][\p{L} ]*$`,
		Message: "nationality must be 2-60 characters of letters and spaces",
		value:   func(s *domain.Submission) string { return s.Nationality },
	},
	{
		Field:   "residenceStatus",
		MinLen:  2,
		MaxLen:  40,
		Pattern: `^[\p{L}][\p{L} -]*$`,
		Message: "residenceStatus must be 2-40 characters of letters, spaces or hyphens",
		value:   func(s *domain.Submission) string { return s.ResidenceStatus },
	},
	{
		Field:   "homeAddress",
		MinLen:  5,
		MaxLen:  200,
		Pattern: `^[^\p{Cc}]+$`,
		Message: "homeAddress must be 5-200 printable characters",
		value:   func(s *domain.Submission) string { return s.HomeAddress },
	},
	{
		Field:   "email",
		MinLen:  3,
		MaxLen:  100,
		Pattern: `^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`,
		Message: "email must be a valid address of at most 100 characters",
		value:   func(s *domain.Submission) string { return strings.ToLower(s.Email) },
	},
	{
		Field:   "phone",
		MinLen:  6,
		MaxLen:  20,
		Pattern: `^\+?[0-9 ()-]+$`,
		Message: "phone must be 6-20 characters of digits, spaces, parentheses, hyphens or a leading +",
		value:   func(s *domain.Submission) string { return s.Phone },
	},
}

func init() {
	for i := range TextRules {
		TextRules[i].re = regexp.MustCompile(TextRules[i].Pattern)
	}
}

// Schema is the serializable form of the rule set, served to the client so
// the interactive layer mirrors exactly what the server enforces.
type Schema struct {
	Text []TextRule `json:"text"`

	GuestsMin int `json:"guestsMin"`
	GuestsMax int `json:"guestsMax"`

	MaxStayDays       int `json:"maxStayDays"`
	MaxImageBytes     int `json:"maxImageBytes"`
	MaxSignatureBytes int `json:"maxSignatureBytes"`

	ConsentFields []string `json:"consentFields"`
}

func CurrentSchema() Schema {
	return Schema{
		Text:              TextRules,
		GuestsMin:         domain.MinGuests,
		GuestsMax:         domain.MaxGuests,
		MaxStayDays:       int(domain.MaxStayDuration.Hours() / 24),
		MaxImageBytes:     domain.MaxImageBytes,
		MaxSignatureBytes: domain.MaxSignatureBytes,
		ConsentFields:     []string{"consentDataProcessing", "consentTerms"},
	}
}

// Submission validates a raw payload against the full rule set. It returns
// the normalized record fields on success, or every violation at once —
// callers never see a partial accept.
func Submission(sub *domain.Submission, now time.Time) (*domain.Registration, *ValidationError) {
	var errs []FieldError

	reg := &domain.Registration{}

	for _, rule := range TextRules {
		v := strings.TrimSpace(rule.value(sub))
		// Bounds are in characters, matching what /api/schema advertises.
		runes := utf8.RuneCountInString(v)
		if runes < rule.MinLen || runes > rule.MaxLen || !rule.re.MatchString(v) {
			errs = append(errs, FieldError{Field: rule.Field, Message: rule.Message})
			continue
		}
		switch rule.Field {
		case "fullName":
			reg.FullName = v
		case "documentNumber":
			reg.DocumentNumber = v
		case "nationality":
			reg.Nationality = v
		case "residenceStatus":
			reg.ResidenceStatus = v
		case "homeAddress":
			reg.HomeAddress = v
		case "email":
			reg.Email = v
		case "phone":
			reg.Phone = v
		}
	}

	checkIn, checkOut, dateErrs := validateStayDates(sub.CheckIn, sub.CheckOut, now)
	errs = append(errs, dateErrs...)
	reg.CheckIn = checkIn
	reg.CheckOut = checkOut

	if sub.Guests < domain.MinGuests || sub.Guests > domain.MaxGuests {
		errs = append(errs, FieldError{
			Field:   "guests",
			Message: fmt.Sprintf("guests must be between %d and %d", domain.MinGuests, domain.MaxGuests),
		})
	}
	reg.Guests = sub.Guests

	errs = append(errs, validateImage("selfieImage", sub.SelfieImage, domain.MaxImageBytes)...)
	errs = append(errs, validateImage("documentImage", sub.DocumentImage, domain.MaxImageBytes)...)
	errs = append(errs, validateImage("signatureImage", sub.SignatureImage, domain.MaxSignatureBytes)...)
	reg.SelfieImage = sub.SelfieImage
	reg.DocumentImage = sub.DocumentImage
	reg.SignatureImage = sub.SignatureImage

	if !sub.ConsentDataProcessing {
		errs = append(errs, FieldError{Field: "consentDataProcessing", Message: "consentDataProcessing must be accepted"})
	}
	if !sub.ConsentTerms {
		errs = append(errs, FieldError{Field: "consentTerms", Message: "consentTerms must be accepted"})
	}
	reg.ConsentDataProcessing = sub.ConsentDataProcessing
	reg.ConsentTerms = sub.ConsentTerms

	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	return reg, nil
}

// validateStayDates checks the check-in/check-out pair. Cross-field failures
// (ordering, maximum stay) report against checkOut, the later-dated field.
func validateStayDates(checkInRaw, checkOutRaw string, now time.Time) (time.Time, time.Time, []FieldError) {
	var errs []FieldError

	checkIn, inErr := time.Parse(time.RFC3339, strings.TrimSpace(checkInRaw))
	if inErr != nil {
		errs = append(errs, FieldError{Field: "checkIn", Message: "checkIn must be an RFC3339 timestamp"})
	} else if !checkIn.After(now) {
		errs = append(errs, FieldError{Field: "checkIn", Message: "checkIn must be in the future"})
	}

	checkOut, outErr := time.Parse(time.RFC3339, strings.TrimSpace(checkOutRaw))
	if outErr != nil {
		errs = append(errs, FieldError{Field: "checkOut", Message: "checkOut must be an RFC3339 timestamp"})
	} else if inErr == nil {
		if !checkOut.After(checkIn) {
			errs = append(errs, FieldError{Field: "checkOut", Message: "checkOut must be after checkIn"})
		} else if checkOut.Sub(checkIn) > domain.MaxStayDuration {
			errs = append(errs, FieldError{Field: "checkOut", Message: "stay must not exceed 365 days"})
		}
	}

	return checkIn, checkOut, errs
}

func validateImage(field, value string, maxBytes int) []FieldError {
	if strings.TrimSpace(value) == "" {
		return []FieldError{{Field: field, Message: field + " is required"}}
	}
	size, err := images.DecodedSize(value)
	if err != nil {
		return []FieldError{{Field: field, Message: field + " must be a base64-encoded image data URL"}}
	}
	if size > maxBytes {
		return []FieldError{{Field: field, Message: fmt.Sprintf("%s exceeds the maximum size of %d bytes", field, maxBytes)}}
	}
	return nil
}
