package validate_test

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staysign/guestreg/internal/domain"
	"github.com/staysign/guestreg/internal/validate"
)

var testNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func pngDataURL(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func validSubmission(t *testing.T) *domain.Submission {
	t.Helper()
	img := pngDataURL(t)
	return &domain.Submission{
		FullName:              "Maria del Carmen O'Neill",
		DocumentNumber:        "AB-1234567",
		Nationality:           "Ireland",
		ResidenceStatus:       "Tourist visa",
		HomeAddress:           "12 Main Street, Dublin",
		Email:                 "Maria.ONeill@Example.org",
		Phone:                 "+353 (1) 234-5678",
		CheckIn:               testNow.Add(48 * time.Hour).Format(time.RFC3339),
		CheckOut:              testNow.Add(5 * 24 * time.Hour).Format(time.RFC3339),
		Guests:                2,
		SelfieImage:           img,
		DocumentImage:         img,
		SignatureImage:        img,
		ConsentDataProcessing: true,
		ConsentTerms:          true,
	}
}

func fieldsOf(verr *validate.ValidationError) []string {
	var out []string
	for _, fe := range verr.Fields {
		out = append(out, fe.Field)
	}
	return out
}

func TestValidSubmissionNormalizes(t *testing.T) {
	sub := validSubmission(t)
	sub.FullName = "  Maria del Carmen O'Neill  "

	reg, verr := validate.Submission(sub, testNow)
	require.Nil(t, verr)
	require.NotNil(t, reg)

	assert.Equal(t, "Maria del Carmen O'Neill", reg.FullName)
	assert.Equal(t, "maria.oneill@example.org", reg.Email, "email is lower-cased before storage")
	assert.Equal(t, 2, reg.Guests)
	assert.True(t, reg.ConsentDataProcessing)
	assert.True(t, reg.ConsentTerms)
}

func TestLengthBoundsCountCharacters(t *testing.T) {
	sub := validSubmission(t)
	// 60 characters, 120 bytes: well inside the 100-character bound
	// even though the UTF-8 encoding exceeds it.
	sub.FullName = strings.Repeat("Ж", 60)

	reg, verr := validate.Submission(sub, testNow)
	require.Nil(t, verr)
	require.NotNil(t, reg)
	assert.Equal(t, strings.Repeat("Ж", 60), reg.FullName)
}

func TestTextFieldRules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*domain.Submission)
		field  string
	}{
		{"missing name", func(s *domain.Submission) { s.FullName = "" }, "fullName"},
		{"name too short", func(s *domain.Submission) { s.FullName = "A" }, "fullName"},
		{"name with digits", func(s *domain.Submission) { s.FullName = "John 2000" }, "fullName"},
		{"name too long", func(s *domain.Submission) { s.FullName = strings.Repeat("a", 101) }, "fullName"},
		{"document number symbols", func(s *domain.Submission) { s.DocumentNumber = "AB_123!" }, "documentNumber"},
		{"document number too short", func(s *domain.Submission) { s.DocumentNumber = "A1" }, "documentNumber"},
		{"nationality with digits", func(s *domain.Submission) { s.Nationality = "1reland" }, "nationality"},
		{"address too short", func(s *domain.Submission) { s.HomeAddress = "x" }, "homeAddress"},
		{"address with control chars", func(s *domain.Submission) { s.HomeAddress = "12 Main\x00Street" }, "homeAddress"},
		{"address with DEL", func(s *domain.Submission) { s.HomeAddress = "12 Main\x7fStreet" }, "homeAddress"},
		{"address with C1 control", func(s *domain.Submission) { s.HomeAddress = "12 Main\u0085Street" }, "homeAddress"},
		{"name over 100 runes", func(s *domain.Submission) { s.FullName = strings.Repeat("д", 101) }, "fullName"},
		{"email without domain", func(s *domain.Submission) { s.Email = "nobody@" }, "email"},
		{"email too long", func(s *domain.Submission) { s.Email = strings.Repeat("a", 95) + "@example.org" }, "email"},
		{"phone with letters", func(s *domain.Submission) { s.Phone = "+353 CALL ME" }, "phone"},
		{"phone too short", func(s *domain.Submission) { s.Phone = "12345" }, "phone"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := validSubmission(t)
			tc.mutate(sub)

			reg, verr := validate.Submission(sub, testNow)
			require.Nil(t, reg, "no partial accept")
			require.NotNil(t, verr)
			assert.Contains(t, fieldsOf(verr), tc.field)
		})
	}
}

func TestStayDateRules(t *testing.T) {
	cases := []struct {
		name     string
		checkIn  string
		checkOut string
		field    string
	}{
		{
			"check-in not a timestamp",
			"tomorrow",
			testNow.Add(48 * time.Hour).Format(time.RFC3339),
			"checkIn",
		},
		{
			"check-in in the past",
			testNow.Add(-time.Hour).Format(time.RFC3339),
			testNow.Add(48 * time.Hour).Format(time.RFC3339),
			"checkIn",
		},
		{
			"check-in exactly now",
			testNow.Format(time.RFC3339),
			testNow.Add(48 * time.Hour).Format(time.RFC3339),
			"checkIn",
		},
		{
			"check-out before check-in",
			testNow.Add(72 * time.Hour).Format(time.RFC3339),
			testNow.Add(48 * time.Hour).Format(time.RFC3339),
			"checkOut",
		},
		{
			"check-out equals check-in",
			testNow.Add(48 * time.Hour).Format(time.RFC3339),
			testNow.Add(48 * time.Hour).Format(time.RFC3339),
			"checkOut",
		},
		{
			"stay longer than a year",
			testNow.Add(24 * time.Hour).Format(time.RFC3339),
			testNow.Add((366*24 + 25) * time.Hour).Format(time.RFC3339),
			"checkOut",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := validSubmission(t)
			sub.CheckIn = tc.checkIn
			sub.CheckOut = tc.checkOut

			_, verr := validate.Submission(sub, testNow)
			require.NotNil(t, verr)
			assert.Contains(t, fieldsOf(verr), tc.field)
		})
	}
}

func TestGuestCountBounds(t *testing.T) {
	for _, guests := range []int{0, -1, 21, 100} {
		sub := validSubmission(t)
		sub.Guests = guests

		_, verr := validate.Submission(sub, testNow)
		require.NotNil(t, verr, "guests=%d", guests)
		assert.Contains(t, fieldsOf(verr), "guests")
	}

	for _, guests := range []int{1, 20} {
		sub := validSubmission(t)
		sub.Guests = guests

		_, verr := validate.Submission(sub, testNow)
		require.Nil(t, verr, "guests=%d should be accepted", guests)
	}
}

func TestImageRules(t *testing.T) {
	t.Run("missing image", func(t *testing.T) {
		sub := validSubmission(t)
		sub.SelfieImage = ""

		_, verr := validate.Submission(sub, testNow)
		require.NotNil(t, verr)
		assert.Contains(t, fieldsOf(verr), "selfieImage")
	})

	t.Run("not a data url", func(t *testing.T) {
		sub := validSubmission(t)
		sub.DocumentImage = "https://example.org/photo.png"

		_, verr := validate.Submission(sub, testNow)
		require.NotNil(t, verr)
		assert.Contains(t, fieldsOf(verr), "documentImage")
	})

	t.Run("broken base64", func(t *testing.T) {
		sub := validSubmission(t)
		sub.SignatureImage = "data:image/png;base64,!!!not-base64!!!"

		_, verr := validate.Submission(sub, testNow)
		require.NotNil(t, verr)
		assert.Contains(t, fieldsOf(verr), "signatureImage")
	})

	t.Run("signature over its ceiling", func(t *testing.T) {
		sub := validSubmission(t)
		big := make([]byte, domain.MaxSignatureBytes+1)
		sub.SignatureImage = "data:image/png;base64," + base64.StdEncoding.EncodeToString(big)

		_, verr := validate.Submission(sub, testNow)
		require.NotNil(t, verr)
		assert.Contains(t, fieldsOf(verr), "signatureImage")
	})

	t.Run("signature under image ceiling still fails its own", func(t *testing.T) {
		// 2 MiB passes the generic image limit but not the signature limit.
		sub := validSubmission(t)
		big := make([]byte, 2*1024*1024)
		sub.SignatureImage = "data:image/png;base64," + base64.StdEncoding.EncodeToString(big)

		_, verr := validate.Submission(sub, testNow)
		require.NotNil(t, verr)
		assert.Contains(t, fieldsOf(verr), "signatureImage")
	})
}

func TestConsentsMustBeTrue(t *testing.T) {
	sub := validSubmission(t)
	sub.ConsentDataProcessing = false
	sub.ConsentTerms = false

	_, verr := validate.Submission(sub, testNow)
	require.NotNil(t, verr)
	assert.Contains(t, fieldsOf(verr), "consentDataProcessing")
	assert.Contains(t, fieldsOf(verr), "consentTerms")
}

func TestAllViolationsReportedTogether(t *testing.T) {
	sub := validSubmission(t)
	sub.FullName = ""
	sub.Email = "broken"
	sub.Guests = 0
	sub.ConsentTerms = false

	_, verr := validate.Submission(sub, testNow)
	require.NotNil(t, verr)

	fields := fieldsOf(verr)
	for _, want := range []string{"fullName", "email", "guests", "consentTerms"} {
		assert.Contains(t, fields, want)
	}
}

func TestSchemaMirrorsRuleTable(t *testing.T) {
	schema := validate.CurrentSchema()

	assert.Len(t, schema.Text, len(validate.TextRules))
	assert.Equal(t, domain.MinGuests, schema.GuestsMin)
	assert.Equal(t, domain.MaxGuests, schema.GuestsMax)
	assert.Equal(t, 365, schema.MaxStayDays)
	assert.Equal(t, domain.MaxImageBytes, schema.MaxImageBytes)
	assert.Equal(t, domain.MaxSignatureBytes, schema.MaxSignatureBytes)
}
