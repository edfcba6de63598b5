package pdf_test

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staysign/guestreg/internal/domain"
	"github.com/staysign/guestreg/internal/pdf"
	"github.com/staysign/guestreg/internal/repo"
	"github.com/staysign/guestreg/internal/store"
)

const testID = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"

func pngDataURL(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func storedRegistration(t *testing.T, r repo.RegistrationRepo) *domain.Registration {
	t.Helper()
	img := pngDataURL(t)
	reg := &domain.Registration{
		ID:                    testID,
		CreatedAt:             1767009600000,
		FullName:              "Jane Smith",
		DocumentNumber:        "P1234567",
		Nationality:           "Ireland",
		ResidenceStatus:       "Tourist visa",
		HomeAddress:           "4 Oak Lane, Cork",
		Email:                 "jane@example.org",
		Phone:                 "+353 1 234 5678",
		CheckIn:               time.Date(2026, 2, 1, 14, 0, 0, 0, time.UTC),
		CheckOut:              time.Date(2026, 2, 5, 11, 0, 0, 0, time.UTC),
		Guests:                2,
		SelfieImage:           img,
		DocumentImage:         img,
		SignatureImage:        img,
		ConsentDataProcessing: true,
		ConsentTerms:          true,
		Meta: domain.RequestMeta{
			RemoteIP:    "203.0.113.7",
			UserAgent:   "test-agent",
			SubmittedAt: "2026-01-10T12:00:00Z",
		},
	}
	require.NoError(t, r.Create(context.Background(), reg, time.Hour))
	return reg
}

func TestRenderRejectsMalformedID(t *testing.T) {
	renderer := pdf.NewRenderer(repo.NewRegistrationRepo(store.NewMemoryKV()))

	for _, id := range []string{"not-a-uuid", "", "1234", testID + "x"} {
		_, err := renderer.Render(context.Background(), id)
		assert.ErrorIs(t, err, pdf.ErrInvalidID, "id=%q", id)
	}
}

func TestRenderUnknownID(t *testing.T) {
	renderer := pdf.NewRenderer(repo.NewRegistrationRepo(store.NewMemoryKV()))

	_, err := renderer.Render(context.Background(), testID)
	assert.ErrorIs(t, err, pdf.ErrNotFound)
}

// documentText inflates every FlateDecode stream in doc and returns the
// concatenated contents. Page text ends up here as literal strings inside
// Tj operators, which is enough to assert on rendered field values.
func documentText(t *testing.T, doc []byte) string {
	t.Helper()

	var out bytes.Buffer
	rest := doc
	for {
		start := bytes.Index(rest, []byte("stream\n"))
		if start < 0 {
			break
		}
		rest = rest[start+len("stream\n"):]
		end := bytes.Index(rest, []byte("endstream"))
		if end < 0 {
			break
		}
		zr, err := zlib.NewReader(bytes.NewReader(rest[:end]))
		if err == nil {
			// Image streams are not zlib; skip anything that fails.
			if inflated, err := io.ReadAll(zr); err == nil {
				out.Write(inflated)
			}
			zr.Close()
		}
		rest = rest[end:]
	}
	return out.String()
}

func TestRenderProducesDocument(t *testing.T) {
	regRepo := repo.NewRegistrationRepo(store.NewMemoryKV())
	storedRegistration(t, regRepo)

	renderer := pdf.NewRenderer(regRepo)
	doc, err := renderer.Render(context.Background(), testID)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")), "output must be a PDF stream")

	text := documentText(t, doc)
	assert.Contains(t, text, "Jane Smith")
	assert.Contains(t, text, "P1234567")
	assert.Contains(t, text, "granted")
	assert.NotContains(t, text, "NOT granted", "both consents in the fixture are granted")
}

func TestRenderIsDeterministic(t *testing.T) {
	regRepo := repo.NewRegistrationRepo(store.NewMemoryKV())
	storedRegistration(t, regRepo)

	renderer := pdf.NewRenderer(regRepo)

	first, err := renderer.Render(context.Background(), testID)
	require.NoError(t, err)
	second, err := renderer.Render(context.Background(), testID)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same record must render identically")
}

func TestRenderDegradesBadImageToPlaceholder(t *testing.T) {
	regRepo := repo.NewRegistrationRepo(store.NewMemoryKV())
	reg := storedRegistration(t, regRepo)

	// Corrupt one slot: valid base64, not an image.
	reg.SelfieImage = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("not an image"))
	require.NoError(t, regRepo.Create(context.Background(), reg, time.Hour))

	renderer := pdf.NewRenderer(regRepo)
	doc, err := renderer.Render(context.Background(), testID)
	require.NoError(t, err, "a broken slot must not abort the document")
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))
}
