// Package pdf renders a stored registration into the multi-page document
// kept for the guest and for legal record-keeping.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/staysign/guestreg/internal/domain"
	"github.com/staysign/guestreg/internal/images"
	"github.com/staysign/guestreg/internal/metrics"
	"github.com/staysign/guestreg/internal/repo"
	"github.com/staysign/guestreg/pkg/logger"
)

var (
	// ErrInvalidID rejects identifiers that are not canonical UUIDs before
	// any store lookup happens.
	ErrInvalidID = errors.New("invalid registration identifier")

	ErrNotFound = errors.New("registration not found")
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// Page geometry in millimeters (A4 portrait).
const (
	marginLeft   = 15.0
	marginTop    = 15.0
	marginBottom = 20.0

	labelWidth = 55.0

	imageBoxW = 120.0
	imageBoxH = 90.0

	// Submitted images are downscaled to this pixel box before embedding so
	// a 5 MB upload does not balloon the output document.
	embedMaxPx = 1200
)

const legalNotice = "This registration record is retained for the statutory guest " +
	"registration period required by local accommodation law. The data below was " +
	"provided by the guest at registration time and has not been altered since. " +
	"This document is generated on demand from the stored record."

type Renderer struct {
	regRepo repo.RegistrationRepo
}

func NewRenderer(regRepo repo.RegistrationRepo) *Renderer {
	return &Renderer{regRepo: regRepo}
}

// Render produces the registration document for id as PDF bytes. Malformed
// identifiers fail with ErrInvalidID before the store is consulted; unknown
// identifiers fail with ErrNotFound.
func (r *Renderer) Render(ctx context.Context, id string) ([]byte, error) {
	if !uuidPattern.MatchString(strings.ToLower(id)) {
		return nil, ErrInvalidID
	}

	reg, err := r.regRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, ErrNotFound
	}

	timer := prometheus.NewTimer(metrics.RenderDuration)
	defer timer.ObserveDuration()

	return buildDocument(ctx, reg)
}

func buildDocument(ctx context.Context, reg *domain.Registration) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Document timestamps come from the record, so rendering the same
	// identifier twice yields byte-identical output.
	pdf.SetCreationDate(time.UnixMilli(reg.CreatedAt).UTC())
	pdf.SetModificationDate(time.UnixMilli(reg.CreatedAt).UTC())
	pdf.SetMargins(marginLeft, marginTop, marginLeft)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.AddPage()

	writeHeader(pdf, reg)
	writeFields(pdf, reg)
	writeConsents(pdf, reg)

	slots := []struct {
		label string
		data  string
	}{
		{"Guest photo", reg.SelfieImage},
		{"Identity document", reg.DocumentImage},
		{"Guest signature", reg.SignatureImage},
	}
	for i, slot := range slots {
		writeImageBlock(ctx, pdf, fmt.Sprintf("img%d", i), slot.label, slot.data)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("assemble document: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(pdf *gofpdf.Fpdf, reg *domain.Registration) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Guest Registration Record", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 6, "Registration ID: "+reg.ID, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Submitted: "+reg.Meta.SubmittedAt, "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 4.5, legalNotice, "", "L", false)
	pdf.Ln(4)
}

func writeFields(pdf *gofpdf.Fpdf, reg *domain.Registration) {
	sectionTitle(pdf, "Guest Details")

	const layout = "2006-01-02 15:04 MST"
	rows := []struct {
		label string
		value string
	}{
		{"Full name", reg.FullName},
		{"Document number", reg.DocumentNumber},
		{"Nationality", reg.Nationality},
		{"Residence status", reg.ResidenceStatus},
		{"Home address", reg.HomeAddress},
		{"Email", reg.Email},
		{"Phone", reg.Phone},
		{"Check-in", reg.CheckIn.Format(layout)},
		{"Check-out", reg.CheckOut.Format(layout)},
		{"Guests", fmt.Sprintf("%d", reg.Guests)},
	}

	for _, row := range rows {
		fieldRow(pdf, row.label, row.value)
	}
	pdf.Ln(4)
}

func writeConsents(pdf *gofpdf.Fpdf, reg *domain.Registration) {
	sectionTitle(pdf, "Consents")
	fieldRow(pdf, "Data processing", consentText(reg.ConsentDataProcessing))
	fieldRow(pdf, "Terms and conditions", consentText(reg.ConsentTerms))
	pdf.Ln(4)
}

func consentText(granted bool) string {
	if granted {
		return "granted"
	}
	// A stored record always has both consents; this only shows up if the
	// invariant is ever broken upstream.
	return "NOT granted"
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
}

// fieldRow draws a bold label column next to a word-wrapped value column.
func fieldRow(pdf *gofpdf.Fpdf, label, value string) {
	pageW, _ := pdf.GetPageSize()
	valueWidth := pageW - 2*marginLeft - labelWidth

	x, y := pdf.GetXY()
	pdf.SetFont("Helvetica", "B", 10)
	pdf.MultiCell(labelWidth, 5.5, label, "", "L", false)
	labelEnd := pdf.GetY()

	pdf.SetXY(x+labelWidth, y)
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(valueWidth, 5.5, value, "", "L", false)

	if labelEnd > pdf.GetY() {
		pdf.SetY(labelEnd)
	}
}

// writeImageBlock embeds one submitted image scaled into the bounding box,
// starting a new page when the current one lacks vertical room. A slot that
// fails to decode becomes a placeholder; the rest of the document is
// unaffected.
func writeImageBlock(ctx context.Context, pdf *gofpdf.Fpdf, name, label, dataURL string) {
	// Label height + image box + spacing.
	ensureSpace(pdf, 8+imageBoxH+6)

	sectionTitle(pdf, label)

	jpg, pxW, pxH, err := prepareImage(dataURL)
	if err != nil {
		logger.WarnContext(ctx, "Image slot unusable, rendering placeholder", "slot", label, "error", err)
		drawPlaceholder(pdf)
		return
	}

	opts := gofpdf.ImageOptions{ImageType: "JPG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(jpg))

	w, h := fitBox(float64(pxW), float64(pxH), imageBoxW, imageBoxH)
	y := pdf.GetY()
	pdf.ImageOptions(name, marginLeft, y, w, h, false, opts, 0, "")
	pdf.SetY(y + h + 6)
}

// prepareImage decodes a submitted data URL and re-encodes it as a bounded
// JPEG, returning the bytes with the (possibly downscaled) pixel size.
func prepareImage(dataURL string) ([]byte, int, int, error) {
	_, raw, err := images.ParseDataURL(dataURL)
	if err != nil {
		return nil, 0, 0, err
	}

	img, err := images.Decode(raw)
	if err != nil {
		return nil, 0, 0, err
	}

	img = images.ResizeToFit(img, embedMaxPx, embedMaxPx)

	jpg, err := images.EncodeJPEG(img)
	if err != nil {
		return nil, 0, 0, err
	}

	bounds := img.Bounds()
	return jpg, bounds.Dx(), bounds.Dy(), nil
}

func drawPlaceholder(pdf *gofpdf.Fpdf) {
	pdf.SetDrawColor(160, 160, 160)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(imageBoxW, 24, "image unavailable", "1", 1, "C", false, 0, "")
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)
}

// ensureSpace starts a new page when the remaining height on the current
// one is below need.
func ensureSpace(pdf *gofpdf.Fpdf, need float64) {
	_, pageH := pdf.GetPageSize()
	if pdf.GetY()+need > pageH-marginBottom {
		pdf.AddPage()
	}
}

// fitBox scales pixel dimensions into a mm bounding box preserving aspect
// ratio, never exceeding either side.
func fitBox(pxW, pxH, boxW, boxH float64) (float64, float64) {
	if pxW <= 0 || pxH <= 0 {
		return boxW, boxH
	}
	scale := boxW / pxW
	if s := boxH / pxH; s < scale {
		scale = s
	}
	return pxW * scale, pxH * scale
}
