package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/staysign/guestreg/internal/http/response"
	"github.com/staysign/guestreg/internal/pdf"
	"github.com/staysign/guestreg/pkg/logger"
)

// Document streams the rendered registration PDF. The response is marked
// non-cacheable: the document carries personal data and is always rebuilt
// from the stored record.
func (h *Handlers) Document(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := h.renderer.Render(r.Context(), id)
	switch {
	case errors.Is(err, pdf.ErrInvalidID):
		response.BadRequest(w, "Invalid registration identifier")
		return
	case errors.Is(err, pdf.ErrNotFound):
		response.NotFound(w, "Registration not found")
		return
	case err != nil:
		logger.ErrorContext(r.Context(), "Document render failed", "error", err, "registration_id", id)
		response.InternalError(w, "Failed to generate document")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "registration-"+id+".pdf"))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(doc)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		logger.WarnContext(r.Context(), "Failed to write document response", "error", err)
	}
}
