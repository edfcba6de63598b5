package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/staysign/guestreg/internal/domain"
	"github.com/staysign/guestreg/pkg/logger"
)

type successView struct {
	Registration *domain.Registration
	DocumentURL  string
	CheckIn      string
	CheckOut     string
}

// SuccessView renders the human-readable confirmation page for a stored
// registration. Invalid and unknown identifiers both land on the not-found
// view so identifier probing learns nothing about the format.
func (h *Handlers) SuccessView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := uuid.Parse(id); err != nil {
		h.renderNotFound(w, r)
		return
	}

	reg, err := h.regRepo.GetByID(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to load registration for success view", "error", err)
		h.renderNotFound(w, r)
		return
	}
	if reg == nil {
		h.renderNotFound(w, r)
		return
	}

	const layout = "2 January 2006, 15:04"
	view := successView{
		Registration: reg,
		DocumentURL:  "/api/registrations/" + reg.ID + "/document",
		CheckIn:      reg.CheckIn.Format(layout),
		CheckOut:     reg.CheckOut.Format(layout),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "success.html", view); err != nil {
		logger.ErrorContext(r.Context(), "Failed to render success view", "error", err)
	}
}

func (h *Handlers) renderNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if err := h.templates.ExecuteTemplate(w, "notfound.html", nil); err != nil {
		logger.ErrorContext(r.Context(), "Failed to render not-found view", "error", err)
	}
}
