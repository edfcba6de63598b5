package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mssola/useragent"

	"github.com/staysign/guestreg/internal/domain"
	"github.com/staysign/guestreg/internal/http/response"
	"github.com/staysign/guestreg/internal/service"
	"github.com/staysign/guestreg/internal/validate"
	"github.com/staysign/guestreg/pkg/logger"
	"github.com/staysign/guestreg/pkg/middleware"
)

// maxSubmissionBytes bounds the request body. Three base64 images at
// their per-field ceilings plus the text fields fit comfortably within it.
const maxSubmissionBytes = 25 << 20

// Register handles a guest self-registration submission.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSubmissionBytes)

	var sub domain.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	meta := domain.RequestMeta{
		RemoteIP:    middleware.ClientIP(r),
		UserAgent:   r.UserAgent(),
		SubmittedAt: time.Now().UTC().Format(time.RFC3339),
	}

	ua := useragent.New(meta.UserAgent)
	browser, browserVersion := ua.Browser()
	logger.DebugContext(r.Context(), "Submission received",
		"browser", browser,
		"browser_version", browserVersion,
		"os", ua.OS(),
		"mobile", ua.Mobile(),
	)

	id, err := h.submissions.Submit(r.Context(), &sub, meta)

	var verr *validate.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationFailed(w, verr.Fields)
	case errors.Is(err, service.ErrRateLimited):
		response.RateLimit(w, "Too many submission attempts. Try again later.")
	case errors.Is(err, service.ErrSpamRejected):
		response.BadRequest(w, "Submission rejected")
	case err != nil:
		logger.ErrorContext(r.Context(), "Submission failed", "error", err)
		response.InternalError(w, "Something went wrong. Please try again.")
	default:
		response.WriteJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"id":      id,
			"message": "Registration stored",
		})
	}
}

// Schema serves the authoritative validation rule set so the form UI
// derives its client-side checks from the same definition the server
// enforces.
func (h *Handlers) Schema(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, validate.CurrentSchema())
}
