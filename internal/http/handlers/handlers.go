// Package handlers wires the registration service onto its HTTP surface.
package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/staysign/guestreg/internal/http/response"
	"github.com/staysign/guestreg/internal/pdf"
	"github.com/staysign/guestreg/internal/repo"
	"github.com/staysign/guestreg/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

type Handlers struct {
	submissions service.SubmissionService
	renderer    *pdf.Renderer
	regRepo     repo.RegistrationRepo
	templates   *template.Template
}

func New(submissions service.SubmissionService, renderer *pdf.Renderer, regRepo repo.RegistrationRepo) *Handlers {
	return &Handlers{
		submissions: submissions,
		renderer:    renderer,
		regRepo:     regRepo,
		templates:   template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
