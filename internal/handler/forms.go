package handler

import (
	"errors"
	"net/http"

	"github.com/aaplamahesh/outreach/internal/model"
	"github.com/aaplamahesh/outreach/internal/service"
	"github.com/aaplamahesh/outreach/internal/validator"
	"golang.org/x/text/language"
)

// SubmitContact handles POST /api/v1/forms/contact
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	submitForm[model.ContactForm](h, w, r)
}

// SubmitIssue handles POST /api/v1/forms/issue
func (h *Handler) SubmitIssue(w http.ResponseWriter, r *http.Request) {
	submitForm[model.IssueForm](h, w, r)
}

// SubmitJoin handles POST /api/v1/forms/join
func (h *Handler) SubmitJoin(w http.ResponseWriter, r *http.Request) {
	submitForm[model.JoinForm](h, w, r)
}

// SubmitVolunteer handles POST /api/v1/forms/volunteer
func (h *Handler) SubmitVolunteer(w http.ResponseWriter, r *http.Request) {
	submitForm[model.VolunteerForm](h, w, r)
}

func submitForm[F model.Form](h *Handler, w http.ResponseWriter, r *http.Request) {
	var form F
	if err := readJSON(r, &form); err != nil {
		badRequest(w, err)
		return
	}

	lang := h.bundle.ResolveRequest(r)
	result, err := h.forms.Submit(r.Context(), form, lang)
	if err != nil {
		h.formError(w, r, err, lang)
		return
	}
	writeEmailResult(w, result)
}

// ListIssues handles GET /api/v1/issues
func (h *Handler) ListIssues(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"issues": model.KeyIssues})
}

// SubmitIssueReport handles POST /api/v1/issues/{id}/reports
func (h *Handler) SubmitIssueReport(w http.ResponseWriter, r *http.Request) {
	var form model.IssueReportForm
	if err := readJSON(r, &form); err != nil {
		badRequest(w, err)
		return
	}
	form.IssueID = r.PathValue("id")

	lang := h.bundle.ResolveRequest(r)
	result, err := h.forms.SubmitIssueReport(r.Context(), form, lang)
	if err != nil {
		h.formError(w, r, err, lang)
		return
	}
	writeEmailResult(w, result)
}

// writeEmailResult reports a dispatch outcome. A failed delivery is a 502
// with the same body shape as a successful one.
func writeEmailResult(w http.ResponseWriter, result model.EmailResult) {
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, result)
}

func (h *Handler) formError(w http.ResponseWriter, r *http.Request, err error, lang language.Tag) {
	p := h.bundle.Printer(lang)

	var ve *validator.ValidationError
	switch {
	case errors.As(err, &ve):
		key := "validation.failed"
		switch {
		case ve.Failed("notblank") || ve.Failed("required"):
			key = "validation.required"
		case ve.Failed("simpleemail") || ve.Failed("email"):
			key = "validation.email"
		}
		writeErrorWithDetails(w, r, http.StatusBadRequest, "validation_failed", p.Sprintf(key), ve.Errors)
	case errors.Is(err, service.ErrIssueNotFound):
		writeError(w, http.StatusNotFound, "issue_not_found", p.Sprintf("issue.not_found"))
	default:
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("form submission failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
