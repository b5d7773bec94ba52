package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/aaplamahesh/outreach/internal/campaign"
	"github.com/aaplamahesh/outreach/internal/model"
	"github.com/aaplamahesh/outreach/internal/service"
	"github.com/aaplamahesh/outreach/internal/validator"
)

// AdminEmailStatus handles GET /api/v1/admin/email/status
func (h *Handler) AdminEmailStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dispatch.ProviderStatus())
}

// TestEmailRequest selects who receives the test message. With All set every
// provider is tested on its own and To is required.
type TestEmailRequest struct {
	To  string `json:"to"`
	All bool   `json:"all,omitempty"`
}

// AdminTestEmail handles POST /api/v1/admin/email/test
func (h *Handler) AdminTestEmail(w http.ResponseWriter, r *http.Request) {
	var req TestEmailRequest
	if err := readJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	req.To = strings.TrimSpace(req.To)
	// An empty address goes to the configured admin recipient.
	if (req.To != "" || req.All) && !validator.IsEmail(req.To) {
		writeError(w, http.StatusBadRequest, "invalid_email", "A valid recipient address is required")
		return
	}

	if req.All {
		writeJSON(w, http.StatusOK, map[string]any{"results": h.dispatch.TestProviders(r.Context(), req.To)})
		return
	}
	writeEmailResult(w, h.dispatch.SendTestEmail(r.Context(), req.To))
}

// AdminListTemplates handles GET /api/v1/admin/templates
func (h *Handler) AdminListTemplates(w http.ResponseWriter, r *http.Request) {
	reg := h.campaigns.Templates()

	templates := reg.List()
	if c := r.URL.Query().Get("category"); c != "" {
		templates = reg.ByCategory(model.TemplateCategory(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

// AdminGetTemplate handles GET /api/v1/admin/templates/{id}
func (h *Handler) AdminGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := h.campaigns.Templates().Get(r.PathValue("id"))
	if err != nil {
		h.templateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// PreviewRequest holds the variables to render a template with
type PreviewRequest struct {
	Variables map[string]string `json:"variables"`
}

// AdminPreviewTemplate handles POST /api/v1/admin/templates/{id}/preview
func (h *Handler) AdminPreviewTemplate(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := readJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	t, err := h.campaigns.Templates().Get(r.PathValue("id"))
	if err != nil {
		h.templateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign.Apply(t, req.Variables))
}

func (h *Handler) templateError(w http.ResponseWriter, err error) {
	if errors.Is(err, campaign.ErrTemplateNotFound) {
		writeError(w, http.StatusNotFound, "template_not_found", "Template not found")
		return
	}
	h.log.Error().Err(err).Msg("template lookup failed")
	writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
}

// AdminSendCampaign handles POST /api/v1/admin/campaigns
func (h *Handler) AdminSendCampaign(w http.ResponseWriter, r *http.Request) {
	var req model.CampaignData
	if err := readJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	result, err := h.campaigns.SendCampaign(r.Context(), req)
	h.writeCampaignResult(w, result, err)
}

// AdminSendTemplateCampaign handles POST /api/v1/admin/campaigns/template
func (h *Handler) AdminSendTemplateCampaign(w http.ResponseWriter, r *http.Request) {
	var req service.TemplateCampaign
	if err := readJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	result, err := h.campaigns.CreateFromTemplate(r.Context(), req)
	h.writeCampaignResult(w, result, err)
}

// AdminSendNewsletter handles POST /api/v1/admin/newsletters
func (h *Handler) AdminSendNewsletter(w http.ResponseWriter, r *http.Request) {
	var req service.Newsletter
	if err := readJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	result, err := h.campaigns.SendNewsletter(r.Context(), req)
	h.writeCampaignResult(w, result, err)
}

// AdminSendAnnouncement handles POST /api/v1/admin/announcements
func (h *Handler) AdminSendAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req service.QuickAnnouncement
	if err := readJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	result, err := h.campaigns.SendQuickAnnouncement(r.Context(), req)
	h.writeCampaignResult(w, result, err)
}

// writeCampaignResult maps a campaign outcome to a status. Nothing attempted
// is the caller's fault; attempts that all failed are an upstream failure.
func (h *Handler) writeCampaignResult(w http.ResponseWriter, result model.CampaignResult, err error) {
	switch {
	case errors.Is(err, campaign.ErrTemplateNotFound):
		writeJSON(w, http.StatusNotFound, result)
	case errors.Is(err, service.ErrNoRecipients):
		writeJSON(w, http.StatusBadRequest, result)
	case err != nil:
		h.log.Error().Err(err).Msg("failed to resolve campaign audience")
		writeError(w, http.StatusInternalServerError, "campaign_failed", "Failed to resolve campaign audience")
	case result.Success:
		writeJSON(w, http.StatusOK, result)
	default:
		writeJSON(w, http.StatusBadGateway, result)
	}
}

// AdminImportContacts handles POST /api/v1/admin/contacts/import
func (h *Handler) AdminImportContacts(w http.ResponseWriter, r *http.Request) {
	var contacts []model.Contact
	if err := readJSON(r, &contacts); err != nil {
		badRequest(w, err)
		return
	}

	result, err := h.contacts.Import(r.Context(), contacts)
	if err != nil {
		h.log.Error().Err(err).Msg("contact import failed")
		writeError(w, http.StatusInternalServerError, "import_failed", "Failed to import contacts")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// AdminListContacts handles GET /api/v1/admin/contacts
func (h *Handler) AdminListContacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.ContactFilter{
		University: q.Get("university"),
		Course:     q.Get("course"),
		Year:       q.Get("year"),
	}
	for _, v := range q["interest"] {
		for _, in := range strings.Split(v, ",") {
			if in = strings.TrimSpace(in); in != "" {
				filter.Interests = append(filter.Interests, in)
			}
		}
	}

	contacts, err := h.contacts.List(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list contacts")
		writeError(w, http.StatusInternalServerError, "list_failed", "Failed to list contacts")
		return
	}
	if contacts == nil {
		contacts = []model.Contact{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"contacts": contacts, "total": len(contacts)})
}

// AdminAudit handles GET /api/v1/admin/audit?action=&limit=
func (h *Handler) AdminAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 50
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.audit.Recent(r.Context(), q.Get("action"), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to read audit log")
		writeError(w, http.StatusInternalServerError, "audit_failed", "Failed to read audit log")
		return
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
