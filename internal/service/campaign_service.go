package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aaplamahesh/outreach/internal/campaign"
	"github.com/aaplamahesh/outreach/internal/email"
	"github.com/aaplamahesh/outreach/internal/logger"
	"github.com/aaplamahesh/outreach/internal/metrics"
	"github.com/aaplamahesh/outreach/internal/model"
	"github.com/aaplamahesh/outreach/internal/validator"
	"github.com/google/uuid"
)

var (
	ErrNoRecipients        = errors.New("no recipients provided")
	ErrContactsUnavailable = errors.New("contact storage is not available")
)

// Deliverer sends a single message with the dispatcher's fallback rules.
type Deliverer interface {
	Deliver(ctx context.Context, msg email.Message, kind string) model.EmailResult
}

// Audience selects campaign recipients either explicitly or from stored contacts.
type Audience struct {
	Recipients []model.Recipient    `json:"recipients,omitempty"`
	Filter     *model.ContactFilter `json:"filter,omitempty"`
}

// TemplateCampaign sends a registered template.
type TemplateCampaign struct {
	TemplateID string            `json:"templateId"`
	Variables  map[string]string `json:"variables,omitempty"`
	Subject    string            `json:"subject,omitempty"`
	Audience
}

// Newsletter wraps HTML content in the newsletter frame.
type Newsletter struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text,omitempty"`
	Audience
}

// QuickAnnouncement is a short message with an optional call to action.
type QuickAnnouncement struct {
	Subject    string `json:"subject"`
	Message    string `json:"message"`
	Urgent     bool   `json:"urgent,omitempty"`
	ActionURL  string `json:"actionUrl,omitempty"`
	ActionText string `json:"actionText,omitempty"`
	Audience
}

// ContactLister resolves a contact filter to contacts.
type ContactLister interface {
	List(ctx context.Context, filter model.ContactFilter) ([]model.Contact, error)
}

// CampaignService renders and bulk-sends campaigns. Recipients are sent to
// one at a time, in order.
type CampaignService struct {
	deliver   Deliverer
	templates *campaign.Registry
	contacts  ContactLister
	branding  email.Branding
	metrics   *metrics.Metrics
	audit     *AuditLog
	now       func() time.Time
	log       *logger.Logger
}

// NewCampaignService creates a new CampaignService. contacts may be nil, in
// which case filter-based audiences are rejected.
func NewCampaignService(
	deliver Deliverer,
	templates *campaign.Registry,
	contacts ContactLister,
	branding email.Branding,
	m *metrics.Metrics,
	log *logger.Logger,
) *CampaignService {
	return &CampaignService{
		deliver:   deliver,
		templates: templates,
		contacts:  contacts,
		branding:  branding,
		metrics:   m,
		now:       time.Now,
		log:       log.WithComponent("campaign_service"),
	}
}

// WithAudit records each finished campaign in a.
func (s *CampaignService) WithAudit(a *AuditLog) *CampaignService {
	s.audit = a
	return s
}

// Templates returns the template registry.
func (s *CampaignService) Templates() *campaign.Registry {
	return s.templates
}

// SendCampaign sends a rendered campaign to each recipient in turn.
// Errors are only returned when nothing could be attempted; delivery failures
// are reported per recipient in the result.
func (s *CampaignService) SendCampaign(ctx context.Context, data model.CampaignData) (model.CampaignResult, error) {
	return s.send(ctx, data, nil)
}

// CreateFromTemplate renders a registered template and sends it. Recipient
// name and email fill {{name}} and {{email}} when the caller did not supply them.
func (s *CampaignService) CreateFromTemplate(ctx context.Context, req TemplateCampaign) (model.CampaignResult, error) {
	tmpl, err := s.templates.Get(req.TemplateID)
	if err != nil {
		return model.CampaignResult{Success: false, Message: fmt.Sprintf("Template '%s' not found", req.TemplateID)}, err
	}

	recipients, err := s.resolve(ctx, req.Audience)
	if err != nil {
		return s.failed(err)
	}

	rendered := campaign.Apply(tmpl, req.Variables)
	if len(rendered.Unresolved) > 0 {
		s.log.Debug().Str("template", tmpl.ID).Strs("unresolved", rendered.Unresolved).Msg("template has unfilled placeholders")
	}

	subject := rendered.Subject
	if strings.TrimSpace(req.Subject) != "" {
		subject = req.Subject
	}

	data := model.CampaignData{
		Name:        tmpl.Name,
		Subject:     subject,
		HTMLContent: rendered.HTML,
		TextContent: rendered.Text,
		Recipients:  recipients,
	}
	return s.send(ctx, data, func(r model.Recipient, m *email.Message) {
		vars := map[string]string{}
		if _, ok := req.Variables["name"]; !ok && r.Name != "" {
			vars["name"] = r.Name
		}
		if _, ok := req.Variables["email"]; !ok {
			vars["email"] = r.Email
		}
		m.Subject = campaign.Render(m.Subject, vars)
		m.HTMLBody = campaign.Render(m.HTMLBody, vars)
		m.TextBody = campaign.Render(m.TextBody, vars)
	})
}

// SendNewsletter wraps the content in the newsletter frame and sends it.
func (s *CampaignService) SendNewsletter(ctx context.Context, req Newsletter) (model.CampaignResult, error) {
	recipients, err := s.resolve(ctx, req.Audience)
	if err != nil {
		return s.failed(err)
	}

	html := email.NewsletterFrame(s.branding, req.Subject, req.HTML, s.now().Year())
	text := req.Text
	if strings.TrimSpace(text) == "" {
		text = email.HTMLToText(req.HTML)
	}

	return s.send(ctx, model.CampaignData{
		Name:        "Newsletter: " + req.Subject,
		Subject:     req.Subject,
		HTMLContent: html,
		TextContent: text,
		Recipients:  recipients,
	}, nil)
}

// SendQuickAnnouncement sends a one-off announcement, marked urgent when requested.
func (s *CampaignService) SendQuickAnnouncement(ctx context.Context, req QuickAnnouncement) (model.CampaignResult, error) {
	recipients, err := s.resolve(ctx, req.Audience)
	if err != nil {
		return s.failed(err)
	}

	subject := req.Subject
	if req.Urgent {
		subject = "🚨 URGENT: " + subject
	}

	html := email.Announcement(s.branding, req.Message, email.AnnouncementOptions{
		Urgent:     req.Urgent,
		ActionURL:  req.ActionURL,
		ActionText: req.ActionText,
	})

	return s.send(ctx, model.CampaignData{
		Name:        "Announcement: " + req.Subject,
		Subject:     subject,
		HTMLContent: html,
		TextContent: email.HTMLToText(html),
		Recipients:  recipients,
	}, nil)
}

func (s *CampaignService) failed(err error) (model.CampaignResult, error) {
	msg := "Failed to send campaign: " + err.Error()
	if errors.Is(err, ErrNoRecipients) {
		msg = "No recipients provided"
	}
	return model.CampaignResult{Success: false, Message: msg}, err
}

// resolve returns the explicit recipients followed by the contacts matching
// the filter, if any. Duplicates are removed when sending.
func (s *CampaignService) resolve(ctx context.Context, a Audience) ([]model.Recipient, error) {
	if a.Filter == nil {
		return a.Recipients, nil
	}
	if s.contacts == nil {
		return nil, ErrContactsUnavailable
	}

	contacts, err := s.contacts.List(ctx, *a.Filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	out := make([]model.Recipient, 0, len(a.Recipients)+len(contacts))
	out = append(out, a.Recipients...)
	for _, c := range contacts {
		out = append(out, c.Recipient())
	}
	return out, nil
}

// dedupe drops repeated addresses, keeping the first occurrence.
func dedupe(recipients []model.Recipient) []model.Recipient {
	seen := make(map[string]bool, len(recipients))
	out := make([]model.Recipient, 0, len(recipients))
	for _, r := range recipients {
		r.Email = strings.TrimSpace(r.Email)
		key := strings.ToLower(r.Email)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func (s *CampaignService) send(ctx context.Context, data model.CampaignData, personalize func(model.Recipient, *email.Message)) (model.CampaignResult, error) {
	recipients := dedupe(data.Recipients)
	if len(recipients) == 0 {
		return s.failed(ErrNoRecipients)
	}

	result := model.CampaignResult{
		CampaignID: uuid.NewString(),
		Total:      len(recipients),
		Results:    make([]model.RecipientResult, 0, len(recipients)),
	}
	log := s.log.With().Str("campaign_id", result.CampaignID).Logger()
	log.Info().Str("name", data.Name).Int("recipients", result.Total).Msg("campaign started")

	for _, r := range recipients {
		if err := ctx.Err(); err != nil {
			result.Results = append(result.Results, model.RecipientResult{Email: r.Email, Error: err.Error()})
			s.metrics.CampaignRecipient(false)
			continue
		}
		if !validator.IsEmail(r.Email) {
			result.Results = append(result.Results, model.RecipientResult{Email: r.Email, Error: "invalid email address"})
			s.metrics.CampaignRecipient(false)
			continue
		}

		msg := email.Message{
			To:       email.Address{Email: r.Email, Name: r.Name},
			Subject:  data.Subject,
			HTMLBody: data.HTMLContent,
			TextBody: data.TextContent,
			Tags:     []string{"campaign"},
		}
		if personalize != nil {
			personalize(r, &msg)
		}

		res := s.deliver.Deliver(ctx, msg, KindCampaign)
		rr := model.RecipientResult{Email: r.Email, Success: res.Success, MessageID: res.MessageID, Provider: res.Provider}
		if !res.Success {
			rr.Error = res.Message
		} else {
			result.Sent++
		}
		result.Results = append(result.Results, rr)
		s.metrics.CampaignRecipient(res.Success)
	}

	result.Success = result.Sent > 0
	result.Message = fmt.Sprintf("Campaign sent to %d/%d recipients", result.Sent, result.Total)
	log.Info().Int("sent", result.Sent).Int("total", result.Total).Msg("campaign finished")
	s.audit.Record(ctx, model.AuditEntry{
		Action:     model.AuditCampaignSent,
		Resource:   result.CampaignID,
		Success:    result.Success,
		Recipients: result.Sent,
		Metadata:   map[string]any{"name": data.Name, "subject": data.Subject, "total": result.Total},
	})
	return result, nil
}
