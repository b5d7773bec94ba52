package service

import (
	"context"
	"errors"
	"strings"

	"github.com/aaplamahesh/outreach/internal/logger"
	"github.com/aaplamahesh/outreach/internal/metrics"
	"github.com/aaplamahesh/outreach/internal/model"
	"github.com/aaplamahesh/outreach/internal/validator"
	"golang.org/x/text/language"
)

var ErrIssueNotFound = errors.New("issue not found")

// FormDispatcher delivers a validated form payload.
type FormDispatcher interface {
	SendFormEmail(ctx context.Context, d model.EmailData, lang language.Tag) model.EmailResult
}

// FormService validates site form submissions and hands them to the dispatcher.
type FormService struct {
	dispatch FormDispatcher
	validate *validator.Validator
	metrics  *metrics.Metrics
	audit    *AuditLog
	log      *logger.Logger
}

// NewFormService creates a new FormService
func NewFormService(dispatch FormDispatcher, v *validator.Validator, m *metrics.Metrics, log *logger.Logger) *FormService {
	return &FormService{
		dispatch: dispatch,
		validate: v,
		metrics:  m,
		log:      log.WithComponent("form_service"),
	}
}

// WithAudit records every delivery attempt in a.
func (s *FormService) WithAudit(a *AuditLog) *FormService {
	s.audit = a
	return s
}

// Submit validates f and, only if it is valid, sends it. A *validator.ValidationError
// is returned for invalid input; delivery problems are reported in the result.
func (s *FormService) Submit(ctx context.Context, f model.Form, lang language.Tag) (model.EmailResult, error) {
	if err := s.validate.Validate(f); err != nil {
		s.metrics.FormSubmitted(string(f.Type()), "invalid")
		return model.EmailResult{}, err
	}
	return s.send(ctx, f, lang), nil
}

// SubmitIssueReport validates a report against a key issue and sends it.
func (s *FormService) SubmitIssueReport(ctx context.Context, f model.IssueReportForm, lang language.Tag) (model.EmailResult, error) {
	if err := s.validate.Validate(f); err != nil {
		s.metrics.FormSubmitted(string(f.Type()), "invalid")
		return model.EmailResult{}, err
	}

	issue, ok := model.FindKeyIssue(strings.TrimSpace(f.IssueID))
	if !ok {
		s.metrics.FormSubmitted(string(f.Type()), "invalid")
		return model.EmailResult{}, ErrIssueNotFound
	}
	return s.send(ctx, f.WithIssue(issue), lang), nil
}

func (s *FormService) send(ctx context.Context, f model.Form, lang language.Tag) model.EmailResult {
	data := f.EmailData()
	result := s.dispatch.SendFormEmail(ctx, data, lang)

	outcome := "delivered"
	if !result.Success {
		outcome = "failed"
		s.log.Warn().Str("form_type", string(data.FormType)).Str("reason", result.Message).Msg("form notification not delivered")
	}
	s.metrics.FormSubmitted(string(f.Type()), outcome)
	s.audit.Record(ctx, model.AuditEntry{
		Action:   model.AuditFormSubmitted,
		Resource: string(data.FormType),
		Provider: result.Provider,
		Success:  result.Success,
	})
	return result
}
