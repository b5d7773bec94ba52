package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aaplamahesh/outreach/internal/logger"
	"github.com/aaplamahesh/outreach/internal/model"
	"github.com/aaplamahesh/outreach/internal/validator"
)

// ContactStore persists campaign contacts.
type ContactStore interface {
	Upsert(ctx context.Context, c *model.Contact) error
	List(ctx context.Context, filter model.ContactFilter) ([]model.Contact, error)
}

// ImportResult summarises a contact import.
type ImportResult struct {
	Imported int               `json:"imported"`
	Skipped  int               `json:"skipped"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// ContactService manages the campaign audience.
type ContactService struct {
	store    ContactStore
	validate *validator.Validator
	audit    *AuditLog
	log      *logger.Logger
}

// NewContactService creates a new ContactService
func NewContactService(store ContactStore, v *validator.Validator, log *logger.Logger) *ContactService {
	return &ContactService{
		store:    store,
		validate: v,
		log:      log.WithComponent("contact_service"),
	}
}

// WithAudit records imports in a.
func (s *ContactService) WithAudit(a *AuditLog) *ContactService {
	s.audit = a
	return s
}

// Import upserts contacts by email. Invalid entries are skipped and reported
// by their position in the input.
func (s *ContactService) Import(ctx context.Context, contacts []model.Contact) (ImportResult, error) {
	var result ImportResult

	for i := range contacts {
		c := normalizeContact(contacts[i])
		if err := s.validate.Validate(c); err != nil {
			result.Skipped++
			if result.Errors == nil {
				result.Errors = map[string]string{}
			}
			result.Errors[fmt.Sprintf("%d", i)] = err.Error()
			continue
		}

		if err := s.store.Upsert(ctx, &c); err != nil {
			return result, fmt.Errorf("failed to store contact %s: %w", c.Email, err)
		}
		result.Imported++
	}

	s.log.Info().Int("imported", result.Imported).Int("skipped", result.Skipped).Msg("contacts imported")
	s.audit.Record(ctx, model.AuditEntry{
		Action:     model.AuditContactsImported,
		Success:    true,
		Recipients: result.Imported,
		Metadata:   map[string]any{"skipped": result.Skipped},
	})
	return result, nil
}

// List returns contacts matching filter.
func (s *ContactService) List(ctx context.Context, filter model.ContactFilter) ([]model.Contact, error) {
	interests := make([]string, 0, len(filter.Interests))
	for _, in := range filter.Interests {
		if in = strings.ToLower(strings.TrimSpace(in)); in != "" {
			interests = append(interests, in)
		}
	}
	filter.Interests = interests
	return s.store.List(ctx, filter)
}

func normalizeContact(c model.Contact) model.Contact {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Name = strings.TrimSpace(c.Name)
	c.University = strings.TrimSpace(c.University)
	c.Course = strings.TrimSpace(c.Course)
	c.Year = strings.TrimSpace(c.Year)

	interests := make([]string, 0, len(c.Interests))
	for _, in := range c.Interests {
		if in = strings.ToLower(strings.TrimSpace(in)); in != "" {
			interests = append(interests, in)
		}
	}
	c.Interests = interests
	return c
}
