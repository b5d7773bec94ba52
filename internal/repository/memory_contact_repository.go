package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/aaplamahesh/outreach/internal/model"
	"github.com/google/uuid"
)

// MemoryContactRepository keeps contacts in process memory. It is used when
// no database is configured and in tests.
type MemoryContactRepository struct {
	mu       sync.RWMutex
	contacts map[string]model.Contact
	now      func() time.Time
}

// NewMemoryContactRepository creates an empty in-memory contact store
func NewMemoryContactRepository() *MemoryContactRepository {
	return &MemoryContactRepository{
		contacts: make(map[string]model.Contact),
		now:      time.Now,
	}
}

// Upsert inserts the contact or replaces the one with the same email
func (r *MemoryContactRepository) Upsert(_ context.Context, c *model.Contact) error {
	if c.Email == "" {
		return ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	if existing, ok := r.contacts[c.Email]; ok {
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
	} else {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	stored := *c
	stored.Interests = slices.Clone(c.Interests)
	r.contacts[c.Email] = stored
	return nil
}

// GetByEmail retrieves a contact by email
func (r *MemoryContactRepository) GetByEmail(_ context.Context, email string) (*model.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.contacts[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

// List returns contacts matching the filter ordered by creation time
func (r *MemoryContactRepository) List(_ context.Context, filter model.ContactFilter) ([]model.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Contact
	for _, c := range r.contacts {
		if filter.Matches(c) {
			c.Interests = slices.Clone(c.Interests)
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Email < out[j].Email
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes a contact by email
func (r *MemoryContactRepository) Delete(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.contacts[email]; !ok {
		return ErrNotFound
	}
	delete(r.contacts, email)
	return nil
}
