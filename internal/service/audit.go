package service

import (
	"context"
	"time"

	"github.com/aaplamahesh/outreach/internal/logger"
	"github.com/aaplamahesh/outreach/internal/model"
)

// AuditStore persists audit entries.
type AuditStore interface {
	Create(ctx context.Context, e *model.AuditEntry) error
	Recent(ctx context.Context, action string, limit int) ([]model.AuditEntry, error)
}

// AuditLog records delivery and admin actions. A nil *AuditLog records nothing.
type AuditLog struct {
	store AuditStore
	now   func() time.Time
	log   *logger.Logger
}

// NewAuditLog creates an AuditLog backed by store
func NewAuditLog(store AuditStore, log *logger.Logger) *AuditLog {
	return &AuditLog{
		store: store,
		now:   time.Now,
		log:   log.WithComponent("audit"),
	}
}

// Record stores e. Failures are logged and never reach the caller; the entry
// is written even if ctx has been cancelled.
func (a *AuditLog) Record(ctx context.Context, e model.AuditEntry) {
	if a == nil {
		return
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = a.now().UTC()
	}
	if err := a.store.Create(context.WithoutCancel(ctx), &e); err != nil {
		a.log.Error().Err(err).Str("action", e.Action).Msg("failed to write audit entry")
	}
}

// Recent returns up to limit entries, newest first, optionally for one action.
func (a *AuditLog) Recent(ctx context.Context, action string, limit int) ([]model.AuditEntry, error) {
	if a == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	limit = min(limit, 500)
	return a.store.Recent(ctx, action, limit)
}
