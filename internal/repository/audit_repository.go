package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aaplamahesh/outreach/internal/database"
	"github.com/aaplamahesh/outreach/internal/model"
	"github.com/google/uuid"
)

// AuditRepository handles audit log persistence
type AuditRepository struct {
	db *database.Postgres
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *database.Postgres) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create inserts a new audit log entry
func (r *AuditRepository) Create(ctx context.Context, e *model.AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	metadataJSON, err := json.Marshal(e.Metadata)
	if err != nil || e.Metadata == nil {
		metadataJSON = []byte("{}")
	}

	query := `
		INSERT INTO audit_log (id, action, resource, provider, success, recipients, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		e.ID,
		e.Action,
		e.Resource,
		e.Provider,
		e.Success,
		e.Recipients,
		metadataJSON,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. An empty action matches all.
func (r *AuditRepository) Recent(ctx context.Context, action string, limit int) ([]model.AuditEntry, error) {
	query := `
		SELECT id, action, resource, provider, success, recipients, metadata, created_at
		FROM audit_log
		WHERE ($1 = '' OR action = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, action, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log: %w", err)
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		var metadata []byte
		if err := rows.Scan(&e.ID, &e.Action, &e.Resource, &e.Provider, &e.Success, &e.Recipients, &metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if len(metadata) > 0 {
			_ = json.Unmarshal(metadata, &e.Metadata)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MemoryAuditRepository keeps the most recent audit entries in a ring.
type MemoryAuditRepository struct {
	mu      sync.Mutex
	entries []model.AuditEntry
	next    int
	full    bool
}

// NewMemoryAuditRepository keeps up to size entries
func NewMemoryAuditRepository(size int) *MemoryAuditRepository {
	return &MemoryAuditRepository{entries: make([]model.AuditEntry, max(size, 1))}
}

// Create stores e, evicting the oldest entry when the ring is full
func (r *MemoryAuditRepository) Create(_ context.Context, e *model.AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[r.next] = *e
	r.next = (r.next + 1) % len(r.entries)
	if r.next == 0 {
		r.full = true
	}
	return nil
}

// Recent returns up to limit entries, newest first
func (r *MemoryAuditRepository) Recent(_ context.Context, action string, limit int) ([]model.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.next
	if r.full {
		n = len(r.entries)
	}

	var out []model.AuditEntry
	for i := 1; i <= n && len(out) < limit; i++ {
		e := r.entries[(r.next-i+len(r.entries))%len(r.entries)]
		if action == "" || e.Action == action {
			out = append(out, e)
		}
	}
	return out, nil
}
