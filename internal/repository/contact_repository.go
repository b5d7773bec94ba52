package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aaplamahesh/outreach/internal/database"
	"github.com/aaplamahesh/outreach/internal/model"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ContactRepository handles contact persistence in PostgreSQL
type ContactRepository struct {
	db *database.Postgres
}

// NewContactRepository creates a new ContactRepository
func NewContactRepository(db *database.Postgres) *ContactRepository {
	return &ContactRepository{db: db}
}

// Upsert inserts the contact or updates the existing row with the same email.
// c.ID and timestamps are set from the stored row.
func (r *ContactRepository) Upsert(ctx context.Context, c *model.Contact) error {
	if c.Email == "" {
		return ErrInvalidInput
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	query := `
		INSERT INTO contacts (id, email, name, university, course, year, interests, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			university = EXCLUDED.university,
			course = EXCLUDED.course,
			year = EXCLUDED.year,
			interests = EXCLUDED.interests,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		c.ID,
		c.Email,
		c.Name,
		c.University,
		c.Course,
		c.Year,
		pq.Array(c.Interests),
		now,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert contact: %w", err)
	}
	return nil
}

// GetByEmail retrieves a contact by email
func (r *ContactRepository) GetByEmail(ctx context.Context, email string) (*model.Contact, error) {
	query := `
		SELECT id, email, name, university, course, year, interests, created_at, updated_at
		FROM contacts
		WHERE email = $1
	`
	c, err := scanContact(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return c, nil
}

// List returns contacts matching the filter ordered by creation time.
// Interests in the filter must already be lower-cased.
func (r *ContactRepository) List(ctx context.Context, filter model.ContactFilter) ([]model.Contact, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.University != "" {
		add("university ILIKE $%d", "%"+escapeLike(filter.University)+"%")
	}
	if filter.Course != "" {
		add("course ILIKE $%d", "%"+escapeLike(filter.Course)+"%")
	}
	if filter.Year != "" {
		add("year = $%d", filter.Year)
	}
	if len(filter.Interests) > 0 {
		add("interests && $%d", pq.Array(filter.Interests))
	}

	query := `SELECT id, email, name, university, course, year, interests, created_at, updated_at FROM contacts`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, email"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

// Delete removes a contact by email
func (r *ContactRepository) Delete(ctx context.Context, email string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*model.Contact, error) {
	var c model.Contact
	var interests pq.StringArray
	if err := row.Scan(
		&c.ID,
		&c.Email,
		&c.Name,
		&c.University,
		&c.Course,
		&c.Year,
		&interests,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Interests = []string(interests)
	return &c, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
