package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aaplamahesh/outreach/internal/config"
	_ "github.com/lib/pq"
)

// Postgres wraps the SQL database connection
type Postgres struct {
	*sql.DB
}

// NewPostgres opens a PostgreSQL pool and checks it with a ping
func NewPostgres(cfg config.DatabaseConfig) (*Postgres, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(max(cfg.MaxConnections/4, 1))
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{DB: db}, nil
}

// HealthCheck verifies the database connection is healthy
func (p *Postgres) HealthCheck(ctx context.Context) error {
	return p.PingContext(ctx)
}
