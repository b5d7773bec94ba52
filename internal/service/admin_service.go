package service

import (
	"context"
	"errors"
	"time"

	"github.com/aaplamahesh/outreach/internal/auth"
	"github.com/aaplamahesh/outreach/internal/logger"
	"github.com/aaplamahesh/outreach/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid password")
	ErrAdminDisabled      = errors.New("admin access is not configured")
)

// AdminSubject is the token subject for the single admin account.
const AdminSubject = "admin"

// AdminService authenticates the site administrator.
type AdminService struct {
	passwordHash string
	tokens       *auth.TokenService
	audit        *AuditLog
	log          *logger.Logger
}

// NewAdminService creates an AdminService. tokens may be nil when no token
// secret is configured, which disables login.
func NewAdminService(passwordHash string, tokens *auth.TokenService, log *logger.Logger) *AdminService {
	return &AdminService{
		passwordHash: passwordHash,
		tokens:       tokens,
		log:          log.WithComponent("admin_service"),
	}
}

// WithAudit records login attempts in a.
func (s *AdminService) WithAudit(a *AuditLog) *AdminService {
	s.audit = a
	return s
}

// Enabled reports whether admin login is possible.
func (s *AdminService) Enabled() bool {
	return s.passwordHash != "" && s.tokens != nil
}

// Login checks the admin password and returns an access token.
func (s *AdminService) Login(password string) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, ErrAdminDisabled
	}

	ok, err := auth.VerifyPassword(password, s.passwordHash)
	if err != nil {
		s.log.Error().Err(err).Msg("admin password hash is unreadable")
		return "", time.Time{}, ErrAdminDisabled
	}
	if !ok {
		s.log.Warn().Msg("admin login failed")
		s.audit.Record(context.Background(), model.AuditEntry{Action: model.AuditAdminLoginFailed})
		return "", time.Time{}, ErrInvalidCredentials
	}

	token, expires, err := s.tokens.Issue(AdminSubject)
	if err != nil {
		return "", time.Time{}, err
	}
	s.log.Info().Time("expires_at", expires).Msg("admin logged in")
	s.audit.Record(context.Background(), model.AuditEntry{Action: model.AuditAdminLogin, Success: true})
	return token, expires, nil
}
