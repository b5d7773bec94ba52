package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aaplamahesh/outreach/internal/i18n"
	"github.com/aaplamahesh/outreach/internal/logger"
	"github.com/aaplamahesh/outreach/internal/metrics"
	"github.com/aaplamahesh/outreach/internal/middleware"
	"github.com/aaplamahesh/outreach/internal/service"
)

// Checker is a dependency that can report its health, such as Postgres or Redis.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// Services groups the application services the handlers call into.
type Services struct {
	Forms     *service.FormService
	Dispatch  *service.DispatchService
	Campaigns *service.CampaignService
	Contacts  *service.ContactService
	Admin     *service.AdminService
	Audit     *service.AuditLog
}

// Handler holds all HTTP handlers
type Handler struct {
	forms     *service.FormService
	dispatch  *service.DispatchService
	campaigns *service.CampaignService
	contacts  *service.ContactService
	admin     *service.AdminService
	audit     *service.AuditLog
	bundle    *i18n.Bundle
	metrics   *metrics.Metrics
	checks    map[string]Checker
	log       *logger.Logger
}

// New creates a new Handler instance. checks names the optional backing
// stores checked by /health and /ready; nil entries are skipped.
func New(svc Services, bundle *i18n.Bundle, m *metrics.Metrics, checks map[string]Checker, log *logger.Logger) *Handler {
	enabled := make(map[string]Checker, len(checks))
	for name, c := range checks {
		if c != nil {
			enabled[name] = c
		}
	}
	return &Handler{
		forms:     svc.Forms,
		dispatch:  svc.Dispatch,
		campaigns: svc.Campaigns,
		contacts:  svc.Contacts,
		admin:     svc.Admin,
		audit:     svc.Audit,
		bundle:    bundle,
		metrics:   m,
		checks:    enabled,
		log:       log.WithComponent("handler"),
	}
}

// JSON helper functions

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

func writeErrorWithDetails(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	body := map[string]any{
		"code":    code,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	if reqID := middleware.GetRequestID(r.Context()); reqID != "" {
		body["request_id"] = reqID
	}
	writeJSON(w, status, map[string]any{"error": body})
}

func readJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

const maxBodyBytes = 1 << 20

// badRequest answers a body that could not be decoded.
func badRequest(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body: "+err.Error())
}
