package router

import (
	"net/http"

	"github.com/aaplamahesh/outreach/internal/auth"
	"github.com/aaplamahesh/outreach/internal/config"
	"github.com/aaplamahesh/outreach/internal/handler"
	"github.com/aaplamahesh/outreach/internal/middleware"
)

// New creates and configures the HTTP router. tokens may be nil, in which
// case admin routes answer 503.
func New(h *handler.Handler, mw *middleware.Middleware, cfg *config.Config, tokens *auth.TokenService) http.Handler {
	mux := http.NewServeMux()
	rl := cfg.Security.RateLimiting

	handle := func(pattern string, h http.Handler) {
		mux.Handle(pattern, mw.Instrument(pattern, h))
	}

	// Ops endpoints
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ready", h.Ready)
	mux.HandleFunc("GET /metrics", h.Metrics)

	// Public site forms (rate limited per IP)
	formRateLimit := mw.RateLimit(middleware.RateLimitConfig{
		Scope:  "form",
		Limit:  rl.FormLimit,
		Window: rl.FormWindow,
	})
	handle("POST /api/v1/forms/contact", formRateLimit(http.HandlerFunc(h.SubmitContact)))
	handle("POST /api/v1/forms/issue", formRateLimit(http.HandlerFunc(h.SubmitIssue)))
	handle("POST /api/v1/forms/join", formRateLimit(http.HandlerFunc(h.SubmitJoin)))
	handle("POST /api/v1/forms/volunteer", formRateLimit(http.HandlerFunc(h.SubmitVolunteer)))
	handle("POST /api/v1/issues/{id}/reports", formRateLimit(http.HandlerFunc(h.SubmitIssueReport)))
	handle("GET /api/v1/issues", http.HandlerFunc(h.ListIssues))

	// Admin login
	loginRateLimit := mw.RateLimit(middleware.RateLimitConfig{
		Scope:  "login",
		Limit:  rl.LoginLimit,
		Window: rl.LoginWindow,
	})
	handle("POST /api/v1/admin/login", loginRateLimit(http.HandlerFunc(h.AdminLogin)))

	// Admin routes (require auth)
	authMw := mw.Auth(tokens)
	adminRateLimit := mw.RateLimit(middleware.RateLimitConfig{
		Scope:  "admin",
		Limit:  rl.AdminLimit,
		Window: rl.AdminWindow,
	})
	admin := func(pattern string, fn http.HandlerFunc) {
		handle(pattern, authMw(adminRateLimit(fn)))
	}

	admin("GET /api/v1/admin/email/status", h.AdminEmailStatus)
	admin("POST /api/v1/admin/email/test", h.AdminTestEmail)

	admin("GET /api/v1/admin/templates", h.AdminListTemplates)
	admin("GET /api/v1/admin/templates/{id}", h.AdminGetTemplate)
	admin("POST /api/v1/admin/templates/{id}/preview", h.AdminPreviewTemplate)

	admin("POST /api/v1/admin/campaigns", h.AdminSendCampaign)
	admin("POST /api/v1/admin/campaigns/template", h.AdminSendTemplateCampaign)
	admin("POST /api/v1/admin/newsletters", h.AdminSendNewsletter)
	admin("POST /api/v1/admin/announcements", h.AdminSendAnnouncement)

	admin("POST /api/v1/admin/contacts/import", h.AdminImportContacts)
	admin("GET /api/v1/admin/contacts", h.AdminListContacts)

	admin("GET /api/v1/admin/audit", h.AdminAudit)

	// Apply middleware stack
	var handler http.Handler = mux

	// CORS (site origins from config)
	handler = mw.CORS(handler)

	// Security headers
	handler = mw.SecurityHeaders(handler)

	// Request logging
	handler = mw.Logger(handler)

	// Timing
	handler = mw.Timing(handler)

	// Request ID
	handler = mw.RequestID(handler)

	// Panic recovery (outermost)
	handler = mw.Recover(handler)

	return handler
}
