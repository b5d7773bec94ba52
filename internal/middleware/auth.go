package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/aaplamahesh/outreach/internal/auth"
)

const SubjectKey contextKey = "subject"

// Auth requires a valid admin bearer token. A nil token service rejects every request.
func (m *Middleware) Auth(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokens == nil {
				writeError(w, http.StatusServiceUnavailable, "admin_disabled", "Admin access is not configured")
				return
			}

			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
				return
			}

			claims, err := tokens.Validate(strings.TrimSpace(token))
			if err != nil {
				m.log.Debug().Err(err).Msg("token validation failed")
				writeError(w, http.StatusUnauthorized, "token_expired", "The access token is invalid or expired")
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubject returns the authenticated subject, or "".
func GetSubject(ctx context.Context) string {
	if s, ok := ctx.Value(SubjectKey).(string); ok {
		return s
	}
	return ""
}
