package middleware

import (
	"net/http"
	"slices"
	"strings"
)

const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization, Accept-Language, X-Request-ID"
	corsMaxAge       = "600"
)

// CORS allows the configured site origins. "*" allows any origin.
// Preflight requests are answered here and never reach the handler.
func (m *Middleware) CORS(next http.Handler) http.Handler {
	allowed := m.cfg.CORS.AllowedOrigins
	allowAny := slices.Contains(allowed, "*")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Add("Vary", "Origin")
		ok := allowAny || slices.ContainsFunc(allowed, func(o string) bool {
			return strings.EqualFold(strings.TrimRight(o, "/"), origin)
		})

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if !ok {
				writeError(w, http.StatusForbidden, "origin_not_allowed", "Origin is not allowed")
				return
			}
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Max-Age", corsMaxAge)
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, X-RateLimit-Remaining, Retry-After")
		}
		next.ServeHTTP(w, r)
	})
}
