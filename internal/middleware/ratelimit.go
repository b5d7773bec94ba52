package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig holds configuration for a specific rate limit
type RateLimitConfig struct {
	// Scope namespaces the counters, e.g. "form" or "login".
	Scope  string
	Limit  int
	Window time.Duration
	KeyFn  func(*http.Request) string
}

// RateLimit creates a fixed-window rate limiting middleware. Limiter errors let the request through.
func (m *Middleware) RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.limiter == nil || !m.cfg.Security.RateLimiting.Enabled || cfg.Limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			keyFn := cfg.KeyFn
			if keyFn == nil {
				keyFn = m.ClientIP
			}
			key := cfg.Scope + ":" + keyFn(r)

			count, ttl, err := m.limiter.Hit(r.Context(), key, cfg.Window)
			if err != nil {
				m.log.Error().Err(err).Str("scope", cfg.Scope).Msg("failed to increment rate limit counter")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(0, cfg.Limit-int(count))))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))

			if int(count) > cfg.Limit {
				m.metrics.RateLimited(cfg.Scope)
				w.Header().Set("Retry-After", strconv.Itoa(max(1, int(ttl.Round(time.Second).Seconds()))))
				writeError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Too many requests. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the peer address. When the peer is a trusted proxy the
// X-Forwarded-For chain is walked right to left and the first untrusted hop wins.
func (m *Middleware) ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !m.trusted(host) {
		return host
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !m.trusted(hop) {
			return hop
		}
		host = hop
	}
	return host
}
