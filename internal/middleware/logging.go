package middleware

import (
	"net/http"
	"time"
)

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Logger logs HTTP requests
func (m *Middleware) Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := newResponseWriter(w)

		next.ServeHTTP(wrapped, r)

		duration := time.Since(GetStartTime(r.Context()))
		m.log.WithRequestID(GetRequestID(r.Context())).
			HTTPRequest(r.Method, r.URL.Path, wrapped.statusCode, duration, m.ClientIP(r))
	})
}

// Instrument records request count and latency for one route. route is the
// mux pattern so path parameters do not explode label cardinality.
func (m *Middleware) Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := newResponseWriter(w)

		next.ServeHTTP(wrapped, r)

		m.metrics.ObserveHTTP(r.Method, route, wrapped.statusCode, time.Since(start))
	})
}
