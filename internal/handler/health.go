package handler

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// Version is reported by the health endpoint. Overridden at build time.
var Version = "0.1.0"

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
	Providers []string          `json:"providers"`
}

const checkTimeout = 2 * time.Second

// Health returns the health status of the service
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	services := make(map[string]string, len(h.checks))
	status := "healthy"
	for name, c := range h.checks {
		if err := c.HealthCheck(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("health check failed")
			services[name] = "unhealthy"
			status = "degraded"
			continue
		}
		services[name] = "healthy"
	}

	var providers []string
	if h.dispatch != nil {
		for _, p := range h.dispatch.ProviderStatus().Providers {
			if p.Configured {
				providers = append(providers, p.Name)
			}
		}
	}
	if len(providers) == 0 {
		status = "degraded"
	}
	sort.Strings(providers)

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:    status,
		Version:   Version,
		Services:  services,
		Providers: providers,
	})
}

// Ready returns whether the service is ready to accept requests
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	for name, c := range h.checks {
		if err := c.HealthCheck(ctx); err != nil {
			http.Error(w, name+" not ready", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Metrics serves the Prometheus registry.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.Handler().ServeHTTP(w, r)
}
