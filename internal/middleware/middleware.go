package middleware

import (
	"encoding/json"
	"net/http"
	"net/netip"
	"strings"

	"github.com/aaplamahesh/outreach/internal/config"
	"github.com/aaplamahesh/outreach/internal/logger"
	"github.com/aaplamahesh/outreach/internal/metrics"
)

// Middleware holds all HTTP middleware
type Middleware struct {
	limiter Limiter
	log     *logger.Logger
	cfg     *config.Config
	metrics *metrics.Metrics
	proxies []netip.Prefix
}

// New creates a new Middleware instance. limiter may be nil when rate limiting is disabled.
func New(limiter Limiter, log *logger.Logger, cfg *config.Config, m *metrics.Metrics) *Middleware {
	return &Middleware{
		limiter: limiter,
		log:     log,
		cfg:     cfg,
		metrics: m,
		proxies: parseProxies(cfg.Security.TrustedProxies, log),
	}
}

// parseProxies accepts bare addresses and CIDR ranges. Invalid entries are skipped.
func parseProxies(entries []string, log *logger.Logger) []netip.Prefix {
	var prefixes []netip.Prefix
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				log.Warn().Str("proxy", entry).Msg("ignoring invalid trusted proxy")
				continue
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			log.Warn().Str("proxy", entry).Msg("ignoring invalid trusted proxy")
			continue
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes
}

func (m *Middleware) trusted(host string) bool {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range m.proxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
