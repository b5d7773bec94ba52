package email

import (
	"errors"
	"net/http"
	"strings"
)

// Diagnosis classifies a delivery error into something an operator can act on.
type Diagnosis struct {
	Code string `json:"code"`
	Hint string `json:"hint"`
}

// Diagnose inspects a provider error. SMTP servers only give us text, so the
// SMTP branch matches on reply codes and well-known phrases.
func Diagnose(err error) Diagnosis {
	if err == nil {
		return Diagnosis{Code: "ok"}
	}
	if errors.Is(err, ErrNotConfigured) {
		return Diagnosis{Code: "not_configured", Hint: "Provider credentials are missing."}
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return Diagnosis{Code: "auth", Hint: "The API key was rejected."}
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return Diagnosis{Code: "rate_limited", Hint: "The provider is throttling requests."}
		case apiErr.StatusCode >= 500:
			return Diagnosis{Code: "provider_unavailable", Hint: "The provider returned a server error."}
		default:
			return Diagnosis{Code: "rejected", Hint: apiErr.Message}
		}
	}

	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "timeout"):
		return Diagnosis{Code: "timeout", Hint: "The server did not answer in time."}
	case strings.Contains(s, "connection refused") || strings.Contains(s, "no such host") || strings.Contains(s, "dial tcp"):
		return Diagnosis{Code: "connection", Hint: "Check host, port and firewall rules."}
	case strings.Contains(s, "x509:") || (strings.Contains(s, "tls") && (strings.Contains(s, "handshake") || strings.Contains(s, "certificate"))):
		return Diagnosis{Code: "tls", Hint: "TLS negotiation failed; check tls_mode and the certificate."}
	case strings.Contains(s, "535") || strings.Contains(s, "5.7.8") || strings.Contains(s, "username and password not accepted") || strings.Contains(s, "authentication failed"):
		return Diagnosis{Code: "auth", Hint: "Credentials were rejected; Gmail needs an app password."}
	case strings.Contains(s, "421") || strings.Contains(s, "451") || strings.Contains(s, "4.7.0") || strings.Contains(s, "try again later"):
		return Diagnosis{Code: "rate_limited", Hint: "The server deferred the message."}
	case strings.Contains(s, "5.1.1") || strings.Contains(s, "user unknown") || strings.Contains(s, "mailbox not found"):
		return Diagnosis{Code: "recipient", Hint: "The recipient mailbox does not exist."}
	case strings.Contains(s, "5.7.1") || strings.Contains(s, "dmarc") || strings.Contains(s, "spf"):
		return Diagnosis{Code: "policy", Hint: "The message was rejected by sender policy (SPF/DMARC)."}
	}
	return Diagnosis{Code: "unknown", Hint: err.Error()}
}
