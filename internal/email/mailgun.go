package email

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultMailgunBaseURL = "https://api.mailgun.net"

// MailgunConfig holds the configuration for the Mailgun messages API sender.
type MailgunConfig struct {
	APIKey  string
	Domain  string
	BaseURL string
	// From defaults to postmaster@Domain when empty.
	From       Address
	HTTPClient *http.Client
}

// MailgunSender implements Sender using the Mailgun messages API.
type MailgunSender struct {
	apiKey  string
	domain  string
	baseURL string
	from    Address
	client  *http.Client
}

// NewMailgunSender creates a new MailgunSender.
func NewMailgunSender(cfg MailgunConfig) *MailgunSender {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultMailgunBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	from := cfg.From
	if from.Email == "" && cfg.Domain != "" {
		from.Email = "postmaster@" + cfg.Domain
	}
	return &MailgunSender{
		apiKey:  cfg.APIKey,
		domain:  cfg.Domain,
		baseURL: baseURL,
		from:    from,
		client:  client,
	}
}

func (m *MailgunSender) Name() string { return "mailgun" }

// Configured reports whether both an API key and a sending domain are set.
func (m *MailgunSender) Configured() bool { return m.apiKey != "" && m.domain != "" }

func (m *MailgunSender) Features() []string {
	return []string{"transactional", "tags", "reply-to"}
}

type mailgunResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Send posts a form-encoded message to /v3/{domain}/messages.
func (m *MailgunSender) Send(ctx context.Context, msg Message) (string, error) {
	if !m.Configured() {
		return "", ErrNotConfigured
	}
	if err := msg.validate(); err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("from", m.from.String())
	form.Set("to", msg.To.String())
	form.Set("subject", msg.Subject)
	if msg.TextBody != "" {
		form.Set("text", msg.TextBody)
	}
	if msg.HTMLBody != "" {
		form.Set("html", msg.HTMLBody)
	}
	if msg.ReplyTo != nil && msg.ReplyTo.Email != "" {
		form.Set("h:Reply-To", msg.ReplyTo.String())
	}
	for _, tag := range msg.Tags {
		form.Add("o:tag", tag)
	}

	endpoint := fmt.Sprintf("%s/v3/%s/messages", m.baseURL, url.PathEscape(m.domain))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("mailgun: failed to create request: %w", err)
	}
	req.SetBasicAuth("api", m.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("mailgun: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("mailgun: failed to read response: %w", err)
	}

	var out mailgunResponse
	_ = json.Unmarshal(body, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := out.Message
		if detail == "" {
			detail = strings.TrimSpace(string(body))
		}
		return "", &APIError{Provider: "mailgun", StatusCode: resp.StatusCode, Message: detail}
	}

	return out.ID, nil
}

// Verify checks credentials and domain with GET /v3/domains/{domain}.
func (m *MailgunSender) Verify(ctx context.Context) error {
	if !m.Configured() {
		return ErrNotConfigured
	}

	endpoint := fmt.Sprintf("%s/v3/domains/%s", m.baseURL, url.PathEscape(m.domain))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("mailgun: failed to create request: %w", err)
	}
	req.SetBasicAuth("api", m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("mailgun: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return &APIError{Provider: "mailgun", StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return nil
}
