package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBrevoBaseURL = "https://api.brevo.com/v3"

// BrevoConfig holds the configuration for the Brevo transactional API sender.
type BrevoConfig struct {
	APIKey     string
	BaseURL    string
	From       Address
	HTTPClient *http.Client
}

// BrevoSender implements Sender using the Brevo (formerly Sendinblue) HTTP API.
type BrevoSender struct {
	apiKey  string
	baseURL string
	from    Address
	client  *http.Client
}

// NewBrevoSender creates a new BrevoSender.
func NewBrevoSender(cfg BrevoConfig) *BrevoSender {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBrevoBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &BrevoSender{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		from:    cfg.From,
		client:  client,
	}
}

func (b *BrevoSender) Name() string { return "brevo" }

// Configured reports whether an API key and a sender address are present.
func (b *BrevoSender) Configured() bool { return b.apiKey != "" && b.from.Email != "" }

func (b *BrevoSender) Features() []string {
	return []string{"transactional", "campaigns", "tags", "reply-to", "delivery tracking"}
}

type brevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoEmailRequest struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	ReplyTo     *brevoAddress  `json:"replyTo,omitempty"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent,omitempty"`
	TextContent string         `json:"textContent,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
}

type brevoEmailResponse struct {
	MessageID string `json:"messageId"`
}

type brevoErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Send sends an email via POST /smtp/email.
func (b *BrevoSender) Send(ctx context.Context, msg Message) (string, error) {
	if !b.Configured() {
		return "", ErrNotConfigured
	}
	if err := msg.validate(); err != nil {
		return "", err
	}

	payload := brevoEmailRequest{
		Sender:      brevoAddress{Email: b.from.Email, Name: b.from.Name},
		To:          []brevoAddress{{Email: msg.To.Email, Name: msg.To.Name}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTMLBody,
		TextContent: msg.TextBody,
		Tags:        msg.Tags,
	}
	if msg.ReplyTo != nil && msg.ReplyTo.Email != "" {
		payload.ReplyTo = &brevoAddress{Email: msg.ReplyTo.Email, Name: msg.ReplyTo.Name}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("brevo: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/smtp/email", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("brevo: failed to create request: %w", err)
	}
	b.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("brevo: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("brevo: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", b.apiError(resp.StatusCode, respBody)
	}

	var out brevoEmailResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("brevo: failed to parse response: %w", err)
	}
	return out.MessageID, nil
}

// Verify checks the API key against GET /account.
func (b *BrevoSender) Verify(ctx context.Context) error {
	if !b.Configured() {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/account", nil)
	if err != nil {
		return fmt.Errorf("brevo: failed to create request: %w", err)
	}
	b.setHeaders(req)

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("brevo: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return b.apiError(resp.StatusCode, body)
	}
	return nil
}

func (b *BrevoSender) setHeaders(req *http.Request) {
	req.Header.Set("api-key", b.apiKey)
	req.Header.Set("Accept", "application/json")
}

func (b *BrevoSender) apiError(status int, body []byte) error {
	var e brevoErrorResponse
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		msg = e.Message
	}
	return &APIError{Provider: "brevo", StatusCode: status, Message: msg}
}
