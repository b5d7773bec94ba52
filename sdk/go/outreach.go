// Package outreach is a Go client for the outreach mail service API.
package outreach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Config holds the configuration for the outreach client.
type Config struct {
	// BaseURL is the root URL of the server.
	// Examples: "https://mail.aaplamahesh.org" or "https://mail.aaplamahesh.org/api/v1"
	// The "/api/v1" suffix is appended automatically if missing.
	BaseURL string

	// Language is sent as Accept-Language when a call does not name one.
	Language string

	// IssuesTTL controls how long the key issue catalogue is cached.
	// Set to a negative value to disable caching.
	// Default: 10 minutes
	IssuesTTL time.Duration

	// HTTPClient is an optional custom HTTP client.
	// If nil, a default client with 30s timeout is used.
	HTTPClient *http.Client
}

func (c *Config) defaults() {
	if c.IssuesTTL == 0 {
		c.IssuesTTL = 10 * time.Minute
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	if !strings.HasSuffix(c.BaseURL, "/api/v1") {
		c.BaseURL = c.BaseURL + "/api/v1"
	}
}

// Client calls the outreach API.
type Client struct {
	cfg Config

	mu       sync.Mutex
	issues   []KeyIssue
	issuesAt time.Time
}

// NewClient creates a new client with the given configuration.
func NewClient(cfg Config) *Client {
	cfg.defaults()
	return &Client{cfg: cfg}
}

// SubmitForm posts a site form. formType is one of FormContact, FormIssue,
// FormJoin or FormVolunteer; payload is the matching form struct or any
// JSON-encodable value. lang selects the auto-reply language; empty uses
// Config.Language.
//
// A submission that was accepted but could not be delivered returns the
// result together with ErrDeliveryFailed.
func (c *Client) SubmitForm(ctx context.Context, formType FormType, payload any, lang string) (*EmailResult, error) {
	if !formType.valid() {
		return nil, fmt.Errorf("outreach: unknown form type %q", formType)
	}
	return c.submit(ctx, "/forms/"+string(formType), payload, lang)
}

// SubmitIssueReport posts a report against one of the key issues.
func (c *Client) SubmitIssueReport(ctx context.Context, issueID string, report IssueReport, lang string) (*EmailResult, error) {
	return c.submit(ctx, "/issues/"+url.PathEscape(issueID)+"/reports", report, lang)
}

func (c *Client) submit(ctx context.Context, path string, payload any, lang string) (*EmailResult, error) {
	status, body, err := c.do(ctx, http.MethodPost, path, payload, "", lang)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusBadGateway {
		return nil, parseAPIError(status, body)
	}

	var result EmailResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("outreach: failed to parse result: %w", err)
	}
	if !result.Success {
		return &result, ErrDeliveryFailed
	}
	return &result, nil
}

// ListIssues returns the key issue catalogue. Results are cached according
// to IssuesTTL.
func (c *Client) ListIssues(ctx context.Context) ([]KeyIssue, error) {
	if c.cfg.IssuesTTL > 0 {
		c.mu.Lock()
		if c.issues != nil && time.Since(c.issuesAt) < c.cfg.IssuesTTL {
			issues := append([]KeyIssue(nil), c.issues...)
			c.mu.Unlock()
			return issues, nil
		}
		c.mu.Unlock()
	}

	var resp struct {
		Issues []KeyIssue `json:"issues"`
	}
	if err := c.getJSON(ctx, "/issues", "", &resp); err != nil {
		return nil, err
	}

	if c.cfg.IssuesTTL > 0 {
		c.mu.Lock()
		c.issues = resp.Issues
		c.issuesAt = time.Now()
		c.mu.Unlock()
	}
	return append([]KeyIssue(nil), resp.Issues...), nil
}

// Login exchanges the admin password for a bearer token.
func (c *Client) Login(ctx context.Context, password string) (*LoginResponse, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/admin/login", map[string]string{"password": password}, "", "")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, parseAPIError(status, body)
	}

	var resp LoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("outreach: failed to parse login response: %w", err)
	}
	return &resp, nil
}

// EmailStatus reports which providers the server can use. token is an admin
// access token.
func (c *Client) EmailStatus(ctx context.Context, token string) (*ProviderStatus, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	var status ProviderStatus
	if err := c.getJSON(ctx, "/admin/email/status", token, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) getJSON(ctx context.Context, path, token string, v any) error {
	status, body, err := c.do(ctx, http.MethodGet, path, nil, token, "")
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return parseAPIError(status, body)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("outreach: failed to parse response: %w", err)
	}
	return nil
}

// do sends a request to the API and returns the status and raw body.
func (c *Client) do(ctx context.Context, method, path string, payload any, token, lang string) (int, []byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("outreach: failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("outreach: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if lang == "" {
		lang = c.cfg.Language
	}
	if lang != "" {
		req.Header.Set("Accept-Language", lang)
	}

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("outreach: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("outreach: failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
