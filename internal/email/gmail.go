package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailConfig holds the configuration for the Gmail API sender.
// Either CredentialsJSON (service account with domain-wide delegation) or
// ClientID, ClientSecret and RefreshToken must be set.
type GmailConfig struct {
	CredentialsJSON string
	ClientID        string
	ClientSecret    string
	RefreshToken    string
	From            Address
}

// Configured reports whether enough credentials are present to build a sender.
func (c GmailConfig) Configured() bool {
	if c.From.Email == "" {
		return false
	}
	return c.CredentialsJSON != "" || (c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != "")
}

// GmailSender implements Sender using the Gmail API.
type GmailSender struct {
	service *gmail.Service
	from    Address
}

// NewGmailSender builds a GmailSender from whichever credentials are present.
// An unconfigured GmailConfig yields a sender whose Configured is false.
func NewGmailSender(ctx context.Context, cfg GmailConfig) (*GmailSender, error) {
	if !cfg.Configured() {
		return &GmailSender{from: cfg.From}, nil
	}

	var opt option.ClientOption
	if cfg.CredentialsJSON != "" {
		jwtConfig, err := google.JWTConfigFromJSON([]byte(cfg.CredentialsJSON), gmail.GmailSendScope)
		if err != nil {
			return nil, fmt.Errorf("gmail: failed to parse credentials: %w", err)
		}
		// Impersonate the sender mailbox.
		jwtConfig.Subject = cfg.From.Email
		opt = option.WithHTTPClient(jwtConfig.Client(ctx))
	} else {
		oauthCfg := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gmail.GmailSendScope},
		}
		opt = option.WithHTTPClient(oauthCfg.Client(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken}))
	}

	svc, err := gmail.NewService(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("gmail: failed to create service: %w", err)
	}

	return &GmailSender{service: svc, from: cfg.From}, nil
}

func (g *GmailSender) Name() string { return "gmail" }

func (g *GmailSender) Configured() bool { return g.service != nil }

func (g *GmailSender) Features() []string {
	return []string{"transactional", "reply-to"}
}

// Send sends an email via the Gmail API and returns the Gmail message ID.
func (g *GmailSender) Send(ctx context.Context, msg Message) (string, error) {
	if !g.Configured() {
		return "", ErrNotConfigured
	}
	if err := msg.validate(); err != nil {
		return "", err
	}

	raw := buildMIME(g.from, msg)
	out, err := g.service.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gmail: failed to send email: %w", err)
	}
	return out.Id, nil
}

// buildMIME renders msg as an RFC 5322 message for the Gmail raw API.
func buildMIME(from Address, msg Message) string {
	headers := []string{
		"From: " + from.String(),
		"To: " + msg.To.String(),
		"Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject),
		"MIME-Version: 1.0",
	}
	if msg.ReplyTo != nil && msg.ReplyTo.Email != "" {
		headers = append(headers, "Reply-To: "+msg.ReplyTo.String())
	}

	switch {
	case msg.HTMLBody != "" && msg.TextBody != "":
		boundary := "outreach_" + strings.ReplaceAll(uuid.NewString(), "-", "")
		return strings.Join(append(headers,
			"Content-Type: multipart/alternative; boundary="+boundary,
			"",
			"--"+boundary,
			"Content-Type: text/plain; charset=UTF-8",
			"",
			msg.TextBody,
			"",
			"--"+boundary,
			"Content-Type: text/html; charset=UTF-8",
			"",
			msg.HTMLBody,
			"",
			"--"+boundary+"--",
		), "\r\n")
	case msg.HTMLBody != "":
		return strings.Join(append(headers,
			"Content-Type: text/html; charset=UTF-8",
			"",
			msg.HTMLBody,
		), "\r\n")
	default:
		return strings.Join(append(headers,
			"Content-Type: text/plain; charset=UTF-8",
			"",
			msg.TextBody,
		), "\r\n")
	}
}
