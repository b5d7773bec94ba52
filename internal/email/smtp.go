package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	mail "github.com/go-mail/mail"
	"github.com/google/uuid"
)

// SMTPPreset is a well-known SMTP endpoint selected by service name.
type SMTPPreset struct {
	Host string
	Port int
}

var smtpPresets = map[string]SMTPPreset{
	"gmail":      {Host: "smtp.gmail.com", Port: 587},
	"outlook":    {Host: "smtp-mail.outlook.com", Port: 587},
	"hotmail":    {Host: "smtp-mail.outlook.com", Port: 587},
	"brevo":      {Host: "smtp-relay.sendinblue.com", Port: 587},
	"sendinblue": {Host: "smtp-relay.sendinblue.com", Port: 587},
}

// LookupSMTPPreset returns the preset for a service name.
func LookupSMTPPreset(service string) (SMTPPreset, bool) {
	p, ok := smtpPresets[strings.ToLower(service)]
	return p, ok
}

// SMTPConfig holds the configuration for the SMTP sender.
type SMTPConfig struct {
	// Service selects a preset; "custom" or "" uses Host and Port.
	Service  string
	Host     string
	Port     int
	User     string
	Password string
	// TLSMode is "auto" | "starttls" | "ssl" | "none".
	TLSMode            string
	InsecureSkipVerify bool
	// From defaults to User when empty.
	From    Address
	Timeout time.Duration
}

// SMTPSender implements Sender over SMTP using go-mail.
type SMTPSender struct {
	host     string
	port     int
	user     string
	password string
	tlsMode  string
	insecure bool
	from     Address
	timeout  time.Duration
}

// NewSMTPSender creates a new SMTPSender, resolving service presets.
// Explicit Host and Port win over the preset.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	host, port := cfg.Host, cfg.Port
	if preset, ok := LookupSMTPPreset(cfg.Service); ok {
		if host == "" {
			host = preset.Host
		}
		if port == 0 {
			port = preset.Port
		}
	}
	if port == 0 {
		port = 587
	}

	from := cfg.From
	if from.Email == "" {
		from.Email = cfg.User
	}

	tlsMode := strings.ToLower(cfg.TLSMode)
	if tlsMode == "" {
		tlsMode = "auto"
		if port == 465 {
			tlsMode = "ssl"
		}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &SMTPSender{
		host:     host,
		port:     port,
		user:     cfg.User,
		password: cfg.Password,
		tlsMode:  tlsMode,
		insecure: cfg.InsecureSkipVerify,
		from:     from,
		timeout:  timeout,
	}
}

func (s *SMTPSender) Name() string { return "smtp" }

// Configured reports whether a host and credentials are present.
func (s *SMTPSender) Configured() bool {
	return s.host != "" && s.user != "" && s.password != ""
}

func (s *SMTPSender) Features() []string {
	return []string{"transactional", "bulk", "reply-to", "multiple services"}
}

// Host returns the resolved SMTP host and port.
func (s *SMTPSender) Host() (string, int) { return s.host, s.port }

// Send sends msg as multipart/alternative and returns the generated Message-ID.
func (s *SMTPSender) Send(ctx context.Context, msg Message) (string, error) {
	if !s.Configured() {
		return "", ErrNotConfigured
	}
	if err := msg.validate(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), domainOf(s.from.Email, s.host))

	m := mail.NewMessage()
	m.SetHeader("From", s.from.String())
	m.SetHeader("To", msg.To.String())
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", messageID)
	if msg.ReplyTo != nil && msg.ReplyTo.Email != "" {
		m.SetHeader("Reply-To", msg.ReplyTo.String())
	}

	if msg.TextBody != "" {
		m.SetBody("text/plain", msg.TextBody)
	}
	if msg.HTMLBody != "" {
		if msg.TextBody == "" {
			m.SetBody("text/html", msg.HTMLBody)
		} else {
			m.AddAlternative("text/html", msg.HTMLBody)
		}
	}

	if err := s.dialer(ctx).DialAndSend(m); err != nil {
		return "", fmt.Errorf("smtp send: %w", err)
	}
	return messageID, nil
}

// Verify opens and closes an authenticated connection.
func (s *SMTPSender) Verify(ctx context.Context) error {
	if !s.Configured() {
		return ErrNotConfigured
	}
	conn, err := s.dialer(ctx).Dial()
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	return conn.Close()
}

func (s *SMTPSender) dialer(ctx context.Context) *mail.Dialer {
	d := mail.NewDialer(s.host, s.port, s.user, s.password)
	d.TLSConfig = &tls.Config{
		ServerName:         s.host,
		InsecureSkipVerify: s.insecure,
	}
	d.Timeout = s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < d.Timeout {
			d.Timeout = remaining
		}
	}

	switch s.tlsMode {
	case "ssl":
		d.SSL = true
	case "starttls":
		d.StartTLSPolicy = mail.MandatoryStartTLS
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	default:
		d.StartTLSPolicy = mail.OpportunisticStartTLS
	}
	return d
}

func domainOf(address, fallback string) string {
	if at := strings.LastIndex(address, "@"); at >= 0 && at < len(address)-1 {
		return address[at+1:]
	}
	return fallback
}
