package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aaplamahesh/outreach/internal/email"
	"github.com/aaplamahesh/outreach/internal/i18n"
	"github.com/aaplamahesh/outreach/internal/logger"
	"github.com/aaplamahesh/outreach/internal/metrics"
	"github.com/aaplamahesh/outreach/internal/model"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

// Provider selection keywords.
const (
	ProviderAuto = "auto"
	ProviderNone = "none"
)

// Result messages shown to callers.
const (
	MsgSent            = "Email sent successfully"
	MsgViaFallback     = " (via fallback provider)"
	MsgAllFailed       = "Failed to send email via all available providers"
	MsgNoProvider      = "No email provider is configured"
	MsgNotConfigured   = "Provider is not configured"
	MsgAutoReplyFailed = "Failed to send auto-reply email"
)

// Delivery kinds, used for logs and metrics.
const (
	KindNotification = "notification"
	KindAutoReply    = "autoreply"
	KindCampaign     = "campaign"
	KindTest         = "test"
)

// DispatchConfig controls provider selection and the messages the dispatcher renders.
type DispatchConfig struct {
	// Primary is "auto" or a provider name. An unconfigured named provider
	// falls back to auto selection.
	Primary string
	// Fallback is "auto", "none" or a provider name.
	Fallback   string
	AutoReply  bool
	AdminEmail string
	Branding   email.Branding
}

// DispatchService delivers mail through an ordered list of candidate providers.
// It holds no mutable state and is safe for concurrent use.
type DispatchService struct {
	candidates []email.Sender
	cfg        DispatchConfig
	bundle     *i18n.Bundle
	metrics    *metrics.Metrics
	now        func() time.Time
	log        *logger.Logger
}

// NewDispatchService creates a DispatchService. Candidate order is the auto-selection order.
func NewDispatchService(
	candidates []email.Sender,
	cfg DispatchConfig,
	bundle *i18n.Bundle,
	m *metrics.Metrics,
	log *logger.Logger,
) *DispatchService {
	if cfg.Primary == "" {
		cfg.Primary = ProviderAuto
	}
	return &DispatchService{
		candidates: candidates,
		cfg:        cfg,
		bundle:     bundle,
		metrics:    m,
		now:        time.Now,
		log:        log.WithComponent("dispatch_service"),
	}
}

func (s *DispatchService) find(name string) email.Sender {
	for _, c := range s.candidates {
		if strings.EqualFold(c.Name(), name) {
			return c
		}
	}
	return nil
}

func (s *DispatchService) firstConfigured(skip string) email.Sender {
	for _, c := range s.candidates {
		if c.Name() != skip && c.Configured() {
			return c
		}
	}
	return nil
}

// primary returns the provider used for the first attempt, or nil.
func (s *DispatchService) primary() email.Sender {
	if !strings.EqualFold(s.cfg.Primary, ProviderAuto) {
		if c := s.find(s.cfg.Primary); c != nil && c.Configured() {
			return c
		}
	}
	return s.firstConfigured("")
}

// fallback returns the provider for the single retry, or nil. It is never the primary.
func (s *DispatchService) fallback(primary email.Sender) email.Sender {
	if primary == nil {
		return nil
	}
	switch strings.ToLower(s.cfg.Fallback) {
	case "", ProviderNone:
		return nil
	case ProviderAuto:
		return s.firstConfigured(primary.Name())
	}
	c := s.find(s.cfg.Fallback)
	if c == nil || !c.Configured() || c.Name() == primary.Name() {
		return nil
	}
	return c
}

func (s *DispatchService) sendVia(ctx context.Context, p email.Sender, msg email.Message, kind string) (string, error) {
	id, err := p.Send(ctx, msg)
	s.log.Delivery(p.Name(), kind, msg.To.Email, id, err)
	s.metrics.EmailSent(p.Name(), kind, err == nil)
	return id, err
}

// Deliver sends msg through the primary provider and, if that fails, once
// through the fallback. It never returns an error; failures are reported in the result.
func (s *DispatchService) Deliver(ctx context.Context, msg email.Message, kind string) model.EmailResult {
	primary := s.primary()
	if primary == nil {
		s.log.Warn().Str("kind", kind).Msg("no email provider configured")
		return model.EmailResult{Success: false, Message: MsgNoProvider}
	}

	id, err := s.sendVia(ctx, primary, msg, kind)
	if err == nil {
		return model.EmailResult{Success: true, Message: MsgSent, MessageID: id, Provider: primary.Name()}
	}

	fb := s.fallback(primary)
	if fb == nil {
		return model.EmailResult{Success: false, Message: MsgAllFailed}
	}

	s.log.Info().
		Str("primary", primary.Name()).
		Str("fallback", fb.Name()).
		Msg("primary provider failed, trying fallback")

	id, err = s.sendVia(ctx, fb, msg, kind)
	s.metrics.Fallback(primary.Name(), fb.Name(), err == nil)
	if err != nil {
		return model.EmailResult{Success: false, Message: MsgAllFailed}
	}
	return model.EmailResult{Success: true, Message: MsgSent + MsgViaFallback, MessageID: id, Provider: fb.Name()}
}

// SendFormEmail delivers the admin notification for a form submission and,
// when enabled, a confirmation to the submitter in lang. The confirmation
// never affects the returned result.
func (s *DispatchService) SendFormEmail(ctx context.Context, d model.EmailData, lang language.Tag) model.EmailResult {
	content := email.FormNotification(s.cfg.Branding, d)
	msg := email.Message{
		To:       email.Address{Email: s.cfg.AdminEmail, Name: s.cfg.Branding.Name},
		ReplyTo:  &email.Address{Email: d.Email, Name: d.Name},
		Subject:  content.Subject,
		HTMLBody: content.HTML,
		TextBody: content.Text,
		Tags:     []string{"form", string(d.FormType)},
	}

	result := s.Deliver(ctx, msg, KindNotification)
	if result.Success && s.cfg.AutoReply {
		if reply := s.SendAutoReply(ctx, d, lang); !reply.Success {
			s.log.Warn().
				Str("form_type", string(d.FormType)).
				Str("reason", reply.Message).
				Msg("auto-reply not delivered")
		}
	}
	return result
}

// SendAutoReply sends the localized confirmation for d to the submitter.
func (s *DispatchService) SendAutoReply(ctx context.Context, d model.EmailData, lang language.Tag) model.EmailResult {
	content := email.AutoReply(s.cfg.Branding, d, s.bundle.Printer(lang), s.now())
	msg := email.Message{
		To:       email.Address{Email: d.Email, Name: d.Name},
		Subject:  content.Subject,
		HTMLBody: content.HTML,
		TextBody: content.Text,
		Tags:     []string{"autoreply", string(d.FormType)},
	}

	result := s.Deliver(ctx, msg, KindAutoReply)
	if !result.Success && result.Message == MsgAllFailed {
		result.Message = MsgAutoReplyFailed
	}
	return result
}

// ProviderStatus reports every candidate and the current primary/fallback choice.
func (s *DispatchService) ProviderStatus() model.ProviderStatus {
	status := model.ProviderStatus{
		Providers: make([]model.ProviderInfo, 0, len(s.candidates)),
		AutoReply: s.cfg.AutoReply,
	}
	for _, c := range s.candidates {
		status.Providers = append(status.Providers, model.ProviderInfo{
			Name:       c.Name(),
			Configured: c.Configured(),
			Features:   email.FeaturesOf(c),
		})
	}

	p := s.primary()
	if p != nil {
		status.Active = p.Name()
	}
	if fb := s.fallback(p); fb != nil {
		status.Fallback = fb.Name()
	}
	return status
}

// TestProviders checks every candidate concurrently: a connection check where
// the provider supports one, then a test message to `to` (the admin address
// when empty). Providers are tested directly, without fallback.
func (s *DispatchService) TestProviders(ctx context.Context, to string) map[string]model.EmailResult {
	if to == "" {
		to = s.cfg.AdminEmail
	}

	var (
		mu      sync.Mutex
		results = make(map[string]model.EmailResult, len(s.candidates))
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range s.candidates {
		g.Go(func() error {
			r := s.testProvider(gctx, c, to)
			mu.Lock()
			results[c.Name()] = r
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *DispatchService) testProvider(ctx context.Context, p email.Sender, to string) model.EmailResult {
	if !p.Configured() {
		return model.EmailResult{Success: false, Message: MsgNotConfigured, Provider: p.Name()}
	}

	if v, ok := p.(email.Verifier); ok {
		if err := v.Verify(ctx); err != nil {
			d := email.Diagnose(err)
			s.log.Warn().Err(err).Str("provider", p.Name()).Str("diagnosis", d.Code).Msg("connection check failed")
			return model.EmailResult{
				Success:  false,
				Message:  fmt.Sprintf("Connection check failed: %s", d.Hint),
				Provider: p.Name(),
			}
		}
	}

	content := email.TestMessage(s.cfg.Branding, p.Name(), s.now())
	id, err := s.sendVia(ctx, p, email.Message{
		To:       email.Address{Email: to},
		Subject:  content.Subject,
		HTMLBody: content.HTML,
		TextBody: content.Text,
		Tags:     []string{"test"},
	}, KindTest)
	if err != nil {
		return model.EmailResult{
			Success:  false,
			Message:  fmt.Sprintf("Test email failed: %s", email.Diagnose(err).Hint),
			Provider: p.Name(),
		}
	}
	return model.EmailResult{Success: true, Message: "Test email sent successfully", MessageID: id, Provider: p.Name()}
}

// SendTestEmail sends the test message through the normal primary/fallback path.
func (s *DispatchService) SendTestEmail(ctx context.Context, to string) model.EmailResult {
	if to == "" {
		to = s.cfg.AdminEmail
	}
	name := ""
	if p := s.primary(); p != nil {
		name = p.Name()
	}
	content := email.TestMessage(s.cfg.Branding, name, s.now())
	return s.Deliver(ctx, email.Message{
		To:       email.Address{Email: to},
		Subject:  content.Subject,
		HTMLBody: content.HTML,
		TextBody: content.Text,
		Tags:     []string{"test"},
	}, KindTest)
}
