package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aaplamahesh/outreach/internal/email"
	"github.com/aaplamahesh/outreach/internal/i18n"
	"github.com/aaplamahesh/outreach/internal/logger"
	"github.com/aaplamahesh/outreach/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type fakeSender struct {
	name       string
	configured bool
	// fail returns the error to report for msg, or nil to accept it.
	fail      func(msg email.Message) error
	verifyErr error

	mu   sync.Mutex
	sent []email.Message
}

func (f *fakeSender) Name() string     { return f.name }
func (f *fakeSender) Configured() bool { return f.configured }

func (f *fakeSender) Send(_ context.Context, msg email.Message) (string, error) {
	if f.fail != nil {
		if err := f.fail(msg); err != nil {
			return "", err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.name + "-id", nil
}

func (f *fakeSender) Verify(context.Context) error { return f.verifyErr }

func (f *fakeSender) messages() []email.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]email.Message(nil), f.sent...)
}

func always(err error) func(email.Message) error {
	return func(email.Message) error { return err }
}

var errBoom = errors.New("boom")

func newDispatch(t *testing.T, cfg DispatchConfig, senders ...email.Sender) *DispatchService {
	t.Helper()
	if cfg.AdminEmail == "" {
		cfg.AdminEmail = "admin@example.org"
	}
	cfg.Branding = email.Branding{Name: "Aapla Mahesh", Tagline: "Student Rights Movement"}

	svc := NewDispatchService(senders, cfg, i18n.MustLoad(), nil, logger.Nop())
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }
	return svc
}

func contactData() model.EmailData {
	return model.EmailData{
		Name:     "Asha",
		Email:    "asha@example.org",
		Subject:  "Hostel fees",
		Message:  "Fees went up again.",
		FormType: model.FormTypeContact,
	}
}

func TestDeliverPicksFirstConfigured(t *testing.T) {
	brevo := &fakeSender{name: "brevo"}
	smtp := &fakeSender{name: "smtp", configured: true}
	svc := newDispatch(t, DispatchConfig{Fallback: ProviderAuto}, brevo, smtp)

	result := svc.SendFormEmail(context.Background(), contactData(), language.English)

	assert.True(t, result.Success)
	assert.Equal(t, MsgSent, result.Message)
	assert.Equal(t, "smtp", result.Provider)
	assert.Equal(t, "smtp-id", result.MessageID)
	assert.Empty(t, brevo.messages())
}

func TestDeliverSkipsBrevoWithoutSender(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	brevo := email.NewBrevoSender(email.BrevoConfig{APIKey: "xkeysib-test", BaseURL: srv.URL})
	smtp := &fakeSender{name: "smtp", configured: true}
	svc := newDispatch(t, DispatchConfig{Fallback: ProviderNone}, brevo, smtp)

	assert.Equal(t, "smtp", svc.ProviderStatus().Active)

	result := svc.SendFormEmail(context.Background(), contactData(), language.English)
	assert.True(t, result.Success)
	assert.Equal(t, "smtp", result.Provider)
	assert.Len(t, smtp.messages(), 1)
	assert.Zero(t, calls)
}

func TestDeliverNamedPrimary(t *testing.T) {
	brevo := &fakeSender{name: "brevo", configured: true}
	smtp := &fakeSender{name: "smtp", configured: true}
	svc := newDispatch(t, DispatchConfig{Primary: "smtp"}, brevo, smtp)

	result := svc.Deliver(context.Background(), email.Message{To: email.Address{Email: "a@b.co"}}, KindTest)
	assert.Equal(t, "smtp", result.Provider)

	// An unconfigured named provider yields to auto selection.
	svc = newDispatch(t, DispatchConfig{Primary: "mailgun"}, brevo, smtp)
	result = svc.Deliver(context.Background(), email.Message{To: email.Address{Email: "a@b.co"}}, KindTest)
	assert.Equal(t, "brevo", result.Provider)
}

func TestDeliverFallsBackOnce(t *testing.T) {
	brevo := &fakeSender{name: "brevo", configured: true, fail: always(errBoom)}
	smtp := &fakeSender{name: "smtp", configured: true}
	mailgun := &fakeSender{name: "mailgun", configured: true}
	svc := newDispatch(t, DispatchConfig{Fallback: ProviderAuto}, brevo, smtp, mailgun)

	result := svc.SendFormEmail(context.Background(), contactData(), language.English)

	assert.True(t, result.Success)
	assert.Equal(t, "Email sent successfully (via fallback provider)", result.Message)
	assert.Equal(t, "smtp", result.Provider)
	assert.Empty(t, mailgun.messages())
}

func TestDeliverAllProvidersFail(t *testing.T) {
	brevo := &fakeSender{name: "brevo", configured: true, fail: always(errBoom)}
	smtp := &fakeSender{name: "smtp", configured: true, fail: always(errBoom)}
	mailgun := &fakeSender{name: "mailgun", configured: true}
	svc := newDispatch(t, DispatchConfig{Fallback: ProviderAuto, AutoReply: true}, brevo, smtp, mailgun)

	result := svc.SendFormEmail(context.Background(), contactData(), language.English)

	assert.False(t, result.Success)
	assert.Equal(t, MsgAllFailed, result.Message)
	assert.Empty(t, mailgun.messages(), "only one fallback hop is allowed")
}

func TestDeliverFallbackDisabled(t *testing.T) {
	brevo := &fakeSender{name: "brevo", configured: true, fail: always(errBoom)}
	smtp := &fakeSender{name: "smtp", configured: true}
	svc := newDispatch(t, DispatchConfig{Fallback: ProviderNone}, brevo, smtp)

	result := svc.SendFormEmail(context.Background(), contactData(), language.English)

	assert.False(t, result.Success)
	assert.Equal(t, MsgAllFailed, result.Message)
	assert.Empty(t, smtp.messages())
}

func TestDeliverFallbackNeverPrimary(t *testing.T) {
	brevo := &fakeSender{name: "brevo", configured: true, fail: always(errBoom)}
	svc := newDispatch(t, DispatchConfig{Fallback: "brevo"}, brevo)

	result := svc.Deliver(context.Background(), email.Message{To: email.Address{Email: "a@b.co"}}, KindTest)
	assert.False(t, result.Success)
}

func TestDeliverNoProvider(t *testing.T) {
	svc := newDispatch(t, DispatchConfig{Fallback: ProviderAuto},
		&fakeSender{name: "brevo"}, &fakeSender{name: "smtp"})

	result := svc.SendFormEmail(context.Background(), contactData(), language.English)

	assert.False(t, result.Success)
	assert.Equal(t, MsgNoProvider, result.Message)
}

func TestAutoReplyFailureDoesNotChangeResult(t *testing.T) {
	d := contactData()
	brevo := &fakeSender{name: "brevo", configured: true, fail: func(msg email.Message) error {
		if msg.To.Email == d.Email {
			return errBoom
		}
		return nil
	}}
	svc := newDispatch(t, DispatchConfig{AutoReply: true}, brevo)

	result := svc.SendFormEmail(context.Background(), d, language.English)

	assert.True(t, result.Success)
	assert.Equal(t, MsgSent, result.Message)
	require.Len(t, brevo.messages(), 1)
	assert.Equal(t, "admin@example.org", brevo.messages()[0].To.Email)
}

func TestAutoReplySentAfterNotification(t *testing.T) {
	brevo := &fakeSender{name: "brevo", configured: true}
	svc := newDispatch(t, DispatchConfig{AutoReply: true}, brevo)

	d := contactData()
	result := svc.SendFormEmail(context.Background(), d, language.Hindi)
	require.True(t, result.Success)

	sent := brevo.messages()
	require.Len(t, sent, 2)

	notification := sent[0]
	assert.Equal(t, "📧 Contact Form: Hostel fees", notification.Subject)
	require.NotNil(t, notification.ReplyTo)
	assert.Equal(t, d.Email, notification.ReplyTo.Email)

	reply := sent[1]
	assert.Equal(t, d.Email, reply.To.Email)
	assert.Contains(t, reply.Subject, "धन्यवाद")
}

func TestAutoReplyDisabled(t *testing.T) {
	brevo := &fakeSender{name: "brevo", configured: true}
	svc := newDispatch(t, DispatchConfig{AutoReply: false}, brevo)

	svc.SendFormEmail(context.Background(), contactData(), language.English)
	assert.Len(t, brevo.messages(), 1)
}

func TestSendAutoReplyFailureMessage(t *testing.T) {
	brevo := &fakeSender{name: "brevo", configured: true, fail: always(errBoom)}
	svc := newDispatch(t, DispatchConfig{}, brevo)

	result := svc.SendAutoReply(context.Background(), contactData(), language.English)
	assert.False(t, result.Success)
	assert.Equal(t, MsgAutoReplyFailed, result.Message)
}

func TestProviderStatus(t *testing.T) {
	svc := newDispatch(t, DispatchConfig{Fallback: ProviderAuto, AutoReply: true},
		&fakeSender{name: "brevo"},
		&fakeSender{name: "smtp", configured: true},
		&fakeSender{name: "mailgun", configured: true},
	)

	status := svc.ProviderStatus()
	assert.Equal(t, "smtp", status.Active)
	assert.Equal(t, "mailgun", status.Fallback)
	assert.True(t, status.AutoReply)
	require.Len(t, status.Providers, 3)
	assert.False(t, status.Providers[0].Configured)
}

func TestTestProviders(t *testing.T) {
	brevo := &fakeSender{name: "brevo", configured: true, verifyErr: &email.APIError{Provider: "brevo", StatusCode: 401, Message: "Key not found"}}
	smtp := &fakeSender{name: "smtp", configured: true}
	mailgun := &fakeSender{name: "mailgun"}
	svc := newDispatch(t, DispatchConfig{}, brevo, smtp, mailgun)

	results := svc.TestProviders(context.Background(), "ops@example.org")
	require.Len(t, results, 3)

	assert.False(t, results["brevo"].Success)
	assert.Contains(t, results["brevo"].Message, "API key was rejected")
	assert.Empty(t, brevo.messages())

	assert.True(t, results["smtp"].Success)
	require.Len(t, smtp.messages(), 1)
	assert.Equal(t, "ops@example.org", smtp.messages()[0].To.Email)

	assert.Equal(t, MsgNotConfigured, results["mailgun"].Message)
}
