package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aaplamahesh/outreach/internal/campaign"
	"github.com/aaplamahesh/outreach/internal/email"
	"github.com/aaplamahesh/outreach/internal/logger"
	"github.com/aaplamahesh/outreach/internal/model"
	"github.com/aaplamahesh/outreach/internal/repository"
	"github.com/aaplamahesh/outreach/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeliverer struct {
	failFor map[string]bool
	sent    []email.Message
}

func (f *fakeDeliverer) Deliver(_ context.Context, msg email.Message, _ string) model.EmailResult {
	if f.failFor[msg.To.Email] {
		return model.EmailResult{Success: false, Message: MsgAllFailed}
	}
	f.sent = append(f.sent, msg)
	return model.EmailResult{Success: true, Message: MsgSent, MessageID: "m-" + msg.To.Email, Provider: "brevo"}
}

func newCampaignService(t *testing.T, d Deliverer, contacts ContactLister) *CampaignService {
	t.Helper()
	reg, err := campaign.DefaultRegistry()
	require.NoError(t, err)
	return NewCampaignService(d, reg, contacts, email.Branding{Name: "Aapla Mahesh"}, nil, logger.Nop())
}

func TestSendCampaignSequentialResults(t *testing.T) {
	d := &fakeDeliverer{failFor: map[string]bool{"b@example.org": true}}
	svc := newCampaignService(t, d, nil)

	result, err := svc.SendCampaign(context.Background(), model.CampaignData{
		Name:        "Test",
		Subject:     "Hello",
		HTMLContent: "<p>Hello</p>",
		Recipients: []model.Recipient{
			{Email: "a@example.org"},
			{Email: "b@example.org"},
			{Email: "A@example.org"},
			{Email: "c@example.org"},
		},
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "Campaign sent to 2/3 recipients", result.Message)
	assert.NotEmpty(t, result.CampaignID)
	require.Len(t, result.Results, 3)
	assert.Equal(t, "a@example.org", result.Results[0].Email)
	assert.False(t, result.Results[1].Success)
	assert.Equal(t, MsgAllFailed, result.Results[1].Error)
	assert.Equal(t, []string{"a@example.org", "c@example.org"}, []string{d.sent[0].To.Email, d.sent[1].To.Email})
}

func TestSendCampaignAllFail(t *testing.T) {
	d := &fakeDeliverer{failFor: map[string]bool{"a@example.org": true}}
	svc := newCampaignService(t, d, nil)

	result, err := svc.SendCampaign(context.Background(), model.CampaignData{
		Subject:    "Hello",
		Recipients: []model.Recipient{{Email: "a@example.org"}, {Email: "not-an-email"}},
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "Campaign sent to 0/2 recipients", result.Message)
	assert.Equal(t, "invalid email address", result.Results[1].Error)
}

func TestSendCampaignNoRecipients(t *testing.T) {
	svc := newCampaignService(t, &fakeDeliverer{}, nil)

	result, err := svc.SendCampaign(context.Background(), model.CampaignData{Subject: "Hello"})
	assert.ErrorIs(t, err, ErrNoRecipients)
	assert.False(t, result.Success)
	assert.Equal(t, "No recipients provided", result.Message)
}

func TestCreateFromTemplate(t *testing.T) {
	d := &fakeDeliverer{}
	svc := newCampaignService(t, d, nil)

	result, err := svc.CreateFromTemplate(context.Background(), TemplateCampaign{
		TemplateID: "welcome_newsletter",
		Variables:  map[string]string{"website_url": "https://aaplamahesh.org"},
		Audience: Audience{Recipients: []model.Recipient{
			{Email: "asha@example.org", Name: "Asha"},
			{Email: "anon@example.org"},
		}},
	})
	require.NoError(t, err)

	require.True(t, result.Success)
	require.Len(t, d.sent, 2)
	assert.Equal(t, "Welcome to Aapla Mahesh - Student Rights Movement", d.sent[0].Subject)
	assert.Contains(t, d.sent[0].HTMLBody, "Dear Asha,")
	assert.Contains(t, d.sent[0].HTMLBody, `href="https://aaplamahesh.org"`)
	assert.Contains(t, d.sent[1].HTMLBody, "Dear {{name}},")
	assert.NotContains(t, d.sent[0].TextBody, "<div")
}

func TestCreateFromTemplateSubjectOverride(t *testing.T) {
	d := &fakeDeliverer{}
	svc := newCampaignService(t, d, nil)

	result, err := svc.CreateFromTemplate(context.Background(), TemplateCampaign{
		TemplateID: "issue_alert",
		Subject:    "Custom subject",
		Audience:   Audience{Recipients: []model.Recipient{{Email: "asha@example.org"}}},
	})
	require.NoError(t, err)

	require.True(t, result.Success)
	assert.Equal(t, "Custom subject", d.sent[0].Subject)
	assert.Contains(t, d.sent[0].HTMLBody, "{{issue_title}}")
}

func TestCreateFromTemplateNotFound(t *testing.T) {
	svc := newCampaignService(t, &fakeDeliverer{}, nil)

	result, err := svc.CreateFromTemplate(context.Background(), TemplateCampaign{TemplateID: "nope"})
	assert.ErrorIs(t, err, campaign.ErrTemplateNotFound)
	assert.False(t, result.Success)
	assert.Equal(t, "Template 'nope' not found", result.Message)
}

func TestQuickAnnouncementUrgent(t *testing.T) {
	d := &fakeDeliverer{}
	svc := newCampaignService(t, d, nil)

	result, err := svc.SendQuickAnnouncement(context.Background(), QuickAnnouncement{
		Subject:   "Protest moved",
		Message:   "Meet at the main gate.\nBring ID.",
		Urgent:    true,
		ActionURL: "https://aaplamahesh.org/events",
		Audience:  Audience{Recipients: []model.Recipient{{Email: "asha@example.org"}}},
	})
	require.NoError(t, err)

	require.True(t, result.Success)
	assert.Equal(t, "🚨 URGENT: Protest moved", d.sent[0].Subject)
	assert.Contains(t, d.sent[0].HTMLBody, "https://aaplamahesh.org/events")
	assert.Contains(t, d.sent[0].HTMLBody, "Meet at the main gate.<br>Bring ID.")
}

func TestNewsletterToFilteredContacts(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryContactRepository()
	contacts := NewContactService(repo, validator.New(), logger.Nop())

	imported, err := contacts.Import(ctx, []model.Contact{
		{Email: "a@example.org", Name: "A", Interests: []string{"Library"}},
		{Email: "b@example.org", Name: "B", Interests: []string{"hostel"}},
		{Email: "broken"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, imported.Imported)
	assert.Equal(t, 1, imported.Skipped)
	assert.Contains(t, imported.Errors, "2")

	d := &fakeDeliverer{}
	svc := newCampaignService(t, d, contacts)

	result, err := svc.SendNewsletter(ctx, Newsletter{
		Subject:  "Library hours",
		HTML:     "<p>The library now opens at 8am.</p>",
		Audience: Audience{Filter: &model.ContactFilter{Interests: []string{"LIBRARY"}}},
	})
	require.NoError(t, err)

	require.True(t, result.Success)
	assert.Equal(t, "Campaign sent to 1/1 recipients", result.Message)
	assert.Equal(t, "a@example.org", d.sent[0].To.Email)
	assert.Contains(t, d.sent[0].HTMLBody, "The library now opens at 8am.")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(d.sent[0].TextBody), "The library"))
}

func TestFilterAudienceWithoutContactStore(t *testing.T) {
	svc := newCampaignService(t, &fakeDeliverer{}, nil)

	result, err := svc.SendNewsletter(context.Background(), Newsletter{
		Subject:  "x",
		HTML:     "<p>x</p>",
		Audience: Audience{Filter: &model.ContactFilter{}},
	})
	assert.ErrorIs(t, err, ErrContactsUnavailable)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "contact storage is not available")
}

type failingContacts struct{}

func (failingContacts) List(context.Context, model.ContactFilter) ([]model.Contact, error) {
	return nil, errors.New("connection reset")
}

func TestFilterAudienceStoreFailure(t *testing.T) {
	d := &fakeDeliverer{}
	svc := newCampaignService(t, d, failingContacts{})

	result, err := svc.SendQuickAnnouncement(context.Background(), QuickAnnouncement{
		Subject:  "x",
		Message:  "x",
		Audience: Audience{Filter: &model.ContactFilter{}},
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoRecipients)
	assert.False(t, result.Success)
	assert.Empty(t, d.sent)
}

func TestAudienceMergesRecipientsAndFilter(t *testing.T) {
	ctx := context.Background()
	contacts := NewContactService(repository.NewMemoryContactRepository(), validator.New(), logger.Nop())
	_, err := contacts.Import(ctx, []model.Contact{
		{Email: "a@example.org", Interests: []string{"library"}},
		{Email: "b@example.org", Interests: []string{"library"}},
		{Email: "c@example.org", Interests: []string{"hostel"}},
	})
	require.NoError(t, err)

	d := &fakeDeliverer{}
	svc := newCampaignService(t, d, contacts)

	result, err := svc.SendQuickAnnouncement(ctx, QuickAnnouncement{
		Subject: "Library hours",
		Message: "Open at 8am.",
		Audience: Audience{
			Recipients: []model.Recipient{{Email: "guest@example.org"}, {Email: "B@example.org"}},
			Filter:     &model.ContactFilter{Interests: []string{"library"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Campaign sent to 3/3 recipients", result.Message)

	var sent []string
	for _, m := range d.sent {
		sent = append(sent, m.To.Email)
	}
	assert.Equal(t, []string{"guest@example.org", "B@example.org", "a@example.org"}, sent)
}
