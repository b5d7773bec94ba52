package email

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMIME(t *testing.T) {
	from := Address{Email: "contact@aaplamahesh.org", Name: "Aapla Mahesh"}

	tests := []struct {
		name     string
		msg      Message
		contains []string
		excludes []string
	}{
		{
			name: "html and text",
			msg: Message{
				To:       Address{Email: "admin@aaplamahesh.org"},
				ReplyTo:  &Address{Email: "asha@example.org", Name: "Asha"},
				Subject:  "Hostel fees",
				HTMLBody: "<p>Fees</p>",
				TextBody: "Fees",
			},
			contains: []string{
				"Content-Type: multipart/alternative; boundary=outreach_",
				"Content-Type: text/plain; charset=UTF-8\r\n\r\nFees\r\n",
				"Content-Type: text/html; charset=UTF-8\r\n\r\n<p>Fees</p>\r\n",
				`Reply-To: "Asha" <asha@example.org>`,
				"Subject: Hostel fees\r\n",
			},
		},
		{
			name: "html only",
			msg:  Message{To: Address{Email: "a@b.co"}, Subject: "s", HTMLBody: "<p>x</p>"},
			contains: []string{
				"Content-Type: text/html; charset=UTF-8\r\n\r\n<p>x</p>",
			},
			excludes: []string{"multipart", "Reply-To:"},
		},
		{
			name: "text only",
			msg:  Message{To: Address{Email: "a@b.co"}, Subject: "s", TextBody: "plain"},
			contains: []string{
				"Content-Type: text/plain; charset=UTF-8\r\n\r\nplain",
			},
			excludes: []string{"multipart", "text/html"},
		},
		{
			name: "non-ascii subject",
			msg:  Message{To: Address{Email: "a@b.co"}, Subject: "शुल्क वाढ", TextBody: "x"},
			contains: []string{
				"Subject: =?utf-8?q?",
			},
			excludes: []string{"शुल्क"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := buildMIME(from, tt.msg)

			assert.True(t, strings.HasPrefix(raw, `From: "Aapla Mahesh" <contact@aaplamahesh.org>`+"\r\n"))
			assert.Contains(t, raw, "To: "+tt.msg.To.Email+"\r\n")
			assert.Contains(t, raw, "MIME-Version: 1.0\r\n")
			for _, want := range tt.contains {
				assert.Contains(t, raw, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, raw, unwanted)
			}
		})
	}
}

func TestBuildMIMEBoundaryCloses(t *testing.T) {
	raw := buildMIME(Address{Email: "contact@aaplamahesh.org"}, Message{
		To: Address{Email: "a@b.co"}, Subject: "s", HTMLBody: "<p>x</p>", TextBody: "x",
	})

	_, after, ok := strings.Cut(raw, "boundary=")
	require.True(t, ok)
	boundary, _, _ := strings.Cut(after, "\r\n")
	assert.Equal(t, 2, strings.Count(raw, "--"+boundary+"\r\n"))
	assert.True(t, strings.HasSuffix(raw, "--"+boundary+"--"))
}

func TestGmailSenderNotConfigured(t *testing.T) {
	s, err := NewGmailSender(context.Background(), GmailConfig{RefreshToken: "r"})
	require.NoError(t, err)
	assert.False(t, s.Configured())

	_, err = s.Send(context.Background(), Message{To: Address{Email: "a@b.co"}})
	assert.ErrorIs(t, err, ErrNotConfigured)

	assert.False(t, GmailConfig{CredentialsJSON: "{}"}.Configured(), "a sender address is required")
	assert.True(t, GmailConfig{ClientID: "id", ClientSecret: "s", RefreshToken: "r", From: Address{Email: "x@y.org"}}.Configured())
}
