package email

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailgunSenderSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mg.aaplamahesh.org/messages", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "api", user)
		assert.Equal(t, "key-123", pass)

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "postmaster@mg.aaplamahesh.org", r.PostForm.Get("from"))
		assert.Equal(t, "admin@aaplamahesh.org", r.PostForm.Get("to"))
		assert.Equal(t, "Subject line", r.PostForm.Get("subject"))
		assert.Equal(t, "plain", r.PostForm.Get("text"))
		assert.Equal(t, "<b>rich</b>", r.PostForm.Get("html"))
		assert.Equal(t, "asha@example.org", r.PostForm.Get("h:Reply-To"))

		w.Write([]byte(`{"id":"<20241015.1@mg.aaplamahesh.org>","message":"Queued. Thank you."}`))
	}))
	defer srv.Close()

	s := NewMailgunSender(MailgunConfig{APIKey: "key-123", Domain: "mg.aaplamahesh.org", BaseURL: srv.URL})
	require.True(t, s.Configured())

	id, err := s.Send(context.Background(), Message{
		To:       Address{Email: "admin@aaplamahesh.org"},
		ReplyTo:  &Address{Email: "asha@example.org"},
		Subject:  "Subject line",
		TextBody: "plain",
		HTMLBody: "<b>rich</b>",
	})
	require.NoError(t, err)
	assert.Equal(t, "<20241015.1@mg.aaplamahesh.org>", id)
}

func TestMailgunSenderRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"'to' parameter is not a valid address"}`))
	}))
	defer srv.Close()

	s := NewMailgunSender(MailgunConfig{APIKey: "k", Domain: "d.org", BaseURL: srv.URL})
	_, err := s.Send(context.Background(), Message{To: Address{Email: "x@y.zz"}, Subject: "s", TextBody: "t"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "'to' parameter is not a valid address", apiErr.Message)
}

func TestMailgunSenderNeedsDomain(t *testing.T) {
	assert.False(t, NewMailgunSender(MailgunConfig{APIKey: "k"}).Configured())
}
