package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrevoSenderSend(t *testing.T) {
	var got brevoEmailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/smtp/email", r.URL.Path)
		assert.Equal(t, "xkeysib-test", r.Header.Get("api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"messageId":"<202410151200.123@smtp-relay.mailin.fr>"}`))
	}))
	defer srv.Close()

	s := NewBrevoSender(BrevoConfig{
		APIKey:  "xkeysib-test",
		BaseURL: srv.URL,
		From:    Address{Email: "team@aaplamahesh.org", Name: "Aapla Mahesh"},
	})
	require.True(t, s.Configured())

	id, err := s.Send(context.Background(), Message{
		To:       Address{Email: "admin@aaplamahesh.org"},
		ReplyTo:  &Address{Email: "asha@example.org", Name: "Asha"},
		Subject:  "Hello",
		HTMLBody: "<p>Hi</p>",
		TextBody: "Hi",
		Tags:     []string{"contact"},
	})
	require.NoError(t, err)
	assert.Equal(t, "<202410151200.123@smtp-relay.mailin.fr>", id)

	assert.Equal(t, "team@aaplamahesh.org", got.Sender.Email)
	require.Len(t, got.To, 1)
	assert.Equal(t, "admin@aaplamahesh.org", got.To[0].Email)
	require.NotNil(t, got.ReplyTo)
	assert.Equal(t, "asha@example.org", got.ReplyTo.Email)
	assert.Equal(t, "Hello", got.Subject)
	assert.Equal(t, "<p>Hi</p>", got.HTMLContent)
	assert.Equal(t, []string{"contact"}, got.Tags)
}

func TestBrevoSenderAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"unauthorized","message":"Key not found"}`))
	}))
	defer srv.Close()

	s := NewBrevoSender(BrevoConfig{APIKey: "bad", BaseURL: srv.URL, From: Address{Email: "team@aaplamahesh.org"}})

	_, err := s.Send(context.Background(), Message{To: Address{Email: "a@b.co"}, Subject: "x", TextBody: "x"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Key not found", apiErr.Message)
	assert.Equal(t, "auth", Diagnose(err).Code)
}

func TestBrevoSenderNotConfigured(t *testing.T) {
	s := NewBrevoSender(BrevoConfig{})
	assert.False(t, s.Configured())

	_, err := s.Send(context.Background(), Message{To: Address{Email: "a@b.co"}})
	assert.ErrorIs(t, err, ErrNotConfigured)

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	noSender := NewBrevoSender(BrevoConfig{APIKey: "k", BaseURL: srv.URL})
	assert.False(t, noSender.Configured())
	_, err = noSender.Send(context.Background(), Message{To: Address{Email: "a@b.co"}, Subject: "s", TextBody: "b"})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Zero(t, calls)
}

func TestBrevoSenderVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/account", r.URL.Path)
		w.Write([]byte(`{"email":"team@aaplamahesh.org"}`))
	}))
	defer srv.Close()

	s := NewBrevoSender(BrevoConfig{APIKey: "k", BaseURL: srv.URL, From: Address{Email: "team@aaplamahesh.org"}})
	assert.NoError(t, s.Verify(context.Background()))
}
