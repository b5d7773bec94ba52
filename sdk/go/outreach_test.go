package outreach

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitForm(t *testing.T) {
	var gotLang, gotPath string
	var got ContactForm
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotLang = r.Header.Get("Accept-Language")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"message":"Email sent successfully","messageId":"m1","provider":"brevo"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/", Language: "en"})
	result, err := c.SubmitForm(context.Background(), FormContact, ContactForm{
		Name: "Asha", Email: "asha@example.org", Subject: "Hostel", Message: "Fees",
	}, "mr")

	require.NoError(t, err)
	assert.Equal(t, "/api/v1/forms/contact", gotPath)
	assert.Equal(t, "mr", gotLang)
	assert.Equal(t, "Asha", got.Name)
	assert.Equal(t, "m1", result.MessageID)
}

func TestSubmitFormDeliveryFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"success":false,"message":"Failed to send email via all available providers"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	result, err := c.SubmitForm(context.Background(), FormJoin, JoinForm{Name: "Ravi", Email: "ravi@example.org"}, "")

	assert.ErrorIs(t, err, ErrDeliveryFailed)
	require.NotNil(t, result)
	assert.Equal(t, "Failed to send email via all available providers", result.Message)
}

func TestSubmitFormValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"validation_failed","message":"Please enter a valid email address.","details":{"email":"must be a valid email address"}}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	_, err := c.SubmitForm(context.Background(), FormContact, ContactForm{Email: "x"}, "")

	apiErr, ok := IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "validation_failed", apiErr.Code)
	assert.Contains(t, apiErr.Details, "email")
}

func TestSubmitFormUnknownType(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:0"})
	_, err := c.SubmitForm(context.Background(), FormType("petition"), nil, "")
	assert.ErrorContains(t, err, "unknown form type")
}

func TestListIssuesCached(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"issues":[{"id":6,"issueId":"library-issues","title":"Library Issues"}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	for range 2 {
		issues, err := c.ListIssues(context.Background())
		require.NoError(t, err)
		require.Len(t, issues, 1)
		assert.Equal(t, "library-issues", issues[0].Slug)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestEmailStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"code":"unauthorized","message":"Authentication required"}}`))
			return
		}
		w.Write([]byte(`{"providers":[{"name":"brevo","configured":true}],"active":"brevo","autoReply":true}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})

	_, err := c.EmailStatus(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = c.EmailStatus(context.Background(), "bad")
	apiErr, ok := IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "unauthorized", apiErr.Code)

	status, err := c.EmailStatus(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "brevo", status.Active)
	assert.True(t, status.AutoReply)
}
