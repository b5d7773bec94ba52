package email

import (
	"context"
	"errors"
	"fmt"
	netmail "net/mail"
)

// Sender is the interface every delivery provider implements.
type Sender interface {
	// Name is the stable provider identifier used in config and results.
	Name() string
	// Configured reports whether the provider has the credentials it needs.
	Configured() bool
	// Send delivers msg and returns the provider message ID.
	Send(ctx context.Context, msg Message) (string, error)
}

// Verifier is implemented by providers that can check their connection
// without sending anything.
type Verifier interface {
	Verify(ctx context.Context) error
}

// Describer is implemented by providers that advertise their features.
type Describer interface {
	Features() []string
}

// Address is a mailbox with an optional display name.
type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// String formats the address for a MIME header.
func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return (&netmail.Address{Name: a.Name, Address: a.Email}).String()
}

// Message represents an email message to be sent.
type Message struct {
	To       Address
	ReplyTo  *Address
	Subject  string
	HTMLBody string
	TextBody string
	// Tags label the message in providers that support it.
	Tags []string
}

var (
	ErrNotConfigured = errors.New("email: provider not configured")
	ErrNoRecipient   = errors.New("email: recipient address is required")
)

// APIError is returned by HTTP API providers for non-2xx responses.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

func (m Message) validate() error {
	if m.To.Email == "" {
		return ErrNoRecipient
	}
	return nil
}

// FeaturesOf returns the advertised features of s, or nil.
func FeaturesOf(s Sender) []string {
	if d, ok := s.(Describer); ok {
		return d.Features()
	}
	return nil
}
