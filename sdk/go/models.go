package outreach

import "time"

// FormType names a site form endpoint.
type FormType string

const (
	FormContact   FormType = "contact"
	FormIssue     FormType = "issue"
	FormJoin      FormType = "join"
	FormVolunteer FormType = "volunteer"
)

func (t FormType) valid() bool {
	switch t {
	case FormContact, FormIssue, FormJoin, FormVolunteer:
		return true
	}
	return false
}

// ContactForm is the general contact form.
type ContactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// IssueForm reports a new student issue.
type IssueForm struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	InstituteName string `json:"instituteName,omitempty"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Location      string `json:"location,omitempty"`
}

// IssueReport is a report filed under one of the key issues.
type IssueReport struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	InstituteName string `json:"instituteName,omitempty"`
	Message       string `json:"message"`
	Location      string `json:"location,omitempty"`
}

// JoinForm is a team application.
type JoinForm struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Position   string `json:"position,omitempty"`
	University string `json:"university,omitempty"`
	Skills     string `json:"skills,omitempty"`
	Experience string `json:"experience,omitempty"`
	Message    string `json:"message,omitempty"`
}

// VolunteerForm is a volunteer registration.
type VolunteerForm struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone,omitempty"`
	University   string   `json:"university,omitempty"`
	Year         string   `json:"year,omitempty"`
	Availability string   `json:"availability,omitempty"`
	Skills       string   `json:"skills,omitempty"`
	Interests    []string `json:"interests,omitempty"`
	Message      string   `json:"message,omitempty"`
}

// EmailResult is the delivery outcome of a submission.
type EmailResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	MessageID string `json:"messageId,omitempty"`
	Provider  string `json:"provider,omitempty"`
}

// KeyIssue is one entry of the issue catalogue.
type KeyIssue struct {
	ID    int    `json:"id"`
	Slug  string `json:"issueId"`
	Title string `json:"title"`
}

// LoginResponse carries an admin bearer token.
type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ProviderInfo describes one email provider.
type ProviderInfo struct {
	Name       string   `json:"name"`
	Configured bool     `json:"configured"`
	Features   []string `json:"features"`
}

// ProviderStatus reports the server's provider selection.
type ProviderStatus struct {
	Providers []ProviderInfo `json:"providers"`
	Active    string         `json:"active,omitempty"`
	Fallback  string         `json:"fallback,omitempty"`
	AutoReply bool           `json:"autoReply"`
}
