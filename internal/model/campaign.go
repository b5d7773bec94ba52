package model

// TemplateCategory groups campaign templates
type TemplateCategory string

const (
	CategoryNewsletter   TemplateCategory = "newsletter"
	CategoryAnnouncement TemplateCategory = "announcement"
	CategoryEvent        TemplateCategory = "event"
	CategoryFundraising  TemplateCategory = "fundraising"
	CategoryUpdate       TemplateCategory = "update"
)

// Valid reports whether c is a known category
func (c TemplateCategory) Valid() bool {
	switch c {
	case CategoryNewsletter, CategoryAnnouncement, CategoryEvent, CategoryFundraising, CategoryUpdate:
		return true
	}
	return false
}

// CampaignTemplate is a reusable email body with {{var}} placeholders
type CampaignTemplate struct {
	ID          string           `json:"id" yaml:"id"`
	Name        string           `json:"name" yaml:"name"`
	Subject     string           `json:"subject" yaml:"subject"`
	HTMLContent string           `json:"htmlContent" yaml:"html"`
	TextContent string           `json:"textContent,omitempty" yaml:"text"`
	Category    TemplateCategory `json:"category" yaml:"category"`
	Variables   []string         `json:"variables,omitempty" yaml:"variables"`
}

// Recipient is one campaign addressee
type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// CampaignData is a fully rendered campaign ready to send
type CampaignData struct {
	Name        string      `json:"name"`
	Subject     string      `json:"subject"`
	HTMLContent string      `json:"htmlContent"`
	TextContent string      `json:"textContent,omitempty"`
	Recipients  []Recipient `json:"recipients"`
}

// RecipientResult is the delivery outcome for a single recipient
type RecipientResult struct {
	Email     string `json:"email"`
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Provider  string `json:"provider,omitempty"`
	Error     string `json:"error,omitempty"`
}

// CampaignResult summarises a bulk send
type CampaignResult struct {
	CampaignID string            `json:"campaignId"`
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Sent       int               `json:"sent"`
	Total      int               `json:"total"`
	Results    []RecipientResult `json:"results"`
}
