package model

import "time"

// AuditEntry records one delivery or admin action. Message bodies are never stored.
type AuditEntry struct {
	ID       string `json:"id"`
	Action   string `json:"action"`
	Resource string `json:"resource,omitempty"`
	Provider string `json:"provider,omitempty"`
	Success  bool   `json:"success"`
	// Recipients counts delivered messages for bulk sends.
	Recipients int            `json:"recipients,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Audit action constants
const (
	AuditFormSubmitted    = "form.submitted"
	AuditCampaignSent     = "campaign.sent"
	AuditContactsImported = "contacts.imported"
	AuditAdminLogin       = "admin.login"
	AuditAdminLoginFailed = "admin.login_failed"
)
