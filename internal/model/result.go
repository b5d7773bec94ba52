package model

// EmailResult is the outcome of a delivery attempt as seen by the caller
type EmailResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	MessageID string `json:"messageId,omitempty"`
	Provider  string `json:"provider,omitempty"`
}

// ProviderInfo describes one delivery provider for status reporting
type ProviderInfo struct {
	Name       string   `json:"name"`
	Configured bool     `json:"configured"`
	Features   []string `json:"features"`
}

// ProviderStatus reports which providers are usable and which one is active
type ProviderStatus struct {
	Providers []ProviderInfo `json:"providers"`
	Active    string         `json:"active,omitempty"`
	Fallback  string         `json:"fallback,omitempty"`
	AutoReply bool           `json:"autoReply"`
}
