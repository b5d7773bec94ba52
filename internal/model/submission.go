package model

import (
	"fmt"
	"strings"
)

// FormType identifies which site form produced a submission
type FormType string

const (
	FormTypeIssue     FormType = "issue"
	FormTypeJoin      FormType = "join"
	FormTypeVolunteer FormType = "volunteer"
	FormTypeContact   FormType = "contact"
)

// FormTypes lists every accepted form type
var FormTypes = []FormType{FormTypeIssue, FormTypeJoin, FormTypeVolunteer, FormTypeContact}

// Valid reports whether t is a known form type
func (t FormType) Valid() bool {
	switch t {
	case FormTypeIssue, FormTypeJoin, FormTypeVolunteer, FormTypeContact:
		return true
	}
	return false
}

// Title returns the form type with its first letter upper-cased
func (t FormType) Title() string {
	if t == "" {
		return ""
	}
	s := string(t)
	return strings.ToUpper(s[:1]) + s[1:]
}

// EmailData is the payload handed from a form to the dispatch layer.
// It lives for one request and is never persisted.
type EmailData struct {
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Subject        string         `json:"subject"`
	Message        string         `json:"message"`
	FormType       FormType       `json:"formType"`
	AdditionalData map[string]any `json:"additionalData,omitempty"`
}

// Field returns an additional-data value rendered as a string, or "" when absent
func (d EmailData) Field(key string) string {
	v, ok := d.AdditionalData[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, 0, len(val))
		for _, p := range val {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}
