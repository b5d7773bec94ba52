package model

import (
	"slices"
	"strings"
	"time"
)

// Contact is a newsletter audience member, usually a student
type Contact struct {
	ID         string    `json:"id"`
	Email      string    `json:"email" validate:"required,simpleemail"`
	Name       string    `json:"name,omitempty"`
	University string    `json:"university,omitempty"`
	Course     string    `json:"course,omitempty"`
	Year       string    `json:"year,omitempty"`
	Interests  []string  `json:"interests,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ContactFilter narrows a contact listing. Empty fields match everything.
type ContactFilter struct {
	University string   `json:"university,omitempty"`
	Course     string   `json:"course,omitempty"`
	Year       string   `json:"year,omitempty"`
	Interests  []string `json:"interests,omitempty"`
}

// Matches reports whether c passes the filter. University and course match
// case-insensitively by substring, year exactly, interests by any overlap.
func (f ContactFilter) Matches(c Contact) bool {
	if f.University != "" && !strings.Contains(strings.ToLower(c.University), strings.ToLower(f.University)) {
		return false
	}
	if f.Course != "" && !strings.Contains(strings.ToLower(c.Course), strings.ToLower(f.Course)) {
		return false
	}
	if f.Year != "" && c.Year != f.Year {
		return false
	}
	if len(f.Interests) > 0 {
		return slices.ContainsFunc(f.Interests, func(want string) bool {
			return slices.ContainsFunc(c.Interests, func(have string) bool {
				return strings.EqualFold(have, want)
			})
		})
	}
	return true
}

// Recipient converts the contact to a campaign recipient
func (c Contact) Recipient() Recipient {
	return Recipient{Email: c.Email, Name: c.Name}
}
