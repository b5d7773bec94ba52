package model

import (
	"fmt"
	"strings"
)

// Form is a submission from one of the site's forms
type Form interface {
	Type() FormType
	EmailData() EmailData
}

// ContactForm is the "Contact Us" form
type ContactForm struct {
	Name    string `json:"name" validate:"notblank,max=200"`
	Email   string `json:"email" validate:"notblank,simpleemail"`
	Subject string `json:"subject" validate:"notblank,max=300"`
	Message string `json:"message" validate:"notblank,max=10000"`
}

func (f ContactForm) Type() FormType { return FormTypeContact }

func (f ContactForm) EmailData() EmailData {
	return EmailData{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Subject:  strings.TrimSpace(f.Subject),
		Message:  strings.TrimSpace(f.Message),
		FormType: FormTypeContact,
	}
}

// IssueForm is the "Raise an Issue" form
type IssueForm struct {
	Name          string `json:"name" validate:"notblank,max=200"`
	Email         string `json:"email" validate:"notblank,simpleemail"`
	InstituteName string `json:"instituteName" validate:"max=300"`
	Title         string `json:"title" validate:"notblank,max=300"`
	Description   string `json:"description" validate:"notblank,max=10000"`
	Location      string `json:"location" validate:"max=300"`
}

func (f IssueForm) Type() FormType { return FormTypeIssue }

func (f IssueForm) EmailData() EmailData {
	return EmailData{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Subject:  strings.TrimSpace(f.Title),
		Message:  strings.TrimSpace(f.Description),
		FormType: FormTypeIssue,
		AdditionalData: map[string]any{
			"instituteName": strings.TrimSpace(f.InstituteName),
			"location":      strings.TrimSpace(f.Location),
		},
	}
}

// IssueReportForm reports a problem under one of the key issues.
// The issue title becomes the subject.
type IssueReportForm struct {
	IssueID       string `json:"issueId" validate:"notblank"`
	Name          string `json:"name" validate:"notblank,max=200"`
	Email         string `json:"email" validate:"notblank,simpleemail"`
	InstituteName string `json:"instituteName" validate:"max=300"`
	Message       string `json:"message" validate:"notblank,max=10000"`
	Location      string `json:"location" validate:"max=300"`

	issueTitle string
}

// WithIssue binds the report to a resolved key issue
func (f IssueReportForm) WithIssue(issue KeyIssue) IssueReportForm {
	f.IssueID = issue.Slug
	f.issueTitle = issue.Title
	return f
}

func (f IssueReportForm) Type() FormType { return FormTypeIssue }

func (f IssueReportForm) EmailData() EmailData {
	return EmailData{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Subject:  f.issueTitle,
		Message:  strings.TrimSpace(f.Message),
		FormType: FormTypeIssue,
		AdditionalData: map[string]any{
			"issueId":       strings.TrimSpace(f.IssueID),
			"instituteName": strings.TrimSpace(f.InstituteName),
			"location":      strings.TrimSpace(f.Location),
		},
	}
}

// JoinForm is a team application
type JoinForm struct {
	Name       string `json:"name" validate:"notblank,max=200"`
	Email      string `json:"email" validate:"notblank,simpleemail"`
	Phone      string `json:"phone" validate:"max=30"`
	Position   string `json:"position" validate:"max=200"`
	University string `json:"university" validate:"max=300"`
	Skills     string `json:"skills" validate:"max=2000"`
	Experience string `json:"experience" validate:"max=5000"`
	Message    string `json:"message" validate:"max=10000"`
}

func (f JoinForm) Type() FormType { return FormTypeJoin }

func (f JoinForm) EmailData() EmailData {
	name := strings.TrimSpace(f.Name)
	return EmailData{
		Name:     name,
		Email:    strings.TrimSpace(f.Email),
		Subject:  "Team Application - " + name,
		Message:  strings.TrimSpace(f.Message),
		FormType: FormTypeJoin,
		AdditionalData: map[string]any{
			"phone":      strings.TrimSpace(f.Phone),
			"position":   strings.TrimSpace(f.Position),
			"university": strings.TrimSpace(f.University),
			"skills":     strings.TrimSpace(f.Skills),
			"experience": strings.TrimSpace(f.Experience),
		},
	}
}

// VolunteerForm is a volunteer registration
type VolunteerForm struct {
	Name         string   `json:"name" validate:"notblank,max=200"`
	Email        string   `json:"email" validate:"notblank,simpleemail"`
	Phone        string   `json:"phone" validate:"max=30"`
	University   string   `json:"university" validate:"max=300"`
	Year         string   `json:"year" validate:"max=20"`
	Availability string   `json:"availability" validate:"max=500"`
	Skills       string   `json:"skills" validate:"max=2000"`
	Interests    []string `json:"interests" validate:"max=20,dive,max=100"`
	Message      string   `json:"message" validate:"max=10000"`
}

func (f VolunteerForm) Type() FormType { return FormTypeVolunteer }

func (f VolunteerForm) EmailData() EmailData {
	name := strings.TrimSpace(f.Name)
	skills := strings.TrimSpace(f.Skills)
	availability := strings.TrimSpace(f.Availability)

	msg := strings.TrimSpace(f.Message)
	if msg == "" {
		msg = fmt.Sprintf("Skills: %s\nAvailability: %s", skills, availability)
	}

	return EmailData{
		Name:     name,
		Email:    strings.TrimSpace(f.Email),
		Subject:  "Volunteer Registration - " + name,
		Message:  msg,
		FormType: FormTypeVolunteer,
		AdditionalData: map[string]any{
			"phone":        strings.TrimSpace(f.Phone),
			"university":   strings.TrimSpace(f.University),
			"year":         strings.TrimSpace(f.Year),
			"availability": availability,
			"skills":       skills,
			"interests":    f.Interests,
		},
	}
}
