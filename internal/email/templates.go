package email

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/aaplamahesh/outreach/internal/model"
	"golang.org/x/text/message"
)

// Branding identifies the organisation the emails are sent for.
type Branding struct {
	Name       string
	Tagline    string
	WebsiteURL string
}

// Content is a rendered subject with HTML and plain-text bodies.
type Content struct {
	Subject string
	HTML    string
	Text    string
}

// Localizer formats catalog messages for one language. *message.Printer implements it.
type Localizer interface {
	Sprintf(key message.Reference, a ...any) string
}

// escape makes user-supplied text safe for HTML and keeps its line breaks.
func escape(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br>")
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not specified"
	}
	return s
}

type notificationLayout struct {
	subject string
	heading string
	color   string
	label   string
	fields  [][2]string
}

// FormNotification renders the message the site admins receive for a submission.
func FormNotification(b Branding, d model.EmailData) Content {
	var l notificationLayout

	switch d.FormType {
	case model.FormTypeIssue:
		l = notificationLayout{
			subject: "🚨 New Issue Reported: " + d.Subject,
			heading: "New Issue Report",
			color:   "#e74c3c",
			label:   "Description",
			fields: [][2]string{
				{"Reporter", fmt.Sprintf("%s (%s)", d.Name, d.Email)},
				{"Issue Title", d.Subject},
				{"Institute", orNotSpecified(d.Field("instituteName"))},
				{"Location", orNotSpecified(d.Field("location"))},
			},
		}
	case model.FormTypeJoin:
		l = notificationLayout{
			subject: "👥 New Team Application: " + d.Name,
			heading: "New Team Application",
			color:   "#2ecc71",
			label:   "Message",
			fields: [][2]string{
				{"Applicant", fmt.Sprintf("%s (%s)", d.Name, d.Email)},
				{"Phone", orNotSpecified(d.Field("phone"))},
				{"Position", orNotSpecified(d.Field("position"))},
				{"Skills", orNotSpecified(d.Field("skills"))},
				{"Experience", orNotSpecified(d.Field("experience"))},
			},
		}
	case model.FormTypeVolunteer:
		l = notificationLayout{
			subject: "🤝 New Volunteer Application: " + d.Name,
			heading: "New Volunteer Application",
			color:   "#3498db",
			label:   "Message",
			fields: [][2]string{
				{"Volunteer", fmt.Sprintf("%s (%s)", d.Name, d.Email)},
				{"Phone", orNotSpecified(d.Field("phone"))},
				{"University/College", orNotSpecified(d.Field("university"))},
				{"Year", orNotSpecified(d.Field("year"))},
				{"Available Time", orNotSpecified(d.Field("availability"))},
				{"Skills", orNotSpecified(d.Field("skills"))},
			},
		}
	case model.FormTypeContact:
		l = notificationLayout{
			subject: "📧 Contact Form: " + d.Subject,
			heading: "New Contact Form Submission",
			color:   "#9b59b6",
			label:   "Message",
			fields: [][2]string{
				{"Name", fmt.Sprintf("%s (%s)", d.Name, d.Email)},
				{"Subject", d.Subject},
			},
		}
	default:
		l = notificationLayout{
			subject: "New Form Submission: " + d.Subject,
			heading: "New Form Submission",
			color:   "#34495e",
			label:   "Message",
			fields: [][2]string{
				{"Name", fmt.Sprintf("%s (%s)", d.Name, d.Email)},
				{"Subject", d.Subject},
			},
		}
	}

	var rows strings.Builder
	var textRows strings.Builder
	for _, f := range l.fields {
		fmt.Fprintf(&rows, "      <p><strong>%s:</strong> %s</p>\n", f[0], html.EscapeString(f[1]))
		fmt.Fprintf(&textRows, "%s: %s\n", f[0], f[1])
	}

	body := fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;">
  <h2 style="color:%s;">%s from the %s website</h2>
  <div style="background:#f8f9fa;padding:20px;border-radius:8px;margin:20px 0;">
%s  </div>
  <div style="background:#ffffff;padding:20px;border-left:4px solid %s;margin:20px 0;">
    <h3>%s:</h3>
    <p>%s</p>
  </div>
  <hr style="border:none;border-top:1px solid #eee;margin:30px 0;">
  <p style="font-size:12px;color:#666;">Reply to this email to answer %s directly.</p>
</div>`, l.color, l.heading, html.EscapeString(b.Name), rows.String(), l.color, l.label, escape(d.Message), html.EscapeString(d.Name))

	text := fmt.Sprintf("%s from the %s website\n\n%s\n%s:\n%s\n", l.heading, b.Name, textRows.String(), l.label, d.Message)

	return Content{Subject: l.subject, HTML: body, Text: text}
}

// AutoReply renders the confirmation sent back to the submitter in the
// language of p.
func AutoReply(b Branding, d model.EmailData, p Localizer, now time.Time) Content {
	formLabel := p.Sprintf("formtype." + string(d.FormType))
	submitted := now.Format("02 Jan 2006 15:04 MST")

	subject := p.Sprintf("autoreply.subject", b.Name, formLabel)

	items := []string{
		p.Sprintf("autoreply.next.review"),
		p.Sprintf("autoreply.next.respond", d.Email),
		p.Sprintf("autoreply.next.social"),
	}

	var list strings.Builder
	for _, item := range items {
		fmt.Fprintf(&list, "    <li>%s</li>\n", html.EscapeString(item))
	}

	body := fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;">
  <div style="text-align:center;margin-bottom:30px;">
    <h1 style="color:#2c3e50;">%s</h1>
    <p style="color:#7f8c8d;">%s</p>
  </div>
  <h2 style="color:#e74c3c;">%s</h2>
  <p>%s</p>
  <p>%s</p>
  <div style="background:#f8f9fa;padding:20px;border-radius:8px;margin:20px 0;">
    <h3>%s</h3>
    <p><strong>%s:</strong> %s</p>
    <p><strong>%s:</strong> %s</p>
    <p><strong>%s:</strong> %s</p>
  </div>
  <p><strong>%s</strong></p>
  <ul>
%s  </ul>
  <p>%s</p>
  <div style="border-top:1px solid #eee;margin-top:30px;padding-top:20px;">
    <p style="color:#7f8c8d;font-size:12px;">%s</p>
  </div>
</div>`,
		html.EscapeString(b.Name),
		html.EscapeString(b.Tagline),
		p.Sprintf("autoreply.heading"),
		html.EscapeString(p.Sprintf("autoreply.greeting", d.Name)),
		html.EscapeString(p.Sprintf("autoreply.received", formLabel)),
		p.Sprintf("autoreply.details"),
		p.Sprintf("autoreply.label.type"), html.EscapeString(formLabel),
		p.Sprintf("autoreply.label.subject"), html.EscapeString(d.Subject),
		p.Sprintf("autoreply.label.submitted"), submitted,
		p.Sprintf("autoreply.next"),
		list.String(),
		html.EscapeString(p.Sprintf("autoreply.thanks", b.Name)),
		p.Sprintf("autoreply.footer"),
	)

	var text strings.Builder
	fmt.Fprintf(&text, "%s\n\n", p.Sprintf("autoreply.heading"))
	fmt.Fprintf(&text, "%s\n\n", p.Sprintf("autoreply.greeting", d.Name))
	fmt.Fprintf(&text, "%s\n\n", p.Sprintf("autoreply.received", formLabel))
	fmt.Fprintf(&text, "%s\n", p.Sprintf("autoreply.details"))
	fmt.Fprintf(&text, "- %s: %s\n", p.Sprintf("autoreply.label.type"), formLabel)
	fmt.Fprintf(&text, "- %s: %s\n", p.Sprintf("autoreply.label.subject"), d.Subject)
	fmt.Fprintf(&text, "- %s: %s\n\n", p.Sprintf("autoreply.label.submitted"), submitted)
	fmt.Fprintf(&text, "%s\n", p.Sprintf("autoreply.next"))
	for _, item := range items {
		fmt.Fprintf(&text, "- %s\n", item)
	}
	fmt.Fprintf(&text, "\n%s\n\n%s\n", p.Sprintf("autoreply.thanks", b.Name), p.Sprintf("autoreply.footer"))

	return Content{Subject: subject, HTML: body, Text: text.String()}
}

// NewsletterFrame wraps campaign HTML in the site's newsletter header and footer.
func NewsletterFrame(b Branding, subject, contentHTML string, year int) string {
	return fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;background:#ffffff;">
  <div style="background:#2c3e50;color:white;padding:20px;text-align:center;">
    <h1 style="margin:0;">%s</h1>
    <p style="margin:10px 0 0 0;opacity:0.9;">%s</p>
  </div>
  <div style="padding:30px 20px;">
    <h2 style="color:#2c3e50;margin-top:0;">%s</h2>
    %s
  </div>
  <div style="background:#ecf0f1;padding:20px;text-align:center;color:#7f8c8d;font-size:12px;">
    <p>You received this email because you're subscribed to %s updates.</p>
    <p>&copy; %d %s. All rights reserved.</p>
  </div>
</div>`, html.EscapeString(b.Name), html.EscapeString(b.Tagline), html.EscapeString(subject), contentHTML, html.EscapeString(b.Name), year, html.EscapeString(b.Name))
}

// AnnouncementOptions tweak the quick announcement layout.
type AnnouncementOptions struct {
	Urgent     bool   `json:"urgent"`
	ActionURL  string `json:"actionUrl,omitempty"`
	ActionText string `json:"actionText,omitempty"`
}

// Announcement renders a short broadcast. The message is escaped and its
// newlines become line breaks; the call-to-action button appears only with an ActionURL.
func Announcement(b Branding, messageText string, opts AnnouncementOptions) string {
	header, panel, button := "#2c3e50", "#f8f9fa", "#007bff"
	title := "Announcement"
	if opts.Urgent {
		header, panel, button = "#dc3545", "#f8d7da", "#dc3545"
		title = "🚨 Announcement"
	}

	cta := ""
	if opts.ActionURL != "" {
		text := opts.ActionText
		if text == "" {
			text = "Learn More"
		}
		cta = fmt.Sprintf(`
  <div style="text-align:center;margin:30px 0;">
    <a href="%s" style="background:%s;color:white;padding:15px 30px;text-decoration:none;border-radius:25px;font-weight:bold;display:inline-block;">%s</a>
  </div>`, html.EscapeString(opts.ActionURL), button, html.EscapeString(text))
	}

	return fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;">
  <div style="background:%s;color:white;padding:30px 20px;text-align:center;">
    <h1 style="margin:0;font-size:2em;">%s</h1>
    <p style="margin:10px 0 0 0;opacity:0.9;">%s Team</p>
  </div>
  <div style="padding:30px 20px;">
    <div style="background:%s;padding:20px;border-radius:8px;margin-bottom:30px;">
      <p style="margin:0;font-size:1.1em;line-height:1.6;">%s</p>
    </div>%s
    <p style="color:#6c757d;font-size:14px;text-align:center;margin-top:30px;">Stay connected with %s for more updates on student rights and education issues.</p>
  </div>
</div>`, header, title, html.EscapeString(b.Name), panel, escape(messageText), cta, html.EscapeString(b.Name))
}

// TestMessage renders the fixed message used to check a provider end to end.
func TestMessage(b Branding, provider string, now time.Time) Content {
	subject := fmt.Sprintf("%s email test (%s)", b.Name, provider)
	body := fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;">
  <h2 style="color:#2c3e50;">Email delivery is working</h2>
  <p>This test message was sent through <strong>%s</strong> at %s.</p>
  <p>If you can read this, form notifications from the %s website will reach you.</p>
</div>`, html.EscapeString(provider), now.Format(time.RFC1123), html.EscapeString(b.Name))
	return Content{Subject: subject, HTML: body, Text: HTMLToText(body)}
}
