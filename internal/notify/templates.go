package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/creerweb/contact-form/internal/leads"
)

// RenderedEmail is a subject with matching plain-text and HTML bodies.
type RenderedEmail struct {
	Subject string
	Text    string
	HTML    string
}

const submittedLayout = "January 2, 2006 at 3:04 PM MST"

type emailView struct {
	Lead      *leads.Lead
	Site      string
	Submitted string
}

func newEmailView(lead *leads.Lead, site string) emailView {
	submitted := lead.Timestamp
	if ts := lead.SubmittedAt(); !ts.IsZero() {
		submitted = ts.In(time.UTC).Format(submittedLayout)
	}
	return emailView{Lead: lead, Site: site, Submitted: submitted}
}

var templateFuncs = map[string]any{
	"linebreaks": func(s string) htmltemplate.HTML {
		escaped := htmltemplate.HTMLEscapeString(s)
		escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
		return htmltemplate.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
	},
}

const emailStyles = `
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background-color: #4a90e2; color: white; padding: 20px; text-align: center; }
    .content { background-color: #f9f9f9; padding: 20px; margin-top: 20px; }
    .field { margin-bottom: 15px; }
    .label { font-weight: bold; color: #4a90e2; }
    .value { margin-top: 5px; }
    .footer { margin-top: 20px; padding-top: 20px; border-top: 1px solid #ddd; font-size: 12px; color: #666; }`

var stakeholderHTML = htmltemplate.Must(htmltemplate.New("stakeholder.html").
	Funcs(templateFuncs).
	Option("missingkey=error").
	Parse(`<!DOCTYPE html>
<html>
<head>
  <style>` + emailStyles + `
  </style>
</head>
<body>
  <div class="container">
    <div class="header"><h2>New Contact Form Submission</h2></div>
    <div class="content">
      <div class="field"><div class="label">Name:</div><div class="value">{{.Lead.Name}}</div></div>
      <div class="field"><div class="label">Email:</div><div class="value"><a href="mailto:{{.Lead.Email}}">{{.Lead.Email}}</a></div></div>
      {{- if .Lead.HasPhone}}
      <div class="field"><div class="label">Phone:</div><div class="value"><a href="tel:{{.Lead.PhoneNumber}}">{{.Lead.PhoneNumber}}</a></div></div>
      {{- end}}
      <div class="field"><div class="label">Subject:</div><div class="value">{{.Lead.Subject}}</div></div>
      <div class="field"><div class="label">Message:</div><div class="value">{{linebreaks .Lead.Message}}</div></div>
      <div class="field"><div class="label">Submitted:</div><div class="value">{{.Submitted}}</div></div>
      <div class="field"><div class="label">Lead ID:</div><div class="value">{{.Lead.LeadID}}</div></div>
    </div>
    <div class="footer"><p>This email was sent from the {{.Site}} contact form.</p></div>
  </div>
</body>
</html>
`))

var stakeholderText = texttemplate.Must(texttemplate.New("stakeholder.txt").
	Option("missingkey=error").
	Parse(`New Contact Form Submission

Name: {{.Lead.Name}}
Email: {{.Lead.Email}}
{{if .Lead.HasPhone}}Phone: {{.Lead.PhoneNumber}}
{{end}}Subject: {{.Lead.Subject}}
Message: {{.Lead.Message}}

Submitted: {{.Submitted}}
Lead ID: {{.Lead.LeadID}}
`))

var confirmationHTML = htmltemplate.Must(htmltemplate.New("confirmation.html").
	Funcs(templateFuncs).
	Option("missingkey=error").
	Parse(`<!DOCTYPE html>
<html>
<head>
  <style>` + emailStyles + `
  </style>
</head>
<body>
  <div class="container">
    <div class="header"><h2>Thank you for reaching out</h2></div>
    <div class="content">
      <p>Hi {{.Lead.Name}},</p>
      <p>We received your message and will get back to you soon. Here is a copy for your records.</p>
      <div class="field"><div class="label">Subject:</div><div class="value">{{.Lead.Subject}}</div></div>
      <div class="field"><div class="label">Message:</div><div class="value">{{linebreaks .Lead.Message}}</div></div>
      <div class="field"><div class="label">Reference:</div><div class="value">{{.Lead.LeadID}}</div></div>
    </div>
    <div class="footer"><p>You are receiving this because you submitted the {{.Site}} contact form.</p></div>
  </div>
</body>
</html>
`))

var confirmationText = texttemplate.Must(texttemplate.New("confirmation.txt").
	Option("missingkey=error").
	Parse(`Hi {{.Lead.Name}},

Thank you for reaching out. We received your message and will get back to you soon.

Subject: {{.Lead.Subject}}
Message: {{.Lead.Message}}

Reference: {{.Lead.LeadID}}

You are receiving this because you submitted the {{.Site}} contact form.
`))

// RenderStakeholderEmail renders the operator notification for a new lead.
func RenderStakeholderEmail(lead *leads.Lead, site string) (RenderedEmail, error) {
	if lead == nil {
		return RenderedEmail{}, fmt.Errorf("notify: lead required")
	}
	view := newEmailView(lead, site)

	text, err := execText(stakeholderText, view)
	if err != nil {
		return RenderedEmail{}, err
	}
	html, err := execHTML(stakeholderHTML, view)
	if err != nil {
		return RenderedEmail{}, err
	}
	return RenderedEmail{
		Subject: "New Contact Form Submission: " + lead.Subject,
		Text:    text,
		HTML:    html,
	}, nil
}

// RenderConfirmationEmail renders the acknowledgement sent back to the submitter.
func RenderConfirmationEmail(lead *leads.Lead, site string) (RenderedEmail, error) {
	if lead == nil {
		return RenderedEmail{}, fmt.Errorf("notify: lead required")
	}
	view := newEmailView(lead, site)

	text, err := execText(confirmationText, view)
	if err != nil {
		return RenderedEmail{}, err
	}
	html, err := execHTML(confirmationHTML, view)
	if err != nil {
		return RenderedEmail{}, err
	}
	return RenderedEmail{
		Subject: "We received your message: " + lead.Subject,
		Text:    text,
		HTML:    html,
	}, nil
}

func execText(t *texttemplate.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("notify: execute %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func execHTML(t *htmltemplate.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("notify: execute %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
