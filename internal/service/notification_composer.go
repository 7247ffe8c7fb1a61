package service

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/noah-isme/placement-api/internal/models"
)

// NotificationMessage is a rendered email ready for the mailer.
type NotificationMessage struct {
	Subject string
	HTML    string
}

// ComposerConfig carries the presentation settings shared by every template.
type ComposerConfig struct {
	Location     *time.Location
	PortalURL    string
	SupportEmail string
	ReminderLead time.Duration
}

// NotificationComposer renders interview emails. Output depends only on its inputs.
type NotificationComposer struct {
	cfg       ComposerConfig
	templates map[composerKey]*template.Template
}

type composerKey struct {
	stage models.NotificationStage
	role  models.RecipientRole
}

type composerView struct {
	RecipientName    string
	JobTitle         string
	Company          string
	When             string
	LeadMinutes      int
	MeetingReference string
	ApplicantCount   int
	PortalURL        string
	SupportEmail     string
}

const layoutHeader = `<!DOCTYPE html><html><body style="font-family:Arial,Helvetica,sans-serif;color:#1f2933;">
<p>Hello {{.RecipientName}},</p>
`

const layoutFooter = `{{if .PortalURL}}<p><a href="{{.PortalURL}}/interviews">View your interviews</a></p>{{end}}
{{if .SupportEmail}}<p style="font-size:12px;color:#7b8794;">Questions? Contact <a href="mailto:{{.SupportEmail}}">{{.SupportEmail}}</a>.</p>{{end}}
</body></html>`

var composerTemplates = map[composerKey]string{
	{models.StageScheduled, models.RecipientApplicant}: `<p>You have been invited to interview for <strong>{{.JobTitle}}</strong> at <strong>{{.Company}}</strong>.</p>
<p>When: {{.When}}</p>
{{if .MeetingReference}}<p>Meeting: {{.MeetingReference}}</p>{{else}}<p>The meeting details will be shared before the interview.</p>{{end}}
`,
	{models.StageScheduled, models.RecipientRecruiter}: `<p>Your interview for <strong>{{.JobTitle}}</strong> at <strong>{{.Company}}</strong> has been approved.</p>
<p>When: {{.When}}</p>
<p>Applicants invited: {{.ApplicantCount}}</p>
`,
	{models.StageImminent, models.RecipientApplicant}: `<p>Your interview for <strong>{{.JobTitle}}</strong> at <strong>{{.Company}}</strong> starts in about {{.LeadMinutes}} minutes.</p>
<p>When: {{.When}}</p>
<p>Meeting: {{.MeetingReference}}</p>
`,
	{models.StageImminent, models.RecipientRecruiter}: `<p>Your interview for <strong>{{.JobTitle}}</strong> with {{.ApplicantCount}} applicant(s) starts in about {{.LeadMinutes}} minutes.</p>
<p>When: {{.When}}</p>
<p>Meeting: {{.MeetingReference}}</p>
`,
}

// NewNotificationComposer parses every stage and role template.
func NewNotificationComposer(cfg ComposerConfig) (*NotificationComposer, error) {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.ReminderLead <= 0 {
		cfg.ReminderLead = 30 * time.Minute
	}
	cfg.PortalURL = strings.TrimRight(cfg.PortalURL, "/")

	templates := make(map[composerKey]*template.Template, len(composerTemplates))
	for key, body := range composerTemplates {
		name := fmt.Sprintf("%s_%s", key.stage, key.role)
		tmpl, err := template.New(name).Parse(layoutHeader + body + layoutFooter)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		templates[key] = tmpl
	}
	return &NotificationComposer{cfg: cfg, templates: templates}, nil
}

// Compose renders the email for one recipient of interview.
func (c *NotificationComposer) Compose(stage models.NotificationStage, role models.RecipientRole, interview *models.Interview, job *models.JobSummary, recipient models.Contact) (NotificationMessage, error) {
	tmpl, ok := c.templates[composerKey{stage: stage, role: role}]
	if !ok {
		return NotificationMessage{}, fmt.Errorf("no template for stage %q and role %q", stage, role)
	}
	if interview == nil {
		return NotificationMessage{}, fmt.Errorf("compose %s: interview is required", stage)
	}

	view := composerView{
		RecipientName:  recipientName(recipient),
		When:           c.FormatTime(interview.DateTime),
		LeadMinutes:    int(c.cfg.ReminderLead / time.Minute),
		ApplicantCount: len(interview.ApplicantIDs),
		PortalURL:      c.cfg.PortalURL,
		SupportEmail:   c.cfg.SupportEmail,
	}
	if job != nil {
		view.JobTitle = job.Title
		view.Company = job.Company
	}
	if view.JobTitle == "" {
		view.JobTitle = "the position"
	}
	if view.Company == "" {
		view.Company = "the hiring company"
	}
	if interview.HasMeetingReference() {
		view.MeetingReference = *interview.MeetingReference
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return NotificationMessage{}, fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return NotificationMessage{Subject: c.subject(stage, role, view), HTML: buf.String()}, nil
}

// FormatTime renders t in the configured display zone.
func (c *NotificationComposer) FormatTime(t time.Time) string {
	return t.In(c.cfg.Location).Format("Monday, 02 Jan 2006 at 15:04 MST")
}

func (c *NotificationComposer) subject(stage models.NotificationStage, role models.RecipientRole, view composerView) string {
	switch {
	case stage == models.StageScheduled && role == models.RecipientApplicant:
		return fmt.Sprintf("Interview scheduled: %s at %s", view.JobTitle, view.Company)
	case stage == models.StageScheduled:
		return fmt.Sprintf("Interview approved: %s", view.JobTitle)
	case role == models.RecipientApplicant:
		return fmt.Sprintf("Reminder: your %s interview starts in %d minutes", view.JobTitle, view.LeadMinutes)
	default:
		return fmt.Sprintf("Reminder: %s interview starts in %d minutes", view.JobTitle, view.LeadMinutes)
	}
}

func recipientName(contact models.Contact) string {
	if name := strings.TrimSpace(contact.FullName); name != "" {
		return name
	}
	return "there"
}
