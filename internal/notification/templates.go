package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/teamtasks/task-management-api/internal/models"
)

const displayTimeLayout = "Jan 2, 2006 at 3:04 PM"

var bodyTemplates = map[models.NotificationType]string{
	models.NotificationTaskAssigned: `## New Task Assigned

Hello {{.User.Name}},

You have been assigned a new task.

**{{.Task.Title}}**
{{if .Description}}
{{.Description}}
{{end}}
- Status: {{.Task.Status}}
{{- if .Deadline}}
- Due: {{.Deadline}}
{{- end}}
{{if .DueNote}}
> {{.DueNote}}
{{end}}
[View Task]({{.TaskURL}})

Task ID: #{{.Task.ID}}
`,
	models.NotificationTaskUpdated: `## Task Updated

Hello {{.User.Name}},

The task **{{.Task.Title}}** has been updated.

{{range .Changes}}- **{{.Field}}**: {{.Old}} → {{.New}}
{{end}}
[View Task]({{.TaskURL}})
`,
	models.NotificationTaskReminders: `## {{if .Overdue}}Overdue Task{{else}}Upcoming Deadline{{end}}

Hello {{.User.Name}},

{{if .Overdue}}The task **{{.Task.Title}}** is past its deadline.{{else}}The task **{{.Task.Title}}** is due soon.{{end}}

- Status: {{.Task.Status}}
- Due: {{.Deadline}}
{{if .DueNote}}
> {{.DueNote}}
{{end}}
[View Task]({{.TaskURL}})
`,
	models.NotificationWelcomeEmail: `## Welcome to Task Management!

Hello {{.User.Name}},

Your account has been created. Sign in to see the tasks assigned to you.

[Open Task Management]({{.FrontendURL}})

You can change which e-mails you receive at any time from your e-mail preferences.
`,
}

const layoutHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Subject}}</title></head>
<body style="font-family: Arial, sans-serif; color: #333; line-height: 1.6;">
<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
{{.Body}}
<hr>
<p style="font-size: 12px; color: #6c757d;">Task Management System &middot; <a href="{{.UnsubscribeURL}}">Manage e-mail preferences</a></p>
</div>
</body>
</html>
`

// changeLine is one row of a task_updated message.
type changeLine struct {
	Field string
	Old   string
	New   string
}

type templateData struct {
	User        models.User
	Task        models.Task
	Description string
	Deadline    string
	DueNote     string
	Overdue     bool
	Changes     []changeLine
	TaskURL     string
	FrontendURL string
}

// Renderer turns payloads into subject, markdown text and HTML bodies.
type Renderer struct {
	markdown       goldmark.Markdown
	bodies         map[models.NotificationType]*texttemplate.Template
	layout         *template.Template
	frontendURL    string
	unsubscribeURL string
}

// NewRenderer parses every template up front so a broken template fails at
// startup rather than on first send.
func NewRenderer(appURL, frontendURL string) (*Renderer, error) {
	bodies := make(map[models.NotificationType]*texttemplate.Template, len(bodyTemplates))
	for t, src := range bodyTemplates {
		tmpl, err := texttemplate.New(string(t)).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", t, err)
		}
		bodies[t] = tmpl
	}

	layout, err := template.New("layout").Parse(layoutHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout template: %w", err)
	}

	return &Renderer{
		markdown:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
		bodies:         bodies,
		layout:         layout,
		frontendURL:    strings.TrimRight(frontendURL, "/"),
		unsubscribeURL: strings.TrimRight(appURL, "/") + "/unsubscribe",
	}, nil
}

// UnsubscribeURL is advertised in the List-Unsubscribe header.
func (r *Renderer) UnsubscribeURL() string {
	return r.unsubscribeURL
}

// Subject returns the subject line for a payload.
func (r *Renderer) Subject(p Payload, now time.Time) string {
	switch p.Type {
	case models.NotificationTaskAssigned:
		return "New Task Assigned: " + p.Task.Title
	case models.NotificationTaskUpdated:
		return "Task Updated: " + p.Task.Title
	case models.NotificationTaskReminders:
		if p.Task.Deadline != nil && p.Task.Deadline.Before(now) {
			return "Overdue Task Reminder: " + p.Task.Title
		}
		return "Task Reminder: " + p.Task.Title
	case models.NotificationWelcomeEmail:
		return "Welcome to Task Management!"
	}
	return "Task Management notification"
}

// Render produces the markdown text part and the HTML part.
func (r *Renderer) Render(user models.User, p Payload, now time.Time) (string, string, error) {
	tmpl, ok := r.bodies[p.Type]
	if !ok {
		return "", "", fmt.Errorf("no template for notification type %s", p.Type)
	}

	data := templateData{
		User:        user,
		FrontendURL: r.frontendURL,
		Changes:     changeLines(p.Changes),
	}
	if p.Task != nil {
		data.Task = *p.Task
		data.TaskURL = fmt.Sprintf("%s/tasks/%d", r.frontendURL, p.Task.ID)
		if p.Task.Description != nil {
			data.Description = *p.Task.Description
		}
		if p.Task.Deadline != nil {
			data.Deadline = p.Task.Deadline.Format(displayTimeLayout)
			data.Overdue = p.Task.Deadline.Before(now)
			data.DueNote = dueNote(*p.Task.Deadline, now)
		}
	}

	var text bytes.Buffer
	if err := tmpl.Execute(&text, data); err != nil {
		return "", "", fmt.Errorf("failed to render %s template: %w", p.Type, err)
	}

	var body bytes.Buffer
	if err := r.markdown.Convert(text.Bytes(), &body); err != nil {
		return "", "", fmt.Errorf("failed to convert %s markdown: %w", p.Type, err)
	}

	var html bytes.Buffer
	err := r.layout.Execute(&html, struct {
		Subject        string
		Body           template.HTML
		UnsubscribeURL string
	}{
		Subject:        r.Subject(p, now),
		Body:           template.HTML(body.String()),
		UnsubscribeURL: r.unsubscribeURL,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to render layout: %w", err)
	}

	return text.String(), html.String(), nil
}

func dueNote(deadline, now time.Time) string {
	days := int(deadline.Sub(now).Hours() / 24)
	switch {
	case deadline.Before(now):
		overdue := -days
		return fmt.Sprintf("This task is overdue by %d %s.", overdue, plural(overdue, "day"))
	default:
		return fmt.Sprintf("This task is due in %d %s.", days, plural(days, "day"))
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func changeLines(changes Changes) []changeLine {
	if len(changes) == 0 {
		return nil
	}
	fields := make([]string, 0, len(changes))
	for f := range changes {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	lines := make([]changeLine, 0, len(fields))
	for _, f := range fields {
		c := changes[f]
		lines = append(lines, changeLine{
			Field: strings.ReplaceAll(f, "_", " "),
			Old:   formatValue(c.Old),
			New:   formatValue(c.New),
		})
	}
	return lines
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "(none)"
	case *string:
		if val == nil {
			return "(none)"
		}
		return *val
	case *time.Time:
		if val == nil {
			return "(none)"
		}
		return val.Format(displayTimeLayout)
	case time.Time:
		return val.Format(displayTimeLayout)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
