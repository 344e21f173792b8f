package mail

import (
	"bytes"
	"fmt"
	"html/template"
)

// Template names understood by Render.
const (
	TemplateApproval     = "approval"
	TemplateRejection    = "rejection"
	TemplateNotification = "notification"
)

// TemplateData is interpolated into every template.
type TemplateData struct {
	RecipientName string
	Subject       string
	Heading       string
	Body          string
	Reason        string
	Link          string
	ActionLabel   string
}

const layout = `{{define "layout"}}<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Subject}}</title></head>
<body style="font-family:Arial,sans-serif;color:#222;max-width:600px;margin:0 auto;padding:24px">
<p>Hello {{if .RecipientName}}{{.RecipientName}}{{else}}there{{end}},</p>
{{template "content" .}}
{{if .Link}}<p><a href="{{.Link}}" style="display:inline-block;padding:10px 18px;background:#1d4ed8;color:#fff;text-decoration:none;border-radius:4px">{{if .ActionLabel}}{{.ActionLabel}}{{else}}Open dashboard{{end}}</a></p>{{end}}
<p style="color:#777;font-size:12px">This is an automated message from the internship portal.</p>
</body></html>{{end}}`

var contents = map[string]string{
	TemplateApproval: `{{define "content"}}<h2>Your account has been approved</h2>
<p>An administrator approved your internship portal registration. You can now sign in and start submitting your weekly logbook.</p>{{end}}`,
	TemplateRejection: `{{define "content"}}<h2>Your registration was not approved</h2>
<p>An administrator reviewed your internship portal registration and could not approve it.</p>
{{if .Reason}}<p><strong>Reason:</strong> {{.Reason}}</p>{{end}}{{end}}`,
	TemplateNotification: `{{define "content"}}{{if .Heading}}<h2>{{.Heading}}</h2>{{end}}<p>{{.Body}}</p>{{end}}`,
}

var templates = mustParse()

func mustParse() map[string]*template.Template {
	out := make(map[string]*template.Template, len(contents))
	for name, content := range contents {
		t := template.Must(template.New(name).Parse(layout))
		out[name] = template.Must(t.Parse(content))
	}
	return out
}

// Render executes the named template. Values are HTML escaped.
func Render(name string, data TemplateData) (string, error) {
	t, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("render %s email: %w", name, err)
	}
	return buf.String(), nil
}
