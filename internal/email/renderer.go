package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Data is the flat set of values a template can reference.
type Data map[string]any

// Rendered is a ready-to-send email body.
type Rendered struct {
	Subject string
	HTML    string
}

// DigestItem is one row of the overdue inspection digest.
type DigestItem struct {
	Title          string
	PropertyName   string
	UnitNumber     string
	ScheduledDate  string
	DaysOverdue    int
	TechnicianName string
	Link           string
}

// Renderer renders embedded html/template files keyed by TemplateKey.
type Renderer struct {
	html     map[TemplateKey]*template.Template
	subjects map[TemplateKey]*texttemplate.Template
}

// NewRenderer parses every embedded template and fails if any key is missing.
func NewRenderer() (*Renderer, error) {
	base, err := templateFS.ReadFile("templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("renderer: read base.html: %w", err)
	}

	r := &Renderer{
		html:     make(map[TemplateKey]*template.Template, len(AllTemplates)),
		subjects: make(map[TemplateKey]*texttemplate.Template, len(AllTemplates)),
	}

	for _, key := range AllTemplates {
		content, err := templateFS.ReadFile(fmt.Sprintf("templates/%s.html", key))
		if err != nil {
			return nil, fmt.Errorf("renderer: read %s.html: %w", key, err)
		}
		tmpl, err := template.New(string(key)).Parse(string(base))
		if err != nil {
			return nil, fmt.Errorf("renderer: parse base.html: %w", err)
		}
		if _, err := tmpl.Parse(string(content)); err != nil {
			return nil, fmt.Errorf("renderer: parse %s.html: %w", key, err)
		}
		r.html[key] = tmpl

		subject, ok := subjects[key]
		if !ok {
			return nil, fmt.Errorf("renderer: no subject for %s", key)
		}
		subjTmpl, err := texttemplate.New(string(key)).Parse(subject)
		if err != nil {
			return nil, fmt.Errorf("renderer: parse subject for %s: %w", key, err)
		}
		r.subjects[key] = subjTmpl
	}

	return r, nil
}

// Render produces the subject and HTML body for key.
func (r *Renderer) Render(key TemplateKey, data Data) (Rendered, error) {
	htmlTmpl, ok := r.html[key]
	if !ok {
		return Rendered{}, fmt.Errorf("renderer: unknown template %q", key)
	}

	values := make(Data, len(data)+1)
	for k, v := range data {
		values[k] = v
	}

	var subject bytes.Buffer
	if err := r.subjects[key].Execute(&subject, values); err != nil {
		return Rendered{}, fmt.Errorf("renderer: subject %s: %w", key, err)
	}
	values["Subject"] = cleanSubject(subject.String())

	var body bytes.Buffer
	if err := htmlTmpl.ExecuteTemplate(&body, "base", values); err != nil {
		return Rendered{}, fmt.Errorf("renderer: body %s: %w", key, err)
	}

	return Rendered{Subject: values["Subject"].(string), HTML: body.String()}, nil
}

// cleanSubject drops text/template's placeholder for absent map keys.
func cleanSubject(s string) string {
	s = strings.ReplaceAll(s, "<no value>", "")
	return strings.Join(strings.Fields(s), " ")
}
