package prompt

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

const defaultTemplate = "Analyze this email and suggest a professional reply: " +
	"Subject: {{.Subject}} Content: {{.Body}}"

// Profile is the reply-suggestion prompt: an optional system prompt plus a
// user-message template over the email's subject and body. Loaded from a
// YAML file so the wording can be tuned without a rebuild.
type Profile struct {
	System   string `yaml:"system"`
	Template string `yaml:"template"`

	tmpl *template.Template
}

type templateData struct {
	Subject string
	Body    string
}

// Default returns the built-in profile.
func Default() *Profile {
	p := &Profile{Template: defaultTemplate}
	if err := p.compile(); err != nil {
		panic(err) // defaultTemplate is a constant; this cannot fail
	}
	return p
}

// Load reads a profile from path. A missing or empty path falls back to the
// default profile; a present but broken file is an error.
func Load(path string, logger *slog.Logger) (*Profile, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("prompt profile not found, using default", "path", path)
			return Default(), nil
		}
		return nil, fmt.Errorf("read prompt profile: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse prompt profile %s: %w", path, err)
	}
	if strings.TrimSpace(p.Template) == "" {
		p.Template = defaultTemplate
	}
	if err := p.compile(); err != nil {
		return nil, fmt.Errorf("prompt profile %s: %w", path, err)
	}

	logger.Info("prompt profile loaded", "path", path)
	return &p, nil
}

func (p *Profile) compile() error {
	tmpl, err := template.New("reply").Parse(p.Template)
	if err != nil {
		return fmt.Errorf("compile template: %w", err)
	}
	p.tmpl = tmpl
	return nil
}

// Render produces the user message for one email.
func (p *Profile) Render(subject, body string) (string, error) {
	var b strings.Builder
	if err := p.tmpl.Execute(&b, templateData{Subject: subject, Body: body}); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}
