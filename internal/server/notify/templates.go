package notify

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/dmitrijs2005/claimdesk/internal/server/models"
	"gopkg.in/yaml.v3"
)

const (
	templateClaimReceived      = "claim_received"
	templateStatusChanged      = "status_changed"
	templateDocumentsRequested = "documents_requested"
	templateTest               = "test"
)

//go:embed templates.yaml
var defaultTemplates []byte

type templateSource struct {
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
}

type emailTemplate struct {
	subject *template.Template
	body    *template.Template
}

var funcs = template.FuncMap{
	"greeting": func(name string) string {
		if strings.TrimSpace(name) == "" {
			return "Dear customer"
		}
		return "Dear " + name
	},
	"statusLabel": StatusLabel,
	"date": func(t time.Time) string {
		return t.UTC().Format("02 Jan 2006 15:04 MST")
	},
}

// StatusLabel renders a status for people, e.g. "Under review".
func StatusLabel(s models.ClaimStatus) string {
	label := strings.ReplaceAll(string(s), "_", " ")
	if label == "" {
		return ""
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

// parseTemplates loads a YAML template set. Every template used by the
// Notifier must be present.
func parseTemplates(data []byte) (map[string]emailTemplate, error) {
	var sources map[string]templateSource
	if err := yaml.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	out := make(map[string]emailTemplate, len(sources))
	for name, src := range sources {
		subject, err := template.New(name + ".subject").Funcs(funcs).Option("missingkey=error").Parse(src.Subject)
		if err != nil {
			return nil, fmt.Errorf("template %s subject: %w", name, err)
		}
		body, err := template.New(name + ".body").Funcs(funcs).Option("missingkey=error").Parse(src.Body)
		if err != nil {
			return nil, fmt.Errorf("template %s body: %w", name, err)
		}
		out[name] = emailTemplate{subject: subject, body: body}
	}

	for _, name := range []string{templateClaimReceived, templateStatusChanged, templateDocumentsRequested, templateTest} {
		if _, ok := out[name]; !ok {
			return nil, fmt.Errorf("template %s missing", name)
		}
	}
	return out, nil
}

func (t emailTemplate) render(data any) (subject, body string, err error) {
	var sb, bb strings.Builder
	if err := t.subject.Execute(&sb, data); err != nil {
		return "", "", err
	}
	if err := t.body.Execute(&bb, data); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(sb.String()), strings.TrimSpace(bb.String()) + "\n", nil
}
