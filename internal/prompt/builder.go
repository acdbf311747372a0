package prompt

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/povarna/generative-ai-agents/arc-agent/internal/models"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/templates"
)

var (
	ErrMissingValue  = errors.New("required prompt value is empty")
	ErrValueTooLarge = errors.New("prompt value too large")
)

const (
	DefaultDomain       = "General"
	defaultViolations   = "No specific violations found"
	defaultSuggestions  = "Ensure compliance with policy requirements"
	defaultAppliedRules = "Policy rules"
	defaultExplanation  = "No explanation provided"
	defaultVariables    = "No variables extracted"
	defaultPolicy       = "No additional policy context provided"
)

type Builder struct {
	defaultDomain string
}

func NewBuilder(defaultDomain string) *Builder {
	if strings.TrimSpace(defaultDomain) == "" {
		defaultDomain = DefaultDomain
	}
	return &Builder{defaultDomain: defaultDomain}
}

// Build renders tmpl for one request and the merged finding of its dominant
// type. Values are substituted as plain text and never parsed as templates.
func (b *Builder) Build(tmpl *templates.Template, req models.RewriteRequest, finding models.Finding) (string, error) {
	if tmpl == nil {
		return "", fmt.Errorf("no template to build from")
	}

	data, err := b.values(req, finding)
	if err != nil {
		return "", err
	}

	return tmpl.Execute(data)
}

func (b *Builder) values(req models.RewriteRequest, f models.Finding) (map[string]string, error) {
	required := map[string]string{
		templates.Question:       req.UserQuery,
		templates.OriginalAnswer: req.OriginalResponse,
	}
	for _, name := range []string{templates.Question, templates.OriginalAnswer} {
		if strings.TrimSpace(required[name]) == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingValue, name)
		}
	}

	data := map[string]string{
		templates.Question:       required[templates.Question],
		templates.OriginalAnswer: required[templates.OriginalAnswer],
		templates.Domain:         orDefault(req.Domain, b.defaultDomain),
		templates.Explanation:    orDefault(f.Explanation, defaultExplanation),
		templates.Violations:     orDefault(bullets(f.Violations), defaultViolations),
		templates.Suggestions:    orDefault(bullets(f.Suggestions), defaultSuggestions),
		templates.AppliedRules:   orDefault(strings.Join(nonEmpty(f.AppliedRules), ", "), defaultAppliedRules),
		templates.Variables:      orDefault(variableLines(f.Variables), defaultVariables),
		templates.Policy:         orDefault(req.PolicyContext, defaultPolicy),
	}

	for name, value := range data {
		clean := stripControl(value)
		if len(clean) > models.MaxFieldBytes {
			return nil, fmt.Errorf("%w: %s is %d bytes", ErrValueTooLarge, name, len(clean))
		}
		data[name] = clean
	}

	return data, nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func nonEmpty(items []string) []string {
	var out []string
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func bullets(items []string) string {
	lines := nonEmpty(items)
	for i, line := range lines {
		lines[i] = "- " + line
	}
	return strings.Join(lines, "\n")
}

// variableLines renders variables sorted by name.
func variableLines(vars map[string]string) string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("- %s = %s", name, vars[name]))
	}
	return strings.Join(lines, "\n")
}

// stripControl drops control characters other than newline, tab and
// carriage return.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r == '\r' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
