package templates

import (
	"bytes"
	"errors"
	"fmt"
	"text/template"

	"github.com/povarna/generative-ai-agents/arc-agent/internal/config"
	"github.com/povarna/generative-ai-agents/arc-agent/internal/models"
)

// Placeholder names available to every remediation template.
const (
	Question       = "question"
	OriginalAnswer = "original_answer"
	Domain         = "domain"
	Explanation    = "explanation"
	Violations     = "violations"
	Suggestions    = "suggestions"
	AppliedRules   = "applied_rules"
	Variables      = "variables"
	Policy         = "policy"
)

var Placeholders = []string{
	Question, OriginalAnswer, Domain, Explanation, Violations,
	Suggestions, AppliedRules, Variables, Policy,
}

var (
	// ErrNoTemplate is returned for VALID, which never gets rewritten.
	ErrNoTemplate       = errors.New("finding type has no remediation template")
	ErrTemplateNotFound = errors.New("template not found")
)

type Template struct {
	Type        models.FindingType
	Description string
	tmpl        *template.Template
}

// Execute renders the template. Nothing is returned on failure.
func (t *Template) Execute(data map[string]string) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", t.Type, err)
	}
	return buf.String(), nil
}

// Store holds one parsed template per finding type. It is read-only after
// NewStore returns and safe for concurrent use.
type Store struct {
	templates map[models.FindingType]*Template
	model     config.ModelConfig
}

func NewStore(cfg *config.TemplatesConfig) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("templates config is nil")
	}

	sample := make(map[string]string, len(Placeholders))
	for _, p := range Placeholders {
		sample[p] = p
	}

	store := &Store{
		templates: make(map[models.FindingType]*Template, len(cfg.Templates.Entries)),
		model:     cfg.Templates.DefaultModel,
	}

	for _, entry := range cfg.Templates.Entries {
		findingType := models.FindingType(entry.FindingType)
		if findingType == models.FindingValid {
			return nil, fmt.Errorf("template %s: %w", findingType, ErrNoTemplate)
		}
		if _, exists := store.templates[findingType]; exists {
			return nil, fmt.Errorf("duplicate template for finding type %s", findingType)
		}

		parsed, err := template.New(entry.FindingType).Option("missingkey=error").Parse(entry.Prompt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", findingType, err)
		}

		t := &Template{Type: findingType, Description: entry.Description, tmpl: parsed}
		// Catches references to names that are not placeholders.
		if _, err := t.Execute(sample); err != nil {
			return nil, err
		}

		store.templates[findingType] = t
	}

	return store, nil
}

// Require fails when any of the given finding types has no template.
func (s *Store) Require(types ...models.FindingType) error {
	var missing []string
	for _, t := range types {
		if _, ok := s.templates[t]; !ok {
			missing = append(missing, string(t))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrTemplateNotFound, missing)
	}
	return nil
}

func (s *Store) Lookup(findingType models.FindingType) (*Template, error) {
	if findingType == models.FindingValid {
		return nil, ErrNoTemplate
	}
	t, ok := s.templates[findingType]
	if !ok {
		return nil, fmt.Errorf("%w for %s", ErrTemplateNotFound, findingType)
	}
	return t, nil
}

func (s *Store) ModelConfig() config.ModelConfig {
	return s.model
}

func (s *Store) Len() int {
	return len(s.templates)
}
