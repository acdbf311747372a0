package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/templates.yaml
var defaultTemplates []byte

// TemplateTypes are the finding types that may carry a template.
var TemplateTypes = []string{"INVALID", "SATISFIABLE", "NO_DATA", "TRANSLATION_AMBIGUOUS", "TOO_COMPLEX"}

// LoadTemplatesConfig reads the file named by ARC_TEMPLATES_PATH, or the
// embedded defaults when the variable is unset.
func LoadTemplatesConfig() (*TemplatesConfig, error) {
	path := os.Getenv("ARC_TEMPLATES_PATH")
	if path == "" {
		return ParseTemplatesConfig(defaultTemplates)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return ParseTemplatesConfig(data)
}

// ParseTemplatesConfig decodes, defaults and validates a templates document.
func ParseTemplatesConfig(data []byte) (*TemplatesConfig, error) {
	var cfg TemplatesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *TemplatesConfig) {
	if cfg.Templates.DefaultModel.MaxTokens == 0 {
		cfg.Templates.DefaultModel.MaxTokens = 1024
	}
	for i := range cfg.Templates.Entries {
		cfg.Templates.Entries[i].FindingType = strings.ToUpper(strings.TrimSpace(cfg.Templates.Entries[i].FindingType))
	}
}

func (c *TemplatesConfig) Validate() error {
	if len(c.Templates.Entries) == 0 {
		return fmt.Errorf("no templates configured")
	}

	model := c.Templates.DefaultModel
	if model.MaxTokens < 0 {
		return fmt.Errorf("negative max_tokens: %d", model.MaxTokens)
	}
	if model.Temperature < 0 || model.Temperature > 1 {
		return fmt.Errorf("invalid temperature %.2f: must be within [0, 1]", model.Temperature)
	}

	seen := make(map[string]bool, len(c.Templates.Entries))
	for i, entry := range c.Templates.Entries {
		if entry.FindingType == "" {
			return fmt.Errorf("template %d: missing finding_type", i)
		}
		if !isTemplateType(entry.FindingType) {
			return fmt.Errorf("template %d: finding type %q cannot carry a template", i, entry.FindingType)
		}
		if seen[entry.FindingType] {
			return fmt.Errorf("duplicate template for finding type %s", entry.FindingType)
		}
		seen[entry.FindingType] = true

		if strings.TrimSpace(entry.Prompt) == "" {
			return fmt.Errorf("template %s: missing prompt", entry.FindingType)
		}
		if _, err := template.New(entry.FindingType).Parse(entry.Prompt); err != nil {
			return fmt.Errorf("template %s: invalid prompt template: %w", entry.FindingType, err)
		}
	}

	return nil
}

func isTemplateType(findingType string) bool {
	for _, t := range TemplateTypes {
		if t == findingType {
			return true
		}
	}
	return false
}
