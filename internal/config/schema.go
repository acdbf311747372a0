package config

// TemplatesConfig is the root of the rewrite templates file
type TemplatesConfig struct {
	Templates TemplateSet `yaml:"templates"`
}

// TemplateSet holds generation defaults and one entry per finding type
type TemplateSet struct {
	DefaultModel ModelConfig             `yaml:"default_model"`
	Entries      []TemplateConfiguration `yaml:"entries"`
}

// ModelConfig contains the generation parameters used for rewrites
type ModelConfig struct {
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// TemplateConfiguration maps a finding type to its remediation prompt
type TemplateConfiguration struct {
	FindingType string `yaml:"finding_type"`
	Description string `yaml:"description"`
	Prompt      string `yaml:"prompt"`
}
