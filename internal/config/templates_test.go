package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadTemplatesConfig_Embedded(t *testing.T) {
	t.Setenv("ARC_TEMPLATES_PATH", "")

	cfg, err := LoadTemplatesConfig()
	if err != nil {
		t.Fatalf("LoadTemplatesConfig() failed: %v", err)
	}

	if len(cfg.Templates.Entries) != len(TemplateTypes) {
		t.Errorf("Expected %d templates, got %d", len(TemplateTypes), len(cfg.Templates.Entries))
	}

	for _, want := range TemplateTypes {
		found := false
		for _, entry := range cfg.Templates.Entries {
			if entry.FindingType == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Embedded templates missing %s", want)
		}
	}
}

func TestLoadTemplatesConfig_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "templates.yaml")

	configContent := `templates:
  default_model:
    temperature: 0.1
  entries:
    - finding_type: invalid
      description: "Contradiction"
      prompt: |
        Fix {{.original_answer}} for {{.question}}
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	t.Setenv("ARC_TEMPLATES_PATH", configPath)

	cfg, err := LoadTemplatesConfig()
	if err != nil {
		t.Fatalf("LoadTemplatesConfig() failed: %v", err)
	}

	if len(cfg.Templates.Entries) != 1 {
		t.Fatalf("Expected 1 template, got %d", len(cfg.Templates.Entries))
	}
	if cfg.Templates.Entries[0].FindingType != "INVALID" {
		t.Errorf("Expected finding type to be normalized to INVALID, got %s", cfg.Templates.Entries[0].FindingType)
	}
	if cfg.Templates.DefaultModel.MaxTokens != 1024 {
		t.Errorf("Expected default max_tokens=1024, got %d", cfg.Templates.DefaultModel.MaxTokens)
	}
	if cfg.Templates.DefaultModel.Temperature != 0.1 {
		t.Errorf("Expected temperature=0.1, got %f", cfg.Templates.DefaultModel.Temperature)
	}
}

func TestLoadTemplatesConfig_FileNotFound(t *testing.T) {
	t.Setenv("ARC_TEMPLATES_PATH", "/nonexistent/path/templates.yaml")

	_, err := LoadTemplatesConfig()
	if err == nil {
		t.Fatal("Expected error for nonexistent config file")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("Expected 'failed to read config file' error, got: %v", err)
	}
}

func TestParseTemplatesConfig_InvalidYAML(t *testing.T) {
	invalidContent := `templates:
  entries:
    - finding_type: INVALID
      prompt: "test"
      invalid_indent:
    wrong_level
`

	_, err := ParseTemplatesConfig([]byte(invalidContent))
	if err == nil {
		t.Fatal("Expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse YAML") {
		t.Errorf("Expected 'failed to parse YAML' error, got: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TemplatesConfig
		wantErr string
	}{
		{
			name:    "no templates",
			cfg:     TemplatesConfig{},
			wantErr: "no templates configured",
		},
		{
			name: "missing finding type",
			cfg: TemplatesConfig{Templates: TemplateSet{Entries: []TemplateConfiguration{
				{Prompt: "test"},
			}}},
			wantErr: "missing finding_type",
		},
		{
			name: "valid cannot carry a template",
			cfg: TemplatesConfig{Templates: TemplateSet{Entries: []TemplateConfiguration{
				{FindingType: "VALID", Prompt: "test"},
			}}},
			wantErr: "cannot carry a template",
		},
		{
			name: "unknown finding type",
			cfg: TemplatesConfig{Templates: TemplateSet{Entries: []TemplateConfiguration{
				{FindingType: "IMPOSSIBLE", Prompt: "test"},
			}}},
			wantErr: "cannot carry a template",
		},
		{
			name: "duplicate finding type",
			cfg: TemplatesConfig{Templates: TemplateSet{Entries: []TemplateConfiguration{
				{FindingType: "INVALID", Prompt: "one"},
				{FindingType: "INVALID", Prompt: "two"},
			}}},
			wantErr: "duplicate template",
		},
		{
			name: "missing prompt",
			cfg: TemplatesConfig{Templates: TemplateSet{Entries: []TemplateConfiguration{
				{FindingType: "INVALID", Prompt: "  "},
			}}},
			wantErr: "missing prompt",
		},
		{
			name: "invalid template syntax",
			cfg: TemplatesConfig{Templates: TemplateSet{Entries: []TemplateConfiguration{
				{FindingType: "INVALID", Prompt: "{{.question"},
			}}},
			wantErr: "invalid prompt template",
		},
		{
			name: "negative max tokens",
			cfg: TemplatesConfig{Templates: TemplateSet{
				DefaultModel: ModelConfig{MaxTokens: -1},
				Entries:      []TemplateConfiguration{{FindingType: "INVALID", Prompt: "test"}},
			}},
			wantErr: "negative max_tokens",
		},
		{
			name: "temperature too high",
			cfg: TemplatesConfig{Templates: TemplateSet{
				DefaultModel: ModelConfig{Temperature: 1.5},
				Entries:      []TemplateConfiguration{{FindingType: "INVALID", Prompt: "test"}},
			}},
			wantErr: "invalid temperature",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected %q error, got: %v", tt.wantErr, err)
			}
		})
	}
}
