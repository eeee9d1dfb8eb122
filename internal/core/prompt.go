package core

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/simone-trubian/medscribe/internal/core/domain"
)

//go:embed templates.yaml
var templateCatalog []byte

type catalogFile struct {
	System    string `yaml:"system"`
	Templates []struct {
		Version string `yaml:"version"`
		User    string `yaml:"user"`
	} `yaml:"templates"`
}

// PromptBuilder renders notes into provider prompts for one template version.
type PromptBuilder struct {
	version domain.TemplateVersion
	model   string
	system  string
	user    *template.Template
}

// NewPromptBuilder loads the embedded catalog and selects a template version.
// An empty version selects the dual-output template.
func NewPromptBuilder(version domain.TemplateVersion, model string) (*PromptBuilder, error) {
	if version == "" {
		version = domain.TemplateDualOutput
	}

	var cat catalogFile
	if err := yaml.Unmarshal(templateCatalog, &cat); err != nil {
		return nil, fmt.Errorf("parse prompt catalog: %w", err)
	}

	for _, t := range cat.Templates {
		if domain.TemplateVersion(t.Version) != version {
			continue
		}
		tmpl, err := template.New(t.Version).Option("missingkey=error").Parse(t.User)
		if err != nil {
			return nil, fmt.Errorf("parse prompt template %s: %w", t.Version, err)
		}
		return &PromptBuilder{
			version: version,
			model:   model,
			system:  strings.TrimSpace(cat.System),
			user:    tmpl,
		}, nil
	}

	return nil, fmt.Errorf("unknown prompt template version %q", version)
}

// Version reports the selected template version.
func (b *PromptBuilder) Version() domain.TemplateVersion { return b.version }

// BuildPrompt embeds the note verbatim in the template.
func (b *PromptBuilder) BuildPrompt(noteText string) (domain.PromptRequest, error) {
	var sb strings.Builder
	if err := b.user.Execute(&sb, struct{ Note string }{Note: noteText}); err != nil {
		return domain.PromptRequest{}, fmt.Errorf("render prompt: %w", err)
	}

	return domain.PromptRequest{
		NoteText:        noteText,
		TemplateVersion: b.version,
		Model:           b.model,
		System:          b.system,
		User:            sb.String(),
	}, nil
}
