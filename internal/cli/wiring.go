package cli

import (
	"errors"

	"github.com/spf13/afero"

	"github.com/simone-trubian/medscribe/internal/adapters"
	"github.com/simone-trubian/medscribe/internal/core"
	"github.com/simone-trubian/medscribe/internal/core/domain"
	"github.com/simone-trubian/medscribe/internal/handlers"
)

func (a *app) provider() (core.CompletionProvider, error) {
	p := a.cfg.Provider
	switch p.Kind {
	case "mock":
		return &adapters.MockLLM{Latency: p.MockLatency.Duration}, nil
	default:
		key := a.cfg.APIKey()
		if key == "" {
			return nil, errors.New("no API key: set " + p.APIKeyEnv + " or use provider.kind = \"mock\"")
		}
		return adapters.NewLLM(adapters.LLMConfig{
			BaseURL:     p.BaseURL,
			APIKey:      key,
			Temperature: p.Temperature,
			Timeout:     p.Timeout.Duration,
		}), nil
	}
}

func (a *app) promptBuilder() (*core.PromptBuilder, error) {
	return core.NewPromptBuilder(domain.TemplateVersion(a.cfg.Prompt.Version), a.cfg.Provider.Model)
}

func (a *app) noteService() (*core.NoteService, error) {
	llm, err := a.provider()
	if err != nil {
		return nil, err
	}
	prompts, err := a.promptBuilder()
	if err != nil {
		return nil, err
	}
	intake := core.NewIntake(adapters.NewExtractor(), a.cfg.Intake.AcceptPDF, a.logger)
	return core.NewNoteService(intake, prompts, llm, a.logger), nil
}

func (a *app) httpHandler(svc core.NoteServicePort) *handlers.HTTPHandler {
	spool := adapters.NewSpool(afero.NewOsFs(), a.cfg.Intake.SpoolDir, a.cfg.Intake.MaxUploadBytes)
	return handlers.NewHTTPHandler(svc, spool, a.cfg.Intake.MaxUploadBytes, a.logger)
}
