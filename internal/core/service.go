package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/simone-trubian/medscribe/internal/core/domain"
)

type requestIDKey struct{}

// WithRequestID attaches a request ID to ctx so the service logs under the
// same ID as the transport.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type NoteService struct {
	intake  *Intake
	prompts *PromptBuilder
	llm     CompletionProvider
	logger  *slog.Logger
}

func NewNoteService(intake *Intake, prompts *PromptBuilder, llm CompletionProvider, logger *slog.Logger) *NoteService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoteService{
		intake:  intake,
		prompts: prompts,
		llm:     llm,
		logger:  logger,
	}
}

// Generate runs one note through intake, prompt assembly, a single
// completion call and interpretation. Provider failures are not retried.
func (s *NoteService) Generate(ctx context.Context, input domain.NoteInput) (domain.Generation, error) {
	id := RequestID(ctx)
	if id == "" {
		id = ulid.Make().String()
		ctx = WithRequestID(ctx, id)
	}
	log := s.logger.With("request_id", id)

	// 1. Intake
	note, err := s.intake.ResolveNote(ctx, input)
	if err != nil {
		return domain.Generation{RequestID: id}, err
	}

	// 2. Prompt Assembly
	prompt, err := s.prompts.BuildPrompt(note)
	if err != nil {
		return domain.Generation{RequestID: id}, fmt.Errorf("build prompt: %w", err)
	}

	// 3. LLM Completion
	log.InfoContext(ctx, "requesting completion",
		"model", prompt.Model,
		"template", prompt.TemplateVersion,
		"note_len", len(note),
	)
	raw, err := s.llm.Complete(ctx, prompt.System, prompt.User, prompt.Model)
	if err != nil {
		return domain.Generation{RequestID: id, Prompt: prompt}, &domain.ProviderError{Err: err}
	}
	log.DebugContext(ctx, "completion received", "output", raw)

	// 4. Interpretation
	outcome := Interpret(raw)
	log.InfoContext(ctx, "completion interpreted", "kind", outcome.Kind())

	return domain.Generation{
		RequestID:  id,
		Prompt:     prompt,
		Completion: domain.CompletionResult{RawText: raw},
		Outcome:    outcome,
	}, nil
}
