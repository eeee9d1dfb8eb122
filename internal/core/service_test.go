package core_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"github.com/simone-trubian/medscribe/internal/core"
	"github.com/simone-trubian/medscribe/internal/core/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// Test Mocks defined locally to control behavior per test
type TestMockExtractor struct {
	mockExtract func(ctx context.Context, data []byte, mediaType string) (string, error)
}

func (m *TestMockExtractor) Extract(ctx context.Context, data []byte, mediaType string) (string, error) {
	return m.mockExtract(ctx, data, mediaType)
}

type TestMockLLM struct {
	calls        int
	mockComplete func(ctx context.Context, system, user, model string) (string, error)
}

func (m *TestMockLLM) Complete(ctx context.Context, system, user, model string) (string, error) {
	m.calls++
	return m.mockComplete(ctx, system, user, model)
}

func passthroughExtractor() *TestMockExtractor {
	return &TestMockExtractor{
		mockExtract: func(ctx context.Context, data []byte, mediaType string) (string, error) {
			return string(data), nil
		},
	}
}

func newService(t *testing.T, llm core.CompletionProvider) *core.NoteService {
	t.Helper()
	prompts, err := core.NewPromptBuilder(domain.TemplateDualOutput, "gpt-test")
	if err != nil {
		t.Fatalf("prompt builder: %v", err)
	}
	return core.NewNoteService(core.NewIntake(passthroughExtractor(), true, nil), prompts, llm, nil)
}

func TestNoteService_ProviderFailure(t *testing.T) {
	// Scenario: The provider is down (returns error)
	// Expected: ProviderError, single attempt, no outcome.

	llm := &TestMockLLM{
		mockComplete: func(ctx context.Context, system, user, model string) (string, error) {
			return "", errors.New("quota exceeded")
		},
	}

	service := newService(t, llm)
	gen, err := service.Generate(context.Background(), domain.NoteInput{TypedText: "BP 120/80"})

	var perr *domain.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected ProviderError, got %v", err)
	}
	if llm.calls != 1 {
		t.Errorf("Expected exactly one provider call, got %d", llm.calls)
	}
	if gen.Outcome != nil {
		t.Errorf("Expected no outcome on provider failure, got %v", gen.Outcome)
	}
}

func TestNoteService_EmptyInputSkipsProvider(t *testing.T) {
	llm := &TestMockLLM{
		mockComplete: func(ctx context.Context, system, user, model string) (string, error) {
			t.Fatal("LLM should not be called for empty input")
			return "", nil
		},
	}

	service := newService(t, llm)
	_, err := service.Generate(context.Background(), domain.NoteInput{TypedText: "   "})

	var ierr *domain.InputError
	if !errors.As(err, &ierr) || ierr.Kind != domain.InputEmpty {
		t.Fatalf("Expected empty InputError, got %v", err)
	}
}

func TestNoteService_UploadWins(t *testing.T) {
	// Scenario: typed note and an uploaded file are both present.
	// Expected: the provider sees the file text only.

	llm := &TestMockLLM{
		mockComplete: func(ctx context.Context, system, user, model string) (string, error) {
			if !strings.Contains(user, `Note: "BP 120/80"`) {
				t.Errorf("Expected prompt to embed the uploaded note, got %q", user)
			}
			if strings.Contains(user, "hello") {
				t.Error("Typed text leaked into the prompt")
			}
			if model != "gpt-test" {
				t.Errorf("Expected model 'gpt-test', got '%s'", model)
			}
			if system != "You are a helpful medical coding assistant." {
				t.Errorf("Unexpected system prompt %q", system)
			}
			return "[BEGIN_JSON]{}[END_JSON][BEGIN_SUMMARY]ok[END_SUMMARY]", nil
		},
	}

	service := newService(t, llm)
	gen, err := service.Generate(context.Background(), domain.NoteInput{
		TypedText: "hello",
		Upload:    &domain.Upload{Filename: "note.txt", MediaType: "text/plain", Data: []byte("BP 120/80")},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if gen.Prompt.NoteText != "BP 120/80" {
		t.Errorf("Expected resolved note 'BP 120/80', got '%s'", gen.Prompt.NoteText)
	}
	if _, ok := gen.Outcome.(domain.Structured); !ok {
		t.Errorf("Expected Structured outcome, got %T", gen.Outcome)
	}
}

func TestNoteService_RequestIDFromContext(t *testing.T) {
	llm := &TestMockLLM{
		mockComplete: func(ctx context.Context, system, user, model string) (string, error) {
			return core.RejectionSentence, nil
		},
	}

	service := newService(t, llm)
	ctx := core.WithRequestID(context.Background(), "req-42")
	gen, err := service.Generate(ctx, domain.NoteInput{TypedText: "weather is nice"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if gen.RequestID != "req-42" {
		t.Errorf("Expected request ID 'req-42', got '%s'", gen.RequestID)
	}
	if gen.Outcome.Kind() != domain.KindRejected {
		t.Errorf("Expected rejected outcome, got %s", gen.Outcome.Kind())
	}
	if gen.Completion.RawText != core.RejectionSentence {
		t.Errorf("Expected raw completion to pass through unchanged, got %q", gen.Completion.RawText)
	}
}

func TestNoteService_GeneratesRequestID(t *testing.T) {
	llm := &TestMockLLM{
		mockComplete: func(ctx context.Context, system, user, model string) (string, error) {
			if core.RequestID(ctx) == "" {
				t.Error("Expected request ID on provider context")
			}
			return "{}", nil
		},
	}

	service := newService(t, llm)
	gen, err := service.Generate(context.Background(), domain.NoteInput{TypedText: "Pt c/o chest pain"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(gen.RequestID) != 26 {
		t.Errorf("Expected a ULID request ID, got %q", gen.RequestID)
	}
}
