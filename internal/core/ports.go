package core

import (
	"context"

	"github.com/simone-trubian/medscribe/internal/core/domain"
)

// --- Ports (Interfaces) ---

// CompletionProvider defines the contract for external AI providers.
type CompletionProvider interface {
	Complete(ctx context.Context, system, user, model string) (string, error)
}

// TextExtractor turns an uploaded file into UTF-8 text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, mediaType string) (string, error)
}

// NoteServicePort defines the main entry point for the business logic.
type NoteServicePort interface {
	Generate(ctx context.Context, input domain.NoteInput) (domain.Generation, error)
}
