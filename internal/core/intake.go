package core

import (
	"context"
	"log/slog"
	"mime"
	"strings"

	"github.com/simone-trubian/medscribe/internal/core/domain"
)

const (
	MediaTypeText = "text/plain"
	MediaTypePDF  = "application/pdf"
)

// Intake resolves the effective note text of a request.
type Intake struct {
	extractor TextExtractor
	acceptPDF bool
	logger    *slog.Logger
}

func NewIntake(extractor TextExtractor, acceptPDF bool, logger *slog.Logger) *Intake {
	if logger == nil {
		logger = slog.Default()
	}
	return &Intake{
		extractor: extractor,
		acceptPDF: acceptPDF,
		logger:    logger,
	}
}

// ResolveNote returns the note text to send to the model. Text extracted from
// an upload takes precedence over typed text; typed text is only used when
// there is no upload or the upload extracted to blank text.
func (in *Intake) ResolveNote(ctx context.Context, input domain.NoteInput) (string, error) {
	var fileText string

	if up := input.Upload; up != nil {
		mediaType := NormalizeMediaType(up.MediaType)
		if !in.Accepts(mediaType) {
			return "", &domain.InputError{Kind: domain.InputUnsupportedMediaType, MediaType: up.MediaType}
		}

		text, err := in.extractor.Extract(ctx, up.Data, mediaType)
		if err != nil {
			return "", &domain.ExtractionError{MediaType: mediaType, Err: err}
		}
		fileText = text
	}

	if !isBlank(fileText) {
		if !isBlank(input.TypedText) {
			in.logger.DebugContext(ctx, "typed note discarded in favour of upload",
				"filename", input.Upload.Filename,
				"typed_len", len(input.TypedText),
			)
		}
		return fileText, nil
	}

	if isBlank(input.TypedText) {
		return "", &domain.InputError{Kind: domain.InputEmpty}
	}
	return input.TypedText, nil
}

// Accepts reports whether a normalized media type can be extracted.
func (in *Intake) Accepts(mediaType string) bool {
	switch mediaType {
	case MediaTypeText:
		return true
	case MediaTypePDF:
		return in.acceptPDF
	default:
		return false
	}
}

// NormalizeMediaType lower-cases a declared media type and drops parameters
// such as charset.
func NormalizeMediaType(declared string) string {
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(declared))
	}
	return mt
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
