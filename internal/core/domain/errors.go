package domain

import "fmt"

// InputErrorKind classifies client-caused failures.
type InputErrorKind int

const (
	InputEmpty InputErrorKind = iota
	InputUnsupportedMediaType
	InputTooLarge
)

// InputError is returned when the request itself is unusable. Its message is
// safe to show to the client verbatim.
type InputError struct {
	Kind      InputErrorKind
	MediaType string
}

func (e *InputError) Error() string {
	switch e.Kind {
	case InputEmpty:
		return "No note or file provided"
	case InputUnsupportedMediaType:
		return "Unsupported file type"
	case InputTooLarge:
		return "File too large"
	default:
		return "Invalid input"
	}
}

// ExtractionError wraps a failure to turn an upload into text.
type ExtractionError struct {
	MediaType string
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.MediaType, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ProviderError wraps any failure of the completion call.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error: %v", e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
