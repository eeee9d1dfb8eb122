package domain

// Upload is an attached note file, already read fully into memory.
type Upload struct {
	Filename  string
	MediaType string
	Data      []byte
}

// NoteInput represents the core input to the system.
type NoteInput struct {
	TypedText string
	// Upload is nil when no file was attached.
	Upload *Upload
}

// TemplateVersion selects the prompt template used to wrap a note.
type TemplateVersion string

const (
	// TemplateDualOutput asks for a marker-delimited JSON block and summary block.
	TemplateDualOutput TemplateVersion = "dual-v2"
	// TemplateLegacyJSON is the single raw-JSON prompt. Its responses carry no
	// markers and always interpret as Unstructured.
	TemplateLegacyJSON TemplateVersion = "json-v1"
)

// PromptRequest is the fully rendered prompt handed to a completion provider.
type PromptRequest struct {
	NoteText        string
	TemplateVersion TemplateVersion
	Model           string
	System          string
	User            string
}

// CompletionResult is the unprocessed text returned by the completion provider.
type CompletionResult struct {
	RawText string
}

// Generation is the result of one note run through the pipeline.
type Generation struct {
	RequestID  string
	Prompt     PromptRequest
	Completion CompletionResult
	Outcome    Outcome
}
