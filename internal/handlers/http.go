package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/simone-trubian/medscribe/internal/core"
	"github.com/simone-trubian/medscribe/internal/core/domain"
)

const (
	msgUnreadableFile = "Could not read the uploaded file"
	msgServerError    = "Something went wrong when processing the note."
	msgBadRequest     = "Invalid request body"
	msgNotAllowed     = "Method not allowed"

	maxNoteBytes = 1 << 20
)

// UploadReceiver stages an uploaded file and returns it fully read.
type UploadReceiver interface {
	Receive(ctx context.Context, src io.Reader, filename, mediaType string) (*domain.Upload, error)
}

type HTTPHandler struct {
	service        core.NoteServicePort
	uploads        UploadReceiver
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewHTTPHandler(s core.NoteServicePort, uploads UploadReceiver, maxUploadBytes int64, logger *slog.Logger) *HTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPHandler{
		service:        s,
		uploads:        uploads,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

type generateResponse struct {
	Output string     `json:"output"`
	Result resultView `json:"result"`
}

type resultView struct {
	Kind          domain.OutcomeKind `json:"kind"`
	Message       string             `json:"message,omitempty"`
	JSON          string             `json:"json,omitempty"`
	Summary       string             `json:"summary,omitempty"`
	Candidate     string             `json:"candidate,omitempty"`
	FormattedJSON string             `json:"formatted_json,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type jsonRequest struct {
	Note string `json:"note"`
}

func (h *HTTPHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, msgNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+maxNoteBytes)

	input, err := h.readInput(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	// Context propagation is automatic here
	gen, err := h.service.Generate(r.Context(), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Output: gen.Completion.RawText,
		Result: viewOf(gen.Outcome),
	})
}

func (h *HTTPHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, msgNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) readInput(r *http.Request) (domain.NoteInput, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch ct {
	case "multipart/form-data":
		return h.readMultipart(r)
	case "application/json":
		var payload jsonRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return domain.NoteInput{}, tooLargeOr(err, errBadRequest)
		}
		return domain.NoteInput{TypedText: payload.Note}, nil
	default:
		if err := r.ParseForm(); err != nil {
			return domain.NoteInput{}, tooLargeOr(err, errBadRequest)
		}
		return domain.NoteInput{TypedText: r.PostFormValue("note")}, nil
	}
}

// readMultipart streams the form so the upload goes straight to the spool
// instead of being buffered by ParseMultipartForm.
func (h *HTTPHandler) readMultipart(r *http.Request) (domain.NoteInput, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return domain.NoteInput{}, errBadRequest
	}

	var input domain.NoteInput
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.NoteInput{}, tooLargeOr(err, errBadRequest)
		}

		err = h.readPart(r.Context(), part, &input)
		part.Close()
		if err != nil {
			return domain.NoteInput{}, err
		}
	}
	return input, nil
}

func (h *HTTPHandler) readPart(ctx context.Context, part *multipart.Part, input *domain.NoteInput) error {
	switch part.FormName() {
	case "note":
		// A note is never cut short; one over the cap is rejected.
		b, err := io.ReadAll(io.LimitReader(part, maxNoteBytes+1))
		if err != nil {
			return tooLargeOr(err, errBadRequest)
		}
		if len(b) > maxNoteBytes {
			return &domain.InputError{Kind: domain.InputTooLarge}
		}
		input.TypedText = string(b)
	case "file":
		if part.FileName() == "" {
			// Browsers send an empty file part when nothing was chosen.
			if _, err := io.Copy(io.Discard, part); err != nil {
				return tooLargeOr(err, errBadRequest)
			}
			return nil
		}
		up, err := h.uploads.Receive(ctx, part, part.FileName(), partMediaType(part))
		if err != nil {
			return tooLargeOr(err, err)
		}
		input.Upload = up
	}
	return nil
}

func partMediaType(part *multipart.Part) string {
	if ct := part.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	return mime.TypeByExtension(strings.ToLower(filepath.Ext(part.FileName())))
}

var errBadRequest = errors.New("bad request")

func tooLargeOr(err, fallback error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return &domain.InputError{Kind: domain.InputTooLarge}
	}
	return fallback
}

// fail maps the error taxonomy onto the flat {"error": ...} shape. Only
// input errors reach the client verbatim.
func (h *HTTPHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	log := h.logger.With("request_id", core.RequestID(r.Context()))

	var (
		inputErr      *domain.InputError
		extractionErr *domain.ExtractionError
		providerErr   *domain.ProviderError
	)
	switch {
	case errors.Is(err, errBadRequest):
		writeError(w, http.StatusBadRequest, msgBadRequest)
	case errors.As(err, &inputErr):
		log.InfoContext(r.Context(), "rejected input", "reason", inputErr.Error(), "media_type", inputErr.MediaType)
		writeError(w, http.StatusBadRequest, inputErr.Error())
	case errors.As(err, &extractionErr):
		log.WarnContext(r.Context(), "upload extraction failed", "error", err)
		writeError(w, http.StatusBadRequest, msgUnreadableFile)
	case errors.As(err, &providerErr):
		log.ErrorContext(r.Context(), "completion failed", "error", err)
		writeError(w, http.StatusInternalServerError, msgServerError)
	default:
		log.ErrorContext(r.Context(), "request failed", "error", err)
		writeError(w, http.StatusInternalServerError, msgServerError)
	}
}

func viewOf(o domain.Outcome) resultView {
	v := resultView{Kind: o.Kind()}
	switch o := o.(type) {
	case domain.Rejected:
		v.Message = o.Message
	case domain.Structured:
		v.JSON = o.JSONText
		v.Summary = o.SummaryText
	case domain.Unstructured:
		v.Candidate = o.CandidateText
	}
	if text, ok := core.JSONCandidate(o); ok {
		v.FormattedJSON, _ = core.NormalizeJSON(text)
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
