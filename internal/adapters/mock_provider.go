package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

var clinicalTerms = []string{
	"pt", "patient", "bp", "hr", "mg", "dx", "hx", "c/o", "sob", "pain",
	"fever", "diagnosis", "medication", "vitals", "prescribed", "symptom",
	"history", "exam", "treatment", "allergy",
}

// MockLLM simulates OpenAI without the bill. It answers with the
// dual-output format, or the rejection sentence for notes with no clinical
// vocabulary.
type MockLLM struct {
	Latency time.Duration
}

func (m *MockLLM) Complete(ctx context.Context, system, user, model string) (string, error) {
	// Simulate network latency
	select {
	case <-time.After(m.Latency):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	slog.DebugContext(ctx, "mock completion", "model", model)

	note := noteFromPrompt(user)
	if !looksClinical(note) {
		return "Error: Input does not appear to be a medical or clinical note.", nil
	}

	record, err := json.MarshalIndent(map[string]any{
		"source":       "mock",
		"model":        model,
		"note_excerpt": excerpt(note, 80),
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode mock record: %w", err)
	}

	return fmt.Sprintf("[BEGIN_JSON]\n%s\n[END_JSON]\n[BEGIN_SUMMARY]\nMock summary of a %d-character note.\n[END_SUMMARY]",
		record, len(note)), nil
}

func noteFromPrompt(user string) string {
	const open = `Note: "`
	i := strings.LastIndex(user, open)
	if i < 0 {
		return user
	}
	rest := user[i+len(open):]
	if j := strings.LastIndex(rest, `"`); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

func looksClinical(note string) bool {
	fields := strings.FieldsFunc(strings.ToLower(note), func(r rune) bool {
		return r == ' ' || r == '\n' || r == '\t' || r == ',' || r == '.' || r == ':' || r == ';'
	})
	for _, f := range fields {
		for _, term := range clinicalTerms {
			if f == term || (len(term) > 3 && strings.HasPrefix(f, term)) {
				return true
			}
		}
	}
	return false
}

func excerpt(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
