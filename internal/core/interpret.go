package core

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/simone-trubian/medscribe/internal/core/domain"
)

// RejectionSentence is the reply the prompt asks for on non-clinical input.
const RejectionSentence = "Error: Input does not appear to be a medical or clinical note."

const rejectionMarker = "Input does not appear to be a medical or clinical note"

var (
	jsonBlock    = regexp.MustCompile(`(?s)\[BEGIN_JSON\](.*?)\[END_JSON\]`)
	summaryBlock = regexp.MustCompile(`(?s)\[BEGIN_SUMMARY\](.*?)\[END_SUMMARY\]`)
)

// Interpret classifies a raw completion. It never fails: text that does not
// follow the marker format comes back as Unstructured.
func Interpret(rawText string) domain.Outcome {
	if strings.Contains(rawText, rejectionMarker) {
		return domain.Rejected{Message: rawText}
	}

	j := jsonBlock.FindStringSubmatch(rawText)
	s := summaryBlock.FindStringSubmatch(rawText)
	if j == nil || s == nil {
		return domain.Unstructured{CandidateText: rawText}
	}

	return domain.Structured{
		JSONText:    strings.TrimSpace(j[1]),
		SummaryText: strings.TrimSpace(s[1]),
	}
}

// NormalizeJSON strips markdown code fences around a JSON candidate and, if
// what is left parses, returns it indented. ok is false for anything that is
// not valid JSON.
func NormalizeJSON(text string) (formatted string, ok bool) {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "```") {
		t = strings.TrimPrefix(t, "```")
		t = strings.TrimPrefix(t, "json")
		t = strings.TrimSuffix(strings.TrimSpace(t), "```")
		t = strings.TrimSpace(t)
	}
	if !json.Valid([]byte(t)) {
		return "", false
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(t), "", "  "); err != nil {
		return "", false
	}
	return buf.String(), true
}

// JSONCandidate returns the text a caller should treat as the JSON output of
// an outcome. Rejections have none.
func JSONCandidate(o domain.Outcome) (string, bool) {
	switch v := o.(type) {
	case domain.Structured:
		return v.JSONText, true
	case domain.Unstructured:
		return v.CandidateText, true
	default:
		return "", false
	}
}
