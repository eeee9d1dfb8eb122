package domain

// OutcomeKind names the variant of an Outcome.
type OutcomeKind string

const (
	KindRejected     OutcomeKind = "rejected"
	KindStructured   OutcomeKind = "structured"
	KindUnstructured OutcomeKind = "unstructured"
)

// Outcome is the interpreted form of a completion. Exactly one of Rejected,
// Structured or Unstructured implements it; callers switch on the concrete
// type instead of matching raw completion text.
type Outcome interface {
	Kind() OutcomeKind
	isOutcome()
}

// Rejected means the model judged the input non-clinical.
type Rejected struct {
	Message string `json:"message"`
}

// Structured carries both marker blocks, trimmed.
type Structured struct {
	JSONText    string `json:"json"`
	SummaryText string `json:"summary"`
}

// Unstructured carries the whole completion when the markers were absent or
// malformed. There is no summary.
type Unstructured struct {
	CandidateText string `json:"candidate"`
}

func (Rejected) Kind() OutcomeKind     { return KindRejected }
func (Structured) Kind() OutcomeKind   { return KindStructured }
func (Unstructured) Kind() OutcomeKind { return KindUnstructured }

func (Rejected) isOutcome()     {}
func (Structured) isOutcome()   {}
func (Unstructured) isOutcome() {}
