package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/simone-trubian/medscribe/internal/core"
	"github.com/simone-trubian/medscribe/internal/core/domain"
)

var (
	headingStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	rejectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	bodyStyle     = lipgloss.NewStyle().PaddingLeft(2)
)

// renderOutcome writes an outcome the way the browser client shows it: the
// rejection message, the JSON/summary split, or the whole text as fallback
// JSON with no summary.
func renderOutcome(w io.Writer, o domain.Outcome) error {
	var b strings.Builder

	switch v := o.(type) {
	case domain.Rejected:
		b.WriteString(rejectedStyle.Render("Rejected"))
		b.WriteString("\n")
		b.WriteString(bodyStyle.Render(v.Message))
	case domain.Structured:
		b.WriteString(headingStyle.Render("JSON"))
		b.WriteString("\n")
		b.WriteString(bodyStyle.Render(prettyJSON(v.JSONText)))
		b.WriteString("\n\n")
		b.WriteString(headingStyle.Render("Summary"))
		b.WriteString("\n")
		b.WriteString(bodyStyle.Render(v.SummaryText))
	case domain.Unstructured:
		b.WriteString(warnStyle.Render("Output did not follow the expected format; summary unavailable"))
		b.WriteString("\n")
		b.WriteString(bodyStyle.Render(prettyJSON(v.CandidateText)))
	default:
		return fmt.Errorf("unknown outcome %T", o)
	}

	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func prettyJSON(text string) string {
	if formatted, ok := core.NormalizeJSON(text); ok {
		return formatted
	}
	return text
}
