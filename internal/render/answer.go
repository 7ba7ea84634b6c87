// Package render formats an answer with its citations for display. The same
// layout serves the terminal UI (styled) and the command line (plain).
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ragclient/internal/domain"
)

// Style renders text. lipgloss.Style satisfies it.
type Style interface {
	Render(strs ...string) string
}

type plain struct{}

func (plain) Render(strs ...string) string { return strings.Join(strs, " ") }

// Styles used by Answer.
type Styles struct {
	Heading  Style
	Answer   Style
	Citation Style
	Excerpt  Style
	Metrics  Style
}

// PlainStyles leaves text untouched.
func PlainStyles() Styles {
	return Styles{Heading: plain{}, Answer: plain{}, Citation: plain{}, Excerpt: plain{}, Metrics: plain{}}
}

// TerminalStyles colours headings and citation labels.
func TerminalStyles() Styles {
	return Styles{
		Heading:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Answer:   plain{},
		Citation: lipgloss.NewStyle().Bold(true),
		Excerpt:  plain{},
		Metrics:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// CitationLabel returns "[<id>] <source>".
func CitationLabel(s domain.SourceCitation) string {
	return fmt.Sprintf("[%s] %s", s.CitationID, s.SourceName)
}

// ProcessingTime returns the request time line.
func ProcessingTime(v domain.DisplayValue) string {
	return fmt.Sprintf("Request Time: %s (rough estimate)", v)
}

// Answer lays out the answer text, then each source in order, then the
// processing time.
func Answer(a domain.AnswerResult, st Styles) string {
	var b strings.Builder
	b.WriteString(st.Heading.Render("Answer"))
	b.WriteString("\n")
	b.WriteString(st.Answer.Render(a.Answer))
	b.WriteString("\n\n")
	b.WriteString(st.Heading.Render("Sources"))
	b.WriteString("\n")
	if len(a.Sources) == 0 {
		b.WriteString("(none)\n")
	}
	for _, src := range a.Sources {
		b.WriteString(st.Citation.Render(CitationLabel(src)))
		b.WriteString("\n")
		for _, line := range strings.Split(src.Excerpt, "\n") {
			b.WriteString("  ")
			b.WriteString(st.Excerpt.Render(line))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(st.Metrics.Render(ProcessingTime(a.ProcessingTime)))
	return b.String()
}
