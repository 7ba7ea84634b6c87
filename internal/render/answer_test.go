package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ragclient/internal/domain"
)

func TestCitationLabel(t *testing.T) {
	assert.Equal(t, "[1] doc.txt", CitationLabel(domain.SourceCitation{
		CitationID: domain.IntCitation(1),
		SourceName: "doc.txt",
	}))
	assert.Equal(t, "[a] notes", CitationLabel(domain.SourceCitation{
		CitationID: domain.StringCitation("a"),
		SourceName: "notes",
	}))
}

func TestAnswer_Plain(t *testing.T) {
	out := Answer(domain.AnswerResult{
		Answer: "X is Y",
		Sources: []domain.SourceCitation{
			{CitationID: domain.IntCitation(1), SourceName: "doc.txt", Excerpt: "Y is defined..."},
		},
		ProcessingTime: "120ms",
	}, PlainStyles())

	want := "Answer\nX is Y\n\nSources\n[1] doc.txt\n  Y is defined...\n\nRequest Time: 120ms (rough estimate)"
	assert.Equal(t, want, out)
}

func TestAnswer_KeepsSourceOrder(t *testing.T) {
	out := Answer(domain.AnswerResult{
		Answer: "a",
		Sources: []domain.SourceCitation{
			{CitationID: domain.IntCitation(2), SourceName: "second"},
			{CitationID: domain.IntCitation(1), SourceName: "first"},
		},
	}, PlainStyles())

	assert.Less(t, strings.Index(out, "[2] second"), strings.Index(out, "[1] first"))
}

func TestAnswer_NoSources(t *testing.T) {
	out := Answer(domain.AnswerResult{Answer: "Sorry"}, PlainStyles())
	assert.Contains(t, out, "Sources\n(none)\n")
}

func TestAnswer_IndentsMultilineExcerpt(t *testing.T) {
	out := Answer(domain.AnswerResult{
		Answer:  "a",
		Sources: []domain.SourceCitation{{CitationID: domain.IntCitation(1), SourceName: "s", Excerpt: "l1\nl2"}},
	}, PlainStyles())
	assert.Contains(t, out, "  l1\n  l2\n")
}
