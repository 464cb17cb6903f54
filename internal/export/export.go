// Package export serializes session data into flat text and markdown.
// Everything here is read-only over snapshots: exporting never touches
// core state.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/itzperi/omnimeet/internal/event"
)

// Transcript renders the full transcript log as markdown, one entry per
// line with speaker attribution.
func Transcript(title string, entries []event.TranscriptEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Transcript — %s\n\n", title)

	if len(entries) == 0 {
		b.WriteString("_No entries yet._\n")
		return b.String()
	}
	for _, e := range entries {
		b.WriteString("**")
		b.WriteString(e.FormatLine())
		b.WriteString("**\n")
	}
	return b.String()
}

// TranscriptText is the clipboard/flat-file form: plain lines, no markup.
func TranscriptText(entries []event.TranscriptEvent) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.FormatLine())
	}
	return strings.Join(lines, "\n")
}

// Translations renders original/translated pairs with their language codes.
func Translations(entries []event.TranslationEvent) string {
	var b strings.Builder
	b.WriteString("# Translations\n\n")
	for _, e := range entries {
		ts := time.UnixMilli(e.TimestampMs).UTC().Format("15:04:05")
		fmt.Fprintf(&b, "- [%s] (%s→%s) %s\n  %s\n", ts, e.SourceLanguage, e.TargetLanguage, e.OriginalText, e.TranslatedText)
	}
	return b.String()
}

// StudyGuide groups the captured questions by category, starred questions
// first within each group.
func StudyGuide(title string, questions []event.Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Study Guide — %s\n", title)

	categories := []event.Category{event.CategoryImportant, event.CategoryReview, event.CategoryPractice}
	headings := map[event.Category]string{
		event.CategoryImportant: "Important",
		event.CategoryReview:    "Review Later",
		event.CategoryPractice:  "Practice",
	}

	wrote := false
	for _, cat := range categories {
		var starred, rest []event.Question
		for _, q := range questions {
			if q.Category != cat {
				continue
			}
			if q.Starred {
				starred = append(starred, q)
			} else {
				rest = append(rest, q)
			}
		}
		if len(starred) == 0 && len(rest) == 0 {
			continue
		}

		wrote = true
		fmt.Fprintf(&b, "\n## %s\n\n", headings[cat])
		for _, q := range append(starred, rest...) {
			writeQuestion(&b, q)
		}
	}

	if !wrote {
		b.WriteString("\n_No questions captured._\n")
	}
	return b.String()
}

func writeQuestion(b *strings.Builder, q event.Question) {
	marker := "-"
	if q.Starred {
		marker = "- ★"
	}
	fmt.Fprintf(b, "%s %s\n", marker, q.Content)
	if len(q.Tags) > 0 {
		fmt.Fprintf(b, "  tags: %s\n", strings.Join(q.Tags, ", "))
	}
}
