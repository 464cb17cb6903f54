package export

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/itzperi/omnimeet/internal/event"
)

func sampleTranscript() []event.TranscriptEvent {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return []event.TranscriptEvent{
		{Speaker: "Sarah Chen", Text: "Welcome to the workshop.", TimestampMs: ts.UnixMilli()},
		{Speaker: "John Smith", Text: "Glad to be here.", TimestampMs: ts.Add(5 * time.Second).UnixMilli()},
	}
}

func TestTranscriptMarkdown(t *testing.T) {
	out := Transcript("Advanced React Patterns Workshop", sampleTranscript())

	if !strings.HasPrefix(out, "# Transcript — Advanced React Patterns Workshop") {
		t.Fatalf("missing title: %q", out)
	}
	if !strings.Contains(out, "**[10:00:00] Sarah Chen: Welcome to the workshop.**") {
		t.Fatalf("missing formatted entry: %q", out)
	}
}

func TestTranscriptMarkdownEmpty(t *testing.T) {
	out := Transcript("t", nil)
	if !strings.Contains(out, "No entries yet") {
		t.Fatalf("expected empty marker, got %q", out)
	}
}

func TestTranscriptText(t *testing.T) {
	out := TranscriptText(sampleTranscript())
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[1] != "[10:00:05] John Smith: Glad to be here." {
		t.Fatalf("unexpected line %q", lines[1])
	}
}

func TestStudyGuideGroupsAndStarsFirst(t *testing.T) {
	questions := []event.Question{
		{Content: "Plain important", Category: event.CategoryImportant},
		{Content: "Starred important", Category: event.CategoryImportant, Starred: true, Tags: []string{"react"}},
		{Content: "Practice this", Category: event.CategoryPractice},
	}

	out := StudyGuide("Workshop", questions)

	importantIdx := strings.Index(out, "## Important")
	practiceIdx := strings.Index(out, "## Practice")
	if importantIdx < 0 || practiceIdx < 0 || importantIdx > practiceIdx {
		t.Fatalf("expected category sections in order, got %q", out)
	}
	if strings.Contains(out, "## Review Later") {
		t.Fatal("empty categories must be omitted")
	}

	starredIdx := strings.Index(out, "★ Starred important")
	plainIdx := strings.Index(out, "- Plain important")
	if starredIdx < 0 || plainIdx < 0 || starredIdx > plainIdx {
		t.Fatalf("expected starred question first, got %q", out)
	}
	if !strings.Contains(out, "tags: react") {
		t.Fatalf("expected tags listed, got %q", out)
	}
}

func TestStudyGuideEmpty(t *testing.T) {
	out := StudyGuide("Workshop", nil)
	if !strings.Contains(out, "No questions captured") {
		t.Fatalf("expected empty marker, got %q", out)
	}
}

func TestWriterSave(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	path, err := w.Save("transcript.md", "hello")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("unexpected content %q", data)
	}
}
