package event

import (
	"strings"
	"testing"
	"time"
)

func TestExtractTagsMatchesVocabularySubstrings(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "multiple matches case-insensitive",
			content: "How does React manage State inside a component?",
			want:    []string{"react", "state", "component"},
		},
		{
			name:    "useMemo does not literally contain hooks",
			content: "What is useMemo?",
			want:    nil,
		},
		{
			name:    "substring inside a longer word still matches",
			content: "Is restatement a thing?",
			want:    []string{"state"},
		},
		{
			name:    "no matches",
			content: "When is the next break?",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTags(tt.content)
			if len(got) != len(tt.want) {
				t.Fatalf("expected tags %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("expected tags %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	for _, valid := range []string{"important", "review", "practice"} {
		if _, err := ParseCategory(valid); err != nil {
			t.Fatalf("expected %q to parse, got %v", valid, err)
		}
	}
	if _, err := ParseCategory("urgent"); err == nil {
		t.Fatal("expected unknown category to fail")
	}
}

func TestValidLanguage(t *testing.T) {
	if !ValidLanguage("es") {
		t.Fatal("expected es to be a valid language")
	}
	if ValidLanguage("xx") {
		t.Fatal("expected xx to be invalid")
	}
}

func TestNewIDUnique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewID(now)
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestTranscriptFormatLine(t *testing.T) {
	e := TranscriptEvent{
		Speaker:     "Sarah Chen",
		Text:        "  Welcome everyone.  ",
		TimestampMs: time.Date(2026, 3, 1, 10, 30, 5, 0, time.UTC).UnixMilli(),
	}
	line := e.FormatLine()
	if line != "[10:30:05] Sarah Chen: Welcome everyone." {
		t.Fatalf("unexpected line %q", line)
	}
	if strings.Contains(line, "  ") {
		t.Fatalf("expected trimmed text, got %q", line)
	}
}
