package event

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryImportant Category = "important"
	CategoryReview    Category = "review"
	CategoryPractice  Category = "practice"
)

func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryImportant, CategoryReview, CategoryPractice:
		return Category(s), nil
	default:
		return "", fmt.Errorf("unknown question category %q", s)
	}
}

type Source string

const (
	SourceManual Source = "manual"
	SourceVoice  Source = "voice"
	SourceAuto   Source = "auto"
)

// Question is the only entity that can be edited or deleted after capture.
type Question struct {
	ID          string   `json:"id"`
	Content     string   `json:"content"`
	Category    Category `json:"category"`
	TimestampMs int64    `json:"timestamp_ms"`
	Context     string   `json:"context"`
	Tags        []string `json:"tags"`
	Starred     bool     `json:"starred"`
	Source      Source   `json:"source"`
}

// TagVocabulary is the fixed keyword set matched against question content.
// Matching is literal case-insensitive substring membership, nothing
// smarter: "useMemo" does not produce a "hooks" tag.
var TagVocabulary = []string{"react", "hooks", "state", "props", "component", "typescript", "performance"}

func ExtractTags(content string) []string {
	lower := strings.ToLower(content)
	var tags []string
	for _, keyword := range TagVocabulary {
		if strings.Contains(lower, keyword) {
			tags = append(tags, keyword)
		}
	}
	return tags
}
