package event

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// Kind identifies one of the session's event streams.
type Kind string

const (
	KindTranscript  Kind = "transcript"
	KindTranslation Kind = "translation"
	KindChat        Kind = "chat"
	KindQuestion    Kind = "question"
	KindAnalytics   Kind = "analytics"
)

// Kinds lists every stream kind in panel order.
func Kinds() []Kind {
	return []Kind{KindTranscript, KindTranslation, KindChat, KindQuestion, KindAnalytics}
}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown stream kind %q", s)
}

var idCounter atomic.Uint64

// NewID returns a unique, time-ordered event identifier.
func NewID(now time.Time) string {
	return fmt.Sprintf("%d-%06d", now.UnixMilli(), idCounter.Add(1)%1_000_000)
}

type TranscriptEvent struct {
	ID          string  `json:"id"`
	Speaker     string  `json:"speaker"`
	Text        string  `json:"text"`
	TimestampMs int64   `json:"timestamp_ms"`
	Confidence  float64 `json:"confidence"`
}

// FormatLine renders the entry the way the transcript export and the
// clipboard copy do: [HH:MM:SS] Speaker: text.
func (e TranscriptEvent) FormatLine() string {
	ts := time.UnixMilli(e.TimestampMs).UTC().Format("15:04:05")
	return fmt.Sprintf("[%s] %s: %s", ts, e.Speaker, strings.TrimSpace(e.Text))
}

type TranslationEvent struct {
	ID             string  `json:"id"`
	OriginalText   string  `json:"original_text"`
	TranslatedText string  `json:"translated_text"`
	SourceLanguage string  `json:"source_language"`
	TargetLanguage string  `json:"target_language"`
	TimestampMs    int64   `json:"timestamp_ms"`
	Confidence     float64 `json:"confidence"`
}

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
	RoleSystem    ChatRole = "system"
)

type ChatMessage struct {
	ID          string   `json:"id"`
	Role        ChatRole `json:"role"`
	Content     string   `json:"content"`
	TimestampMs int64    `json:"timestamp_ms"`
	Context     string   `json:"context,omitempty"`
}

type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// EngagementSample is one periodic reading of a named metric. The latest
// sample per label supersedes earlier ones for current-value views; the
// full history stays in the stream for trend computation.
type EngagementSample struct {
	MetricLabel string  `json:"metric_label"`
	Value       float64 `json:"value"`
	Trend       Trend   `json:"trend"`
	TimestampMs int64   `json:"timestamp_ms"`
}

// ParticipantActivity is the live per-participant record. Engagement
// overwrites on update; question and speaking counters accumulate.
type ParticipantActivity struct {
	ParticipantID   string  `json:"participant_id"`
	Name            string  `json:"name"`
	EngagementScore float64 `json:"engagement_score"`
	QuestionsAsked  int     `json:"questions_asked"`
	SpeakingMinutes float64 `json:"speaking_minutes"`
}
