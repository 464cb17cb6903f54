package session

import (
	"fmt"
	"strings"

	"github.com/itzperi/omnimeet/internal/event"
)

// EngagementLabel is the metric the overall engagement level is read from.
const EngagementLabel = "Engagement Score"

// Filter narrows a panel's view. Filtering is a derived computation over a
// snapshot; it never touches the underlying log.
type Filter struct {
	Search      string
	Category    event.Category // empty means all categories
	StarredOnly bool
}

// View is the render-ready slice of data for exactly one panel. Only the
// section matching Panel is populated.
type View struct {
	Panel        Panel                     `json:"panel"`
	Status       ProducerStatus            `json:"status"`
	Transcript   []event.TranscriptEvent  `json:"transcript,omitempty"`
	Translations []event.TranslationEvent `json:"translations,omitempty"`
	Chat         []event.ChatMessage      `json:"chat,omitempty"`
	Questions    []event.Question         `json:"questions,omitempty"`
	Analytics    *AnalyticsView           `json:"analytics,omitempty"`
}

// AnalyticsView pairs the latest reading per metric with the live
// participant records and the overall engagement level.
type AnalyticsView struct {
	EngagementLevel string                      `json:"engagement_level"`
	Metrics         []event.EngagementSample    `json:"metrics"`
	Participants    []event.ParticipantActivity `json:"participants"`
	DurationSeconds int                         `json:"duration_seconds"`
}

// Multiplexer routes the store's current data to the one visible panel.
// It is strictly read-side: switching panels or rendering a view never
// starts, stops, or clears anything.
type Multiplexer struct {
	store *Store
}

func NewMultiplexer(store *Store) *Multiplexer {
	return &Multiplexer{store: store}
}

// ActiveView renders the currently selected panel.
func (m *Multiplexer) ActiveView(filter Filter) (View, error) {
	return m.ViewFor(m.store.State().ActivePanel, filter)
}

// ViewFor renders any panel from the store's current snapshot. The switch
// is exhaustive over the closed Panel set.
func (m *Multiplexer) ViewFor(panel Panel, filter Filter) (View, error) {
	view := View{Panel: panel}

	switch panel {
	case PanelTranscript:
		view.Status = m.store.StreamStatus(event.KindTranscript)
		view.Transcript = FilterTranscript(m.store.Transcript(), filter.Search)
	case PanelTranslation:
		view.Status = m.store.StreamStatus(event.KindTranslation)
		view.Translations = FilterTranslations(m.store.Translations(), filter.Search)
	case PanelChat:
		view.Status = m.store.StreamStatus(event.KindChat)
		view.Chat = FilterChat(m.store.ChatLog(), filter.Search)
	case PanelQuestions:
		view.Status = m.store.StreamStatus(event.KindQuestion)
		view.Questions = FilterQuestions(m.store.Questions(), filter)
	case PanelAnalytics:
		view.Status = m.store.StreamStatus(event.KindAnalytics)
		metrics := m.store.LatestSamples()
		view.Analytics = &AnalyticsView{
			EngagementLevel: engagementLevel(metrics),
			Metrics:         metrics,
			Participants:    m.store.Participants(),
			DurationSeconds: m.store.State().DurationSeconds,
		}
	default:
		return View{}, fmt.Errorf("%w: unknown panel %q", ErrValidation, panel)
	}

	return view, nil
}

// FilterTranscript keeps entries whose text or speaker matches the query,
// case-insensitive. An empty query keeps everything.
func FilterTranscript(entries []event.TranscriptEvent, query string) []event.TranscriptEvent {
	if query == "" {
		return entries
	}
	q := strings.ToLower(query)
	out := make([]event.TranscriptEvent, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Text), q) || strings.Contains(strings.ToLower(e.Speaker), q) {
			out = append(out, e)
		}
	}
	return out
}

func FilterTranslations(entries []event.TranslationEvent, query string) []event.TranslationEvent {
	if query == "" {
		return entries
	}
	q := strings.ToLower(query)
	out := make([]event.TranslationEvent, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.OriginalText), q) || strings.Contains(strings.ToLower(e.TranslatedText), q) {
			out = append(out, e)
		}
	}
	return out
}

func FilterChat(messages []event.ChatMessage, query string) []event.ChatMessage {
	if query == "" {
		return messages
	}
	q := strings.ToLower(query)
	out := make([]event.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		if strings.Contains(strings.ToLower(msg.Content), q) {
			out = append(out, msg)
		}
	}
	return out
}

// FilterQuestions applies category, star, and text filters. The text query
// matches content or any tag.
func FilterQuestions(questions []event.Question, filter Filter) []event.Question {
	q := strings.ToLower(filter.Search)
	out := make([]event.Question, 0, len(questions))
	for _, question := range questions {
		if filter.Category != "" && question.Category != filter.Category {
			continue
		}
		if filter.StarredOnly && !question.Starred {
			continue
		}
		if q != "" && !questionMatches(question, q) {
			continue
		}
		out = append(out, question)
	}
	return out
}

func questionMatches(q event.Question, query string) bool {
	if strings.Contains(strings.ToLower(q.Content), query) {
		return true
	}
	for _, tag := range q.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func engagementLevel(metrics []event.EngagementSample) string {
	for _, m := range metrics {
		if m.MetricLabel != EngagementLabel {
			continue
		}
		switch {
		case m.Value >= 80:
			return "high"
		case m.Value >= 60:
			return "medium"
		default:
			return "low"
		}
	}
	return "unknown"
}
