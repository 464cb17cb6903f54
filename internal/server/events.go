package server

import (
	"time"

	"github.com/itzperi/omnimeet/internal/event"
	"github.com/itzperi/omnimeet/internal/session"
)

const EventVersion = 1

type Event struct {
	Type      string `json:"type"`
	Version   int    `json:"version"`
	Timestamp string `json:"timestamp"`
}

type StateChangedEvent struct {
	Event
	State session.State `json:"state"`
}

type TranscriptAppendedEvent struct {
	Event
	Entry event.TranscriptEvent `json:"entry"`
}

type TranslationAppendedEvent struct {
	Event
	Entry event.TranslationEvent `json:"entry"`
}

type ChatAppendedEvent struct {
	Event
	Message event.ChatMessage `json:"message"`
}

type QuestionsChangedEvent struct {
	Event
	Questions []event.Question `json:"questions"`
}

type AnalyticsUpdatedEvent struct {
	Event
	Metrics      []event.EngagementSample    `json:"metrics"`
	Participants []event.ParticipantActivity `json:"participants"`
}

type ProducerStatusEvent struct {
	Event
	Stream    string `json:"stream"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type ConnectionEvent struct {
	Event
	Connected bool `json:"connected"`
}

func newEvent(eventType string, now time.Time) Event {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return Event{
		Type:      eventType,
		Version:   EventVersion,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
	}
}
