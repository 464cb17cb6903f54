package server

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/itzperi/omnimeet/internal/event"
	"github.com/itzperi/omnimeet/internal/session"
)

type Hub struct {
	mu      sync.RWMutex
	clients map[chan []byte]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan []byte]struct{})}
}

func (h *Hub) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	close(ch)
}

func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (h *Hub) BroadcastStateChanged(state session.State) {
	h.broadcastEvent(StateChangedEvent{
		Event: newEvent("state_changed", time.Now().UTC()),
		State: state,
	})
}

func (h *Hub) BroadcastTranscript(entry event.TranscriptEvent) {
	h.broadcastEvent(TranscriptAppendedEvent{
		Event: newEvent("transcript_appended", time.Now().UTC()),
		Entry: entry,
	})
}

func (h *Hub) BroadcastTranslation(entry event.TranslationEvent) {
	h.broadcastEvent(TranslationAppendedEvent{
		Event: newEvent("translation_appended", time.Now().UTC()),
		Entry: entry,
	})
}

func (h *Hub) BroadcastChat(msg event.ChatMessage) {
	h.broadcastEvent(ChatAppendedEvent{
		Event:   newEvent("chat_appended", time.Now().UTC()),
		Message: msg,
	})
}

func (h *Hub) BroadcastQuestions(questions []event.Question) {
	h.broadcastEvent(QuestionsChangedEvent{
		Event:     newEvent("questions_changed", time.Now().UTC()),
		Questions: questions,
	})
}

func (h *Hub) BroadcastAnalytics(metrics []event.EngagementSample, participants []event.ParticipantActivity) {
	h.broadcastEvent(AnalyticsUpdatedEvent{
		Event:        newEvent("analytics_updated", time.Now().UTC()),
		Metrics:      metrics,
		Participants: participants,
	})
}

func (h *Hub) BroadcastProducerStatus(kind event.Kind, status session.ProducerStatus) {
	h.broadcastEvent(ProducerStatusEvent{
		Event:     newEvent("producer_status", time.Now().UTC()),
		Stream:    string(kind),
		Available: status.Available,
		Reason:    status.Reason,
	})
}

func (h *Hub) broadcastEvent(event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("event marshal error: %v", err)
		return
	}
	h.Broadcast(payload)
}
