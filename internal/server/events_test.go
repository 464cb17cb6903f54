package server

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/itzperi/omnimeet/internal/event"
	"github.com/itzperi/omnimeet/internal/session"
)

func TestEventSerialization(t *testing.T) {
	events := []any{
		StateChangedEvent{Event: newEvent("state_changed", time.Unix(1, 0))},
		TranscriptAppendedEvent{Event: newEvent("transcript_appended", time.Unix(1, 0)), Entry: event.TranscriptEvent{ID: "t-1", Speaker: "Sarah Chen", Text: "hello"}},
		TranslationAppendedEvent{Event: newEvent("translation_appended", time.Unix(1, 0))},
		ChatAppendedEvent{Event: newEvent("chat_appended", time.Unix(1, 0))},
		QuestionsChangedEvent{Event: newEvent("questions_changed", time.Unix(1, 0))},
		AnalyticsUpdatedEvent{Event: newEvent("analytics_updated", time.Unix(1, 0))},
		ProducerStatusEvent{Event: newEvent("producer_status", time.Unix(1, 0)), Stream: "transcript", Available: false, Reason: "source failed"},
		ConnectionEvent{Event: newEvent("connection", time.Unix(1, 0)), Connected: true},
	}

	for _, ev := range events {
		b, err := json.Marshal(ev)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}

		var payload map[string]any
		if err := json.Unmarshal(b, &payload); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}

		if payload["type"] == nil {
			t.Fatalf("missing type in payload: %s", string(b))
		}
		if payload["version"] == nil {
			t.Fatalf("missing version in payload: %s", string(b))
		}
		if payload["timestamp"] == nil {
			t.Fatalf("missing timestamp in payload: %s", string(b))
		}
	}
}

func TestHubBroadcastEventShape(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	hub.BroadcastProducerStatus(event.KindTranslation, session.ProducerStatus{Available: false, Reason: "source failed"})

	select {
	case msg := <-ch:
		var payload map[string]any
		if err := json.Unmarshal(msg, &payload); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if payload["type"] != "producer_status" {
			t.Fatalf("expected event type producer_status, got %#v", payload["type"])
		}
		if payload["stream"] != "translation" {
			t.Fatalf("expected translation stream, got %#v", payload["stream"])
		}
		if payload["reason"] != "source failed" {
			t.Fatalf("expected reason in payload, got %s", string(msg))
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for hub broadcast")
	}
}

func TestHubSlowClientDoesNotBlock(t *testing.T) {
	hub := NewHub()
	slow := hub.Subscribe()
	defer hub.Unsubscribe(slow)

	// Never drained; 64 buffered plus overflow must not block Broadcast.
	for i := 0; i < 200; i++ {
		hub.BroadcastStateChanged(session.State{DurationSeconds: i})
	}
}
