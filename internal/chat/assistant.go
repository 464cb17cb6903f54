package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/itzperi/omnimeet/internal/event"
	"github.com/itzperi/omnimeet/internal/session"
)

// Responder answers a user question given the recent transcript. The
// OpenAI client and the scripted fallback both implement it.
type Responder interface {
	Respond(ctx context.Context, question string, transcript []event.TranscriptEvent) (string, error)
}

// tailSize bounds how much transcript context a reply may reference.
const tailSize = 20

// Assistant is the meeting chat panel's engine: it appends the user
// message, asks the responder with the transcript tail as context, and
// appends the reply. All appends flow through the store so ordering and
// notification rules hold.
type Assistant struct {
	store     *session.Store
	responder Responder
	topic     string
	timeout   time.Duration
}

func NewAssistant(store *session.Store, responder Responder, topic string) *Assistant {
	return &Assistant{store: store, responder: responder, topic: topic, timeout: 30 * time.Second}
}

// Welcome seeds the opening assistant message.
func (a *Assistant) Welcome() error {
	greeting := fmt.Sprintf(
		"Hello! I'm your meeting assistant. I've been following %q and can answer questions or add context about the discussion. What would you like to know?",
		a.topic,
	)
	_, err := a.store.AppendChat(event.ChatMessage{Role: event.RoleAssistant, Content: greeting})
	return err
}

// Ask handles one user message and returns the assistant's reply. The
// user message is rejected before any mutation if empty; a responder
// failure leaves the user message in the log and surfaces a system notice.
func (a *Assistant) Ask(ctx context.Context, content string) (event.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return event.ChatMessage{}, fmt.Errorf("%w: empty chat message", session.ErrValidation)
	}

	if _, err := a.store.AppendChat(event.ChatMessage{Role: event.RoleUser, Content: content}); err != nil {
		return event.ChatMessage{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	transcript := a.store.Transcript()
	if len(transcript) > tailSize {
		transcript = transcript[len(transcript)-tailSize:]
	}

	reply, err := a.responder.Respond(ctx, content, transcript)
	if err != nil {
		_, _ = a.store.AppendChat(event.ChatMessage{
			Role:    event.RoleSystem,
			Content: "The assistant is unavailable right now. Try again in a moment.",
		})
		return event.ChatMessage{}, fmt.Errorf("assistant response: %w", err)
	}

	return a.store.AppendChat(event.ChatMessage{
		Role:    event.RoleAssistant,
		Content: reply,
		Context: "Referenced from: " + a.topic + " discussion",
	})
}
