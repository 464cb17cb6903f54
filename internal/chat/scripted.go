package chat

import (
	"context"
	"sync"

	"github.com/itzperi/omnimeet/internal/event"
)

// ScriptedResponder cycles through canned replies. It is the default when
// no API key is configured, so the chat panel works offline.
type ScriptedResponder struct {
	mu      sync.Mutex
	replies []string
	idx     int
}

func NewScriptedResponder() *ScriptedResponder {
	return &ScriptedResponder{
		replies: []string{
			"Based on what was just discussed, render props are particularly useful for sharing stateful logic without changing component structure.",
			"The main difference between higher-order components and custom hooks is that HOCs return enhanced components, while hooks return stateful values and functions.",
			"On performance: React.memo, useMemo, and useCallback should be used judiciously. Premature optimization can hurt more than help.",
			"The pattern being demonstrated follows composition over inheritance, which keeps components flexible and reusable.",
			"To summarize the last few minutes: custom hooks extract component logic into reusable functions and follow the same rules of hooks.",
		},
	}
}

func (s *ScriptedResponder) Respond(_ context.Context, _ string, _ []event.TranscriptEvent) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reply := s.replies[s.idx%len(s.replies)]
	s.idx++
	return reply, nil
}
