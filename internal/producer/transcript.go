package producer

import (
	"math/rand"
	"sync"
	"time"

	"github.com/itzperi/omnimeet/internal/clock"
	"github.com/itzperi/omnimeet/internal/event"
	"github.com/itzperi/omnimeet/internal/session"
)

// TranscriptSource supplies speaker-attributed lines. A real diarization
// feed implements this; SimulatedTranscript is the default.
type TranscriptSource interface {
	Next() (speaker, text string, confidence float64, err error)
}

// Transcript emits one TranscriptEvent per interval while running.
type Transcript struct {
	store    *session.Store
	sched    clock.Scheduler
	source   TranscriptSource
	interval time.Duration
	runner
}

func NewTranscript(store *session.Store, sched clock.Scheduler, source TranscriptSource, interval time.Duration) *Transcript {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &Transcript{store: store, sched: sched, source: source, interval: interval}
}

func (p *Transcript) Kind() event.Kind { return event.KindTranscript }

func (p *Transcript) Start() error {
	p.begin(func() clock.CancelFunc {
		return p.sched.Every(p.interval, p.emit)
	})
	return nil
}

func (p *Transcript) Stop() { p.end() }

func (p *Transcript) emit() {
	if !p.running() {
		return
	}

	speaker, text, confidence, err := p.source.Next()
	if err != nil {
		// Report once, then halt. Recovery is an explicit restart.
		p.end()
		p.store.SetProducerUnavailable(event.KindTranscript, err.Error())
		return
	}

	_, _ = p.store.AppendTranscript(event.TranscriptEvent{
		Speaker:    speaker,
		Text:       text,
		Confidence: confidence,
	})
}

// SimulatedTranscript round-robins a speaker roster through a fixed set of
// lines, with confidence drawn from the 0.80–1.00 range.
type SimulatedTranscript struct {
	mu      sync.Mutex
	roster  []string
	lines   []string
	idx     int
	rng     *rand.Rand
}

func NewSimulatedTranscript(seed int64) *SimulatedTranscript {
	return &SimulatedTranscript{
		roster: []string{"Sarah Chen", "John Smith", "Maria Lopez", "David Kim"},
		lines: []string{
			"Welcome everyone to today's workshop. We'll be covering render props, higher-order components, and custom hooks.",
			"Let's start with render props. This pattern shares code between components using a prop whose value is a function.",
			"The key benefit is that we can abstract stateful behavior without changing the component hierarchy.",
			"Does anyone have questions about how render props differ from higher-order components?",
			"Higher-order components are functions that take a component and return a new component with enhanced functionality.",
			"Custom hooks allow us to extract component logic into reusable functions shared across components.",
		},
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (s *SimulatedTranscript) Next() (string, string, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	speaker := s.roster[s.idx%len(s.roster)]
	line := s.lines[s.idx%len(s.lines)]
	s.idx++
	confidence := 0.80 + s.rng.Float64()*0.20
	return speaker, line, confidence, nil
}
