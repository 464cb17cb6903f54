package producer

import (
	"math/rand"
	"sync"
	"time"

	"github.com/itzperi/omnimeet/internal/clock"
	"github.com/itzperi/omnimeet/internal/event"
	"github.com/itzperi/omnimeet/internal/session"
)

// VoiceSource supplies the question captured by a voice trigger.
type VoiceSource interface {
	Next() (content string, err error)
}

// Detector is the question capture path. Manual submissions validate and
// append immediately; the voice path arms once, emits exactly one question
// after a bounded latency, then disarms itself. Arming again while a
// capture is pending is rejected, never double-armed.
//
// The detector runs independent of the recording flag: capturing a
// question is user annotation, not meeting audio.
type Detector struct {
	store   *session.Store
	sched   clock.Scheduler
	source  VoiceSource
	latency time.Duration
	topic   string

	mu        sync.Mutex
	enabled   bool
	armed     bool
	armCancel clock.CancelFunc
}

func NewDetector(store *session.Store, sched clock.Scheduler, source VoiceSource, latency time.Duration, topic string) *Detector {
	if latency <= 0 {
		latency = 2 * time.Second
	}
	return &Detector{store: store, sched: sched, source: source, latency: latency, topic: topic}
}

func (d *Detector) Kind() event.Kind { return event.KindQuestion }

func (d *Detector) Start() error {
	d.mu.Lock()
	d.enabled = true
	d.mu.Unlock()
	return nil
}

// Stop disarms any pending capture and refuses new ones.
func (d *Detector) Stop() {
	d.mu.Lock()
	d.enabled = false
	d.disarmLocked()
	d.mu.Unlock()
}

// Submit is the manual capture path.
func (d *Detector) Submit(content string, category event.Category) (event.Question, error) {
	return d.store.AddQuestion(content, category, event.SourceManual, d.topic)
}

// Arm starts one voice capture window. Returns ErrAlreadyArmed if a
// capture is already pending.
func (d *Detector) Arm() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.enabled {
		return session.ErrProducerUnavailable
	}
	if d.armed {
		return session.ErrAlreadyArmed
	}

	d.armed = true
	d.armCancel = d.sched.After(d.latency, d.fire)
	return nil
}

// Disarm cancels a pending capture without emitting.
func (d *Detector) Disarm() {
	d.mu.Lock()
	d.disarmLocked()
	d.mu.Unlock()
}

func (d *Detector) Armed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed
}

func (d *Detector) disarmLocked() {
	d.armed = false
	if d.armCancel != nil {
		d.armCancel()
		d.armCancel = nil
	}
}

func (d *Detector) fire() {
	d.mu.Lock()
	if !d.armed || !d.enabled {
		d.mu.Unlock()
		return
	}
	d.armed = false
	d.armCancel = nil
	d.mu.Unlock()

	content, err := d.source.Next()
	if err != nil {
		d.Stop()
		d.store.SetProducerUnavailable(event.KindQuestion, err.Error())
		return
	}

	_, _ = d.store.AddQuestion(content, event.CategoryImportant, event.SourceVoice, d.topic)
}

// SimulatedVoice returns one of the canned trigger phrases.
type SimulatedVoice struct {
	mu      sync.Mutex
	phrases []string
	rng     *rand.Rand
}

func NewSimulatedVoice(seed int64) *SimulatedVoice {
	return &SimulatedVoice{
		phrases: []string{
			"This is important - What are the main differences between useState and useReducer?",
			"Key concept - How does React's reconciliation algorithm work?",
			"Remember this - What are the benefits of using TypeScript with React?",
			"Important point - When should we use useCallback vs useMemo?",
		},
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (s *SimulatedVoice) Next() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phrases[s.rng.Intn(len(s.phrases))], nil
}
