package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/itzperi/omnimeet/internal/clock"
	"github.com/itzperi/omnimeet/internal/event"
)

type producerMock struct {
	kind event.Kind

	mu       sync.Mutex
	running  bool
	starts   int
	stops    int
	startErr error
}

func (p *producerMock) Kind() event.Kind { return p.kind }

func (p *producerMock) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startErr != nil {
		return p.startErr
	}
	if !p.running {
		p.running = true
		p.starts++
	}
	return nil
}

func (p *producerMock) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		p.running = false
		p.stops++
	}
}

func (p *producerMock) isRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func newTestController() (*Controller, *Store, *clock.Manual) {
	store := NewStore(fixedNow())
	sched := clock.NewManual()
	return NewController(store, sched, nil), store, sched
}

func TestDurationClockFollowsRecordingFlag(t *testing.T) {
	ctrl, store, sched := newTestController()

	if err := ctrl.SetFlag(FlagRecording, true); err != nil {
		t.Fatalf("start recording failed: %v", err)
	}
	sched.Advance(5 * time.Second)
	if got := store.State().DurationSeconds; got != 5 {
		t.Fatalf("expected 5s after 5 simulated seconds, got %d", got)
	}

	if err := ctrl.SetFlag(FlagRecording, false); err != nil {
		t.Fatalf("stop recording failed: %v", err)
	}
	sched.Advance(5 * time.Second)
	if got := store.State().DurationSeconds; got != 5 {
		t.Fatalf("expected clock frozen at 5s, got %d", got)
	}
}

func TestRapidToggleNetsToOriginalBehavior(t *testing.T) {
	ctrl, store, sched := newTestController()

	// Toggling on and off within the same instant leaves the clock stopped.
	_ = ctrl.SetFlag(FlagRecording, true)
	_ = ctrl.SetFlag(FlagRecording, false)
	sched.Advance(10 * time.Second)
	if got := store.State().DurationSeconds; got != 0 {
		t.Fatalf("expected 0s after instant toggle, got %d", got)
	}

	// Repeating the current value is a no-op.
	_ = ctrl.SetFlag(FlagRecording, true)
	_ = ctrl.SetFlag(FlagRecording, true)
	sched.Advance(3 * time.Second)
	if got := store.State().DurationSeconds; got != 3 {
		t.Fatalf("expected 3s, got %d", got)
	}
}

func TestRecordingStartsGatedProducers(t *testing.T) {
	ctrl, store, _ := newTestController()

	transcript := &producerMock{kind: event.KindTranscript}
	analytics := &producerMock{kind: event.KindAnalytics}
	translation := &producerMock{kind: event.KindTranslation}
	detector := &producerMock{kind: event.KindQuestion}
	ctrl.Register(transcript, false)
	ctrl.Register(analytics, false)
	ctrl.Register(translation, false)
	ctrl.Register(detector, true)
	ctrl.Start()

	if !detector.isRunning() {
		t.Fatal("question detector must run independent of recording")
	}
	if transcript.isRunning() || analytics.isRunning() {
		t.Fatal("gated producers must wait for the recording flag")
	}

	_ = ctrl.SetFlag(FlagRecording, true)
	if !transcript.isRunning() || !analytics.isRunning() {
		t.Fatal("transcript and analytics must start with recording")
	}
	if translation.isRunning() {
		t.Fatal("translation must stay off until enabled")
	}

	_ = ctrl.SetFlag(FlagTranslation, true)
	if !translation.isRunning() {
		t.Fatal("enabling translation while recording must start the producer")
	}

	_ = ctrl.SetFlag(FlagRecording, false)
	if transcript.isRunning() || analytics.isRunning() || translation.isRunning() {
		t.Fatal("stopping recording must suspend gated producers")
	}
	if !detector.isRunning() {
		t.Fatal("question detector must survive recording stop")
	}
	if !store.State().TranslationEnabled {
		t.Fatal("translation flag itself must be untouched")
	}
}

func TestTranslationEnabledBeforeRecording(t *testing.T) {
	ctrl, _, _ := newTestController()

	translation := &producerMock{kind: event.KindTranslation}
	ctrl.Register(translation, false)

	_ = ctrl.SetFlag(FlagTranslation, true)
	if translation.isRunning() {
		t.Fatal("translation must not start while not recording")
	}

	_ = ctrl.SetFlag(FlagRecording, true)
	if !translation.isRunning() {
		t.Fatal("translation must start with recording when pre-enabled")
	}
}

func TestTeardownStopsEverythingAndBlocksLateTicks(t *testing.T) {
	ctrl, store, sched := newTestController()

	transcript := &producerMock{kind: event.KindTranscript}
	detector := &producerMock{kind: event.KindQuestion}
	ctrl.Register(transcript, false)
	ctrl.Register(detector, true)
	ctrl.Start()

	_ = ctrl.SetFlag(FlagRecording, true)
	sched.Advance(2 * time.Second)

	var hookRan bool
	ctrl.OnTeardown(func() { hookRan = true })
	ctrl.Teardown()
	ctrl.Teardown() // idempotent

	if transcript.isRunning() || detector.isRunning() {
		t.Fatal("teardown must force-stop every producer")
	}
	if !hookRan {
		t.Fatal("teardown hook must run")
	}

	sched.Advance(10 * time.Second)
	if got := store.State().DurationSeconds; got != 2 {
		t.Fatalf("no tick may land after teardown, got %ds", got)
	}

	if err := ctrl.SetFlag(FlagRecording, true); err != nil {
		t.Fatalf("post-teardown toggle should be a silent no-op, got %v", err)
	}
	sched.Advance(time.Second)
	if got := store.State().DurationSeconds; got != 2 {
		t.Fatalf("post-teardown toggle must not restart the clock, got %ds", got)
	}
}

func TestHaltedProducerNeedsExplicitRestart(t *testing.T) {
	ctrl, store, _ := newTestController()

	transcript := &producerMock{kind: event.KindTranscript}
	ctrl.Register(transcript, false)

	store.SetProducerUnavailable(event.KindTranscript, "device lost")
	_ = ctrl.SetFlag(FlagRecording, true)
	if transcript.isRunning() {
		t.Fatal("recording must not resurrect a halted producer")
	}

	if err := ctrl.RestartProducer(event.KindTranscript); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if !transcript.isRunning() {
		t.Fatal("explicit restart must start the producer")
	}
	if !store.StreamStatus(event.KindTranscript).Available {
		t.Fatal("restart must clear the unavailable status")
	}
}

func TestSetFlagRejectsUnknownFlag(t *testing.T) {
	ctrl, _, _ := newTestController()
	if err := ctrl.SetFlag(Flag("haze"), true); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestStartFailureMarksProducerUnavailable(t *testing.T) {
	ctrl, store, _ := newTestController()

	broken := &producerMock{kind: event.KindAnalytics, startErr: errors.New("no telemetry feed")}
	ctrl.Register(broken, false)

	_ = ctrl.SetFlag(FlagRecording, true)
	status := store.StreamStatus(event.KindAnalytics)
	if status.Available {
		t.Fatal("expected analytics marked unavailable after start failure")
	}
	if status.Reason != "no telemetry feed" {
		t.Fatalf("expected reported reason, got %q", status.Reason)
	}
}
