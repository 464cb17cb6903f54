package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/itzperi/omnimeet/internal/clock"
	"github.com/itzperi/omnimeet/internal/event"
)

// Producer is one periodic event source. Start and Stop must be
// idempotent; Stop must guarantee no further store mutation once it
// returns.
type Producer interface {
	Kind() event.Kind
	Start() error
	Stop()
}

// Controller owns the duration clock and the producer lifecycle, both
// driven by the recording flag. It is the only component that starts or
// stops anything; panels and the API mutate through it.
type Controller struct {
	store *Store
	sched clock.Scheduler
	log   logrus.FieldLogger

	mu          sync.Mutex
	producers   map[event.Kind]Producer
	independent map[event.Kind]bool
	clockCancel clock.CancelFunc
	clockToken  *cancelToken
	onTeardown  func()
	tornDown    bool
}

// cancelToken is checked immediately before every clock mutation so a
// cancelled timer can never land a late tick.
type cancelToken struct {
	cancelled atomic.Bool
}

func NewController(store *Store, sched clock.Scheduler, log logrus.FieldLogger) *Controller {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Controller{
		store:       store,
		sched:       sched,
		log:         log,
		producers:   make(map[event.Kind]Producer),
		independent: make(map[event.Kind]bool),
	}
}

// Register attaches a producer. Independent producers (the question
// detector) run regardless of the recording flag and only stop at
// teardown.
func (c *Controller) Register(p Producer, independent bool) {
	c.mu.Lock()
	c.producers[p.Kind()] = p
	c.independent[p.Kind()] = independent
	c.mu.Unlock()
}

// Start brings up the independent producers. Recording-gated producers
// wait for the flag.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for kind, p := range c.producers {
		if !c.independent[kind] {
			continue
		}
		if err := p.Start(); err != nil {
			c.log.WithField("producer", kind).WithError(err).Warn("producer failed to start")
			c.store.SetProducerUnavailable(kind, err.Error())
		}
	}
}

// SetFlag applies a toggle and reacts to it: the recording flag drives the
// duration clock and the gated producers, the translation flag gates the
// translation producer while recording. Toggling to the current value is a
// no-op.
func (c *Controller) SetFlag(flag Flag, value bool) error {
	if _, err := ParseFlag(string(flag)); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tornDown {
		return nil
	}

	changed := c.store.SetFlag(flag, value)
	if !changed {
		return nil
	}

	switch flag {
	case FlagRecording:
		if value {
			c.startClock()
			c.startGatedProducers()
		} else {
			c.stopClock()
			c.stopGatedProducers()
		}
	case FlagTranslation:
		if p, ok := c.producers[event.KindTranslation]; ok && c.store.State().Recording {
			if value {
				c.startProducer(p)
			} else {
				p.Stop()
			}
		}
	case FlagMic, FlagCamera, FlagScreenShare:
		// pure state transitions
	}
	return nil
}

// RestartProducer is the explicit user-initiated recovery path after a
// ProducerUnavailable halt.
func (c *Controller) RestartProducer(kind event.Kind) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tornDown {
		return nil
	}

	p, ok := c.producers[kind]
	if !ok {
		return ErrProducerUnavailable
	}

	c.store.ClearProducerStatus(kind)
	if !c.shouldRun(kind) {
		return nil
	}
	if err := p.Start(); err != nil {
		c.store.SetProducerUnavailable(kind, err.Error())
		return err
	}
	return nil
}

// OnTeardown registers a hook that runs once, after all producers and the
// clock have stopped. Used to archive the finished session.
func (c *Controller) OnTeardown(fn func()) {
	c.mu.Lock()
	c.onTeardown = fn
	c.mu.Unlock()
}

// Teardown force-stops the clock and every producer regardless of state.
// No mutation from any of them can be observed afterwards.
func (c *Controller) Teardown() {
	c.mu.Lock()
	if c.tornDown {
		c.mu.Unlock()
		return
	}
	c.tornDown = true
	c.stopClock()
	for _, p := range c.producers {
		p.Stop()
	}
	hook := c.onTeardown
	c.mu.Unlock()

	if hook != nil {
		hook()
	}
	c.log.Info("session torn down")
}

// shouldRun reports whether a producer belongs in the running set for the
// current flags. Caller holds c.mu.
func (c *Controller) shouldRun(kind event.Kind) bool {
	if c.independent[kind] {
		return true
	}
	state := c.store.State()
	if !state.Recording {
		return false
	}
	if kind == event.KindTranslation {
		return state.TranslationEnabled
	}
	return true
}

func (c *Controller) startClock() {
	token := &cancelToken{}
	c.clockToken = token
	c.clockCancel = c.sched.Every(time.Second, func() {
		if token.cancelled.Load() {
			return
		}
		c.store.IncrementDuration()
	})
}

func (c *Controller) stopClock() {
	if c.clockToken != nil {
		c.clockToken.cancelled.Store(true)
		c.clockToken = nil
	}
	if c.clockCancel != nil {
		c.clockCancel()
		c.clockCancel = nil
	}
}

func (c *Controller) startGatedProducers() {
	for kind, p := range c.producers {
		if c.independent[kind] {
			continue
		}
		if kind == event.KindTranslation && !c.store.State().TranslationEnabled {
			continue
		}
		c.startProducer(p)
	}
}

func (c *Controller) stopGatedProducers() {
	for kind, p := range c.producers {
		if c.independent[kind] {
			continue
		}
		p.Stop()
	}
}

func (c *Controller) startProducer(p Producer) {
	if !c.store.StreamStatus(p.Kind()).Available {
		// halted producers stay halted until an explicit restart
		return
	}
	if err := p.Start(); err != nil {
		c.log.WithField("producer", p.Kind()).WithError(err).Warn("producer failed to start")
		c.store.SetProducerUnavailable(p.Kind(), err.Error())
	}
}
