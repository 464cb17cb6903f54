package producer

import (
	"math/rand"
	"sync"
	"time"

	"github.com/itzperi/omnimeet/internal/clock"
	"github.com/itzperi/omnimeet/internal/event"
	"github.com/itzperi/omnimeet/internal/session"
)

// TranslationSource produces source/target text pairs for a language pair.
type TranslationSource interface {
	Next(sourceLang, targetLang string) (original, translated string, confidence float64, err error)
}

// Translation emits TranslationEvents at its own cadence, independent of
// the transcript stream. The language pair is read from the session state
// at emit time, so a swap is observed atomically.
type Translation struct {
	store    *session.Store
	sched    clock.Scheduler
	source   TranslationSource
	interval time.Duration
	runner
}

func NewTranslation(store *session.Store, sched clock.Scheduler, source TranslationSource, interval time.Duration) *Translation {
	if interval <= 0 {
		interval = 4 * time.Second
	}
	return &Translation{store: store, sched: sched, source: source, interval: interval}
}

func (p *Translation) Kind() event.Kind { return event.KindTranslation }

func (p *Translation) Start() error {
	p.begin(func() clock.CancelFunc {
		return p.sched.Every(p.interval, p.emit)
	})
	return nil
}

func (p *Translation) Stop() { p.end() }

func (p *Translation) emit() {
	if !p.running() {
		return
	}

	state := p.store.State()
	original, translated, confidence, err := p.source.Next(state.SourceLanguage, state.TargetLanguage)
	if err != nil {
		p.end()
		p.store.SetProducerUnavailable(event.KindTranslation, err.Error())
		return
	}

	_, _ = p.store.AppendTranslation(event.TranslationEvent{
		OriginalText:   original,
		TranslatedText: translated,
		SourceLanguage: state.SourceLanguage,
		TargetLanguage: state.TargetLanguage,
		Confidence:     confidence,
	})
}

// SimulatedTranslation cycles through fixed sentence pairs with confidence
// in the 0.92–1.00 range.
type SimulatedTranslation struct {
	mu    sync.Mutex
	pairs [][2]string
	idx   int
	rng   *rand.Rand
}

func NewSimulatedTranslation(seed int64) *SimulatedTranslation {
	return &SimulatedTranslation{
		pairs: [][2]string{
			{"Welcome everyone to today's workshop.", "Bienvenidos todos al taller de hoy."},
			{"Let's start with render props and their implementation.", "Comencemos con render props y su implementación."},
			{"The key benefit is code reusability across components.", "El beneficio clave es la reutilización de código entre componentes."},
		},
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (s *SimulatedTranslation) Next(_, _ string) (string, string, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pair := s.pairs[s.idx%len(s.pairs)]
	s.idx++
	confidence := 0.92 + s.rng.Float64()*0.08
	return pair[0], pair[1], confidence, nil
}
