package producer

import (
	"math/rand"
	"sync"
	"time"

	"github.com/itzperi/omnimeet/internal/clock"
	"github.com/itzperi/omnimeet/internal/event"
	"github.com/itzperi/omnimeet/internal/session"
)

// AnalyticsSource supplies engagement readings. A real telemetry feed can
// replace SimulatedAnalytics as long as it emits the same shapes.
type AnalyticsSource interface {
	Samples() ([]event.EngagementSample, error)
	Activities() ([]event.ParticipantActivity, error)
}

// Sampler periodically appends engagement samples and folds participant
// activity into the live records.
type Sampler struct {
	store    *session.Store
	sched    clock.Scheduler
	source   AnalyticsSource
	interval time.Duration
	runner
}

func NewSampler(store *session.Store, sched clock.Scheduler, source AnalyticsSource, interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Sampler{store: store, sched: sched, source: source, interval: interval}
}

func (p *Sampler) Kind() event.Kind { return event.KindAnalytics }

func (p *Sampler) Start() error {
	p.begin(func() clock.CancelFunc {
		return p.sched.Every(p.interval, p.emit)
	})
	return nil
}

func (p *Sampler) Stop() { p.end() }

func (p *Sampler) emit() {
	if !p.running() {
		return
	}

	samples, err := p.source.Samples()
	if err != nil {
		p.end()
		p.store.SetProducerUnavailable(event.KindAnalytics, err.Error())
		return
	}
	for _, sample := range samples {
		_, _ = p.store.AppendSample(sample)
	}

	activities, err := p.source.Activities()
	if err != nil {
		p.end()
		p.store.SetProducerUnavailable(event.KindAnalytics, err.Error())
		return
	}
	for _, activity := range activities {
		p.store.RecordParticipant(activity)
	}
}

type simulatedMetric struct {
	label string
	value float64
	trend event.Trend
}

type simulatedParticipant struct {
	id         string
	name       string
	engagement float64
}

// SimulatedAnalytics perturbs each metric by a bounded random walk clamped
// to [0,100], and refreshes a fixed participant roster. Speaking minutes
// accumulate per refresh; question counts bump occasionally.
type SimulatedAnalytics struct {
	mu           sync.Mutex
	metrics      []simulatedMetric
	participants []simulatedParticipant
	rng          *rand.Rand
}

func NewSimulatedAnalytics(seed int64) *SimulatedAnalytics {
	return &SimulatedAnalytics{
		metrics: []simulatedMetric{
			{label: session.EngagementLabel, value: 78, trend: event.TrendStable},
			{label: "Active Participation", value: 85, trend: event.TrendUp},
			{label: "Audio Quality", value: 94, trend: event.TrendStable},
			{label: "Focus Score", value: 72, trend: event.TrendDown},
			{label: "Comprehension", value: 88, trend: event.TrendUp},
		},
		participants: []simulatedParticipant{
			{id: "p1", name: "Sarah Chen", engagement: 92},
			{id: "p2", name: "John Smith", engagement: 76},
			{id: "p3", name: "Maria Lopez", engagement: 88},
			{id: "p4", name: "David Kim", engagement: 65},
		},
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (s *SimulatedAnalytics) Samples() ([]event.EngagementSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]event.EngagementSample, 0, len(s.metrics))
	for i := range s.metrics {
		step := (s.rng.Float64() - 0.5) * 6
		next := clamp(s.metrics[i].value+step, 0, 100)
		switch {
		case next > s.metrics[i].value:
			s.metrics[i].trend = event.TrendUp
		case next < s.metrics[i].value:
			s.metrics[i].trend = event.TrendDown
		default:
			s.metrics[i].trend = event.TrendStable
		}
		s.metrics[i].value = next
		out = append(out, event.EngagementSample{
			MetricLabel: s.metrics[i].label,
			Value:       next,
			Trend:       s.metrics[i].trend,
		})
	}
	return out, nil
}

func (s *SimulatedAnalytics) Activities() ([]event.ParticipantActivity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]event.ParticipantActivity, 0, len(s.participants))
	for i := range s.participants {
		s.participants[i].engagement = clamp(s.participants[i].engagement+(s.rng.Float64()-0.5)*8, 0, 100)

		questions := 0
		if s.rng.Float64() < 0.2 {
			questions = 1
		}
		out = append(out, event.ParticipantActivity{
			ParticipantID:   s.participants[i].id,
			Name:            s.participants[i].name,
			EngagementScore: s.participants[i].engagement,
			QuestionsAsked:  questions,
			SpeakingMinutes: s.rng.Float64() * 0.5,
		})
	}
	return out, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
