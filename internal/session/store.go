package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/itzperi/omnimeet/internal/event"
)

// Store is the single source of truth for meeting state and for every
// stream's accumulated log. All mutation goes through named operations;
// subscribers of the affected stream are notified after each one. Panels
// only ever see copies, never the internal slices.
type Store struct {
	now func() time.Time

	mu           sync.Mutex
	state        State
	transcript   []event.TranscriptEvent
	translations []event.TranslationEvent
	chat         []event.ChatMessage
	samples      []event.EngagementSample
	questions    []event.Question
	participants []event.ParticipantActivity
	lastStamp    map[event.Kind]int64
	status       map[event.Kind]ProducerStatus

	subMu      sync.Mutex
	stateSubs  map[chan struct{}]struct{}
	streamSubs map[event.Kind]map[chan struct{}]struct{}
}

// NewStore creates a store with all flags at their session-start values.
// A nil now falls back to time.Now; tests inject a deterministic clock.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	s := &Store{
		now:        now,
		state:      initialState(),
		lastStamp:  make(map[event.Kind]int64),
		status:     make(map[event.Kind]ProducerStatus),
		stateSubs:  make(map[chan struct{}]struct{}),
		streamSubs: make(map[event.Kind]map[chan struct{}]struct{}),
	}
	for _, kind := range event.Kinds() {
		s.streamSubs[kind] = make(map[chan struct{}]struct{})
		s.status[kind] = ProducerStatus{Available: true}
	}
	return s
}

// SetFlag toggles one meeting-wide flag and reports whether the value
// changed. It is a pure state transition; producer lifecycle reactions
// live in the Controller.
func (s *Store) SetFlag(flag Flag, value bool) bool {
	s.mu.Lock()
	var target *bool
	switch flag {
	case FlagRecording:
		target = &s.state.Recording
	case FlagMic:
		target = &s.state.MicOn
	case FlagCamera:
		target = &s.state.CameraOn
	case FlagScreenShare:
		target = &s.state.ScreenSharing
	case FlagTranslation:
		target = &s.state.TranslationEnabled
	default:
		s.mu.Unlock()
		return false
	}
	changed := *target != value
	*target = value
	s.mu.Unlock()

	if changed {
		s.notifyState()
	}
	return changed
}

// SelectPanel switches the active panel. Read-side only: no producer or
// log is touched.
func (s *Store) SelectPanel(panel Panel) error {
	if _, err := ParsePanel(string(panel)); err != nil {
		return err
	}

	s.mu.Lock()
	changed := s.state.ActivePanel != panel
	s.state.ActivePanel = panel
	s.mu.Unlock()

	if changed {
		s.notifyState()
	}
	return nil
}

// SetLanguages fixes the translation language pair.
func (s *Store) SetLanguages(source, target string) error {
	if !event.ValidLanguage(source) {
		return fmt.Errorf("%w: unknown source language %q", ErrValidation, source)
	}
	if !event.ValidLanguage(target) {
		return fmt.Errorf("%w: unknown target language %q", ErrValidation, target)
	}

	s.mu.Lock()
	s.state.SourceLanguage = source
	s.state.TargetLanguage = target
	s.mu.Unlock()

	s.notifyState()
	return nil
}

// SwapLanguages exchanges source and target as one atomic transition, so
// no observer can see a transient pair.
func (s *Store) SwapLanguages() (source, target string) {
	s.mu.Lock()
	s.state.SourceLanguage, s.state.TargetLanguage = s.state.TargetLanguage, s.state.SourceLanguage
	source, target = s.state.SourceLanguage, s.state.TargetLanguage
	s.mu.Unlock()

	s.notifyState()
	return source, target
}

func (s *Store) SetParticipantCount(n int) {
	if n < 0 {
		n = 0
	}
	s.mu.Lock()
	s.state.ParticipantCount = n
	s.mu.Unlock()
	s.notifyState()
}

// IncrementDuration advances the duration clock by one second and returns
// the new value. Only the Controller's clock tick calls this.
func (s *Store) IncrementDuration() int {
	s.mu.Lock()
	s.state.DurationSeconds++
	d := s.state.DurationSeconds
	s.mu.Unlock()

	s.notifyState()
	return d
}

// acceptStamp validates and, if needed, assigns an event timestamp for a
// stream. Zero means "stamp at append time". Explicit stamps must be
// strictly after the last accepted one. Caller holds s.mu.
func (s *Store) acceptStamp(kind event.Kind, ms int64) (int64, error) {
	last := s.lastStamp[kind]
	if ms == 0 {
		ms = s.now().UnixMilli()
		if ms <= last {
			ms = last + 1
		}
	} else if ms <= last {
		return 0, fmt.Errorf("%w: %s timestamp %d is not after %d", ErrStreamOrdering, kind, ms, last)
	}
	s.lastStamp[kind] = ms
	return ms, nil
}

// AppendTranscript appends a transcript entry, stamping its id and
// timestamp if unset. Out-of-order timestamps are rejected, never
// reordered.
func (s *Store) AppendTranscript(ev event.TranscriptEvent) (event.TranscriptEvent, error) {
	if strings.TrimSpace(ev.Text) == "" {
		return event.TranscriptEvent{}, fmt.Errorf("%w: empty transcript text", ErrValidation)
	}

	s.mu.Lock()
	ms, err := s.acceptStamp(event.KindTranscript, ev.TimestampMs)
	if err != nil {
		s.mu.Unlock()
		return event.TranscriptEvent{}, err
	}
	ev.TimestampMs = ms
	if ev.ID == "" {
		ev.ID = event.NewID(time.UnixMilli(ms))
	}
	s.transcript = append(s.transcript, ev)
	s.mu.Unlock()

	s.notifyStream(event.KindTranscript)
	return ev, nil
}

func (s *Store) AppendTranslation(ev event.TranslationEvent) (event.TranslationEvent, error) {
	if strings.TrimSpace(ev.OriginalText) == "" || strings.TrimSpace(ev.TranslatedText) == "" {
		return event.TranslationEvent{}, fmt.Errorf("%w: empty translation text", ErrValidation)
	}
	if !event.ValidLanguage(ev.SourceLanguage) || !event.ValidLanguage(ev.TargetLanguage) {
		return event.TranslationEvent{}, fmt.Errorf("%w: invalid language pair %s→%s", ErrValidation, ev.SourceLanguage, ev.TargetLanguage)
	}

	s.mu.Lock()
	ms, err := s.acceptStamp(event.KindTranslation, ev.TimestampMs)
	if err != nil {
		s.mu.Unlock()
		return event.TranslationEvent{}, err
	}
	ev.TimestampMs = ms
	if ev.ID == "" {
		ev.ID = event.NewID(time.UnixMilli(ms))
	}
	s.translations = append(s.translations, ev)
	s.mu.Unlock()

	s.notifyStream(event.KindTranslation)
	return ev, nil
}

func (s *Store) AppendChat(msg event.ChatMessage) (event.ChatMessage, error) {
	if strings.TrimSpace(msg.Content) == "" {
		return event.ChatMessage{}, fmt.Errorf("%w: empty chat message", ErrValidation)
	}

	s.mu.Lock()
	ms, err := s.acceptStamp(event.KindChat, msg.TimestampMs)
	if err != nil {
		s.mu.Unlock()
		return event.ChatMessage{}, err
	}
	msg.TimestampMs = ms
	if msg.ID == "" {
		msg.ID = event.NewID(time.UnixMilli(ms))
	}
	s.chat = append(s.chat, msg)
	s.mu.Unlock()

	s.notifyStream(event.KindChat)
	return msg, nil
}

func (s *Store) AppendSample(sample event.EngagementSample) (event.EngagementSample, error) {
	if strings.TrimSpace(sample.MetricLabel) == "" {
		return event.EngagementSample{}, fmt.Errorf("%w: empty metric label", ErrValidation)
	}

	s.mu.Lock()
	ms, err := s.acceptStamp(event.KindAnalytics, sample.TimestampMs)
	if err != nil {
		s.mu.Unlock()
		return event.EngagementSample{}, err
	}
	sample.TimestampMs = ms
	s.samples = append(s.samples, sample)
	s.mu.Unlock()

	s.notifyStream(event.KindAnalytics)
	return sample, nil
}

// AddQuestion captures a question. Content is validated before any
// mutation; tags are derived from the fixed vocabulary.
func (s *Store) AddQuestion(content string, category event.Category, source event.Source, context string) (event.Question, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return event.Question{}, fmt.Errorf("%w: empty question content", ErrValidation)
	}
	if _, err := event.ParseCategory(string(category)); err != nil {
		return event.Question{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	s.mu.Lock()
	ms, err := s.acceptStamp(event.KindQuestion, 0)
	if err != nil {
		s.mu.Unlock()
		return event.Question{}, err
	}
	q := event.Question{
		ID:          event.NewID(time.UnixMilli(ms)),
		Content:     content,
		Category:    category,
		TimestampMs: ms,
		Context:     context,
		Tags:        event.ExtractTags(content),
		Source:      source,
	}
	s.questions = append(s.questions, q)
	s.state.QuestionsCollected = len(s.questions)
	s.mu.Unlock()

	s.notifyStream(event.KindQuestion)
	s.notifyState()
	return q, nil
}

// QuestionPatch carries the fields an edit may change. Nil fields are
// left alone. Changing content re-derives the tag set.
type QuestionPatch struct {
	Content  *string
	Category *event.Category
	Starred  *bool
}

func (s *Store) UpdateQuestion(id string, patch QuestionPatch) (event.Question, error) {
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return event.Question{}, fmt.Errorf("%w: empty question content", ErrValidation)
	}
	if patch.Category != nil {
		if _, err := event.ParseCategory(string(*patch.Category)); err != nil {
			return event.Question{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	s.mu.Lock()
	idx := s.questionIndex(id)
	if idx < 0 {
		s.mu.Unlock()
		return event.Question{}, fmt.Errorf("%w: question %s", ErrNotFound, id)
	}
	q := s.questions[idx]
	if patch.Content != nil {
		q.Content = strings.TrimSpace(*patch.Content)
		q.Tags = event.ExtractTags(q.Content)
	}
	if patch.Category != nil {
		q.Category = *patch.Category
	}
	if patch.Starred != nil {
		q.Starred = *patch.Starred
	}
	s.questions[idx] = q
	s.mu.Unlock()

	s.notifyStream(event.KindQuestion)
	return q, nil
}

// ToggleStar flips a question's star.
func (s *Store) ToggleStar(id string) (event.Question, error) {
	s.mu.Lock()
	idx := s.questionIndex(id)
	if idx < 0 {
		s.mu.Unlock()
		return event.Question{}, fmt.Errorf("%w: question %s", ErrNotFound, id)
	}
	s.questions[idx].Starred = !s.questions[idx].Starred
	q := s.questions[idx]
	s.mu.Unlock()

	s.notifyStream(event.KindQuestion)
	return q, nil
}

func (s *Store) DeleteQuestion(id string) error {
	s.mu.Lock()
	idx := s.questionIndex(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: question %s", ErrNotFound, id)
	}
	s.questions = append(s.questions[:idx], s.questions[idx+1:]...)
	s.state.QuestionsCollected = len(s.questions)
	s.mu.Unlock()

	s.notifyStream(event.KindQuestion)
	s.notifyState()
	return nil
}

// questionIndex returns the position of id, or -1. Caller holds s.mu.
func (s *Store) questionIndex(id string) int {
	for i := range s.questions {
		if s.questions[i].ID == id {
			return i
		}
	}
	return -1
}

// RecordParticipant folds one activity reading into the live record:
// engagement overwrites, question and speaking counters accumulate.
func (s *Store) RecordParticipant(activity event.ParticipantActivity) {
	s.mu.Lock()
	found := false
	for i := range s.participants {
		if s.participants[i].ParticipantID == activity.ParticipantID {
			s.participants[i].EngagementScore = activity.EngagementScore
			s.participants[i].QuestionsAsked += activity.QuestionsAsked
			s.participants[i].SpeakingMinutes += activity.SpeakingMinutes
			if activity.Name != "" {
				s.participants[i].Name = activity.Name
			}
			found = true
			break
		}
	}
	if !found {
		s.participants = append(s.participants, activity)
	}
	s.state.ParticipantCount = len(s.participants)
	s.mu.Unlock()

	s.notifyStream(event.KindAnalytics)
}

// SetProducerUnavailable records a producer failure. Panels show it as a
// persistent unavailable status; there is no automatic retry.
func (s *Store) SetProducerUnavailable(kind event.Kind, reason string) {
	s.mu.Lock()
	s.status[kind] = ProducerStatus{Available: false, Reason: reason}
	s.mu.Unlock()
	s.notifyStream(kind)
}

// ClearProducerStatus marks a stream healthy again after an explicit
// producer restart.
func (s *Store) ClearProducerStatus(kind event.Kind) {
	s.mu.Lock()
	s.status[kind] = ProducerStatus{Available: true}
	s.mu.Unlock()
	s.notifyStream(kind)
}

// Reset returns the store to its session-start state, dropping all logs.
// This is the only operation that ever decreases durationSeconds.
func (s *Store) Reset() {
	s.mu.Lock()
	s.state = initialState()
	s.transcript = nil
	s.translations = nil
	s.chat = nil
	s.samples = nil
	s.questions = nil
	s.participants = nil
	s.lastStamp = make(map[event.Kind]int64)
	for _, kind := range event.Kinds() {
		s.status[kind] = ProducerStatus{Available: true}
	}
	s.mu.Unlock()

	s.notifyState()
	for _, kind := range event.Kinds() {
		s.notifyStream(kind)
	}
}

// State returns a copy of the current session state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) Transcript() []event.TranscriptEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.TranscriptEvent(nil), s.transcript...)
}

func (s *Store) Translations() []event.TranslationEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.TranslationEvent(nil), s.translations...)
}

func (s *Store) ChatLog() []event.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.ChatMessage(nil), s.chat...)
}

func (s *Store) Questions() []event.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]event.Question, len(s.questions))
	for i, q := range s.questions {
		q.Tags = append([]string(nil), q.Tags...)
		out[i] = q
	}
	return out
}

func (s *Store) Samples() []event.EngagementSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.EngagementSample(nil), s.samples...)
}

// LatestSamples returns the most recent sample per metric label, in first-seen
// label order.
func (s *Store) LatestSamples() []event.EngagementSample {
	s.mu.Lock()
	defer s.mu.Unlock()

	byLabel := make(map[string]int)
	var out []event.EngagementSample
	for _, sample := range s.samples {
		if i, ok := byLabel[sample.MetricLabel]; ok {
			out[i] = sample
			continue
		}
		byLabel[sample.MetricLabel] = len(out)
		out = append(out, sample)
	}
	return out
}

func (s *Store) Participants() []event.ParticipantActivity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.ParticipantActivity(nil), s.participants...)
}

func (s *Store) StreamStatus(kind event.Kind) ProducerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status[kind]
}

// Subscribe registers for notifications on one stream. Signals coalesce:
// a slow subscriber sees at least one pending signal, not one per event.
func (s *Store) Subscribe(kind event.Kind) chan struct{} {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	s.streamSubs[kind][ch] = struct{}{}
	s.subMu.Unlock()
	return ch
}

func (s *Store) Unsubscribe(kind event.Kind, ch chan struct{}) {
	s.subMu.Lock()
	delete(s.streamSubs[kind], ch)
	s.subMu.Unlock()
}

// SubscribeState registers for session-state change notifications.
func (s *Store) SubscribeState() chan struct{} {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	s.stateSubs[ch] = struct{}{}
	s.subMu.Unlock()
	return ch
}

func (s *Store) UnsubscribeState(ch chan struct{}) {
	s.subMu.Lock()
	delete(s.stateSubs, ch)
	s.subMu.Unlock()
}

func (s *Store) notifyStream(kind event.Kind) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.streamSubs[kind] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *Store) notifyState() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.stateSubs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
