package storage

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/itzperi/omnimeet/internal/event"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleArchive(id string, startedAt time.Time) Archive {
	return Archive{
		ID:                 id,
		Topic:              "React Hooks Workshop",
		StartedAt:          startedAt,
		EndedAt:            startedAt.Add(45 * time.Minute),
		DurationSeconds:    2700,
		ParticipantCount:   4,
		QuestionsCollected: 2,
		Transcript: []event.TranscriptEvent{
			{ID: "t-1", Speaker: "Sarah Chen", Text: "Welcome everyone.", TimestampMs: 1000, Confidence: 0.94},
			{ID: "t-2", Speaker: "Mike Johnson", Text: "Glad to be here.", TimestampMs: 4200, Confidence: 0.88},
		},
		Translations: []event.TranslationEvent{
			{ID: "tr-1", OriginalText: "Welcome everyone.", TranslatedText: "Bienvenidos a todos.", SourceLanguage: "en", TargetLanguage: "es", TimestampMs: 1500, Confidence: 0.97},
		},
		Questions: []event.Question{
			{ID: "q-1", Content: "How do hooks manage state?", Category: event.CategoryImportant, TimestampMs: 2000, Context: "Referenced from: React Hooks Workshop discussion", Tags: []string{"hooks", "state"}, Source: event.SourceManual},
			{ID: "q-2", Content: "Can we record this?", Category: event.CategoryReview, TimestampMs: 3000, Starred: true, Source: event.SourceVoice},
		},
	}
}

func TestSaveAndGetSession(t *testing.T) {
	store := newTestStore(t)
	startedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	saved := sampleArchive("sess-1", startedAt)
	if err := store.SaveSession(saved); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	got, err := store.GetSession("sess-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}

	if got.Topic != saved.Topic {
		t.Errorf("Topic = %q, want %q", got.Topic, saved.Topic)
	}
	if !got.StartedAt.Equal(saved.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, saved.StartedAt)
	}
	if got.DurationSeconds != 2700 {
		t.Errorf("DurationSeconds = %d, want 2700", got.DurationSeconds)
	}
	if len(got.Transcript) != 2 {
		t.Fatalf("len(Transcript) = %d, want 2", len(got.Transcript))
	}
	if got.Transcript[0].Speaker != "Sarah Chen" || got.Transcript[0].Confidence != 0.94 {
		t.Errorf("Transcript[0] = %+v", got.Transcript[0])
	}
	if len(got.Translations) != 1 {
		t.Fatalf("len(Translations) = %d, want 1", len(got.Translations))
	}
	if got.Translations[0].TargetLanguage != "es" {
		t.Errorf("Translations[0].TargetLanguage = %q, want es", got.Translations[0].TargetLanguage)
	}
	if len(got.Questions) != 2 {
		t.Fatalf("len(Questions) = %d, want 2", len(got.Questions))
	}
	if got.Questions[0].Category != event.CategoryImportant {
		t.Errorf("Questions[0].Category = %q", got.Questions[0].Category)
	}
	if len(got.Questions[0].Tags) != 2 || got.Questions[0].Tags[0] != "hooks" {
		t.Errorf("Questions[0].Tags = %v, want [hooks state]", got.Questions[0].Tags)
	}
	if got.Questions[1].Tags != nil {
		t.Errorf("Questions[1].Tags = %v, want nil", got.Questions[1].Tags)
	}
	if !got.Questions[1].Starred {
		t.Error("Questions[1].Starred = false, want true")
	}
	if got.Questions[1].Source != event.SourceVoice {
		t.Errorf("Questions[1].Source = %q, want voice", got.Questions[1].Source)
	}
}

func TestListSessionsOrdersByStartDescending(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"older", "newer", "newest"} {
		a := sampleArchive(id, base.Add(time.Duration(i)*time.Hour))
		a.Transcript, a.Translations, a.Questions = nil, nil, nil
		if err := store.SaveSession(a); err != nil {
			t.Fatalf("SaveSession(%s) error = %v", id, err)
		}
	}

	list, err := store.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len(list) = %d, want 3", len(list))
	}
	for i, want := range []string{"newest", "newer", "older"} {
		if list[i].ID != want {
			t.Errorf("list[%d].ID = %q, want %q", i, list[i].ID, want)
		}
	}
}

func TestGetSessionUnknownID(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetSession("missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetSession(missing) error = %v, want sql.ErrNoRows", err)
	}
}

func TestSaveSessionRejectsEmptyID(t *testing.T) {
	store := newTestStore(t)

	if err := store.SaveSession(Archive{}); err == nil {
		t.Error("SaveSession(empty id) error = nil, want error")
	}
}

func TestSaveSessionRejectsDuplicateID(t *testing.T) {
	store := newTestStore(t)
	a := sampleArchive("dup", time.Now().UTC())

	if err := store.SaveSession(a); err != nil {
		t.Fatalf("first SaveSession() error = %v", err)
	}
	if err := store.SaveSession(a); err == nil {
		t.Error("second SaveSession() error = nil, want primary key violation")
	}
}
