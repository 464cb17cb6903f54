package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/itzperi/omnimeet/internal/event"
)

// Archive is the versioned snapshot of one ended session: final state
// plus the accumulated logs.
type Archive struct {
	ID                 string                   `json:"id"`
	Topic              string                   `json:"topic"`
	StartedAt          time.Time                `json:"started_at"`
	EndedAt            time.Time                `json:"ended_at"`
	DurationSeconds    int                      `json:"duration_seconds"`
	ParticipantCount   int                      `json:"participant_count"`
	QuestionsCollected int                      `json:"questions_collected"`
	Transcript         []event.TranscriptEvent  `json:"transcript"`
	Translations       []event.TranslationEvent `json:"translations"`
	Questions          []event.Question         `json:"questions"`
}

// Summary is the listing row for an archived session.
type Summary struct {
	ID                 string    `json:"id"`
	Topic              string    `json:"topic"`
	StartedAt          time.Time `json:"started_at"`
	EndedAt            time.Time `json:"ended_at"`
	DurationSeconds    int       `json:"duration_seconds"`
	QuestionsCollected int       `json:"questions_collected"`
}

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if strings.TrimSpace(dbPath) == "" {
		dbPath = filepath.Join("data", "omnimeet.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}

	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			topic TEXT NOT NULL DEFAULT '',
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			duration_seconds INTEGER NOT NULL,
			participant_count INTEGER NOT NULL,
			questions_collected INTEGER NOT NULL
		);
	`); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS transcript_events (
			id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			speaker TEXT NOT NULL,
			text TEXT NOT NULL,
			timestamp_ms INTEGER NOT NULL,
			confidence REAL NOT NULL,
			FOREIGN KEY(session_id) REFERENCES sessions(id) ON DELETE CASCADE
		);
	`); err != nil {
		return fmt.Errorf("create transcript_events table: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS translation_events (
			id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			original_text TEXT NOT NULL,
			translated_text TEXT NOT NULL,
			source_language TEXT NOT NULL,
			target_language TEXT NOT NULL,
			timestamp_ms INTEGER NOT NULL,
			confidence REAL NOT NULL,
			FOREIGN KEY(session_id) REFERENCES sessions(id) ON DELETE CASCADE
		);
	`); err != nil {
		return fmt.Errorf("create translation_events table: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS questions (
			id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			content TEXT NOT NULL,
			category TEXT NOT NULL,
			timestamp_ms INTEGER NOT NULL,
			context TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '',
			starred INTEGER NOT NULL DEFAULT 0,
			source TEXT NOT NULL,
			FOREIGN KEY(session_id) REFERENCES sessions(id) ON DELETE CASCADE
		);
	`); err != nil {
		return fmt.Errorf("create questions table: %w", err)
	}

	if _, err := s.db.Exec("CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)"); err != nil {
		return fmt.Errorf("create sessions index: %w", err)
	}
	if _, err := s.db.Exec("CREATE INDEX IF NOT EXISTS idx_transcript_session ON transcript_events(session_id, timestamp_ms)"); err != nil {
		return fmt.Errorf("create transcript index: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveSession persists one archive in a single transaction.
func (s *SQLiteStore) SaveSession(a Archive) error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("archive id is required")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`INSERT INTO sessions(id, topic, started_at, ended_at, duration_seconds, participant_count, questions_collected)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.Topic,
		a.StartedAt.UTC().Format(time.RFC3339Nano),
		a.EndedAt.UTC().Format(time.RFC3339Nano),
		a.DurationSeconds,
		a.ParticipantCount,
		a.QuestionsCollected,
	); err != nil {
		return fmt.Errorf("insert session %s: %w", a.ID, err)
	}

	for _, e := range a.Transcript {
		if _, err := tx.Exec(
			`INSERT INTO transcript_events(id, session_id, speaker, text, timestamp_ms, confidence) VALUES(?, ?, ?, ?, ?, ?)`,
			e.ID, a.ID, e.Speaker, e.Text, e.TimestampMs, e.Confidence,
		); err != nil {
			return fmt.Errorf("insert transcript event: %w", err)
		}
	}

	for _, e := range a.Translations {
		if _, err := tx.Exec(
			`INSERT INTO translation_events(id, session_id, original_text, translated_text, source_language, target_language, timestamp_ms, confidence)
			 VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, a.ID, e.OriginalText, e.TranslatedText, e.SourceLanguage, e.TargetLanguage, e.TimestampMs, e.Confidence,
		); err != nil {
			return fmt.Errorf("insert translation event: %w", err)
		}
	}

	for _, q := range a.Questions {
		starred := 0
		if q.Starred {
			starred = 1
		}
		if _, err := tx.Exec(
			`INSERT INTO questions(id, session_id, content, category, timestamp_ms, context, tags, starred, source)
			 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			q.ID, a.ID, q.Content, string(q.Category), q.TimestampMs, q.Context, strings.Join(q.Tags, ","), starred, string(q.Source),
		); err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive %s: %w", a.ID, err)
	}
	return nil
}

// ListSessions returns archived sessions, most recent first.
func (s *SQLiteStore) ListSessions() ([]Summary, error) {
	rows, err := s.db.Query(
		`SELECT id, topic, started_at, ended_at, duration_seconds, questions_collected
		 FROM sessions ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Summary
	for rows.Next() {
		var row Summary
		var startedAt, endedAt string
		if err := rows.Scan(&row.ID, &row.Topic, &startedAt, &endedAt, &row.DurationSeconds, &row.QuestionsCollected); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		if row.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if row.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, fmt.Errorf("parse ended_at: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// GetSession loads one archive including its logs. Returns sql.ErrNoRows
// wrapped when the id is unknown.
func (s *SQLiteStore) GetSession(id string) (Archive, error) {
	var a Archive
	var startedAt, endedAt string

	err := s.db.QueryRow(
		`SELECT id, topic, started_at, ended_at, duration_seconds, participant_count, questions_collected
		 FROM sessions WHERE id = ?`, id,
	).Scan(&a.ID, &a.Topic, &startedAt, &endedAt, &a.DurationSeconds, &a.ParticipantCount, &a.QuestionsCollected)
	if err != nil {
		return Archive{}, fmt.Errorf("get session %s: %w", id, err)
	}
	if a.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return Archive{}, fmt.Errorf("parse started_at: %w", err)
	}
	if a.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
		return Archive{}, fmt.Errorf("parse ended_at: %w", err)
	}

	if a.Transcript, err = s.transcriptFor(id); err != nil {
		return Archive{}, err
	}
	if a.Translations, err = s.translationsFor(id); err != nil {
		return Archive{}, err
	}
	if a.Questions, err = s.questionsFor(id); err != nil {
		return Archive{}, err
	}
	return a, nil
}

func (s *SQLiteStore) transcriptFor(sessionID string) ([]event.TranscriptEvent, error) {
	rows, err := s.db.Query(
		`SELECT id, speaker, text, timestamp_ms, confidence FROM transcript_events
		 WHERE session_id = ? ORDER BY timestamp_ms`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("get transcript for %s: %w", sessionID, err)
	}
	defer func() { _ = rows.Close() }()

	var out []event.TranscriptEvent
	for rows.Next() {
		var e event.TranscriptEvent
		if err := rows.Scan(&e.ID, &e.Speaker, &e.Text, &e.TimestampMs, &e.Confidence); err != nil {
			return nil, fmt.Errorf("scan transcript row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) translationsFor(sessionID string) ([]event.TranslationEvent, error) {
	rows, err := s.db.Query(
		`SELECT id, original_text, translated_text, source_language, target_language, timestamp_ms, confidence
		 FROM translation_events WHERE session_id = ? ORDER BY timestamp_ms`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("get translations for %s: %w", sessionID, err)
	}
	defer func() { _ = rows.Close() }()

	var out []event.TranslationEvent
	for rows.Next() {
		var e event.TranslationEvent
		if err := rows.Scan(&e.ID, &e.OriginalText, &e.TranslatedText, &e.SourceLanguage, &e.TargetLanguage, &e.TimestampMs, &e.Confidence); err != nil {
			return nil, fmt.Errorf("scan translation row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) questionsFor(sessionID string) ([]event.Question, error) {
	rows, err := s.db.Query(
		`SELECT id, content, category, timestamp_ms, context, tags, starred, source
		 FROM questions WHERE session_id = ? ORDER BY timestamp_ms`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("get questions for %s: %w", sessionID, err)
	}
	defer func() { _ = rows.Close() }()

	var out []event.Question
	for rows.Next() {
		var q event.Question
		var tags string
		var starred int
		var category, source string
		if err := rows.Scan(&q.ID, &q.Content, &category, &q.TimestampMs, &q.Context, &tags, &starred, &source); err != nil {
			return nil, fmt.Errorf("scan question row: %w", err)
		}
		q.Category = event.Category(category)
		q.Source = event.Source(source)
		q.Starred = starred != 0
		if tags != "" {
			q.Tags = strings.Split(tags, ",")
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
