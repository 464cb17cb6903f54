package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/itzperi/omnimeet/internal/event"
	"github.com/itzperi/omnimeet/internal/export"
	"github.com/itzperi/omnimeet/internal/session"
	"github.com/itzperi/omnimeet/internal/storage"
)

// QuestionIntake is the write side of question capture: manual submission
// plus the armed voice window.
type QuestionIntake interface {
	Submit(content string, category event.Category) (event.Question, error)
	Arm() error
	Disarm()
	Armed() bool
}

// ChatAssistant answers a question against the live transcript.
type ChatAssistant interface {
	Ask(ctx context.Context, content string) (event.ChatMessage, error)
}

// ArchiveStore reads previously persisted sessions.
type ArchiveStore interface {
	ListSessions() ([]storage.Summary, error)
	GetSession(id string) (storage.Archive, error)
}

// ControlHooks are the session-lifecycle operations the handlers delegate
// upward instead of mutating the store directly.
type ControlHooks struct {
	SetFlag         func(flag session.Flag, value bool) error
	RestartProducer func(kind event.Kind) error
}

type Deps struct {
	Store   *session.Store
	Views   *session.Multiplexer
	Intake  QuestionIntake
	Chat    ChatAssistant
	Archive ArchiveStore
	Topic   string

	Controls ControlHooks
}

func registerAPIRoutes(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("GET /api/session", func(w http.ResponseWriter, r *http.Request) {
		state := deps.Store.State()
		writeJSON(w, http.StatusOK, map[string]any{
			"state":    state,
			"duration": session.FormatDuration(state.DurationSeconds),
		})
	})

	mux.HandleFunc("POST /api/session/flags/{flag}", func(w http.ResponseWriter, r *http.Request) {
		flag, err := session.ParseFlag(r.PathValue("flag"))
		if err != nil {
			writeError(w, err)
			return
		}

		var req struct {
			Value bool `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("decode body: %v", err))
			return
		}

		if err := deps.Controls.SetFlag(flag, req.Value); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, deps.Store.State())
	})

	mux.HandleFunc("POST /api/session/panel", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Panel string `json:"panel"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("decode body: %v", err))
			return
		}

		panel, err := session.ParsePanel(req.Panel)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := deps.Store.SelectPanel(panel); err != nil {
			writeError(w, err)
			return
		}

		view, err := deps.Views.ActiveView(session.Filter{})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	})

	mux.HandleFunc("GET /api/session/view", func(w http.ResponseWriter, r *http.Request) {
		filter := session.Filter{
			Search:      r.URL.Query().Get("search"),
			Category:    event.Category(r.URL.Query().Get("category")),
			StarredOnly: r.URL.Query().Get("starred") == "true",
		}

		view, err := deps.Views.ActiveView(filter)
		if name := r.URL.Query().Get("panel"); name != "" {
			var panel session.Panel
			if panel, err = session.ParsePanel(name); err == nil {
				view, err = deps.Views.ViewFor(panel, filter)
			}
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	})

	mux.HandleFunc("POST /api/session/languages", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Source string `json:"source"`
			Target string `json:"target"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("decode body: %v", err))
			return
		}

		if err := deps.Store.SetLanguages(req.Source, req.Target); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, deps.Store.State())
	})

	mux.HandleFunc("POST /api/session/reset", func(w http.ResponseWriter, r *http.Request) {
		deps.Store.Reset()
		writeJSON(w, http.StatusOK, deps.Store.State())
	})

	mux.HandleFunc("POST /api/session/languages/swap", func(w http.ResponseWriter, r *http.Request) {
		source, target := deps.Store.SwapLanguages()
		writeJSON(w, http.StatusOK, map[string]string{"source": source, "target": target})
	})

	mux.HandleFunc("GET /api/streams/{kind}", func(w http.ResponseWriter, r *http.Request) {
		kind, err := event.ParseKind(r.PathValue("kind"))
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		payload := map[string]any{"status": deps.Store.StreamStatus(kind)}
		switch kind {
		case event.KindTranscript:
			payload["entries"] = deps.Store.Transcript()
		case event.KindTranslation:
			payload["entries"] = deps.Store.Translations()
		case event.KindChat:
			payload["entries"] = deps.Store.ChatLog()
		case event.KindQuestion:
			payload["entries"] = deps.Store.Questions()
		case event.KindAnalytics:
			payload["metrics"] = deps.Store.LatestSamples()
			payload["participants"] = deps.Store.Participants()
		}
		writeJSON(w, http.StatusOK, payload)
	})

	mux.HandleFunc("POST /api/producers/{kind}/restart", func(w http.ResponseWriter, r *http.Request) {
		kind, err := event.ParseKind(r.PathValue("kind"))
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := deps.Controls.RestartProducer(kind); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": deps.Store.StreamStatus(kind)})
	})

	registerQuestionRoutes(mux, deps)
	registerChatRoute(mux, deps)
	registerExportRoutes(mux, deps)
	registerArchiveRoutes(mux, deps)
}

func registerQuestionRoutes(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("POST /api/questions", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Content  string `json:"content"`
			Category string `json:"category"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("decode body: %v", err))
			return
		}

		category := event.CategoryImportant
		if req.Category != "" {
			var err error
			if category, err = event.ParseCategory(req.Category); err != nil {
				writeJSONError(w, http.StatusBadRequest, err.Error())
				return
			}
		}

		q, err := deps.Intake.Submit(req.Content, category)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, q)
	})

	mux.HandleFunc("PATCH /api/questions/{id}", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Content  *string `json:"content"`
			Category *string `json:"category"`
			Starred  *bool   `json:"starred"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("decode body: %v", err))
			return
		}

		patch := session.QuestionPatch{Content: req.Content, Starred: req.Starred}
		if req.Category != nil {
			category, err := event.ParseCategory(*req.Category)
			if err != nil {
				writeJSONError(w, http.StatusBadRequest, err.Error())
				return
			}
			patch.Category = &category
		}

		q, err := deps.Store.UpdateQuestion(r.PathValue("id"), patch)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	})

	mux.HandleFunc("POST /api/questions/{id}/star", func(w http.ResponseWriter, r *http.Request) {
		q, err := deps.Store.ToggleStar(r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	})

	mux.HandleFunc("DELETE /api/questions/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Store.DeleteQuestion(r.PathValue("id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /api/questions/voice-arm", func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Intake.Arm(); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"armed": true})
	})

	mux.HandleFunc("DELETE /api/questions/voice-arm", func(w http.ResponseWriter, r *http.Request) {
		deps.Intake.Disarm()
		writeJSON(w, http.StatusOK, map[string]bool{"armed": false})
	})

	mux.HandleFunc("GET /api/questions/voice-arm", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"armed": deps.Intake.Armed()})
	})
}

func registerChatRoute(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("decode body: %v", err))
			return
		}

		msg, err := deps.Chat.Ask(r.Context(), req.Content)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, msg)
	})
}

func registerExportRoutes(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("GET /api/export/transcript", func(w http.ResponseWriter, r *http.Request) {
		entries := deps.Store.Transcript()
		if r.URL.Query().Get("format") == "text" {
			writeText(w, "text/plain", export.TranscriptText(entries))
			return
		}
		writeText(w, "text/markdown", export.Transcript(deps.Topic, entries))
	})

	mux.HandleFunc("GET /api/export/translations", func(w http.ResponseWriter, r *http.Request) {
		writeText(w, "text/markdown", export.Translations(deps.Store.Translations()))
	})

	mux.HandleFunc("GET /api/export/study-guide", func(w http.ResponseWriter, r *http.Request) {
		writeText(w, "text/markdown", export.StudyGuide(deps.Topic, deps.Store.Questions()))
	})
}

func registerArchiveRoutes(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("GET /api/archive/sessions", func(w http.ResponseWriter, r *http.Request) {
		if deps.Archive == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "archive not configured")
			return
		}
		sessions, err := deps.Archive.ListSessions()
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("list sessions: %v", err))
			return
		}
		if sessions == nil {
			sessions = []storage.Summary{}
		}
		writeJSON(w, http.StatusOK, sessions)
	})

	mux.HandleFunc("GET /api/archive/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		if deps.Archive == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "archive not configured")
			return
		}
		archive, err := deps.Archive.GetSession(r.PathValue("id"))
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, sql.ErrNoRows) {
				status = http.StatusNotFound
			}
			writeJSONError(w, status, fmt.Sprintf("get session: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, archive)
	})
}

// writeError maps domain sentinels onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrStreamOrdering), errors.Is(err, session.ErrAlreadyArmed):
		status = http.StatusConflict
	case errors.Is(err, session.ErrProducerUnavailable):
		status = http.StatusServiceUnavailable
	}
	writeJSONError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeText(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType+"; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
