package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/itzperi/omnimeet/internal/chat"
	"github.com/itzperi/omnimeet/internal/clock"
	"github.com/itzperi/omnimeet/internal/config"
	"github.com/itzperi/omnimeet/internal/export"
	"github.com/itzperi/omnimeet/internal/logger"
	"github.com/itzperi/omnimeet/internal/producer"
	"github.com/itzperi/omnimeet/internal/server"
	"github.com/itzperi/omnimeet/internal/session"
	"github.com/itzperi/omnimeet/internal/storage"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()

	configPath := os.Getenv(config.EnvPrefix + "CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, warnings, err := config.Load(configPath)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	for _, w := range warnings {
		log.Warn(w)
	}

	archive, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("open archive store")
	}
	defer func() { _ = archive.Close() }()

	store := session.NewStore(nil)
	sched := clock.Wall{}
	seed := time.Now().UnixNano()

	controller := session.NewController(store, sched, log)
	controller.Register(producer.NewTranscript(store, sched, producer.NewSimulatedTranscript(seed), cfg.ParsedTranscriptInterval()), false)
	controller.Register(producer.NewTranslation(store, sched, producer.NewSimulatedTranslation(seed+1), cfg.ParsedTranslateInterval()), false)
	controller.Register(producer.NewSampler(store, sched, producer.NewSimulatedAnalytics(seed+2), cfg.ParsedSampleInterval()), false)

	detector := producer.NewDetector(store, sched, producer.NewSimulatedVoice(seed+3), cfg.ParsedVoiceLatency(), cfg.MeetingTopic)
	controller.Register(detector, true)

	var responder chat.Responder
	if cfg.OpenAIAPIKey != "" {
		responder = chat.NewOpenAIResponder(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.MeetingTopic)
	} else {
		responder = chat.NewScriptedResponder()
	}
	assistant := chat.NewAssistant(store, responder, cfg.MeetingTopic)
	if err := assistant.Welcome(); err != nil {
		log.WithError(err).Warn("seed assistant greeting")
	}

	sessionID := uuid.New().String()
	startedAt := time.Now().UTC()
	exports := export.NewWriter(cfg.ExportDir)
	controller.OnTeardown(func() {
		if path, err := exports.Save("transcript.md", export.Transcript(cfg.MeetingTopic, store.Transcript())); err != nil {
			log.WithError(err).Warn("write transcript export")
		} else {
			log.WithField("path", path).Info("transcript exported")
		}
		if path, err := exports.Save("study-guide.md", export.StudyGuide(cfg.MeetingTopic, store.Questions())); err != nil {
			log.WithError(err).Warn("write study guide export")
		} else {
			log.WithField("path", path).Info("study guide exported")
		}

		state := store.State()
		err := archive.SaveSession(storage.Archive{
			ID:                 sessionID,
			Topic:              cfg.MeetingTopic,
			StartedAt:          startedAt,
			EndedAt:            time.Now().UTC(),
			DurationSeconds:    state.DurationSeconds,
			ParticipantCount:   state.ParticipantCount,
			QuestionsCollected: state.QuestionsCollected,
			Transcript:         store.Transcript(),
			Translations:       store.Translations(),
			Questions:          store.Questions(),
		})
		if err != nil {
			log.WithError(err).Error("archive session")
			return
		}
		log.WithField("session_id", sessionID).Info("session archived")
	})

	controller.Start()

	hub := server.NewHub()
	pump := server.NewPump(store, hub)
	pump.Start()

	handler := server.Handler(hub, server.Deps{
		Store:   store,
		Views:   session.NewMultiplexer(store),
		Intake:  detector,
		Chat:    assistant,
		Archive: archive,
		Topic:   cfg.MeetingTopic,
		Controls: server.ControlHooks{
			SetFlag:         controller.SetFlag,
			RestartProducer: controller.RestartProducer,
		},
	})

	httpServer := &http.Server{Addr: cfg.ListenAddr, Handler: handler}
	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("api listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}

	controller.Teardown()
	pump.Stop()
}
