// File: cmd/app/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wellness-companion/internal/application"
	"wellness-companion/internal/config"
	"wellness-companion/internal/domain/ports/adapter"
	aiAdapters "wellness-companion/internal/infra/adapters/ai"
	"wellness-companion/internal/infra/api"
	pg "wellness-companion/internal/infra/db/postgres"
	"wellness-companion/internal/infra/logging"
	"wellness-companion/internal/infra/metrics"
	red "wellness-companion/internal/infra/redis"
	"wellness-companion/internal/infra/sched"
	"wellness-companion/internal/infra/security"
	"wellness-companion/internal/infra/speech"
	"wellness-companion/internal/infra/worker"
	"wellness-companion/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}
	// The DSNs carry credentials; outside dev only a redacted form is logged.
	logger.Info().
		Str("database", logging.Redact(cfg.Database.URL, cfg.Runtime.Dev)).
		Str("redis", logging.Redact(cfg.Redis.URL, cfg.Runtime.Dev)).
		Msg("configuration loaded")

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 30*time.Second)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	convCache := red.NewConversationCache(redisClient, cfg.Redis.TTL)
	handoff := red.NewHandoffSlot(redisClient, cfg.Chat.HandoffTTL)
	sessionStore := red.NewSessionStore(redisClient, cfg.Security.SessionTTL)

	// ---- Encryption ----
	var encSvc *security.EncryptionService
	if cfg.Security.EncryptMessages {
		encSvc, err = security.NewEncryptionService(cfg.Security.EncryptionKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("encryption service init failed")
		}
	}

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool)
	convRepo := pg.NewConversationRepo(pool, convCache, encSvc, cfg.Security.EncryptMessages)
	moodRepo := pg.NewMoodRepo(pool)
	feedbackRepo := pg.NewFeedbackRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Assistant provider (OpenAI -> Gemini) ----
	var provider adapter.AssistantAdapter
	switch {
	case cfg.AI.OpenAIKey != "":
		provider, err = aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.OpenAIBaseURL, cfg.AI.DefaultModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter init failed")
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("assistant provider: openai")
	case cfg.AI.GeminiKey != "":
		provider, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel, 1024)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter init failed")
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("assistant provider: gemini")
	case cfg.Runtime.Dev:
		provider = aiAdapters.NewNoopAdapter()
		logger.Warn().Msg("assistant provider: noop (dev)")
	default:
		logger.Fatal().Msg("no assistant provider configured: set ai.openai_key or ai.gemini_key")
	}
	provider = aiAdapters.NewLimitedAssistant(provider, cfg.AI.ConcurrentLimit)
	assistant := aiAdapters.NewComposer(provider, userRepo, cfg.AI.DefaultModel, cfg.Chat.HistoryWindow, 4000, logger)

	// ---- Speech ----
	var transcriber adapter.Transcriber
	if cfg.AI.OpenAIKey != "" {
		transcriber, err = aiAdapters.NewWhisperTranscriber(cfg.AI.OpenAIKey, cfg.AI.OpenAIBaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("transcriber init failed")
		}
	}
	speechSvc := speech.NewService(transcriber, cfg.Speech.Timeout, logger)

	// ---- Background workers ----
	taskPool := worker.NewPool(cfg.Server.Workers, logger)
	taskPool.Start(ctx)
	defer taskPool.Stop()

	// ---- Use cases ----
	sessionUC := usecase.NewChatSessionUseCase(convRepo, moodRepo, handoff, assistant, taskPool, cfg.Chat.FollowUpDelay, logger)
	historyUC := usecase.NewHistoryUseCase(convRepo, handoff, logger)
	moodUC := usecase.NewMoodUseCase(moodRepo, assistant, logger)
	accountUC := usecase.NewAccountUseCase(userRepo, convRepo, moodRepo, feedbackRepo, txManager, logger)
	feedbackUC := usecase.NewFeedbackUseCase(feedbackRepo, logger)

	// ---- Session evictor ----
	evictor := sched.NewEvictor(5*time.Minute, cfg.Chat.SessionIdleTTL, sessionUC, logger)
	go func() { _ = evictor.Run(ctx) }()

	// ---- HTTP server ----
	authManager := api.NewAuthManager(cfg.Security.JWTSecret, !cfg.Runtime.Dev, "", cfg.Security.SessionTTL)
	sessionManager := application.NewSessionManager(sessionStore, logger)
	srv := api.NewServer(accountUC, sessionUC, historyUC, moodUC, feedbackUC, speechSvc, authManager, sessionManager, rateLimiter, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
	cancel()
}
