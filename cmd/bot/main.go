// Command bot runs the Telegram assistant: it polls for inbound text and
// voice messages, gates them on the authorization grant, and answers from
// the knowledge store backed by the external language model.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Drew466/auth-server-tbot/internal/bot"
	"github.com/Drew466/auth-server-tbot/internal/config"
	"github.com/Drew466/auth-server-tbot/internal/llm"
	"github.com/Drew466/auth-server-tbot/internal/observability"
	"github.com/Drew466/auth-server-tbot/internal/repo"
	"github.com/Drew466/auth-server-tbot/internal/services"
	"github.com/Drew466/auth-server-tbot/internal/stt"
	"github.com/Drew466/auth-server-tbot/internal/sysutil"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if cfg.TelegramToken == "" {
		log.Fatal().Msg("TELEGRAM_TOKEN is required")
	}
	if cfg.LLM.APIKey == "" {
		log.Fatal().Msg("OPENROUTER_API_KEY is required")
	}
	if cfg.STT.APIKey == "" {
		log.Fatal().Msg("ASSEMBLYAI_API_KEY is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		if err := shutdownOTel(context.Background()); err != nil {
			log.Warn().Err(err).Msg("otel shutdown failed")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}
	if n, err := repo.CountEntries(ctx, db); err == nil {
		log.Info().Int64("knowledge_entries", n).Msg("database ready")
	}

	messenger, err := bot.NewTelegramMessenger(cfg.TelegramToken)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram connect failed")
	}

	authSvc := services.NewAuthService(db, authRepo{}, cfg.GrantWindow)
	knowSvc := services.NewKnowledgeService(db, knowledgeRepo{})
	answerSvc := services.NewAnswerService(
		llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout),
	)

	handler := &bot.Handler{
		Messenger: messenger,
		Auth:      authSvc,
		Knowledge: knowSvc,
		Resolver:  answerSvc,
		STT: stt.NewAssemblyAI(
			cfg.STT.BaseURL, cfg.STT.APIKey, cfg.STT.Language,
			cfg.STT.PollInterval, cfg.STT.Timeout,
		),
		Transcoder:    stt.NewTranscoder(cfg.STT.FFmpegPath),
		AuthServerURL: cfg.AuthServerURL,
		Log:           log.Logger,
	}

	if err := bot.New(messenger, handler).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("bot stopped")
	}
	log.Info().Msg("bot stopped")
}

// version is stamped via -ldflags at release time.
var version = "dev"
