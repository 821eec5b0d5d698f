package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"support-chat/chat-api/internal/config"
	"support-chat/chat-api/internal/domain/chat"
	"support-chat/chat-api/internal/infrastructure/auth"
	"support-chat/chat-api/internal/infrastructure/database"
	"support-chat/chat-api/internal/infrastructure/database/transaction"
	"support-chat/chat-api/internal/infrastructure/logger"
	"support-chat/chat-api/internal/infrastructure/observability"
	"support-chat/chat-api/internal/infrastructure/realtime"
	chatrepo "support-chat/chat-api/internal/infrastructure/repository/chat"
	"support-chat/chat-api/internal/interfaces/httpserver"
)

// Application bundles the HTTP server with its logger for startup.
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DatabaseURL: cfg.DatabaseURL,
		MaxIdle:     cfg.DBMaxIdleConns,
		MaxOpen:     cfg.DBMaxOpenConns,
		MaxLifetime: cfg.DBConnLifetime,
		LogLevel:    gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	hasher := auth.NewBcryptHasher()
	if err := database.AutoMigrate(ctx, db, hasher, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	txDB := transaction.NewDatabase(db)
	conversations := chatrepo.NewPostgresConversationRepository(txDB)
	messages := chatrepo.NewPostgresMessageRepository(txDB)
	faqs := chatrepo.NewPostgresFaqRepository(txDB)
	agents := chatrepo.NewPostgresAgentRepository(txDB)
	agentUsers := chatrepo.NewPostgresAgentUserRepository(txDB)

	hub := realtime.NewHub(log)
	tokens := auth.NewTokenService(cfg.AuthSecret, cfg.AuthIssuer, cfg.AuthTokenTTL)

	conversationService := chat.NewConversationService(
		txDB, conversations, messages, faqs, agents, hub, log,
	)
	agentService := chat.NewAgentService(
		txDB, conversations, messages, agents, agentUsers, hasher, hub, log,
	)

	httpServer := httpserver.New(
		cfg, log, conversationService, agentService, tokens, hub,
		conversations, agents, agentUsers,
	)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
