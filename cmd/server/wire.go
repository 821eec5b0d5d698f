//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"support-chat/chat-api/internal/config"
	"support-chat/chat-api/internal/domain/chat"
	"support-chat/chat-api/internal/infrastructure/auth"
	"support-chat/chat-api/internal/infrastructure/database"
	"support-chat/chat-api/internal/infrastructure/database/transaction"
	"support-chat/chat-api/internal/infrastructure/logger"
	"support-chat/chat-api/internal/infrastructure/realtime"
	chatrepo "support-chat/chat-api/internal/infrastructure/repository/chat"
	"support-chat/chat-api/internal/interfaces/httpserver"
)

var repositorySet = wire.NewSet(
	transaction.NewDatabase,
	chatrepo.NewPostgresConversationRepository,
	wire.Bind(new(chat.ConversationRepository), new(*chatrepo.PostgresConversationRepository)),
	chatrepo.NewPostgresMessageRepository,
	wire.Bind(new(chat.MessageRepository), new(*chatrepo.PostgresMessageRepository)),
	chatrepo.NewPostgresFaqRepository,
	wire.Bind(new(chat.FaqRepository), new(*chatrepo.PostgresFaqRepository)),
	chatrepo.NewPostgresAgentRepository,
	wire.Bind(new(chat.AgentRepository), new(*chatrepo.PostgresAgentRepository)),
	chatrepo.NewPostgresAgentUserRepository,
	wire.Bind(new(chat.AgentUserRepository), new(*chatrepo.PostgresAgentUserRepository)),
	wire.Bind(new(chat.Transactor), new(*transaction.Database)),
)

var domainSet = wire.NewSet(
	realtime.NewHub,
	wire.Bind(new(chat.Publisher), new(*realtime.Hub)),
	auth.NewBcryptHasher,
	wire.Bind(new(chat.PasswordHasher), new(*auth.BcryptHasher)),
	chat.NewConversationService,
	chat.NewAgentService,
)

// BuildApplication assembles the chat service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		newLogger,
		newDatabaseConfig,
		newGormDB,
		newTokenService,
		repositorySet,
		domainSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	return logger.New(cfg.LogLevel, cfg.LogFormat)
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DatabaseURL: cfg.DatabaseURL,
		MaxIdle:     cfg.DBMaxIdleConns,
		MaxOpen:     cfg.DBMaxOpenConns,
		MaxLifetime: cfg.DBConnLifetime,
		LogLevel:    gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, hasher *auth.BcryptHasher, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, hasher, log); err != nil {
		return nil, err
	}
	return db, nil
}

func newTokenService(cfg *config.Config) *auth.TokenService {
	return auth.NewTokenService(cfg.AuthSecret, cfg.AuthIssuer, cfg.AuthTokenTTL)
}
