package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"support-chat/chat-api/internal/config"
	"support-chat/chat-api/internal/domain/chat"
	"support-chat/chat-api/internal/infrastructure/auth"
	"support-chat/chat-api/internal/infrastructure/ratelimit"
	"support-chat/chat-api/internal/infrastructure/realtime"
	"support-chat/chat-api/internal/interfaces/httpserver/handlers"
	"support-chat/chat-api/internal/interfaces/httpserver/middlewares"
	v1 "support-chat/chat-api/internal/interfaces/httpserver/routes/v1"
)

// HttpServer wraps the gin engine with graceful shutdown helpers.
type HttpServer struct {
	cfg    *config.Config
	engine *gin.Engine
	log    zerolog.Logger
}

// New constructs the HTTP server with default middleware and routes.
func New(
	cfg *config.Config,
	log zerolog.Logger,
	conversationService *chat.ConversationService,
	agentService *chat.AgentService,
	tokens *auth.TokenService,
	hub *realtime.Hub,
	conversations chat.ConversationRepository,
	agents chat.AgentRepository,
	agentUsers chat.AgentUserRepository,
) *HttpServer {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middlewares.RequestID())
	engine.Use(middlewares.Logging(log))

	handlerProvider := handlers.NewProvider(conversationService, agentService)
	websocketHandler := handlers.NewWebsocketHandler(
		hub, tokens, agentService, conversations, agents, agentUsers, log,
	)
	limiter := ratelimit.NewKeyedLimiter(
		rate.Limit(cfg.CustomerRatePerSecond),
		cfg.CustomerRateBurst,
	)

	registerCoreRoutes(engine, cfg)
	v1.NewRoutes(handlerProvider, websocketHandler, tokens, limiter).Register(engine)

	return &HttpServer{
		cfg:    cfg,
		engine: engine,
		log:    log,
	}
}

// Run starts the HTTP listener and handles graceful shutdown via
// context cancellation.
func (s *HttpServer) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr()).Msg("HTTP server listening")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("HTTP server error")
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("Context cancelled, shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func registerCoreRoutes(engine *gin.Engine, cfg *config.Config) {
	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": cfg.ServiceName,
			"status":  "ok",
		})
	})

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	engine.GET("/readyz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
