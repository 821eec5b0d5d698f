package v1

import (
	"github.com/gin-gonic/gin"

	"support-chat/chat-api/internal/infrastructure/auth"
	"support-chat/chat-api/internal/infrastructure/ratelimit"
	"support-chat/chat-api/internal/interfaces/httpserver/handlers"
	"support-chat/chat-api/internal/interfaces/httpserver/middlewares"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers  *handlers.Provider
	websocket *handlers.WebsocketHandler
	tokens    *auth.TokenService
	limiter   *ratelimit.KeyedLimiter
}

// NewRoutes builds the v1 route registrar.
func NewRoutes(
	handlerProvider *handlers.Provider,
	websocketHandler *handlers.WebsocketHandler,
	tokens *auth.TokenService,
	limiter *ratelimit.KeyedLimiter,
) *Routes {
	return &Routes{
		handlers:  handlerProvider,
		websocket: websocketHandler,
		tokens:    tokens,
		limiter:   limiter,
	}
}

// Register attaches all v1 routes under the /v1 prefix.
func (r *Routes) Register(engine *gin.Engine) {
	group := engine.Group("/v1")

	customer := group.Group("/customer")
	customer.Use(middlewares.CustomerRateLimit(r.limiter))
	registerCustomerRoutes(customer, r.handlers.Conversation)

	agent := group.Group("/agent")
	registerAgentRoutes(agent, r.handlers.Agent, r.tokens)

	group.GET("/ws", r.websocket.Handle)
}
