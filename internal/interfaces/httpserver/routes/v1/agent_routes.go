package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"support-chat/chat-api/internal/domain/chat"
	"support-chat/chat-api/internal/infrastructure/auth"
	"support-chat/chat-api/internal/interfaces/httpserver/handlers"
	"support-chat/chat-api/internal/interfaces/httpserver/requests"
	"support-chat/chat-api/internal/interfaces/httpserver/responses"
)

func registerAgentRoutes(group *gin.RouterGroup, handler *handlers.AgentHandler, tokens *auth.TokenService) {
	group.POST("/register", registerAgent(handler))
	group.POST("/auth/login", loginAgent(handler, tokens))

	authed := group.Group("")
	authed.Use(tokens.Middleware())
	authed.GET("/me", getAgentProfile(handler))
	authed.POST("/presence", setAgentPresence(handler))
	authed.GET("/conversations", listAgentConversations(handler))
	authed.GET("/conversations/:conversation_id/messages", getAgentConversationMessages(handler))
	authed.POST("/conversations/:conversation_id/messages", postAgentMessage(handler))
	authed.POST("/conversations/:conversation_id/close", closeConversation(handler))
}

func registerAgent(handler *handlers.AgentHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			DisplayName    string `json:"display_name" binding:"required"`
			Username       string `json:"username" binding:"required"`
			Password       string `json:"password" binding:"required"`
			MaxActiveChats int    `json:"max_active_chats"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, http.StatusBadRequest, "display_name, username and password are required")
			return
		}
		agent, err := handler.Register(c.Request.Context(), chat.AgentRegistration{
			DisplayName:    req.DisplayName,
			Username:       req.Username,
			Password:       req.Password,
			MaxActiveChats: req.MaxActiveChats,
		})
		if err != nil {
			responses.HandleError(c, err, "failed to register agent")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"agent": responses.FromAgent(agent)})
	}
}

func loginAgent(handler *handlers.AgentHandler, tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.AgentLogin
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, http.StatusBadRequest, "username and password are required")
			return
		}
		agent, account, err := handler.Authenticate(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			responses.HandleError(c, err, "invalid username or password")
			return
		}
		token, expiresAt, err := tokens.Issue(agent.ID, account.ID)
		if err != nil {
			responses.HandleError(c, err, "failed to issue token")
			return
		}
		c.JSON(http.StatusOK, responses.Login{
			AccessToken: token,
			TokenType:   "bearer",
			ExpiresAt:   expiresAt,
			Agent:       responses.FromAgent(agent),
		})
	}
}

func getAgentProfile(handler *handlers.AgentHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		agentID, ok := auth.AgentID(c)
		if !ok {
			responses.HandleNewError(c, http.StatusUnauthorized, "missing agent identity")
			return
		}
		agent, err := handler.Get(c.Request.Context(), agentID)
		if err != nil {
			responses.HandleError(c, err, "agent not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"agent": responses.FromAgent(agent)})
	}
}

func setAgentPresence(handler *handlers.AgentHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		agentID, ok := auth.AgentID(c)
		if !ok {
			responses.HandleNewError(c, http.StatusUnauthorized, "missing agent identity")
			return
		}
		var req requests.AgentPresence
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, http.StatusBadRequest, "presence must be online or offline")
			return
		}
		agent, err := handler.SetPresence(c.Request.Context(), agentID, chat.AgentPresence(req.Presence))
		if err != nil {
			responses.HandleError(c, err, "failed to update presence")
			return
		}
		c.JSON(http.StatusOK, gin.H{"agent": responses.FromAgent(agent)})
	}
}

func listAgentConversations(handler *handlers.AgentHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		agentID, ok := auth.AgentID(c)
		if !ok {
			responses.HandleNewError(c, http.StatusUnauthorized, "missing agent identity")
			return
		}
		var statusFilter *chat.ConversationStatus
		if raw := c.Query("status"); raw != "" {
			status := chat.ConversationStatus(raw)
			switch status {
			case chat.StatusAutomated, chat.StatusAgent, chat.StatusClosed:
				statusFilter = &status
			default:
				responses.HandleNewError(c, http.StatusBadRequest, "invalid status filter")
				return
			}
		}
		conversations, err := handler.Conversations(c.Request.Context(), agentID, statusFilter)
		if err != nil {
			responses.HandleError(c, err, "failed to list conversations")
			return
		}
		out := make([]responses.Conversation, 0, len(conversations))
		for _, conversation := range conversations {
			out = append(out, responses.FromConversation(conversation))
		}
		c.JSON(http.StatusOK, gin.H{"conversations": out})
	}
}

func getAgentConversationMessages(handler *handlers.AgentHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		agentID, ok := auth.AgentID(c)
		if !ok {
			responses.HandleNewError(c, http.StatusUnauthorized, "missing agent identity")
			return
		}
		conversationID, ok := pathConversationID(c)
		if !ok {
			return
		}
		result, err := handler.Messages(c.Request.Context(), conversationID, agentID)
		if err != nil {
			responses.HandleError(c, err, "conversation not available")
			return
		}
		c.JSON(http.StatusOK, responses.ConversationMessages{
			Conversation: responses.FromConversation(result.Conversation),
			Messages:     responses.FromMessages(result.Messages),
		})
	}
}

func postAgentMessage(handler *handlers.AgentHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		agentID, ok := auth.AgentID(c)
		if !ok {
			responses.HandleNewError(c, http.StatusUnauthorized, "missing agent identity")
			return
		}
		conversationID, ok := pathConversationID(c)
		if !ok {
			return
		}
		var req requests.AgentSendMessage
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, http.StatusBadRequest, "content is required")
			return
		}
		message, err := handler.SendMessage(c.Request.Context(), conversationID, agentID, req.Content)
		if err != nil {
			responses.HandleError(c, err, "failed to send message")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": responses.FromMessage(message)})
	}
}

func closeConversation(handler *handlers.AgentHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		agentID, ok := auth.AgentID(c)
		if !ok {
			responses.HandleNewError(c, http.StatusUnauthorized, "missing agent identity")
			return
		}
		conversationID, ok := pathConversationID(c)
		if !ok {
			return
		}
		conversation, err := handler.Close(c.Request.Context(), conversationID, agentID)
		if err != nil {
			responses.HandleError(c, err, "failed to close conversation")
			return
		}
		c.JSON(http.StatusOK, gin.H{"conversation": responses.FromConversation(conversation)})
	}
}
