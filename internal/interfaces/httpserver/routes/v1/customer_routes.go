package v1

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"support-chat/chat-api/internal/interfaces/httpserver/handlers"
	"support-chat/chat-api/internal/interfaces/httpserver/requests"
	"support-chat/chat-api/internal/interfaces/httpserver/responses"
)

func registerCustomerRoutes(router gin.IRoutes, handler *handlers.ConversationHandler) {
	router.POST("/conversations/start", startConversation(handler))
	router.GET("/quick-questions", listQuickQuestions(handler))
	router.GET("/conversations/:conversation_id", getConversation(handler))
	router.GET("/conversations/:conversation_id/messages", getConversationMessages(handler))
	router.POST("/conversations/:conversation_id/messages", postCustomerMessage(handler))
	router.POST("/conversations/:conversation_id/quick-reply", postQuickReply(handler))
	router.POST("/conversations/:conversation_id/escalate", escalateConversation(handler))
}

func startConversation(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		// An empty body is fine: a fresh session id is generated then.
		var req requests.StartConversation
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			responses.HandleNewError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		bootstrap, err := handler.Start(c.Request.Context(), req.CustomerSessionID, req.ForceNew)
		if err != nil {
			responses.HandleError(c, err, "failed to start conversation")
			return
		}
		c.JSON(http.StatusOK, responses.FromBootstrap(bootstrap))
	}
}

func listQuickQuestions(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := handler.QuickQuestions(c.Request.Context())
		if err != nil {
			responses.HandleError(c, err, "failed to list quick questions")
			return
		}
		c.JSON(http.StatusOK, gin.H{"quick_questions": responses.FromQuickQuestions(entries)})
	}
}

func getConversation(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID, sessionID, ok := customerParams(c)
		if !ok {
			return
		}
		conversation, err := handler.Get(c.Request.Context(), conversationID, sessionID)
		if err != nil {
			responses.HandleError(c, err, "conversation not available")
			return
		}
		c.JSON(http.StatusOK, gin.H{"conversation": responses.FromConversation(conversation)})
	}
}

func getConversationMessages(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID, sessionID, ok := customerParams(c)
		if !ok {
			return
		}
		result, err := handler.Messages(c.Request.Context(), conversationID, sessionID)
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

func postCustomerMessage(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID, ok := pathConversationID(c)
		if !ok {
			return
		}
		var req requests.SendMessage
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, http.StatusBadRequest, "customer_session_id and content are required")
			return
		}
		exchange, err := handler.SendMessage(c.Request.Context(), conversationID, req.Content, req.CustomerSessionID)
		if err != nil {
			responses.HandleError(c, err, "failed to send message")
			return
		}
		c.JSON(http.StatusOK, responses.FromExchange(exchange))
	}
}

func postQuickReply(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID, ok := pathConversationID(c)
		if !ok {
			return
		}
		var req requests.QuickReply
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, http.StatusBadRequest, "customer_session_id and faq_slug are required")
			return
		}
		exchange, err := handler.QuickReply(c.Request.Context(), conversationID, req.FaqSlug, req.CustomerSessionID)
		if err != nil {
			responses.HandleError(c, err, "failed to send quick reply")
			return
		}
		c.JSON(http.StatusOK, responses.FromExchange(exchange))
	}
}

func escalateConversation(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID, ok := pathConversationID(c)
		if !ok {
			return
		}
		var req requests.TalkToAgent
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, http.StatusBadRequest, "customer_session_id is required")
			return
		}
		exchange, err := handler.Escalate(c.Request.Context(), conversationID, req.CustomerSessionID)
		if err != nil {
			responses.HandleError(c, err, "failed to escalate conversation")
			return
		}
		c.JSON(http.StatusOK, responses.FromExchange(exchange))
	}
}

func pathConversationID(c *gin.Context) (uuid.UUID, bool) {
	conversationID, err := uuid.Parse(c.Param("conversation_id"))
	if err != nil {
		responses.HandleNewError(c, http.StatusBadRequest, "invalid conversation id")
		return uuid.Nil, false
	}
	return conversationID, true
}

func customerParams(c *gin.Context) (uuid.UUID, string, bool) {
	conversationID, ok := pathConversationID(c)
	if !ok {
		return uuid.Nil, "", false
	}
	sessionID := c.Query("customer_session_id")
	if sessionID == "" {
		responses.HandleNewError(c, http.StatusBadRequest, "customer_session_id is required")
		return uuid.Nil, "", false
	}
	return conversationID, sessionID, true
}
