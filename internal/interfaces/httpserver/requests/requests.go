// Package requests contains HTTP request DTOs for the chat API.
package requests

// StartConversation begins or resumes a customer conversation.
type StartConversation struct {
	CustomerSessionID string `json:"customer_session_id"`
	ForceNew          bool   `json:"force_new"`
}

// SendMessage carries free-text customer input.
type SendMessage struct {
	CustomerSessionID string `json:"customer_session_id" binding:"required"`
	Content           string `json:"content" binding:"required"`
}

// QuickReply selects a canned question.
type QuickReply struct {
	CustomerSessionID string `json:"customer_session_id" binding:"required"`
	FaqSlug           string `json:"faq_slug" binding:"required"`
}

// TalkToAgent escalates the conversation to a human agent.
type TalkToAgent struct {
	CustomerSessionID string `json:"customer_session_id" binding:"required"`
}

// AgentLogin authenticates an agent account.
type AgentLogin struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AgentSendMessage carries an agent reply.
type AgentSendMessage struct {
	Content string `json:"content" binding:"required"`
}

// AgentPresence updates an agent's availability.
type AgentPresence struct {
	Presence string `json:"presence" binding:"required,oneof=online offline"`
}
