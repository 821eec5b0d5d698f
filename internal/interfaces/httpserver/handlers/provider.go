package handlers

import (
	"support-chat/chat-api/internal/domain/chat"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Conversation *ConversationHandler
	Agent        *AgentHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(conversationService *chat.ConversationService, agentService *chat.AgentService) *Provider {
	return &Provider{
		Conversation: NewConversationHandler(conversationService),
		Agent:        NewAgentHandler(agentService),
	}
}
