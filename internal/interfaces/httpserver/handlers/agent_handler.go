package handlers

import (
	"context"

	"github.com/google/uuid"

	"support-chat/chat-api/internal/domain/chat"
)

// AgentHandler invokes the agent workspace use cases.
type AgentHandler struct {
	service *chat.AgentService
}

func NewAgentHandler(service *chat.AgentService) *AgentHandler {
	return &AgentHandler{service: service}
}

func (h *AgentHandler) Register(ctx context.Context, registration chat.AgentRegistration) (*chat.Agent, error) {
	return h.service.Register(ctx, registration)
}

func (h *AgentHandler) Authenticate(ctx context.Context, username, password string) (*chat.Agent, *chat.AgentUser, error) {
	return h.service.Authenticate(ctx, username, password)
}

func (h *AgentHandler) Get(ctx context.Context, agentID uuid.UUID) (*chat.Agent, error) {
	return h.service.GetAgent(ctx, agentID)
}

func (h *AgentHandler) SetPresence(ctx context.Context, agentID uuid.UUID, presence chat.AgentPresence) (*chat.Agent, error) {
	return h.service.SetPresence(ctx, agentID, presence)
}

func (h *AgentHandler) Conversations(ctx context.Context, agentID uuid.UUID, statusFilter *chat.ConversationStatus) ([]*chat.Conversation, error) {
	return h.service.ListConversations(ctx, agentID, statusFilter)
}

func (h *AgentHandler) Messages(ctx context.Context, conversationID, agentID uuid.UUID) (*chat.ConversationMessages, error) {
	return h.service.GetConversationMessages(ctx, conversationID, agentID)
}

func (h *AgentHandler) SendMessage(ctx context.Context, conversationID, agentID uuid.UUID, content string) (*chat.Message, error) {
	return h.service.SendMessage(ctx, conversationID, agentID, content)
}

func (h *AgentHandler) Close(ctx context.Context, conversationID, agentID uuid.UUID) (*chat.Conversation, error) {
	return h.service.Close(ctx, conversationID, agentID)
}
