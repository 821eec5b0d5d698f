package handlers

import (
	"context"

	"github.com/google/uuid"

	"support-chat/chat-api/internal/domain/chat"
)

// ConversationHandler invokes the customer-side conversation use cases.
type ConversationHandler struct {
	service *chat.ConversationService
}

func NewConversationHandler(service *chat.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

func (h *ConversationHandler) Start(ctx context.Context, customerSessionID string, forceNew bool) (*chat.ConversationBootstrap, error) {
	return h.service.StartConversation(ctx, customerSessionID, forceNew)
}

func (h *ConversationHandler) QuickQuestions(ctx context.Context) ([]*chat.FaqEntry, error) {
	return h.service.ListQuickQuestions(ctx)
}

func (h *ConversationHandler) Get(ctx context.Context, conversationID uuid.UUID, customerSessionID string) (*chat.Conversation, error) {
	return h.service.GetConversation(ctx, conversationID, customerSessionID)
}

func (h *ConversationHandler) Messages(ctx context.Context, conversationID uuid.UUID, customerSessionID string) (*chat.ConversationMessages, error) {
	return h.service.GetConversationMessages(ctx, conversationID, customerSessionID)
}

func (h *ConversationHandler) SendMessage(ctx context.Context, conversationID uuid.UUID, content, customerSessionID string) (*chat.BotExchange, error) {
	return h.service.SendCustomerMessage(ctx, conversationID, content, customerSessionID)
}

func (h *ConversationHandler) QuickReply(ctx context.Context, conversationID uuid.UUID, faqSlug, customerSessionID string) (*chat.BotExchange, error) {
	return h.service.SendQuickReply(ctx, conversationID, faqSlug, customerSessionID)
}

func (h *ConversationHandler) Escalate(ctx context.Context, conversationID uuid.UUID, customerSessionID string) (*chat.BotExchange, error) {
	return h.service.Escalate(ctx, conversationID, customerSessionID)
}
