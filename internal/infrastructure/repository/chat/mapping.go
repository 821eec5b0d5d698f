// Package chat contains the PostgreSQL repositories backing the chat
// domain ports.
package chat

import (
	"gorm.io/datatypes"

	domain "support-chat/chat-api/internal/domain/chat"
	"support-chat/chat-api/internal/infrastructure/database/entities"
)

func conversationToDomain(record *entities.Conversation) *domain.Conversation {
	return &domain.Conversation{
		ID:                record.ID,
		CustomerSessionID: record.CustomerSessionID,
		Status:            domain.ConversationStatus(record.Status),
		AssignedAgentID:   record.AssignedAgentID,
		RequestedAgentAt:  record.RequestedAgentAt,
		ClosedAt:          record.ClosedAt,
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
	}
}

func messageToDomain(record *entities.Message) *domain.Message {
	var metadata map[string]any
	if record.Metadata != nil {
		metadata = map[string]any(record.Metadata)
	}
	return &domain.Message{
		ID:             record.ID,
		ConversationID: record.ConversationID,
		SenderType:     domain.SenderType(record.SenderType),
		SenderAgentID:  record.SenderAgentID,
		Kind:           domain.MessageKind(record.Kind),
		Content:        record.Content,
		Metadata:       metadata,
		CreatedAt:      record.CreatedAt,
	}
}

func messageToEntity(message *domain.Message) *entities.Message {
	var metadata datatypes.JSONMap
	if message.Metadata != nil {
		metadata = datatypes.JSONMap(message.Metadata)
	}
	return &entities.Message{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		SenderType:     string(message.SenderType),
		SenderAgentID:  message.SenderAgentID,
		Kind:           string(message.Kind),
		Content:        message.Content,
		Metadata:       metadata,
	}
}

func agentToDomain(record *entities.Agent) *domain.Agent {
	return &domain.Agent{
		ID:             record.ID,
		DisplayName:    record.DisplayName,
		Presence:       domain.AgentPresence(record.Presence),
		MaxActiveChats: record.MaxActiveChats,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}

func agentUserToDomain(record *entities.AgentUser) *domain.AgentUser {
	return &domain.AgentUser{
		ID:           record.ID,
		AgentID:      record.AgentID,
		Username:     record.Username,
		PasswordHash: record.PasswordHash,
		IsActive:     record.IsActive,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}

func faqToDomain(record *entities.FaqEntry) *domain.FaqEntry {
	return &domain.FaqEntry{
		ID:           record.ID,
		Slug:         record.Slug,
		Question:     record.Question,
		Answer:       record.Answer,
		DisplayOrder: record.DisplayOrder,
		IsActive:     record.IsActive,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}
