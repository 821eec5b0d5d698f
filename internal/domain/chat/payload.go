package chat

import "time"

// Event payload projections. Only primitive and RFC 3339 timestamp
// fields cross the hub boundary; no internal references leak into
// envelopes.

func ConversationPayload(conversation *Conversation) map[string]any {
	payload := map[string]any{
		"id":                  conversation.ID.String(),
		"customer_session_id": conversation.CustomerSessionID,
		"status":              string(conversation.Status),
		"assigned_agent_id":   nil,
		"requested_agent_at":  nil,
		"closed_at":           nil,
		"created_at":          conversation.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":          conversation.UpdatedAt.Format(time.RFC3339Nano),
	}
	if conversation.AssignedAgentID != nil {
		payload["assigned_agent_id"] = conversation.AssignedAgentID.String()
	}
	if conversation.RequestedAgentAt != nil {
		payload["requested_agent_at"] = conversation.RequestedAgentAt.Format(time.RFC3339Nano)
	}
	if conversation.ClosedAt != nil {
		payload["closed_at"] = conversation.ClosedAt.Format(time.RFC3339Nano)
	}
	return payload
}

func MessagePayload(message *Message) map[string]any {
	payload := map[string]any{
		"id":              message.ID.String(),
		"conversation_id": message.ConversationID.String(),
		"sender_type":     string(message.SenderType),
		"sender_agent_id": nil,
		"kind":            string(message.Kind),
		"content":         message.Content,
		"metadata":        message.Metadata,
		"created_at":      message.CreatedAt.Format(time.RFC3339Nano),
	}
	if message.SenderAgentID != nil {
		payload["sender_agent_id"] = message.SenderAgentID.String()
	}
	return payload
}

func AgentPayload(agent *Agent) map[string]any {
	return map[string]any{
		"id":               agent.ID.String(),
		"display_name":     agent.DisplayName,
		"presence":         string(agent.Presence),
		"max_active_chats": agent.MaxActiveChats,
		"created_at":       agent.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":       agent.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// conversationChannels lists the channels affected by a conversation
// event: the conversation's own channel plus, when assigned, the
// assignee's queue channel.
func conversationChannels(conversation *Conversation) []string {
	channels := []string{ConversationChannel(conversation.ID)}
	if conversation.AssignedAgentID != nil {
		channels = append(channels, AgentQueueChannel(*conversation.AssignedAgentID))
	}
	return channels
}
