package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"support-chat/chat-api/internal/domain/chat"
	"support-chat/chat-api/internal/infrastructure/auth"
	"support-chat/chat-api/internal/infrastructure/metrics"
	"support-chat/chat-api/internal/infrastructure/realtime"
)

// WebsocketHandler upgrades customer and agent connections and speaks
// the realtime protocol: system frames inbound, hub envelopes outbound.
type WebsocketHandler struct {
	hub           *realtime.Hub
	tokens        *auth.TokenService
	agentService  *chat.AgentService
	conversations chat.ConversationRepository
	agents        chat.AgentRepository
	agentUsers    chat.AgentUserRepository
	upgrader      websocket.Upgrader
	log           zerolog.Logger
}

func NewWebsocketHandler(
	hub *realtime.Hub,
	tokens *auth.TokenService,
	agentService *chat.AgentService,
	conversations chat.ConversationRepository,
	agents chat.AgentRepository,
	agentUsers chat.AgentUserRepository,
	log zerolog.Logger,
) *WebsocketHandler {
	return &WebsocketHandler{
		hub:           hub,
		tokens:        tokens,
		agentService:  agentService,
		conversations: conversations,
		agents:        agents,
		agentUsers:    agentUsers,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log.With().Str("component", "websocket-handler").Logger(),
	}
}

type wsSession struct {
	role           string
	conn           *realtime.WSConn
	socket         *websocket.Conn
	agentID        *uuid.UUID
	initialChannel []string
}

type inboundFrame struct {
	Action         string `json:"action"`
	ConversationID string `json:"conversation_id"`
}

// Handle upgrades the request and runs the connection until it drops.
func (h *WebsocketHandler) Handle(c *gin.Context) {
	socket, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	ctx := c.Request.Context()
	session, reject := h.authorize(ctx, c, socket)
	if reject != "" {
		closePolicyViolation(socket, reject)
		return
	}

	h.hub.Attach(session.conn)
	for _, channel := range session.initialChannel {
		h.hub.Subscribe(session.conn, channel)
	}
	metrics.ActiveWebsocketConnections.WithLabelValues(session.role).Inc()

	h.sendSystem(session.conn, "system.connected", map[string]any{
		"role":     session.role,
		"channels": session.initialChannel,
	})

	if session.agentID != nil {
		h.markOnline(ctx, *session.agentID)
	}

	h.readLoop(ctx, session)

	h.hub.Detach(session.conn)
	session.conn.Close()
	metrics.ActiveWebsocketConnections.WithLabelValues(session.role).Dec()

	if session.agentID != nil {
		h.maybeMarkOffline(context.Background(), *session.agentID)
	}
}

// authorize validates query parameters for the requested role and
// returns the prepared session, or a rejection reason.
func (h *WebsocketHandler) authorize(ctx context.Context, c *gin.Context, socket *websocket.Conn) (*wsSession, string) {
	role := strings.ToLower(strings.TrimSpace(c.Query("role")))
	conversationID := parseUUID(c.Query("conversation_id"))

	switch role {
	case "customer":
		customerSessionID := strings.TrimSpace(c.Query("customer_session_id"))
		if conversationID == nil || customerSessionID == "" {
			return nil, "Customer websocket requires conversation_id and customer_session_id query parameters"
		}
		conversation, err := h.conversations.GetByID(ctx, *conversationID)
		if err != nil || conversation == nil || conversation.CustomerSessionID != customerSessionID {
			return nil, "Conversation access denied for this customer session"
		}
		return &wsSession{
			role:           role,
			conn:           realtime.NewWSConn(socket),
			socket:         socket,
			initialChannel: []string{chat.ConversationChannel(*conversationID)},
		}, ""

	case "agent":
		accessToken := strings.TrimSpace(c.Query("access_token"))
		if accessToken == "" {
			return nil, "Agent websocket requires access_token query parameter"
		}
		claims, err := h.tokens.Verify(accessToken)
		if err != nil {
			return nil, "Invalid or expired agent session"
		}
		if requested := parseUUID(c.Query("agent_id")); requested != nil && *requested != claims.AgentID {
			return nil, "Agent identity mismatch"
		}

		account, err := h.agentUsers.GetByID(ctx, claims.UserID)
		if err != nil || account == nil || !account.IsActive || account.AgentID != claims.AgentID {
			return nil, "Invalid or expired agent session"
		}
		agent, err := h.agents.GetByID(ctx, claims.AgentID)
		if err != nil || agent == nil {
			return nil, "Agent not found"
		}

		channels := []string{
			chat.AgentQueueChannel(claims.AgentID),
			chat.AgentPresenceChannel,
		}
		if conversationID != nil {
			conversation, err := h.conversations.GetByID(ctx, *conversationID)
			if err != nil || conversation == nil {
				return nil, "Conversation not found"
			}
			if conversation.AssignedAgentID != nil && *conversation.AssignedAgentID != claims.AgentID {
				return nil, "Conversation is assigned to another agent"
			}
			channels = append(channels, chat.ConversationChannel(*conversationID))
		}

		agentID := claims.AgentID
		return &wsSession{
			role:           role,
			conn:           realtime.NewWSConn(socket),
			socket:         socket,
			agentID:        &agentID,
			initialChannel: channels,
		}, ""

	default:
		return nil, "Unsupported role. Use role=customer or role=agent"
	}
}

func (h *WebsocketHandler) readLoop(ctx context.Context, session *wsSession) {
	for {
		_, raw, err := session.socket.ReadMessage()
		if err != nil {
			return
		}

		if strings.EqualFold(strings.TrimSpace(string(raw)), "ping") {
			h.sendSystem(session.conn, "system.pong", map[string]any{})
			continue
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.sendError(session.conn, "Expected JSON payload")
			continue
		}

		switch frame.Action {
		case "ping":
			h.sendSystem(session.conn, "system.pong", map[string]any{})

		case "subscribe_conversation":
			if session.role != "agent" {
				h.sendError(session.conn, "Unsupported action for current role")
				continue
			}
			h.subscribeConversation(ctx, session, frame.ConversationID)

		case "unsubscribe_conversation":
			if session.role != "agent" {
				h.sendError(session.conn, "Unsupported action for current role")
				continue
			}
			conversationID := parseUUID(frame.ConversationID)
			if conversationID == nil {
				h.sendError(session.conn, "Invalid conversation_id")
				continue
			}
			channel := chat.ConversationChannel(*conversationID)
			h.hub.Unsubscribe(session.conn, channel)
			h.sendSystem(session.conn, "system.unsubscribed", map[string]any{"channel": channel})

		default:
			if session.role != "agent" {
				h.sendError(session.conn, "Unsupported action for current role")
				continue
			}
			h.sendError(session.conn, "Unsupported action")
		}
	}
}

func (h *WebsocketHandler) subscribeConversation(ctx context.Context, session *wsSession, rawConversationID string) {
	conversationID := parseUUID(rawConversationID)
	if conversationID == nil {
		h.sendError(session.conn, "Invalid conversation_id")
		return
	}
	conversation, err := h.conversations.GetByID(ctx, *conversationID)
	if err != nil || conversation == nil {
		h.sendError(session.conn, "Conversation not found")
		return
	}
	if conversation.AssignedAgentID != nil && session.agentID != nil && *conversation.AssignedAgentID != *session.agentID {
		h.sendError(session.conn, "Conversation access denied")
		return
	}

	channel := chat.ConversationChannel(*conversationID)
	h.hub.Subscribe(session.conn, channel)
	h.sendSystem(session.conn, "system.subscribed", map[string]any{"channel": channel})
}

// markOnline flips the agent ONLINE on first attach.
func (h *WebsocketHandler) markOnline(ctx context.Context, agentID uuid.UUID) {
	if _, err := h.agentService.SetPresence(ctx, agentID, chat.PresenceOnline); err != nil {
		h.log.Warn().Err(err).Str("agent_id", agentID.String()).Msg("failed to mark agent online")
	}
}

// maybeMarkOffline flips the agent OFFLINE once its last workspace
// connection is gone.
func (h *WebsocketHandler) maybeMarkOffline(ctx context.Context, agentID uuid.UUID) {
	if h.hub.Subscribers(chat.AgentQueueChannel(agentID)) > 0 {
		return
	}
	if _, err := h.agentService.SetPresence(ctx, agentID, chat.PresenceOffline); err != nil {
		h.log.Warn().Err(err).Str("agent_id", agentID.String()).Msg("failed to mark agent offline")
	}
}

func (h *WebsocketHandler) sendSystem(conn *realtime.WSConn, event string, payload map[string]any) {
	frame, err := json.Marshal(map[string]any{
		"event":   event,
		"payload": payload,
		"sent_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return
	}
	if err := conn.Send(frame); err != nil {
		h.log.Debug().Err(err).Str("event", event).Msg("system frame dropped")
	}
}

func (h *WebsocketHandler) sendError(conn *realtime.WSConn, detail string) {
	h.sendSystem(conn, "system.error", map[string]any{"detail": detail})
}

func closePolicyViolation(socket *websocket.Conn, reason string) {
	deadline := time.Now().Add(time.Second)
	socket.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason),
		deadline,
	)
	socket.Close()
}

func parseUUID(raw string) *uuid.UUID {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return nil
	}
	return &parsed
}
