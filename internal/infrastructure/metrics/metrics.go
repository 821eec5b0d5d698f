// Package metrics provides Prometheus metrics for the chat API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveWebsocketConnections tracks currently attached websocket
	// clients by role.
	ActiveWebsocketConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chat_active_websocket_connections",
			Help: "Number of currently attached websocket connections",
		},
		[]string{"role"},
	)

	// ConversationsStarted tracks the total number of conversations
	// created.
	ConversationsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_conversations_started_total",
			Help: "Total number of conversations created",
		},
	)

	// ConversationTransitions tracks conversation status changes.
	ConversationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_conversation_transitions_total",
			Help: "Total number of conversation status transitions",
		},
		[]string{"from_status", "to_status"},
	)

	// MessagesCreated tracks persisted messages by sender type.
	MessagesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_created_total",
			Help: "Total number of messages persisted",
		},
		[]string{"sender_type"},
	)

	// RealtimePublishDuration tracks hub fan-out latency.
	RealtimePublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_realtime_publish_duration_seconds",
			Help:    "Duration of realtime hub publications",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
	)

	// RealtimePrunedConnections tracks connections dropped for failed
	// sends.
	RealtimePrunedConnections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_realtime_pruned_connections_total",
			Help: "Total number of stale websocket connections pruned",
		},
	)

	// AgentAssignments tracks routing outcomes.
	AgentAssignments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_agent_assignments_total",
			Help: "Total number of agent assignment attempts",
		},
		[]string{"outcome"},
	)
)

// RecordConversationStarted increments the conversation counter.
func RecordConversationStarted() {
	ConversationsStarted.Inc()
}

// RecordTransition records a conversation status change.
func RecordTransition(fromStatus, toStatus string) {
	ConversationTransitions.WithLabelValues(fromStatus, toStatus).Inc()
}

// RecordMessageCreated counts one persisted message.
func RecordMessageCreated(senderType string) {
	MessagesCreated.WithLabelValues(senderType).Inc()
}

// RecordAssignment records a routing outcome: "assigned", "queued" or
// "lost_race".
func RecordAssignment(outcome string) {
	AgentAssignments.WithLabelValues(outcome).Inc()
}
