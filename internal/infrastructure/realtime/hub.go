// Package realtime implements the in-process channel hub that fans
// domain events out to attached websocket connections.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"support-chat/chat-api/internal/domain/chat"
	"support-chat/chat-api/internal/infrastructure/metrics"
)

// Conn is the hub's view of an attached connection. Send must not
// block indefinitely; a failed send marks the connection stale.
type Conn interface {
	Send(frame []byte) error
}

// Envelope is the wire frame delivered to subscribers.
type Envelope struct {
	Event   string         `json:"event"`
	Channel string         `json:"channel"`
	Payload map[string]any `json:"payload"`
	SentAt  time.Time      `json:"sent_at"`
}

// Hub keeps channel membership in two mirrored maps guarded by one
// mutex. Frames are sent outside the lock against a per-channel
// snapshot of the membership; a failed send prunes that channel's
// subscription only.
type Hub struct {
	mu       sync.Mutex
	channels map[string]map[Conn]struct{}
	conns    map[Conn]map[string]struct{}
	log      zerolog.Logger
	now      func() time.Time
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		channels: make(map[string]map[Conn]struct{}),
		conns:    make(map[Conn]map[string]struct{}),
		log:      log.With().Str("component", "realtime-hub").Logger(),
		now:      time.Now,
	}
}

// Attach registers a connection with no subscriptions yet. Attaching
// twice is a no-op.
func (h *Hub) Attach(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn]; !ok {
		h.conns[conn] = make(map[string]struct{})
	}
}

// Detach removes a connection and all of its subscriptions.
func (h *Hub) Detach(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(conn)
}

func (h *Hub) detachLocked(conn Conn) {
	subscribed, ok := h.conns[conn]
	if !ok {
		return
	}
	for channel := range subscribed {
		h.removeFromChannelLocked(channel, conn)
	}
	delete(h.conns, conn)
}

func (h *Hub) removeFromChannelLocked(channel string, conn Conn) {
	members, ok := h.channels[channel]
	if !ok {
		return
	}
	delete(members, conn)
	if len(members) == 0 {
		delete(h.channels, channel)
	}
}

// Subscribe adds the connection to a channel, attaching it first if
// needed. Subscribing twice to the same channel is a no-op.
func (h *Hub) Subscribe(conn Conn, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subscribed, ok := h.conns[conn]
	if !ok {
		subscribed = make(map[string]struct{})
		h.conns[conn] = subscribed
	}
	subscribed[channel] = struct{}{}
	members, ok := h.channels[channel]
	if !ok {
		members = make(map[Conn]struct{})
		h.channels[channel] = members
	}
	members[conn] = struct{}{}
}

// Unsubscribe removes the connection from one channel but keeps it
// attached.
func (h *Hub) Unsubscribe(conn Conn, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subscribed, ok := h.conns[conn]; ok {
		delete(subscribed, channel)
	}
	h.removeFromChannelLocked(channel, conn)
}

// Subscribers reports how many connections are currently on a channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.channels[channel])
}

// Channels returns the channels a connection is subscribed to.
func (h *Hub) Channels(conn Conn) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	subscribed := h.conns[conn]
	out := make([]string, 0, len(subscribed))
	for channel := range subscribed {
		out = append(out, channel)
	}
	return out
}

// Publish delivers one envelope per (channel, connection) pair: a
// connection subscribed to several of the published channels receives
// one frame per channel, each tagged with its channel, in publish call
// order. A failed send removes the connection from the failing channel
// only; its other subscriptions stay intact.
func (h *Hub) Publish(channels []string, event chat.RealtimeEvent, payload map[string]any) error {
	timer := prometheus.NewTimer(metrics.RealtimePublishDuration)
	defer timer.ObserveDuration()

	unique := make([]string, 0, len(channels))
	seen := make(map[string]struct{}, len(channels))
	for _, channel := range channels {
		if channel == "" {
			continue
		}
		if _, dup := seen[channel]; dup {
			continue
		}
		seen[channel] = struct{}{}
		unique = append(unique, channel)
	}
	if len(unique) == 0 {
		return nil
	}

	h.mu.Lock()
	recipients := make(map[string][]Conn, len(unique))
	for _, channel := range unique {
		members := h.channels[channel]
		if len(members) == 0 {
			continue
		}
		snapshot := make([]Conn, 0, len(members))
		for conn := range members {
			snapshot = append(snapshot, conn)
		}
		recipients[channel] = snapshot
	}
	h.mu.Unlock()

	sentAt := h.now().UTC()
	for _, channel := range unique {
		conns := recipients[channel]
		if len(conns) == 0 {
			continue
		}

		frame, err := json.Marshal(Envelope{
			Event:   string(event),
			Channel: channel,
			Payload: payload,
			SentAt:  sentAt,
		})
		if err != nil {
			return err
		}

		var stale []Conn
		for _, conn := range conns {
			if err := conn.Send(frame); err != nil {
				h.log.Debug().Err(err).
					Str("event", string(event)).
					Str("channel", channel).
					Msg("pruning stale channel subscription")
				stale = append(stale, conn)
			}
		}

		if len(stale) > 0 {
			metrics.RealtimePrunedConnections.Add(float64(len(stale)))
			h.mu.Lock()
			for _, conn := range stale {
				if subscribed, ok := h.conns[conn]; ok {
					delete(subscribed, channel)
				}
				h.removeFromChannelLocked(channel, conn)
			}
			h.mu.Unlock()
		}
	}
	return nil
}

var _ chat.Publisher = (*Hub)(nil)
