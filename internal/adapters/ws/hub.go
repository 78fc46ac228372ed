// Package ws fans confirmed events out to websocket viewers, one room per
// game. Delivery is best-effort: a slow viewer drops messages and resyncs
// through the event-list endpoint.
package ws

import (
	"context"
	"encoding/json"
	"sync"

	"dugout/pkg/logger"
	"dugout/pkg/metrics"
)

// defaultClientBuffer is the per-viewer send buffer size.
const defaultClientBuffer = 64

// Hub tracks viewer rooms keyed by the composite game identity.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]map[*Client]struct{}
	bufferSize int
	logger     logger.Logger
	closed     bool
}

// HubOption applies a configuration option to the Hub.
type HubOption func(*Hub)

// WithClientBuffer sets the per-viewer send buffer size.
func WithClientBuffer(size int) HubOption {
	return func(h *Hub) {
		if size > 0 {
			h.bufferSize = size
		}
	}
}

// WithHubLogger sets a custom logger for the hub.
func WithHubLogger(l logger.Logger) HubOption {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHub creates an empty viewer hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		bufferSize: defaultClientBuffer,
		logger:     logger.Get().Named("ws"),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

func roomKey(accountID, gameID string) string {
	return accountID + ":" + gameID
}

// Deliver sends one confirmed event or tombstone to every viewer of the
// game. It implements the dispatcher sink. Marshal failures and full client
// buffers are logged and dropped, never surfaced.
func (h *Hub) Deliver(ctx context.Context, accountID, gameID string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error(ctx, "broadcast payload not serializable", logger.Error(err))
		metrics.RecordBroadcastDropped()
		return
	}

	h.mu.RLock()
	room := h.rooms[roomKey(accountID, gameID)]
	clients := make([]*Client, 0, len(room))
	for c := range room {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.trySend(data) {
			metrics.RecordBroadcastDropped()
			h.logger.Warn(ctx, "viewer buffer full, message dropped",
				logger.String("game", gameID),
			)
		}
	}
}

// register adds a viewer to a game's room.
func (h *Hub) register(accountID, gameID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	k := roomKey(accountID, gameID)
	room, ok := h.rooms[k]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[k] = room
	}
	room[c] = struct{}{}
	metrics.UpdateViewerCount(h.viewersLocked())
}

// unregister removes a viewer and prunes its room when empty.
func (h *Hub) unregister(accountID, gameID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	k := roomKey(accountID, gameID)
	if room, ok := h.rooms[k]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, k)
		}
	}
	metrics.UpdateViewerCount(h.viewersLocked())
}

// ViewerCount returns the number of connected viewers across all rooms.
func (h *Hub) ViewerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.viewersLocked()
}

func (h *Hub) viewersLocked() int {
	total := 0
	for _, room := range h.rooms {
		total += len(room)
	}
	return total
}

// Close disconnects all viewers and rejects new registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for _, room := range h.rooms {
		for c := range room {
			c.close()
		}
	}
	h.rooms = make(map[string]map[*Client]struct{})
	metrics.UpdateViewerCount(0)
}
