package websocket

import (
	"log/slog"
	"sync"

	"github.com/lorrc/complaint-desk-backend/internal/core/domain"
	"github.com/lorrc/complaint-desk-backend/internal/core/ports"
)

// Hub maintains the set of active Clients and fans events out to them.
// It is the room registry and the broadcast core in one place: rooms exist
// implicitly while at least one client is joined, and nothing here is ever
// persisted - a late joiner replays history from the message log, not from
// the hub.
type Hub struct {
	// clients maps user IDs to their active connections.
	// A single user can have multiple connections (multiple tabs/devices).
	clients map[string]map[*Client]bool

	// rooms maps room IDs (stringified ticket ids) to joined clients.
	rooms map[string]map[*Client]bool

	// mu protects the clients and rooms maps.
	mu sync.RWMutex

	// publishMu serializes fan-out so two publishes to the same process
	// cannot be observed in different orders by different members.
	publishMu sync.Mutex

	// logger for the hub.
	logger *slog.Logger
}

// Ensure Hub implements the broadcast and presence ports.
var (
	_ ports.EventBroadcaster = (*Hub)(nil)
	_ ports.RoomPresence     = (*Hub)(nil)
)

// NewHub creates a new WebSocket hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]bool),
		rooms:   make(map[string]map[*Client]bool),
		logger:  logger.With("component", "websocket_hub"),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.UserID] == nil {
		h.clients[client.UserID] = make(map[*Client]bool)
	}
	h.clients[client.UserID][client] = true

	h.logger.Info("client registered",
		"user_id", client.UserID,
		"role", client.Role,
		"connection_id", client.ConnID,
		"total_connections", len(h.clients[client.UserID]),
	)
}

// Unregister removes a client from the hub and every room it joined.
// It runs synchronously on disconnect so stale membership never receives
// a broadcast. Unregistering an unknown client is a no-op: disconnects and
// explicit leaves can race.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()

	subscriptions := client.GetSubscriptions()

	if userClients, ok := h.clients[client.UserID]; ok {
		if _, exists := userClients[client]; exists {
			delete(userClients, client)
			if len(userClients) == 0 {
				delete(h.clients, client.UserID)
			}
		}
	}

	for _, roomID := range subscriptions {
		if room, ok := h.rooms[roomID]; ok {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	h.mu.Unlock()

	client.CloseSend()

	h.logger.Info("client unregistered",
		"user_id", client.UserID,
		"connection_id", client.ConnID,
	)
}

// Join adds a client to a room, creating the room implicitly. Joining a
// room the client already belongs to is a no-op, not an error, so a rejoin
// after reconnect is always safe.
func (h *Hub) Join(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.AddSubscription(roomID)

	h.logger.Debug("client joined room",
		"user_id", client.UserID,
		"connection_id", client.ConnID,
		"room_id", roomID,
	)
}

// Leave removes a client from a room. Leaving a room the client is not in
// is silently ignored. An empty room is garbage-collected, which is purely
// a memory-management choice: it still accepts later joins.
func (h *Hub) Leave(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[roomID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, roomID)
		}
	}
	client.RemoveSubscription(roomID)

	h.logger.Debug("client left room",
		"user_id", client.UserID,
		"connection_id", client.ConnID,
		"room_id", roomID,
	)
}

// Publish delivers an event to every client currently joined to its room.
// Delivery has been attempted for all current members by the time Publish
// returns, but each handle is fire-and-forget: a slow or dead connection
// gets its buffered channel skipped rather than blocking the rest. If no
// client is joined the event is simply dropped; the message log remains
// the durable record.
func (h *Hub) Publish(event domain.Event) error {
	h.publishMu.Lock()
	defer h.publishMu.Unlock()

	h.mu.RLock()
	room, ok := h.rooms[event.RoomID]
	if !ok {
		h.mu.RUnlock()
		return nil
	}
	clients := make([]*Client, 0, len(room))
	for client := range room {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	h.logger.Debug("broadcasting event",
		"event_type", event.Type,
		"room_id", event.RoomID,
		"client_count", len(clients),
	)

	for _, client := range clients {
		// The member list is a snapshot: a client may disconnect between
		// the snapshot and the send. TrySend treats that like a full
		// buffer and drops the event instead of hitting a closed channel.
		if !client.TrySend(event) {
			h.logger.Warn("client unreachable, dropping event",
				"user_id", client.UserID,
				"connection_id", client.ConnID,
				"event_type", event.Type,
			)
		}
	}
	return nil
}

// SendToRole delivers an event to every connection held by the given role,
// regardless of room membership. Used for the admin unread pushes.
func (h *Hub) SendToRole(role domain.Role, event domain.Event) {
	h.publishMu.Lock()
	defer h.publishMu.Unlock()

	h.mu.RLock()
	var targets []*Client
	for _, userClients := range h.clients {
		for client := range userClients {
			if client.Role == role {
				targets = append(targets, client)
			}
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		// Buffer full or already closed: skip this connection.
		_ = client.TrySend(event)
	}
}

// RolePresent reports whether any connection with the given role is
// currently joined to the room. Unread accounting uses this to tell an
// actively watching admin apart from an absent one.
func (h *Hub) RolePresent(roomID string, role domain.Role) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.rooms[roomID]
	if !ok {
		return false
	}
	for client := range room {
		if client.Role == role {
			return true
		}
	}
	return false
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, userClients := range h.clients {
		count += len(userClients)
	}
	return count
}

// RoomCount returns the number of rooms with at least one member.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// ClientsInRoom returns the number of clients joined to a room.
func (h *Hub) ClientsInRoom(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if room, ok := h.rooms[roomID]; ok {
		return len(room)
	}
	return 0
}

// IsUserConnected checks if a user has any active connections.
func (h *Hub) IsUserConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.clients[userID]
	return ok && len(clients) > 0
}
