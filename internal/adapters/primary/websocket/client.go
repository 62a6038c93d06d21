package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lorrc/complaint-desk-backend/internal/core/domain"
	apperrors "github.com/lorrc/complaint-desk-backend/internal/core/errors"
	"github.com/lorrc/complaint-desk-backend/internal/core/ports"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192

	// Messages a single connection may send per second, with burst.
	sendRate  = 5
	sendBurst = 10
)

// Services bundles the core ports a connection drives.
type Services struct {
	Messages ports.MessageService
	Typing   ports.TypingService
	Unread   ports.UnreadService
}

// Client is one physical connection's membership and identity record.
// A single human may hold several Clients concurrently (multi-tab); each is
// tracked independently.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// Buffered channel of outbound events.
	Send chan domain.Event

	// ConnID is unique per physical connection.
	ConnID uuid.UUID

	// Identity resolved at connect time; trusted verbatim afterwards.
	UserID      string
	Role        domain.Role
	DisplayName string

	// services the read pump dispatches into.
	services Services

	// limiter bounds how fast this connection may submit messages.
	limiter *rate.Limiter

	// subscriptions is the set of joined room IDs.
	subscriptions map[string]bool

	// closed is set before Send is closed, under mu, so TrySend can never
	// write to a closed channel.
	closed bool

	// mu protects subscriptions and closed.
	mu sync.RWMutex

	// logger for this client.
	logger *slog.Logger
}

// NewClient creates a new WebSocket client.
func NewClient(hub *Hub, conn *websocket.Conn, userID string, role domain.Role, displayName string, services Services, logger *slog.Logger) *Client {
	connID := uuid.New()
	return &Client{
		Hub:           hub,
		Conn:          conn,
		Send:          make(chan domain.Event, 256),
		ConnID:        connID,
		UserID:        userID,
		Role:          role,
		DisplayName:   displayName,
		services:      services,
		limiter:       rate.NewLimiter(sendRate, sendBurst),
		subscriptions: make(map[string]bool),
		logger:        logger.With("user_id", userID, "connection_id", connID.String()),
	}
}

// CloseSend closes the Send channel exactly once. It marks the client
// closed under mu first, so a fan-out running against a stale member list
// sees the flag instead of a closed channel.
func (c *Client) CloseSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// TrySend queues an event for this connection without blocking. It reports
// false when the buffer is full or the connection has already been closed;
// either way the event is dropped, never a panic. The read lock excludes
// CloseSend, so closed cannot flip between the check and the send.
func (c *Client) TrySend(event domain.Event) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return false
	}
	select {
	case c.Send <- event:
		return true
	default:
		return false
	}
}

// AddSubscription records a joined room.
func (c *Client) AddSubscription(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscriptions[roomID] = true
}

// RemoveSubscription forgets a joined room.
func (c *Client) RemoveSubscription(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscriptions, roomID)
}

// HasSubscription checks if the client is joined to a room.
func (c *Client) HasSubscription(roomID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subscriptions[roomID]
}

// GetSubscriptions returns a copy of all joined room IDs.
func (c *Client) GetSubscriptions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	subs := make([]string, 0, len(c.subscriptions))
	for roomID := range c.subscriptions {
		subs = append(subs, roomID)
	}
	return subs
}

// ReadPump pumps messages from the websocket connection into the core.
// This method runs in its own goroutine. On exit the client is
// unregistered synchronously, which performs the leave-all.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}

	c.Conn.SetPongHandler(func(string) error {
		if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.logger.Error("failed to set read deadline in pong handler", "error", err)
		}
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			break
		}

		c.handleIncomingMessage(message)
	}
}

// WritePump pumps events from the hub to the websocket connection.
// This method runs in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline", "error", err)
				return
			}

			if !ok {
				// The hub closed the channel. Send close message.
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug("failed to send close message", "error", err)
				}
				return
			}

			if err := c.writeJSON(event); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline for ping", "error", err)
				return
			}

			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

// writeJSON writes a JSON event to the websocket connection.
func (c *Client) writeJSON(event domain.Event) error {
	w, err := c.Conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(w).Encode(event); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}

// --- Incoming Message Handling ---

// ClientMessage is the envelope for messages sent from the client.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Client->core envelope types.
const (
	msgJoinRoom      = "join-room"
	msgLeaveRoom     = "leave-room"
	msgSendMessage   = "send-message"
	msgTyping        = "typing"
	msgReadMessages  = "admin-read-messages"
	msgUnreadRequest = "unread-snapshot"
	msgPing          = "PING"
)

// RoomPayload is the payload for join/leave/read messages.
type RoomPayload struct {
	RoomID string `json:"roomId"`
}

// SendMessagePayload is the payload for a message submission. Sender
// identity comes from the connection, not from the payload.
type SendMessagePayload struct {
	RoomID  string `json:"roomId"`
	Content string `json:"content"`
}

// TypingSignalPayload is the payload for a typing signal.
type TypingSignalPayload struct {
	RoomID   string `json:"roomId"`
	IsTyping bool   `json:"isTyping"`
}

// handleIncomingMessage processes messages received from the client.
// Malformed input is logged and dropped; protocol errors go back to this
// connection only and are never fatal to it.
func (c *Client) handleIncomingMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Warn("failed to unmarshal client message", "error", err)
		return
	}

	switch msg.Type {
	case msgJoinRoom:
		c.handleJoin(msg.Payload)

	case msgLeaveRoom:
		c.handleLeave(msg.Payload)

	case msgSendMessage:
		c.handleSendMessage(msg.Payload)

	case msgTyping:
		c.handleTyping(msg.Payload)

	case msgReadMessages:
		c.handleReadMessages()

	case msgUnreadRequest:
		c.handleUnreadSnapshot()

	case msgPing:
		// Client-side keep-alive, respond with pong
		c.enqueue(domain.Event{Type: domain.EventPong})

	default:
		c.logger.Debug("received unknown message type", "type", msg.Type)
	}
}

func (c *Client) handleJoin(payload json.RawMessage) {
	var p RoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.logger.Warn("failed to unmarshal join payload", "error", err)
		return
	}

	if _, err := domain.ParseRoomID(p.RoomID); err != nil {
		c.sendError(apperrors.ErrInvalidRoom)
		return
	}

	c.Hub.Join(c, p.RoomID)
}

func (c *Client) handleLeave(payload json.RawMessage) {
	var p RoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.logger.Warn("failed to unmarshal leave payload", "error", err)
		return
	}

	c.Hub.Leave(c, p.RoomID)
}

func (c *Client) handleSendMessage(payload json.RawMessage) {
	var p SendMessagePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.logger.Warn("failed to unmarshal send payload", "error", err)
		return
	}

	if !c.limiter.Allow() {
		c.sendError(apperrors.ErrRateLimited)
		return
	}

	_, err := c.services.Messages.Send(context.Background(), ports.SendMessageParams{
		RoomID:     p.RoomID,
		Content:    p.Content,
		SenderID:   c.UserID,
		SenderRole: c.Role,
		SenderName: c.DisplayName,
	})
	if err != nil {
		// Reported to the sender only; nothing was broadcast.
		c.sendError(err)
	}
}

func (c *Client) handleTyping(payload json.RawMessage) {
	var p TypingSignalPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.logger.Warn("failed to unmarshal typing payload", "error", err)
		return
	}

	c.services.Typing.Signal(p.RoomID, c.UserID, c.DisplayName, p.IsTyping)
}

func (c *Client) handleReadMessages() {
	if c.Role != domain.RoleAdmin {
		c.sendError(apperrors.ErrForbidden)
		return
	}

	count, err := c.services.Unread.MarkAllRead(context.Background())
	if err != nil {
		c.sendError(err)
		return
	}

	// The reset does not push a zero event to other admin connections;
	// the caller gets the fresh count and everyone else re-pulls.
	c.enqueue(domain.NewUnreadSnapshotEvent(count))
}

func (c *Client) handleUnreadSnapshot() {
	if c.Role != domain.RoleAdmin {
		c.sendError(apperrors.ErrForbidden)
		return
	}
	c.pushUnreadSnapshot(context.Background())
}

func (c *Client) pushUnreadSnapshot(ctx context.Context) {
	count, err := c.services.Unread.Snapshot(ctx)
	if err != nil {
		c.sendError(err)
		return
	}
	c.enqueue(domain.NewUnreadSnapshotEvent(count))
}

// sendError reports an error to this connection only.
func (c *Client) sendError(err error) {
	payload := domain.ErrorPayload{Message: err.Error()}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		payload.Code = appErr.Code
	}

	c.enqueue(domain.Event{Type: domain.EventError, Payload: payload})
}

// enqueue queues an event for this connection, dropping it if the buffer
// is full or the connection is gone.
func (c *Client) enqueue(event domain.Event) {
	if !c.TrySend(event) {
		c.logger.Warn("send buffer full or closed, dropping event", "event_type", event.Type)
	}
}
