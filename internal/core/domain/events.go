package domain

import "time"

// EventType defines the type of real-time event.
type EventType string

const (
	EventMessageReceived   EventType = "message-received"
	EventTypingChanged     EventType = "typing-changed"
	EventUnreadIncremented EventType = "unread-incremented"
	EventUnreadSnapshot    EventType = "unread-snapshot"
	EventError             EventType = "error"
	EventPong              EventType = "PONG"
)

// Event is the payload sent over WebSocket. RoomID is routing metadata:
// clients strip it before storing the payload in their per-room state.
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	RoomID  string      `json:"roomId,omitempty"`
}

// MessageSnapshot is the wire shape of a persisted message. It mirrors the
// stored record plus the transient roomId used for routing.
type MessageSnapshot struct {
	ID         string `json:"id"`
	RoomID     string `json:"roomId"`
	SenderID   string `json:"senderId"`
	SenderRole Role   `json:"senderRole"`
	SenderName string `json:"senderName"`
	Content    string `json:"content"`
	CreatedAt  string `json:"createdAt"`
}

// NewMessageSnapshot builds the wire representation of a message.
func NewMessageSnapshot(m *Message) MessageSnapshot {
	return MessageSnapshot{
		ID:         m.ID.String(),
		RoomID:     m.RoomID(),
		SenderID:   m.SenderID,
		SenderRole: m.SenderRole,
		SenderName: m.SenderName,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// TypingPayload carries the per-room typing flag. The indicator is a single
// boolean: when several participants type at once the last writer wins.
type TypingPayload struct {
	IsTyping bool `json:"isTyping"`
}

// UnreadIncrementedPayload is the push-only delta notice sent to admin
// connections when a non-admin message lands in an unwatched room.
type UnreadIncrementedPayload struct {
	RoomID    string `json:"roomId"`
	Increment bool   `json:"increment"`
}

// UnreadSnapshotPayload carries the aggregate admin-unread count.
type UnreadSnapshotPayload struct {
	Count int64 `json:"count"`
}

// ErrorPayload is sent to the originating connection only; errors are never
// broadcast to a room.
type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// NewMessageEvent wraps a message in its broadcast event.
func NewMessageEvent(m *Message) Event {
	return Event{
		Type:    EventMessageReceived,
		Payload: NewMessageSnapshot(m),
		RoomID:  m.RoomID(),
	}
}

// NewTypingEvent wraps a typing flag in its room-scoped event.
func NewTypingEvent(roomID string, isTyping bool) Event {
	return Event{
		Type:    EventTypingChanged,
		Payload: TypingPayload{IsTyping: isTyping},
		RoomID:  roomID,
	}
}

// NewUnreadIncrementedEvent builds the admin-only unread delta notice.
func NewUnreadIncrementedEvent(roomID string) Event {
	return Event{
		Type:    EventUnreadIncremented,
		Payload: UnreadIncrementedPayload{RoomID: roomID, Increment: true},
		RoomID:  roomID,
	}
}

// NewUnreadSnapshotEvent builds a point-in-time unread count event.
func NewUnreadSnapshotEvent(count int64) Event {
	return Event{
		Type:    EventUnreadSnapshot,
		Payload: UnreadSnapshotPayload{Count: count},
	}
}
