package ports

import (
	"context"

	"github.com/lorrc/complaint-desk-backend/internal/core/domain"
)

// SendMessageParams defines the input for the send-message protocol.
// Sender identity comes from the authenticated connection, never from the
// message body.
type SendMessageParams struct {
	RoomID     string
	Content    string
	SenderID   string
	SenderRole domain.Role
	SenderName string
}

// MessageService defines the core send-message protocol: validate, persist,
// then broadcast. A message is either durably stored and broadcast, or
// neither is observed by anyone but the sender's own error path.
type MessageService interface {
	Send(ctx context.Context, params SendMessageParams) (*domain.Message, error)
	History(ctx context.Context, roomID string) ([]*domain.Message, error)
}

// UnreadService defines the aggregate admin-unread accounting.
type UnreadService interface {
	// Snapshot returns the current count; correct even for a client that
	// has never connected (backed by a durable counter).
	Snapshot(ctx context.Context) (int64, error)

	// OnMessage records a freshly broadcast message: increments the counter
	// iff senderRole is not ADMIN and no admin is watching the room, then
	// pushes the delta to admin connections.
	OnMessage(ctx context.Context, senderRole domain.Role, roomID string)

	// MarkAllRead resets the counter and returns the fresh post-reset
	// value, read in the same transaction as the reset. No zero event is
	// pushed; other connections re-snapshot.
	MarkAllRead(ctx context.Context) (int64, error)
}

// TypingService tracks ephemeral per-room typing state with timed expiry.
type TypingService interface {
	// Signal records a typing flag for (roomID, participantID) and
	// broadcasts the change. A true flag re-arms the expiry timer; the
	// tracker autonomously flips to false when the timer fires, even if
	// the signalling connection has since disconnected.
	Signal(roomID, participantID, displayName string, isTyping bool)
}

// EventBroadcaster is the port the core uses to fan events out to
// currently-connected clients.
type EventBroadcaster interface {
	// Publish delivers the event to every current member of its room.
	// Delivery has been attempted to all members by the time it returns;
	// delivery to any single handle is fire-and-forget.
	Publish(event domain.Event) error

	// SendToRole delivers the event to every connection held by the given
	// role, regardless of room membership.
	SendToRole(role domain.Role, event domain.Event)
}

// RoomPresence reports live room membership. Unread accounting uses it to
// decide whether an admin is currently positioned on a ticket.
type RoomPresence interface {
	RolePresent(roomID string, role domain.Role) bool
}
