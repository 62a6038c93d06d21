package services

import (
	"context"
	"html"
	"log/slog"

	"github.com/lorrc/complaint-desk-backend/internal/core/domain"
	apperrors "github.com/lorrc/complaint-desk-backend/internal/core/errors"
	"github.com/lorrc/complaint-desk-backend/internal/core/ports"
	"github.com/microcosm-cc/bluemonday"
)

// MessageService implements the send-message protocol:
// Submitted -> Persisted -> Broadcast. Persistence failure aborts before
// broadcast, so a message is never observed half-delivered.
type MessageService struct {
	messageRepo ports.MessageRepository
	broadcaster ports.EventBroadcaster
	unreadSvc   ports.UnreadService
	notifier    ports.Notifier
	sanitizer   *bluemonday.Policy
	logger      *slog.Logger
}

// Ensure implementation matches the interface.
var _ ports.MessageService = (*MessageService)(nil)

// NewMessageService creates a new service for the send protocol.
func NewMessageService(
	messageRepo ports.MessageRepository,
	broadcaster ports.EventBroadcaster,
	unreadSvc ports.UnreadService,
	notifier ports.Notifier,
	logger *slog.Logger,
) ports.MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		broadcaster: broadcaster,
		unreadSvc:   unreadSvc,
		notifier:    notifier,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With("component", "message_service"),
	}
}

// Send validates, persists, and broadcasts a message to its room.
// Validation and persistence errors are returned to the caller and nothing
// is broadcast. The sender's own connection receives the broadcast too, so
// every client renders from the same event path.
func (s *MessageService) Send(ctx context.Context, params ports.SendMessageParams) (*domain.Message, error) {
	// 1. Resolve the room to its ticket id.
	ticketID, err := domain.ParseRoomID(params.RoomID)
	if err != nil {
		return nil, apperrors.ErrInvalidRoom
	}

	// 2. Build the domain entity. Content is stripped of any markup before
	// validation so a tag-only body counts as empty. The sanitizer
	// entity-escapes its output; unescaping restores innocuous characters
	// like < and & to exactly what the user typed, with the markup already
	// gone.
	content := html.UnescapeString(s.sanitizer.Sanitize(params.Content))
	message, err := domain.NewMessage(ticketID, params.SenderID, params.SenderRole, params.SenderName, content)
	if err != nil {
		return nil, err
	}

	// 3. Persist via the message log, obtaining the canonical id and
	// creation time. On failure the protocol terminates here.
	stored, err := s.messageRepo.Create(ctx, message)
	if err != nil {
		s.logger.Error("message persistence failed",
			"room_id", params.RoomID,
			"sender_id", params.SenderID,
			"error", err,
		)
		return nil, apperrors.ErrMessageNotStored
	}

	// 4. Broadcast to the room, sender included. Fan-out is attempted for
	// every current member before Publish returns.
	_ = s.broadcaster.Publish(domain.NewMessageEvent(stored))

	// 5. Unread accounting for the admin side.
	s.unreadSvc.OnMessage(ctx, stored.SenderRole, stored.RoomID())

	// 6. Alert the support inbox about customer traffic. Admin replies stay
	// inside the chat.
	if stored.SenderRole != domain.RoleAdmin {
		s.notifier.NotifyNewMessage(ctx, ports.NotificationParams{
			TicketID:   stored.TicketID,
			SenderName: stored.SenderName,
			SenderRole: stored.SenderRole,
			Preview:    stored.Content,
		})
	}

	return stored, nil
}

// History returns the persisted conversation for a room in creation order.
// A client that joins late or reconnects rebuilds its state from this; the
// broadcast core keeps no replay buffer.
func (s *MessageService) History(ctx context.Context, roomID string) ([]*domain.Message, error) {
	ticketID, err := domain.ParseRoomID(roomID)
	if err != nil {
		return nil, apperrors.ErrInvalidRoom
	}
	return s.messageRepo.ListByTicketID(ctx, ticketID)
}
