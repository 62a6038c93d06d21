package services

import (
	"context"
	"log/slog"

	"github.com/lorrc/complaint-desk-backend/internal/core/domain"
	"github.com/lorrc/complaint-desk-backend/internal/core/ports"
)

// UnreadService implements the aggregate admin-unread accounting. The
// counter is durable (one row, mutated atomically by the repository) so a
// restart or a fresh admin tab sees the true value, and concurrent
// increments and resets serialize in the store without losing an increment
// or going negative.
type UnreadService struct {
	unreadRepo  ports.UnreadRepository
	broadcaster ports.EventBroadcaster
	presence    ports.RoomPresence
	txManager   ports.TransactionManager
	logger      *slog.Logger
}

// Ensure implementation matches the interface.
var _ ports.UnreadService = (*UnreadService)(nil)

// NewUnreadService creates a new unread accounting service.
func NewUnreadService(
	unreadRepo ports.UnreadRepository,
	broadcaster ports.EventBroadcaster,
	presence ports.RoomPresence,
	txManager ports.TransactionManager,
	logger *slog.Logger,
) ports.UnreadService {
	return &UnreadService{
		unreadRepo:  unreadRepo,
		broadcaster: broadcaster,
		presence:    presence,
		txManager:   txManager,
		logger:      logger.With("component", "unread_service"),
	}
}

// Snapshot returns the current counter value for pull-style consumers.
func (s *UnreadService) Snapshot(ctx context.Context) (int64, error) {
	return s.unreadRepo.Get(ctx)
}

// OnMessage accounts for a freshly broadcast message. Admin-authored
// messages never count; neither do messages landing in a room an admin is
// currently watching. A failed increment is logged and dropped: the client
// self-heals on its next snapshot pull.
func (s *UnreadService) OnMessage(ctx context.Context, senderRole domain.Role, roomID string) {
	if senderRole == domain.RoleAdmin {
		return
	}
	if s.presence.RolePresent(roomID, domain.RoleAdmin) {
		return
	}

	count, err := s.unreadRepo.Increment(ctx)
	if err != nil {
		s.logger.Error("unread increment failed", "room_id", roomID, "error", err)
		return
	}

	s.logger.Debug("unread incremented", "room_id", roomID, "count", count)
	s.broadcaster.SendToRole(domain.RoleAdmin, domain.NewUnreadIncrementedEvent(roomID))
}

// MarkAllRead resets the counter to zero. The reset is a full reset, not a
// per-room decrement: the UI surfaces a single aggregate badge. Reset and
// re-read run in one transaction so the returned value is the count the
// caller's reset produced, not one polluted by a concurrent increment.
// Other admin connections learn of the change on their next snapshot pull.
func (s *UnreadService) MarkAllRead(ctx context.Context) (int64, error) {
	var count int64
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.unreadRepo.Reset(ctx); err != nil {
			return err
		}
		fresh, err := s.unreadRepo.Get(ctx)
		if err != nil {
			return err
		}
		count = fresh
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("admin unread counter reset")
	return count, nil
}
