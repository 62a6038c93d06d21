package ports

import (
	"context"

	"github.com/lorrc/complaint-desk-backend/internal/core/domain"
)

// NotificationParams carries what a notifier needs to compose an alert
// about a new support message.
type NotificationParams struct {
	TicketID   int64
	SenderName string
	SenderRole domain.Role
	Preview    string
}

// Notifier is the port for out-of-band alerts about support chat activity.
// Implementations must not block the send protocol; failures are theirs to
// log and swallow.
type Notifier interface {
	NotifyNewMessage(ctx context.Context, params NotificationParams)
}
