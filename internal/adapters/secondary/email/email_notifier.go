package email

import (
	"context"
	"log/slog"

	"github.com/lorrc/complaint-desk-backend/internal/core/ports"
)

// previewLimit caps how much message content leaks into notification logs.
const previewLimit = 120

// MockSMTPNotifier is a secondary adapter that mocks sending emails to the
// support team inbox. It implements the ports.Notifier interface.
type MockSMTPNotifier struct {
	inbox  string
	logger *slog.Logger
}

// NewMockSMTPNotifier creates a new mock notifier for the given inbox.
func NewMockSMTPNotifier(inbox string, logger *slog.Logger) ports.Notifier {
	return &MockSMTPNotifier{
		inbox:  inbox,
		logger: logger.With("component", "email_notifier"),
	}
}

// NotifyNewMessage logs the notification to the console instead of sending
// an email. Failures here never propagate to the send protocol.
func (n *MockSMTPNotifier) NotifyNewMessage(ctx context.Context, params ports.NotificationParams) {
	n.logger.Info("mock email sent",
		"to", n.inbox,
		"ticket_id", params.TicketID,
		"sender_name", params.SenderName,
		"sender_role", params.SenderRole,
		"preview", truncatePreview(params.Preview),
	)
}

// truncatePreview caps the preview at previewLimit runes, never splitting a
// multi-byte character.
func truncatePreview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLimit {
		return content
	}
	return string(runes[:previewLimit])
}
