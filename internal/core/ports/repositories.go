package ports

import (
	"context"

	"github.com/lorrc/complaint-desk-backend/internal/core/domain"
)

// MessageRepository is the port for the durable, append-only message log.
type MessageRepository interface {
	// Create persists a message and returns it with its canonical,
	// store-assigned id and creation time.
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)

	// ListByTicketID returns the full conversation for a ticket ordered by
	// creation time. Joining clients rebuild their state from this, not
	// from any broadcast replay.
	ListByTicketID(ctx context.Context, ticketID int64) ([]*domain.Message, error)
}

// TransactionManager runs a function with every repository call inside a
// single database transaction. The transaction travels on the context, so
// repositories pick it up transparently.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UnreadRepository is the port for the durable admin-unread counter.
// The counter is aggregate: one integer for all tickets, admin perspective.
type UnreadRepository interface {
	// Get returns the current counter value.
	Get(ctx context.Context) (int64, error)

	// Increment atomically adds one and returns the new value.
	Increment(ctx context.Context) (int64, error)

	// Reset sets the counter back to zero.
	Reset(ctx context.Context) error
}
