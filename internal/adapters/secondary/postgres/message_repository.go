package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/complaint-desk-backend/internal/core/domain"
	"github.com/lorrc/complaint-desk-backend/internal/core/ports"
	"github.com/lorrc/complaint-desk-backend/internal/core/utils"
)

// MessageRepository is the secondary adapter for the append-only message
// log. Rows are never updated or deleted.
type MessageRepository struct {
	pool *pgxpool.Pool
}

// Ensure MessageRepository implements the ports.MessageRepository interface.
var _ ports.MessageRepository = (*MessageRepository)(nil)

// NewMessageRepository creates a new message repository.
func NewMessageRepository(pool *pgxpool.Pool) ports.MessageRepository {
	return &MessageRepository{pool: pool}
}

// Create persists a message. The id and creation time assigned by the
// store are canonical; whatever the caller set is discarded.
func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	const query = `
		INSERT INTO messages (ticket_id, sender_id, sender_role, sender_name, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	var (
		id        pgtype.UUID
		createdAt pgtype.Timestamptz
	)
	err := GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		message.TicketID,
		message.SenderID,
		string(message.SenderRole),
		message.SenderName,
		message.Content,
	).Scan(&id, &createdAt)
	if err != nil {
		return nil, err
	}

	stored := *message
	stored.ID = utils.FromUUID(id)
	stored.CreatedAt = utils.FromTimestamptz(createdAt)
	return &stored, nil
}

// ListByTicketID retrieves the full conversation for a ticket ordered by
// creation time, id as tie-breaker so simultaneous rows have a stable order.
func (r *MessageRepository) ListByTicketID(ctx context.Context, ticketID int64) ([]*domain.Message, error) {
	const query = `
		SELECT id, ticket_id, sender_id, sender_role, sender_name, content, created_at
		FROM messages
		WHERE ticket_id = $1
		ORDER BY created_at, id`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		var (
			id        pgtype.UUID
			createdAt pgtype.Timestamptz
			role      string
			message   domain.Message
		)
		if err := rows.Scan(&id, &message.TicketID, &message.SenderID, &role, &message.SenderName, &message.Content, &createdAt); err != nil {
			return nil, err
		}
		message.ID = utils.FromUUID(id)
		message.SenderRole = domain.Role(role)
		message.CreatedAt = utils.FromTimestamptz(createdAt)
		messages = append(messages, &message)
	}
	return messages, rows.Err()
}
