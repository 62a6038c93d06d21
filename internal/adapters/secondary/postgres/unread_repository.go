package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/complaint-desk-backend/internal/core/ports"
)

// UnreadRepository persists the aggregate admin-unread counter in a single
// row. Increment and reset are single atomic statements, so concurrent
// mutations serialize in the database: an increment racing a reset lands
// either before it (and is wiped) or after it (and survives), but is never
// lost mid-flight, and the CHECK constraint keeps the value non-negative.
type UnreadRepository struct {
	pool *pgxpool.Pool
}

// Ensure UnreadRepository implements the ports.UnreadRepository interface.
var _ ports.UnreadRepository = (*UnreadRepository)(nil)

// NewUnreadRepository creates a new unread counter repository.
func NewUnreadRepository(pool *pgxpool.Pool) ports.UnreadRepository {
	return &UnreadRepository{pool: pool}
}

// Get returns the current counter value. A missing row reads as zero.
func (r *UnreadRepository) Get(ctx context.Context) (int64, error) {
	const query = `SELECT count FROM admin_unread WHERE id = 1`

	var count int64
	err := GetDBTX(ctx, r.pool).QueryRow(ctx, query).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

// Increment atomically adds one and returns the new value, creating the
// row if migrations seeded nothing.
func (r *UnreadRepository) Increment(ctx context.Context) (int64, error) {
	const query = `
		INSERT INTO admin_unread (id, count) VALUES (1, 1)
		ON CONFLICT (id) DO UPDATE SET count = admin_unread.count + 1, updated_at = now()
		RETURNING count`

	var count int64
	if err := GetDBTX(ctx, r.pool).QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Reset sets the counter back to zero.
func (r *UnreadRepository) Reset(ctx context.Context) error {
	const query = `
		INSERT INTO admin_unread (id, count) VALUES (1, 0)
		ON CONFLICT (id) DO UPDATE SET count = 0, updated_at = now()`

	_, err := GetDBTX(ctx, r.pool).Exec(ctx, query)
	return err
}
