package postgres

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/lorrc/complaint-desk-backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nextTicketID hands out distinct ticket ids so tests sharing the
// container never see each other's conversations.
var nextTicketID atomic.Int64

func newTicketID(t *testing.T) int64 {
	require.NotNil(t, testPool, "testPool is nil. TestMain may not have run.")
	return 100_000 + nextTicketID.Add(1)
}

func mustMessage(t *testing.T, ticketID int64, senderID string, role domain.Role, content string) *domain.Message {
	t.Helper()
	msg, err := domain.NewMessage(ticketID, senderID, role, "Sender "+senderID, content)
	require.NoError(t, err)
	return msg
}

func TestMessageRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(testPool)
	ticketID := newTicketID(t)

	msg := mustMessage(t, ticketID, "user-42", domain.RoleUser, "The delivery never arrived.")

	stored, err := repo.Create(ctx, msg)
	require.NoError(t, err, "Failed to create message")

	assert.NotEqual(t, uuid.Nil, stored.ID, "store should assign an id")
	assert.False(t, stored.CreatedAt.IsZero(), "store should assign a creation time")
	assert.Equal(t, ticketID, stored.TicketID)
	assert.Equal(t, "user-42", stored.SenderID)
	assert.Equal(t, domain.RoleUser, stored.SenderRole)
	assert.Equal(t, "The delivery never arrived.", stored.Content)
}

func TestMessageRepository_ListByTicketID(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(testPool)
	ticketID := newTicketID(t)

	var want []uuid.UUID
	for i := 0; i < 5; i++ {
		msg := mustMessage(t, ticketID, "user-7", domain.RoleUser, fmt.Sprintf("message %d", i))
		stored, err := repo.Create(ctx, msg)
		require.NoError(t, err)
		want = append(want, stored.ID)
	}

	// Another ticket's conversation must not leak in.
	otherID := newTicketID(t)
	_, err := repo.Create(ctx, mustMessage(t, otherID, "user-8", domain.RoleCompany, "unrelated"))
	require.NoError(t, err)

	listed, err := repo.ListByTicketID(ctx, ticketID)
	require.NoError(t, err)
	require.Len(t, listed, 5)

	for i, msg := range listed {
		assert.Equal(t, want[i], msg.ID, "conversation should come back in insertion order")
		assert.Equal(t, ticketID, msg.TicketID)
	}
}

func TestMessageRepository_ListByTicketID_Empty(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(testPool)

	listed, err := repo.ListByTicketID(ctx, newTicketID(t))
	require.NoError(t, err)
	assert.Empty(t, listed)
}
