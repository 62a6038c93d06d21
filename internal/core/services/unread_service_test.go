package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lorrc/complaint-desk-backend/internal/core/domain"
	"github.com/lorrc/complaint-desk-backend/internal/core/mocks"
	"github.com/lorrc/complaint-desk-backend/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUnreadService_Snapshot(t *testing.T) {
	ctx := context.Background()

	mockRepo := mocks.NewMockUnreadRepository()
	mockBroadcaster := mocks.NewMockEventBroadcaster()
	mockPresence := mocks.NewMockRoomPresence()
	mockTx := mocks.NewMockTransactionManager()

	svc := services.NewUnreadService(mockRepo, mockBroadcaster, mockPresence, mockTx, testLogger())

	mockRepo.On("Get", ctx).Return(int64(7), nil)

	count, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestUnreadService_OnMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("non-admin message in unwatched room increments and pushes", func(t *testing.T) {
		mockRepo := mocks.NewMockUnreadRepository()
		mockBroadcaster := mocks.NewMockEventBroadcaster()
		mockPresence := mocks.NewMockRoomPresence()
		mockTx := mocks.NewMockTransactionManager()

		svc := services.NewUnreadService(mockRepo, mockBroadcaster, mockPresence, mockTx, testLogger())

		mockPresence.On("RolePresent", "42", domain.RoleAdmin).Return(false)
		mockRepo.On("Increment", ctx).Return(int64(1), nil)
		mockBroadcaster.On("SendToRole", domain.RoleAdmin, mock.MatchedBy(func(e domain.Event) bool {
			if e.Type != domain.EventUnreadIncremented {
				return false
			}
			payload := e.Payload.(domain.UnreadIncrementedPayload)
			return payload.RoomID == "42" && payload.Increment
		})).Return()

		svc.OnMessage(ctx, domain.RoleCompany, "42")

		mockRepo.AssertExpectations(t)
		mockBroadcaster.AssertExpectations(t)
	})

	t.Run("admin-authored message never counts", func(t *testing.T) {
		mockRepo := mocks.NewMockUnreadRepository()
		mockBroadcaster := mocks.NewMockEventBroadcaster()
		mockPresence := mocks.NewMockRoomPresence()
		mockTx := mocks.NewMockTransactionManager()

		svc := services.NewUnreadService(mockRepo, mockBroadcaster, mockPresence, mockTx, testLogger())

		svc.OnMessage(ctx, domain.RoleAdmin, "42")

		mockRepo.AssertNotCalled(t, "Increment")
		mockBroadcaster.AssertNotCalled(t, "SendToRole")
	})

	t.Run("no increment while an admin is watching the room", func(t *testing.T) {
		mockRepo := mocks.NewMockUnreadRepository()
		mockBroadcaster := mocks.NewMockEventBroadcaster()
		mockPresence := mocks.NewMockRoomPresence()
		mockTx := mocks.NewMockTransactionManager()

		svc := services.NewUnreadService(mockRepo, mockBroadcaster, mockPresence, mockTx, testLogger())

		mockPresence.On("RolePresent", "42", domain.RoleAdmin).Return(true)

		svc.OnMessage(ctx, domain.RoleCompany, "42")

		mockRepo.AssertNotCalled(t, "Increment")
		mockBroadcaster.AssertNotCalled(t, "SendToRole")
	})

	t.Run("failed increment is dropped without a push", func(t *testing.T) {
		mockRepo := mocks.NewMockUnreadRepository()
		mockBroadcaster := mocks.NewMockEventBroadcaster()
		mockPresence := mocks.NewMockRoomPresence()
		mockTx := mocks.NewMockTransactionManager()

		svc := services.NewUnreadService(mockRepo, mockBroadcaster, mockPresence, mockTx, testLogger())

		mockPresence.On("RolePresent", "42", domain.RoleAdmin).Return(false)
		mockRepo.On("Increment", ctx).Return(int64(0), errors.New("connection reset"))

		svc.OnMessage(ctx, domain.RoleUser, "42")

		mockBroadcaster.AssertNotCalled(t, "SendToRole")
	})
}

func TestUnreadService_MarkAllRead(t *testing.T) {
	ctx := context.Background()

	mockRepo := mocks.NewMockUnreadRepository()
	mockBroadcaster := mocks.NewMockEventBroadcaster()
	mockPresence := mocks.NewMockRoomPresence()
	mockTx := mocks.NewMockTransactionManager()

	svc := services.NewUnreadService(mockRepo, mockBroadcaster, mockPresence, mockTx, testLogger())

	mockTx.On("WithTransaction", ctx, mock.Anything).Return(nil)
	mockRepo.On("Reset", ctx).Return(nil)
	mockRepo.On("Get", ctx).Return(int64(0), nil)

	count, err := svc.MarkAllRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
	mockTx.AssertExpectations(t)
	mockRepo.AssertExpectations(t)

	// Reset never auto-pushes a zero event; clients re-snapshot instead.
	mockBroadcaster.AssertNotCalled(t, "SendToRole")
	mockBroadcaster.AssertNotCalled(t, "Publish")
}

func TestUnreadService_MarkAllReadTransactionFailure(t *testing.T) {
	ctx := context.Background()

	mockRepo := mocks.NewMockUnreadRepository()
	mockBroadcaster := mocks.NewMockEventBroadcaster()
	mockPresence := mocks.NewMockRoomPresence()
	mockTx := mocks.NewMockTransactionManager()

	svc := services.NewUnreadService(mockRepo, mockBroadcaster, mockPresence, mockTx, testLogger())

	mockTx.On("WithTransaction", ctx, mock.Anything).Return(errors.New("deadlock detected"))

	_, err := svc.MarkAllRead(ctx)
	require.Error(t, err)
	mockRepo.AssertNotCalled(t, "Reset")
}
