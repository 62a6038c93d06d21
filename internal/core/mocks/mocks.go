package mocks

import (
	"context"

	"github.com/lorrc/complaint-desk-backend/internal/core/domain"
	"github.com/lorrc/complaint-desk-backend/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockMessageRepository is a mock implementation of ports.MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{}
}

func (m *MockMessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	args := m.Called(ctx, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageRepository) ListByTicketID(ctx context.Context, ticketID int64) ([]*domain.Message, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

// MockUnreadRepository is a mock implementation of ports.UnreadRepository
type MockUnreadRepository struct {
	mock.Mock
}

func NewMockUnreadRepository() *MockUnreadRepository {
	return &MockUnreadRepository{}
}

func (m *MockUnreadRepository) Get(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUnreadRepository) Increment(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUnreadRepository) Reset(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockTransactionManager is a mock implementation of ports.TransactionManager.
// On success it runs fn against the unmodified context, mimicking a committed
// transaction.
type MockTransactionManager struct {
	mock.Mock
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// MockEventBroadcaster is a mock implementation of ports.EventBroadcaster
type MockEventBroadcaster struct {
	mock.Mock
}

func NewMockEventBroadcaster() *MockEventBroadcaster {
	return &MockEventBroadcaster{}
}

func (m *MockEventBroadcaster) Publish(event domain.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockEventBroadcaster) SendToRole(role domain.Role, event domain.Event) {
	m.Called(role, event)
}

// MockRoomPresence is a mock implementation of ports.RoomPresence
type MockRoomPresence struct {
	mock.Mock
}

func NewMockRoomPresence() *MockRoomPresence {
	return &MockRoomPresence{}
}

func (m *MockRoomPresence) RolePresent(roomID string, role domain.Role) bool {
	args := m.Called(roomID, role)
	return args.Bool(0)
}

// MockUnreadService is a mock implementation of ports.UnreadService
type MockUnreadService struct {
	mock.Mock
}

func NewMockUnreadService() *MockUnreadService {
	return &MockUnreadService{}
}

func (m *MockUnreadService) Snapshot(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUnreadService) OnMessage(ctx context.Context, senderRole domain.Role, roomID string) {
	m.Called(ctx, senderRole, roomID)
}

func (m *MockUnreadService) MarkAllRead(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockMessageService is a mock implementation of ports.MessageService
type MockMessageService struct {
	mock.Mock
}

func NewMockMessageService() *MockMessageService {
	return &MockMessageService{}
}

func (m *MockMessageService) Send(ctx context.Context, params ports.SendMessageParams) (*domain.Message, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageService) History(ctx context.Context, roomID string) ([]*domain.Message, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

// MockTypingService is a mock implementation of ports.TypingService
type MockTypingService struct {
	mock.Mock
}

func NewMockTypingService() *MockTypingService {
	return &MockTypingService{}
}

func (m *MockTypingService) Signal(roomID, participantID, displayName string, isTyping bool) {
	m.Called(roomID, participantID, displayName, isTyping)
}

// MockNotifier is a mock implementation of ports.Notifier
type MockNotifier struct {
	mock.Mock
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) NotifyNewMessage(ctx context.Context, params ports.NotificationParams) {
	m.Called(ctx, params)
}
