package websocket

import (
	"log/slog"
	"testing"

	"github.com/lorrc/complaint-desk-backend/internal/core/domain"
	"github.com/lorrc/complaint-desk-backend/internal/core/mocks"
	"github.com/lorrc/complaint-desk-backend/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newEnvelopeClient(t *testing.T, role domain.Role, services Services) *Client {
	t.Helper()
	hub := newTestHub()
	client := NewClient(hub, nil, "user-1", role, "Some Name", services, slog.New(slog.DiscardHandler))
	hub.Register(client)
	return client
}

func TestClient_HandleJoinRoom(t *testing.T) {
	client := newEnvelopeClient(t, domain.RoleCompany, Services{})

	client.handleIncomingMessage([]byte(`{"type":"join-room","payload":{"roomId":"42"}}`))

	assert.True(t, client.HasSubscription("42"))
	assert.Equal(t, 1, client.Hub.ClientsInRoom("42"))
}

func TestClient_HandleJoinRoomRejectsBadRoom(t *testing.T) {
	client := newEnvelopeClient(t, domain.RoleCompany, Services{})

	client.handleIncomingMessage([]byte(`{"type":"join-room","payload":{"roomId":"abc"}}`))

	assert.Equal(t, 0, client.Hub.RoomCount())
	events := drain(client)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventError, events[0].Type)
}

func TestClient_HandleSendMessageUsesConnectionIdentity(t *testing.T) {
	mockMessages := mocks.NewMockMessageService()
	client := newEnvelopeClient(t, domain.RoleCompany, Services{Messages: mockMessages})

	mockMessages.On("Send", mock.Anything, ports.SendMessageParams{
		RoomID:     "42",
		Content:    "hello",
		SenderID:   "user-1",
		SenderRole: domain.RoleCompany,
		SenderName: "Some Name",
	}).Return(&domain.Message{TicketID: 42}, nil)

	client.handleIncomingMessage([]byte(`{"type":"send-message","payload":{"roomId":"42","content":"hello"}}`))

	mockMessages.AssertExpectations(t)
	// The broadcast, not the submit path, echoes the message back.
	assert.Empty(t, drain(client))
}

func TestClient_HandleSendMessageReportsErrorToSenderOnly(t *testing.T) {
	mockMessages := mocks.NewMockMessageService()
	client := newEnvelopeClient(t, domain.RoleCompany, Services{Messages: mockMessages})

	mockMessages.On("Send", mock.Anything, mock.Anything).Return(nil, domain.ErrContentRequired)

	client.handleIncomingMessage([]byte(`{"type":"send-message","payload":{"roomId":"42","content":"  "}}`))

	events := drain(client)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventError, events[0].Type)
}

func TestClient_HandleTypingSignal(t *testing.T) {
	mockTyping := mocks.NewMockTypingService()
	client := newEnvelopeClient(t, domain.RoleCompany, Services{Typing: mockTyping})

	mockTyping.On("Signal", "42", "user-1", "Some Name", true).Return()

	client.handleIncomingMessage([]byte(`{"type":"typing","payload":{"roomId":"42","isTyping":true}}`))

	mockTyping.AssertExpectations(t)
}

func TestClient_HandleReadMessagesRequiresAdmin(t *testing.T) {
	mockUnread := mocks.NewMockUnreadService()
	client := newEnvelopeClient(t, domain.RoleCompany, Services{Unread: mockUnread})

	client.handleIncomingMessage([]byte(`{"type":"admin-read-messages","payload":{"roomId":"42"}}`))

	mockUnread.AssertNotCalled(t, "MarkAllRead")
	events := drain(client)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventError, events[0].Type)
}

func TestClient_HandleReadMessagesResetsAndSnapshots(t *testing.T) {
	mockUnread := mocks.NewMockUnreadService()
	client := newEnvelopeClient(t, domain.RoleAdmin, Services{Unread: mockUnread})

	mockUnread.On("MarkAllRead", mock.Anything).Return(int64(0), nil)

	client.handleIncomingMessage([]byte(`{"type":"admin-read-messages","payload":{"roomId":"42"}}`))

	mockUnread.AssertExpectations(t)
	events := drain(client)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventUnreadSnapshot, events[0].Type)
	assert.Equal(t, domain.UnreadSnapshotPayload{Count: 0}, events[0].Payload)
}

func TestClient_HandleUnreadSnapshotRequest(t *testing.T) {
	mockUnread := mocks.NewMockUnreadService()
	client := newEnvelopeClient(t, domain.RoleAdmin, Services{Unread: mockUnread})

	mockUnread.On("Snapshot", mock.Anything).Return(int64(3), nil)

	client.handleIncomingMessage([]byte(`{"type":"unread-snapshot"}`))

	events := drain(client)
	require.Len(t, events, 1)
	assert.Equal(t, domain.UnreadSnapshotPayload{Count: 3}, events[0].Payload)
}

func TestClient_MalformedEnvelopeIsIgnored(t *testing.T) {
	client := newEnvelopeClient(t, domain.RoleCompany, Services{})

	client.handleIncomingMessage([]byte(`not json`))
	client.handleIncomingMessage([]byte(`{"type":"join-room","payload":"not an object"}`))
	client.handleIncomingMessage([]byte(`{"type":"no-such-type"}`))

	assert.Empty(t, drain(client))
	assert.Equal(t, 0, client.Hub.RoomCount())
}

func TestClient_PingGetsPong(t *testing.T) {
	client := newEnvelopeClient(t, domain.RoleUser, Services{})

	client.handleIncomingMessage([]byte(`{"type":"PING"}`))

	events := drain(client)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventPong, events[0].Type)
}
