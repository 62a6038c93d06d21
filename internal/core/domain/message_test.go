package domain_test

import (
	"strings"
	"testing"

	"github.com/lorrc/complaint-desk-backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_IsValid(t *testing.T) {
	tests := []struct {
		name string
		role domain.Role
		want bool
	}{
		{"USER is valid", domain.RoleUser, true},
		{"COMPANY is valid", domain.RoleCompany, true},
		{"ADMIN is valid", domain.RoleAdmin, true},
		{"SYSTEM is valid", domain.RoleSystem, true},
		{"empty is invalid", domain.Role(""), false},
		{"lowercase is invalid", domain.Role("admin"), false},
		{"MODERATOR is invalid", domain.Role("MODERATOR"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.IsValid())
		})
	}
}

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		ticket  int64
		sender  string
		role    domain.Role
		content string
		wantErr error
	}{
		{"valid message", 42, "user-1", domain.RoleCompany, "Refund requested", nil},
		{"content with newlines", 42, "user-1", domain.RoleUser, "line one\nline two", nil},
		{"empty content", 42, "user-1", domain.RoleUser, "", domain.ErrContentRequired},
		{"whitespace-only content", 42, "user-1", domain.RoleUser, "   \n\t ", domain.ErrContentRequired},
		{"content too long", 42, "user-1", domain.RoleUser, strings.Repeat("a", 4001), domain.ErrContentTooLong},
		{"zero ticket id", 0, "user-1", domain.RoleUser, "hello", domain.ErrTicketIDRequired},
		{"negative ticket id", -3, "user-1", domain.RoleUser, "hello", domain.ErrTicketIDRequired},
		{"missing sender", 42, "", domain.RoleUser, "hello", domain.ErrSenderRequired},
		{"unknown role", 42, "user-1", domain.Role("GUEST"), "hello", domain.ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := domain.NewMessage(tt.ticket, tt.sender, tt.role, "Some Name", tt.content)

			if tt.wantErr != nil {
				assert.Nil(t, msg)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, msg)
			assert.Equal(t, tt.ticket, msg.TicketID)
			assert.Equal(t, tt.sender, msg.SenderID)
			assert.Equal(t, strings.TrimSpace(tt.content), msg.Content)
			assert.False(t, msg.CreatedAt.IsZero())
		})
	}
}

func TestMessage_RoomID(t *testing.T) {
	msg, err := domain.NewMessage(42, "user-1", domain.RoleCompany, "Acme Corp", "hello")
	require.NoError(t, err)
	assert.Equal(t, "42", msg.RoomID())
}

func TestNewMessageSnapshot_CarriesRoomID(t *testing.T) {
	msg, err := domain.NewMessage(42, "user-1", domain.RoleCompany, "Acme Corp", "hello")
	require.NoError(t, err)

	snap := domain.NewMessageSnapshot(msg)
	assert.Equal(t, "42", snap.RoomID)
	assert.Equal(t, "user-1", snap.SenderID)
	assert.Equal(t, domain.RoleCompany, snap.SenderRole)
	assert.Equal(t, "hello", snap.Content)
	assert.NotEmpty(t, snap.CreatedAt)
}
