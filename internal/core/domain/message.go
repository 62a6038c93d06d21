package domain

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Pre-defined errors for domain-specific validation.
var (
	ErrContentRequired  = errors.New("message content is required")
	ErrContentTooLong   = errors.New("message content exceeds maximum length")
	ErrSenderRequired   = errors.New("sender ID is required")
	ErrTicketIDRequired = errors.New("ticket ID is required")
	ErrInvalidRole      = errors.New("invalid participant role")
)

// MaxContentLength bounds a single chat message.
const MaxContentLength = 4000

// Role identifies which side of the platform a participant speaks for.
type Role string

const (
	RoleUser    Role = "USER"
	RoleCompany Role = "COMPANY"
	RoleAdmin   Role = "ADMIN"
	RoleSystem  Role = "SYSTEM"
)

// IsValid reports whether the role is one of the known participant roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleCompany, RoleAdmin, RoleSystem:
		return true
	}
	return false
}

// Message is one entry in a ticket's conversation log. Once persisted and
// broadcast, a message is immutable; there is no edit or delete.
type Message struct {
	ID         uuid.UUID
	TicketID   int64
	SenderID   string
	SenderRole Role
	SenderName string
	Content    string
	CreatedAt  time.Time
}

// NewMessage is a factory function to create a valid new message.
// Content is trimmed; an empty result is a validation error.
func NewMessage(ticketID int64, senderID string, senderRole Role, senderName, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrContentRequired
	}
	if len(content) > MaxContentLength {
		return nil, ErrContentTooLong
	}
	if ticketID <= 0 {
		return nil, ErrTicketIDRequired
	}
	if senderID == "" {
		return nil, ErrSenderRequired
	}
	if !senderRole.IsValid() {
		return nil, ErrInvalidRole
	}

	return &Message{
		TicketID:   ticketID,
		SenderID:   senderID,
		SenderRole: senderRole,
		SenderName: senderName,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// RoomID returns the broadcast room this message belongs to.
// A room is identified by the string form of its ticket id.
func (m *Message) RoomID() string {
	return strconv.FormatInt(m.TicketID, 10)
}

// ParseRoomID converts a wire room id back to its ticket id.
func ParseRoomID(roomID string) (int64, error) {
	id, err := strconv.ParseInt(roomID, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrTicketIDRequired
	}
	return id, nil
}
