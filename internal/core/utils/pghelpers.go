package utils

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// FromUUID converts a pgtype.UUID to a uuid.UUID.
// A NULL value is converted to the zero UUID.
func FromUUID(u pgtype.UUID) uuid.UUID {
	if !u.Valid {
		return uuid.Nil
	}
	return uuid.UUID(u.Bytes)
}

// FromTimestamptz converts a pgtype.Timestamptz to a time.Time.
// A NULL value is converted to the zero time.
func FromTimestamptz(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}
