package services

import (
	"log/slog"
	"sync"
	"time"

	"github.com/lorrc/complaint-desk-backend/internal/core/domain"
	"github.com/lorrc/complaint-desk-backend/internal/core/ports"
)

// DefaultTypingWindow is the quiet period after which a typing flag
// auto-expires to false.
const DefaultTypingWindow = time.Second

// typingKey identifies one participant's flag in one room.
type typingKey struct {
	roomID        string
	participantID string
}

// TypingTracker keeps ephemeral per-room typing state. Expiry is
// timer-driven, not disconnect-driven, so a connection that drops mid-type
// cannot leave the indicator wedged on. Nothing here is ever persisted.
type TypingTracker struct {
	broadcaster ports.EventBroadcaster
	window      time.Duration

	mu      sync.Mutex
	entries map[typingKey]*time.Timer

	logger *slog.Logger
}

// Ensure implementation matches the interface.
var _ ports.TypingService = (*TypingTracker)(nil)

// NewTypingTracker creates a tracker that publishes changes through the
// given broadcaster. A non-positive window falls back to the default.
func NewTypingTracker(broadcaster ports.EventBroadcaster, window time.Duration, logger *slog.Logger) *TypingTracker {
	if window <= 0 {
		window = DefaultTypingWindow
	}
	return &TypingTracker{
		broadcaster: broadcaster,
		window:      window,
		entries:     make(map[typingKey]*time.Timer),
		logger:      logger.With("component", "typing_tracker"),
	}
}

// Signal records a typing flag and broadcasts the change to the room.
// A true flag (re)arms the expiry timer; an explicit false short-circuits
// it. The wire payload carries only the boolean, so when several
// participants type at once the last writer's flag is what rooms display.
func (t *TypingTracker) Signal(roomID, participantID, displayName string, isTyping bool) {
	if roomID == "" || participantID == "" {
		return
	}
	key := typingKey{roomID: roomID, participantID: participantID}

	t.mu.Lock()
	if timer, ok := t.entries[key]; ok {
		timer.Stop()
		delete(t.entries, key)
	}
	if isTyping {
		var timer *time.Timer
		timer = time.AfterFunc(t.window, func() {
			t.expire(key, timer)
		})
		t.entries[key] = timer
	}
	t.mu.Unlock()

	t.logger.Debug("typing signal",
		"room_id", roomID,
		"participant_id", participantID,
		"is_typing", isTyping,
	)
	_ = t.broadcaster.Publish(domain.NewTypingEvent(roomID, isTyping))
}

// expire flips the flag to false when the quiet period elapses with no
// further signal. The timer identity check discards a stale callback that
// raced with a re-signal.
func (t *TypingTracker) expire(key typingKey, timer *time.Timer) {
	t.mu.Lock()
	current, ok := t.entries[key]
	if !ok || current != timer {
		t.mu.Unlock()
		return
	}
	delete(t.entries, key)
	t.mu.Unlock()

	_ = t.broadcaster.Publish(domain.NewTypingEvent(key.roomID, false))
}

// ActiveCount returns the number of live typing entries across all rooms.
func (t *TypingTracker) ActiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
