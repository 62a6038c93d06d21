package services_test

import (
	"sync"
	"testing"
	"time"

	"github.com/lorrc/complaint-desk-backend/internal/core/domain"
	"github.com/lorrc/complaint-desk-backend/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBroadcaster captures published events for timing-sensitive
// assertions where a testify mock would be too rigid.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []domain.Event
}

func (b *recordingBroadcaster) Publish(event domain.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

func (b *recordingBroadcaster) SendToRole(role domain.Role, event domain.Event) {}

func (b *recordingBroadcaster) snapshot() []domain.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Event, len(b.events))
	copy(out, b.events)
	return out
}

func typingFlags(events []domain.Event) []bool {
	var flags []bool
	for _, e := range events {
		if e.Type == domain.EventTypingChanged {
			flags = append(flags, e.Payload.(domain.TypingPayload).IsTyping)
		}
	}
	return flags
}

func TestTypingTracker_SignalBroadcastsTrue(t *testing.T) {
	broadcaster := &recordingBroadcaster{}
	tracker := services.NewTypingTracker(broadcaster, time.Hour, testLogger())

	tracker.Signal("42", "company-7", "Acme Corp", true)

	events := broadcaster.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypingChanged, events[0].Type)
	assert.Equal(t, "42", events[0].RoomID)
	assert.Equal(t, []bool{true}, typingFlags(events))
	assert.Equal(t, 1, tracker.ActiveCount())
}

func TestTypingTracker_AutoExpiry(t *testing.T) {
	broadcaster := &recordingBroadcaster{}
	tracker := services.NewTypingTracker(broadcaster, 20*time.Millisecond, testLogger())

	tracker.Signal("42", "company-7", "Acme Corp", true)

	// The false flag must arrive without any further signal, as it would
	// after an unclean disconnect mid-type.
	require.Eventually(t, func() bool {
		flags := typingFlags(broadcaster.snapshot())
		return len(flags) == 2 && !flags[1]
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 0, tracker.ActiveCount())
}

func TestTypingTracker_ExplicitStopShortCircuitsTimer(t *testing.T) {
	broadcaster := &recordingBroadcaster{}
	tracker := services.NewTypingTracker(broadcaster, time.Hour, testLogger())

	tracker.Signal("42", "company-7", "Acme Corp", true)
	tracker.Signal("42", "company-7", "Acme Corp", false)

	assert.Equal(t, []bool{true, false}, typingFlags(broadcaster.snapshot()))
	assert.Equal(t, 0, tracker.ActiveCount())

	// No stray expiry should follow the explicit stop.
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, []bool{true, false}, typingFlags(broadcaster.snapshot()))
}

func TestTypingTracker_ResignalExtendsWindow(t *testing.T) {
	broadcaster := &recordingBroadcaster{}
	tracker := services.NewTypingTracker(broadcaster, 60*time.Millisecond, testLogger())

	tracker.Signal("42", "company-7", "Acme Corp", true)
	time.Sleep(30 * time.Millisecond)
	tracker.Signal("42", "company-7", "Acme Corp", true)
	time.Sleep(30 * time.Millisecond)

	// 60ms after the first signal but only 30ms after the second: the
	// entry must still be live.
	flags := typingFlags(broadcaster.snapshot())
	assert.NotContains(t, flags, false)
	assert.Equal(t, 1, tracker.ActiveCount())

	require.Eventually(t, func() bool {
		flags := typingFlags(broadcaster.snapshot())
		return len(flags) > 0 && !flags[len(flags)-1]
	}, time.Second, 5*time.Millisecond)
}

func TestTypingTracker_ParticipantsAreIndependent(t *testing.T) {
	broadcaster := &recordingBroadcaster{}
	tracker := services.NewTypingTracker(broadcaster, time.Hour, testLogger())

	tracker.Signal("42", "company-7", "Acme Corp", true)
	tracker.Signal("42", "admin-1", "Support", true)
	assert.Equal(t, 2, tracker.ActiveCount())

	tracker.Signal("42", "company-7", "Acme Corp", false)
	assert.Equal(t, 1, tracker.ActiveCount())
}

func TestTypingTracker_IgnoresBlankIdentifiers(t *testing.T) {
	broadcaster := &recordingBroadcaster{}
	tracker := services.NewTypingTracker(broadcaster, time.Hour, testLogger())

	tracker.Signal("", "company-7", "Acme Corp", true)
	tracker.Signal("42", "", "Acme Corp", true)

	assert.Empty(t, broadcaster.snapshot())
	assert.Equal(t, 0, tracker.ActiveCount())
}
