package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	event := Event{
		ProfileID:   "profile-1",
		ContractURI: "lc:contracts/c1",
		Action:      ActionConsentGranted,
	}

	err := pub.Emit(context.Background(), event)
	require.NoError(t, err)

	events, err := pub.List(context.Background(), "profile-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ActionConsentGranted, events[0].Action)
	assert.False(t, events[0].Timestamp.IsZero(), "Emit must stamp events without a timestamp")
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))

	err := pub.Emit(context.Background(), Event{
		ProfileID: "profile-2",
		Action:    ActionTermsUpdated,
	})
	require.NoError(t, err)

	// Close drains the buffer before returning
	pub.Close()

	events, err := store.ListByProfile(context.Background(), "profile-2")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ActionTermsUpdated, events[0].Action)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		err := pub.Emit(context.Background(), Event{
			ProfileID: "profile-3",
			Action:    ActionFlowPresented,
			Timestamp: time.Now(),
		})
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.ListByProfile(context.Background(), "profile-3")
	require.NoError(t, err)
	assert.Len(t, events, 10)
}
