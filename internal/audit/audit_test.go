package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisherStampsTimestamp(t *testing.T) {
	store := NewInMemoryStore()
	publisher := NewPublisher(store)

	err := publisher.Emit(context.Background(), Event{
		ListingID: "listing-1",
		Action:    EventListingCreated,
	})
	require.NoError(t, err)

	events, err := publisher.List(context.Background(), "listing-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestStoreFiltersByListing(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, Event{ListingID: "a", Action: EventListingCreated}))
	require.NoError(t, store.Append(ctx, Event{ListingID: "b", Action: EventListingCreated}))
	require.NoError(t, store.Append(ctx, Event{ListingID: "a", Action: EventListingSubmitted}))

	events, err := store.ListByListing(ctx, "a")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventListingSubmitted, events[1].Action)
}

func TestWorkerDrainsChannel(t *testing.T) {
	store := NewInMemoryStore()
	inbox := make(chan Event, 8)
	worker := NewWorker(store, inbox, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	publisher := NewChannelPublisher(inbox)
	require.NoError(t, publisher.Emit(ctx, Event{ListingID: "x", Action: EventListingApproved}))

	require.Eventually(t, func() bool {
		events, err := store.ListByListing(context.Background(), "x")
		return err == nil && len(events) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

// flakyStore fails the first n appends, then delegates to the wrapped store.
type flakyStore struct {
	*InMemoryStore
	mu       sync.Mutex
	failures int
}

func (s *flakyStore) Append(ctx context.Context, event Event) error {
	s.mu.Lock()
	fail := s.failures > 0
	if fail {
		s.failures--
	}
	s.mu.Unlock()
	if fail {
		return errors.New("sink unavailable")
	}
	return s.InMemoryStore.Append(ctx, event)
}

func TestWorkerSurvivesAppendFailure(t *testing.T) {
	store := &flakyStore{InMemoryStore: NewInMemoryStore(), failures: 1}
	inbox := make(chan Event, 8)
	worker := NewWorker(store, inbox, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	publisher := NewChannelPublisher(inbox)
	require.NoError(t, publisher.Emit(ctx, Event{ListingID: "dropped", Action: EventListingCreated}))
	require.NoError(t, publisher.Emit(ctx, Event{ListingID: "kept", Action: EventListingCreated}))

	require.Eventually(t, func() bool {
		events, err := store.ListByListing(context.Background(), "kept")
		return err == nil && len(events) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestChannelPublisherDropsWhenFull(t *testing.T) {
	inbox := make(chan Event, 1)
	publisher := NewChannelPublisher(inbox)

	ctx := context.Background()
	require.NoError(t, publisher.Emit(ctx, Event{ListingID: "1"}))
	// buffer is full; the second emit must not block
	require.NoError(t, publisher.Emit(ctx, Event{ListingID: "2"}))

	assert.Len(t, inbox, 1)
}
