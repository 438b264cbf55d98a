package messaging_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heitorcp/customer-churn/internal/infrastructure/messaging"
	"github.com/Heitorcp/customer-churn/pkg/events"
)

type memoryOutbox struct {
	mu        sync.Mutex
	entries   []events.OutboxEntry
	published map[uuid.UUID]bool
	fetchErr  error
	markErr   error
}

func newMemoryOutbox(n int) *memoryOutbox {
	o := &memoryOutbox{published: map[uuid.UUID]bool{}}
	for range n {
		o.entries = append(o.entries, events.OutboxEntry{ID: uuid.New(), AggregateID: uuid.New(), EventType: "churn.prediction.completed"})
	}
	return o
}

func (o *memoryOutbox) FetchUnpublished(_ context.Context, limit int) ([]events.OutboxEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fetchErr != nil {
		return nil, o.fetchErr
	}
	var out []events.OutboxEntry
	for _, e := range o.entries {
		if !o.published[e.ID] && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (o *memoryOutbox) MarkPublished(_ context.Context, ids []uuid.UUID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.markErr != nil {
		return o.markErr
	}
	for _, id := range ids {
		o.published[id] = true
	}
	return nil
}

func (o *memoryOutbox) unpublished() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.entries) - len(o.published)
}

type recordingSink struct {
	mu      sync.Mutex
	err     error
	batches [][]events.OutboxEntry
}

func (s *recordingSink) PublishEntries(_ context.Context, entries ...events.OutboxEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, entries)
	return nil
}

func (s *recordingSink) sent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOutboxRelay_RelayOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes a batch and marks it", func(t *testing.T) {
		store := newMemoryOutbox(3)
		sink := &recordingSink{}
		relay := messaging.NewOutboxRelay(store, sink, messaging.RelayConfig{BatchSize: 2}, quietLogger())

		n, err := relay.RelayOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		require.Len(t, sink.batches, 1)
		assert.Equal(t, store.entries[0].ID, sink.batches[0][0].ID)
		assert.Equal(t, 1, store.unpublished())
	})

	t.Run("empty outbox sends nothing", func(t *testing.T) {
		sink := &recordingSink{}
		relay := messaging.NewOutboxRelay(newMemoryOutbox(0), sink, messaging.RelayConfig{}, quietLogger())

		n, err := relay.RelayOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, sink.batches)
	})

	t.Run("broker failure leaves entries pending", func(t *testing.T) {
		store := newMemoryOutbox(2)
		relay := messaging.NewOutboxRelay(store, &recordingSink{err: errors.New("broker down")}, messaging.RelayConfig{}, quietLogger())

		_, err := relay.RelayOnce(ctx)
		assert.ErrorContains(t, err, "broker down")
		assert.Equal(t, 2, store.unpublished())
	})

	t.Run("mark failure is reported and entries are sent again", func(t *testing.T) {
		store := newMemoryOutbox(1)
		store.markErr = errors.New("connection reset")
		sink := &recordingSink{}
		relay := messaging.NewOutboxRelay(store, sink, messaging.RelayConfig{}, quietLogger())

		_, err := relay.RelayOnce(ctx)
		assert.ErrorContains(t, err, "connection reset")

		store.markErr = nil
		_, err = relay.RelayOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, sink.sent())
		assert.Zero(t, store.unpublished())
	})

	t.Run("fetch failure", func(t *testing.T) {
		store := newMemoryOutbox(1)
		store.fetchErr = errors.New("timeout")
		relay := messaging.NewOutboxRelay(store, &recordingSink{}, messaging.RelayConfig{}, quietLogger())

		_, err := relay.RelayOnce(ctx)
		assert.ErrorContains(t, err, "timeout")
	})
}

func TestOutboxRelay_Run(t *testing.T) {
	store := newMemoryOutbox(5)
	sink := &recordingSink{}
	relay := messaging.NewOutboxRelay(store, sink, messaging.RelayConfig{Interval: time.Hour, BatchSize: 2}, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	// Full batches are drained without waiting for the next tick.
	require.Eventually(t, func() bool { return store.unpublished() == 0 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 5, sink.sent())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not stop")
	}
}
