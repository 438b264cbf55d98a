package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Heitorcp/customer-churn/pkg/events"
)

const (
	defaultRelayInterval  = 2 * time.Second
	defaultRelayBatchSize = 100
)

// RelayConfig tunes the outbox relay. Zero values take the defaults.
type RelayConfig struct {
	Interval  time.Duration
	BatchSize int
}

// OutboxRelay moves committed outbox entries to the broker. Delivery is at
// least once: an entry published but not yet marked is sent again on the next
// pass, and consumers deduplicate on the event_id header.
type OutboxRelay struct {
	store     events.OutboxStore
	sink      events.EntryPublisher
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// NewOutboxRelay creates an OutboxRelay.
func NewOutboxRelay(store events.OutboxStore, sink events.EntryPublisher, cfg RelayConfig, logger *slog.Logger) *OutboxRelay {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultRelayInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultRelayBatchSize
	}
	return &OutboxRelay{
		store:     store,
		sink:      sink,
		logger:    logger,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
	}
}

// Run relays until ctx is canceled. Failed passes are logged and retried on
// the next tick.
func (r *OutboxRelay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if err := r.drain(ctx); err != nil && ctx.Err() == nil {
			r.logger.ErrorContext(ctx, "outbox relay pass failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// drain relays full batches back to back until the outbox is empty.
func (r *OutboxRelay) drain(ctx context.Context) error {
	for {
		n, err := r.RelayOnce(ctx)
		if err != nil || n < r.batchSize {
			return err
		}
	}
}

// RelayOnce publishes one batch and marks it published. It returns how many
// entries were relayed.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	entries, err := r.store.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	if err := r.sink.PublishEntries(ctx, entries...); err != nil {
		return 0, fmt.Errorf("relaying %d outbox entries: %w", len(entries), err)
	}

	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	if err := r.store.MarkPublished(ctx, ids); err != nil {
		// The entries went out; the next pass sends them again.
		return 0, fmt.Errorf("marking %d outbox entries published: %w", len(ids), err)
	}

	r.logger.DebugContext(ctx, "outbox batch relayed", "count", len(entries))
	return len(entries), nil
}
