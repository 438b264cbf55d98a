package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Heitorcp/customer-churn/pkg/events"
	pkgpostgres "github.com/Heitorcp/customer-churn/pkg/postgres"
)

// writeOutbox inserts entries through q, which is the transaction that saves
// the aggregate.
func writeOutbox(ctx context.Context, q pkgpostgres.Querier, entries []events.OutboxEntry) error {
	for _, e := range entries {
		_, err := q.Exec(ctx, `
			INSERT INTO outbox (id, aggregate_id, event_type, payload, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, e.ID, e.AggregateID, e.EventType, e.Payload, e.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to write outbox event %s: %w", e.EventType, err)
		}
	}
	return nil
}

// OutboxRepository implements events.OutboxStore using PostgreSQL.
type OutboxRepository struct {
	db pkgpostgres.Querier
}

// NewOutboxRepository creates a new PostgreSQL-backed outbox store.
func NewOutboxRepository(db pkgpostgres.Querier) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// FetchUnpublished returns up to limit unpublished entries in the order they
// were written.
func (r *OutboxRepository) FetchUnpublished(ctx context.Context, limit int) ([]events.OutboxEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, aggregate_id, event_type, payload, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY seq
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	var entries []events.OutboxEntry
	for rows.Next() {
		var (
			e         events.OutboxEntry
			createdAt time.Time
		)
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox entry: %w", err)
		}
		e.CreatedAt = createdAt.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read outbox: %w", err)
	}
	return entries, nil
}

// MarkPublished stamps the given entries so they are not relayed again.
func (r *OutboxRepository) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `
		UPDATE outbox SET published_at = NOW()
		WHERE id = ANY($1) AND published_at IS NULL
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to mark outbox entries published: %w", err)
	}
	return nil
}
