package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is implemented by every event an aggregate emits.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
	OccurredAt() time.Time
}

// Header carries the identity fields shared by all events. Embedding it in an
// event struct satisfies DomainEvent and serialises the fields alongside the payload.
type Header struct {
	ID        uuid.UUID `json:"event_id"`
	Type      string    `json:"event_type"`
	Aggregate uuid.UUID `json:"aggregate_id"`
	At        time.Time `json:"occurred_at"`
}

// NewHeader creates a Header with a fresh event ID.
func NewHeader(eventType string, aggregateID uuid.UUID, occurredAt time.Time) Header {
	return Header{
		ID:        uuid.New(),
		Type:      eventType,
		Aggregate: aggregateID,
		At:        occurredAt.UTC(),
	}
}

func (h Header) EventID() uuid.UUID     { return h.ID }
func (h Header) EventType() string      { return h.Type }
func (h Header) AggregateID() uuid.UUID { return h.Aggregate }
func (h Header) OccurredAt() time.Time  { return h.At }
