package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleEvent struct {
	Header
	Probability float64 `json:"probability"`
}

func TestNewHeader(t *testing.T) {
	aggregateID := uuid.New()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("BRT", -3*3600))

	h := NewHeader("churn.prediction.completed", aggregateID, at)

	assert.NotEqual(t, uuid.Nil, h.EventID())
	assert.Equal(t, "churn.prediction.completed", h.EventType())
	assert.Equal(t, aggregateID, h.AggregateID())
	assert.Equal(t, time.UTC, h.OccurredAt().Location())
	assert.True(t, h.OccurredAt().Equal(at))
}

func TestNewHeader_UniqueIDs(t *testing.T) {
	a := NewHeader("t", uuid.Nil, time.Now())
	b := NewHeader("t", uuid.Nil, time.Now())
	assert.NotEqual(t, a.EventID(), b.EventID())
}

func TestEmbeddedHeaderSerialisesFlat(t *testing.T) {
	evt := sampleEvent{Header: NewHeader("churn.prediction.completed", uuid.New(), time.Now()), Probability: 0.91}

	var _ DomainEvent = evt

	raw, err := json.Marshal(evt)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "churn.prediction.completed", decoded["event_type"])
	assert.Equal(t, evt.AggregateID().String(), decoded["aggregate_id"])
	assert.InDelta(t, 0.91, decoded["probability"], 1e-9)
}

func TestCollector(t *testing.T) {
	var c Collector
	assert.Empty(t, c.Pending())

	c.Record(NewHeader("a", uuid.New(), time.Now()))
	c.Record(NewHeader("b", uuid.New(), time.Now()))
	assert.Len(t, c.Pending(), 2)

	drained := c.Drain()
	require.Len(t, drained, 2)
	assert.Equal(t, "a", drained[0].EventType())
	assert.Equal(t, "b", drained[1].EventType())
	assert.Empty(t, c.Pending())
	assert.Empty(t, c.Drain())
}

type unmarshalableEvent struct {
	Header
	Ch chan int `json:"ch"`
}

func TestNewOutboxEntry(t *testing.T) {
	evt := sampleEvent{Header: NewHeader("churn.prediction.high_risk", uuid.New(), time.Now()), Probability: 0.87}

	entry, err := NewOutboxEntry(evt)
	require.NoError(t, err)

	assert.Equal(t, evt.EventID(), entry.ID)
	assert.Equal(t, evt.AggregateID(), entry.AggregateID)
	assert.Equal(t, "churn.prediction.high_risk", entry.EventType)
	assert.Equal(t, evt.OccurredAt(), entry.CreatedAt)
	assert.Nil(t, entry.PublishedAt)

	var decoded sampleEvent
	require.NoError(t, json.Unmarshal(entry.Payload, &decoded))
	assert.Equal(t, evt.EventID(), decoded.EventID())
	assert.InDelta(t, 0.87, decoded.Probability, 1e-9)
}

func TestNewOutboxEntries(t *testing.T) {
	t.Run("keeps event order", func(t *testing.T) {
		aggregateID := uuid.New()
		a := sampleEvent{Header: NewHeader("churn.prediction.completed", aggregateID, time.Now())}
		b := sampleEvent{Header: NewHeader("churn.prediction.high_risk", aggregateID, time.Now())}

		entries, err := NewOutboxEntries([]DomainEvent{a, b})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, a.EventID(), entries[0].ID)
		assert.Equal(t, b.EventID(), entries[1].ID)
	})

	t.Run("fails on an unserialisable event", func(t *testing.T) {
		bad := unmarshalableEvent{Header: NewHeader("bad", uuid.New(), time.Now()), Ch: make(chan int)}
		_, err := NewOutboxEntries([]DomainEvent{bad})
		assert.Error(t, err)
	})
}
