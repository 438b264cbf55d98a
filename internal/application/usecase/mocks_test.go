package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Heitorcp/customer-churn/internal/domain/model"
	"github.com/Heitorcp/customer-churn/internal/domain/port"
	"github.com/Heitorcp/customer-churn/pkg/events"
)

// --- Mock implementations ---

type mockPredictionRepository struct {
	saveErr error
	saved   []*model.Prediction
	mu      sync.Mutex
}

func (m *mockPredictionRepository) Save(_ context.Context, p *model.Prediction) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, p)
	return nil
}

func (m *mockPredictionRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.saved {
		if p.ID() == id {
			return p, nil
		}
	}
	return nil, port.ErrNotFound
}

type mockEventPublisher struct {
	publishErr error
	published  []events.DomainEvent
}

func (m *mockEventPublisher) Publish(_ context.Context, evts ...events.DomainEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, evts...)
	return nil
}

type mockMetrics struct {
	predictions map[string]int
	fallbacks   map[string]int
	failures    map[string]int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{
		predictions: map[string]int{},
		fallbacks:   map[string]int{},
		failures:    map[string]int{},
	}
}

func (m *mockMetrics) RecordPrediction(_ context.Context, risk, _ string, _ time.Duration) {
	m.predictions[risk]++
}

func (m *mockMetrics) RecordFallback(_ context.Context, field string) { m.fallbacks[field]++ }

func (m *mockMetrics) RecordFailure(_ context.Context, kind string) { m.failures[kind]++ }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
