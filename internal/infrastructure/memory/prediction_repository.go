package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Heitorcp/customer-churn/internal/domain/model"
	"github.com/Heitorcp/customer-churn/internal/domain/port"
)

// PredictionRepository is an in-process port.PredictionRepository used when
// no database is configured. Records live for the process lifetime.
type PredictionRepository struct {
	predictions map[uuid.UUID]*model.Prediction
	mu          sync.RWMutex
}

// NewPredictionRepository creates an empty repository.
func NewPredictionRepository() *PredictionRepository {
	return &PredictionRepository{predictions: make(map[uuid.UUID]*model.Prediction)}
}

func (r *PredictionRepository) Save(_ context.Context, p *model.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.predictions[p.ID()]; ok {
		return fmt.Errorf("prediction %s: %w", p.ID(), port.ErrAlreadyExists)
	}
	r.predictions[p.ID()] = p
	return nil
}

func (r *PredictionRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.predictions[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return p, nil
}

// Len reports how many records are held.
func (r *PredictionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.predictions)
}
