package port

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Heitorcp/customer-churn/internal/domain/model"
	"github.com/Heitorcp/customer-churn/pkg/events"
)

var (
	// ErrNotFound is returned by stores when nothing matches.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when creating an entry whose key is taken.
	ErrAlreadyExists = errors.New("already exists")
)

// Scorer is the trained classifier. It receives a feature vector laid out in
// model feature order and returns the probability of the churn class.
type Scorer interface {
	Score(ctx context.Context, features []float64) (float64, error)
}

// PredictionRepository defines the persistence port for decision records.
type PredictionRepository interface {
	// Save persists a new prediction.
	Save(ctx context.Context, prediction *model.Prediction) error

	// FindByID retrieves a prediction by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Prediction, error)
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	Publish(ctx context.Context, evts ...events.DomainEvent) error
}

// MetricsRecorder receives prediction outcomes for monitoring.
type MetricsRecorder interface {
	RecordPrediction(ctx context.Context, riskCategory, churnPrediction string, duration time.Duration)
	RecordFallback(ctx context.Context, field string)
	RecordFailure(ctx context.Context, kind string)
}

// UserStore holds dashboard and API accounts.
type UserStore interface {
	// Authenticate returns the user when the password matches.
	Authenticate(ctx context.Context, username, password string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Add(ctx context.Context, username, password string) (model.User, error)
	Remove(ctx context.Context, username string) error
	ChangePassword(ctx context.Context, username, password string) error
}
