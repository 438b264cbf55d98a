package usecase

import "errors"

var (
	// ErrModelUnavailable is returned while the scoring artifacts are not loaded.
	ErrModelUnavailable = errors.New("model components not properly loaded")

	// ErrBatchTooLarge is returned when a batch exceeds the configured maximum.
	ErrBatchTooLarge = errors.New("batch too large")

	// ErrEmptyBatch is returned for a batch without rows.
	ErrEmptyBatch = errors.New("batch is empty")

	// ErrPredictionNotFound is returned when no stored prediction matches.
	ErrPredictionNotFound = errors.New("prediction not found")

	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
