package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Heitorcp/customer-churn/internal/application/usecase"
	"github.com/Heitorcp/customer-churn/internal/domain/model"
	"github.com/Heitorcp/customer-churn/internal/domain/port"
)

// ErrorResponse is the body of every error answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, details any) {
	writeJSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// writeMalformed answers a body that could not be decoded.
func writeMalformed(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, "malformed request body", []string{err.Error()})
}

// writeUseCaseError maps application and domain errors onto HTTP statuses.
func writeUseCaseError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusUnprocessableEntity, "invalid customer record", ve.Fields)
	case errors.Is(err, model.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), nil)
	case errors.Is(err, usecase.ErrBatchTooLarge),
		errors.Is(err, usecase.ErrEmptyBatch),
		errors.Is(err, usecase.ErrInvalidUser):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, usecase.ErrPredictionNotFound), errors.Is(err, port.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, port.ErrAlreadyExists):
		writeError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, usecase.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, usecase.ErrModelUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error(), nil)
	default:
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal error", nil)
	}
}
