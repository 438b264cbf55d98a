package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/Heitorcp/customer-churn/internal/application/dto"
	"github.com/Heitorcp/customer-churn/internal/application/usecase"
)

const (
	maxRecordBytes = 1 << 20
	maxBatchBytes  = 16 << 20
)

// UseCases are the application services behind the API.
type UseCases struct {
	PredictChurn  *usecase.PredictChurn
	PredictBatch  *usecase.PredictBatch
	GetPrediction *usecase.GetPrediction
	GetModelInfo  *usecase.GetModelInfo
	Login         *usecase.Login
	ManageUsers   *usecase.ManageUsers
}

// Handler serves the prediction, model, login and admin endpoints.
type Handler struct {
	uc     UseCases
	logger *slog.Logger
}

// NewHandler creates a new REST handler.
func NewHandler(uc UseCases, logger *slog.Logger) *Handler {
	return &Handler{uc: uc, logger: logger}
}

// RegisterRoutes registers the API on mux. admin wraps the user management
// endpoints.
func (h *Handler) RegisterRoutes(mux *http.ServeMux, admin func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET /model-info", h.ModelInfo)
	mux.HandleFunc("POST /predict", h.Predict)
	mux.HandleFunc("POST /predict/batch", h.PredictBatch)
	mux.HandleFunc("POST /predict/batch/csv", h.PredictBatchCSV)
	mux.HandleFunc("GET /predictions/{id}", h.GetPrediction)
	mux.HandleFunc("POST /auth/login", h.Login)

	mux.Handle("GET /admin/users", admin(http.HandlerFunc(h.ListUsers)))
	mux.Handle("POST /admin/users", admin(http.HandlerFunc(h.CreateUser)))
	mux.Handle("DELETE /admin/users/{username}", admin(http.HandlerFunc(h.DeleteUser)))
	mux.Handle("PUT /admin/users/{username}/password", admin(http.HandlerFunc(h.ChangePassword)))
}

// Root describes the API.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Telco Customer Churn Prediction API",
		"version":     usecase.APIVersion,
		"description": "Predict customer churn with a recall-optimised decision threshold",
		"endpoints": map[string]string{
			"prediction":       "/predict",
			"batch_prediction": "/predict/batch",
			"csv_prediction":   "/predict/batch/csv",
			"health":           "/health",
			"model_info":       "/model-info",
			"metrics":          "/metrics",
		},
	})
}

// ModelInfo returns the loaded model's metadata and features.
func (h *Handler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	resp, err := h.uc.GetModelInfo.Execute(r.Context())
	if err != nil {
		writeUseCaseError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Predict scores one raw customer record.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var customer dto.CustomerRecord
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRecordBytes)).Decode(&customer); err != nil {
		writeMalformed(w, err)
		return
	}

	resp, err := h.uc.PredictChurn.Execute(r.Context(), dto.PredictRequest{
		CustomerID: r.URL.Query().Get("customer_id"),
		Customer:   customer,
	})
	if err != nil {
		writeUseCaseError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// PredictBatch scores a JSON array of raw customer records.
func (h *Handler) PredictBatch(w http.ResponseWriter, r *http.Request) {
	var customers []dto.CustomerRecord
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBatchBytes)).Decode(&customers); err != nil {
		writeMalformed(w, err)
		return
	}

	items := make([]dto.BatchItem, len(customers))
	for i, c := range customers {
		items[i] = dto.BatchItem{Customer: c}
	}
	h.runBatch(w, r, items)
}

// PredictBatchCSV scores the rows of an uploaded CSV file.
func (h *Handler) PredictBatchCSV(w http.ResponseWriter, r *http.Request) {
	items, err := dto.ReadCSV(http.MaxBytesReader(w, r.Body, maxBatchBytes))
	if err != nil {
		writeMalformed(w, err)
		return
	}
	h.runBatch(w, r, items)
}

func (h *Handler) runBatch(w http.ResponseWriter, r *http.Request, items []dto.BatchItem) {
	resp, err := h.uc.PredictBatch.Execute(r.Context(), dto.BatchRequest{Items: items})
	if err != nil {
		writeUseCaseError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetPrediction returns a stored decision record.
func (h *Handler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid prediction id", []string{err.Error()})
		return
	}

	resp, err := h.uc.GetPrediction.Execute(r.Context(), dto.GetPredictionRequest{PredictionID: id})
	if err != nil {
		writeUseCaseError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Login exchanges credentials for a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRecordBytes)).Decode(&req); err != nil {
		writeMalformed(w, err)
		return
	}

	resp, err := h.uc.Login.Execute(r.Context(), req)
	if err != nil {
		writeUseCaseError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.uc.ManageUsers.List(r.Context())
	if err != nil {
		writeUseCaseError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRecordBytes)).Decode(&req); err != nil {
		writeMalformed(w, err)
		return
	}

	user, err := h.uc.ManageUsers.Create(r.Context(), req)
	if err != nil {
		writeUseCaseError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.ManageUsers.Delete(r.Context(), r.PathValue("username")); err != nil {
		writeUseCaseError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ChangePasswordRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRecordBytes)).Decode(&req); err != nil {
		writeMalformed(w, err)
		return
	}
	req.Username = r.PathValue("username")

	if err := h.uc.ManageUsers.ChangePassword(r.Context(), req); err != nil {
		writeUseCaseError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
