package dto

import (
	"time"

	"github.com/Heitorcp/customer-churn/internal/domain/model"
)

// DeploymentInfo describes the running service.
type DeploymentInfo struct {
	LastLoaded time.Time `json:"last_loaded"`
	APIVersion string    `json:"api_version"`
}

// ModelInfoResponse describes the loaded model.
type ModelInfoResponse struct {
	DeploymentInfo DeploymentInfo      `json:"deployment_info"`
	ModelType      string              `json:"model_type"`
	ModelDetails   model.ModelMetadata `json:"model_details"`
	Features       []string            `json:"features"`
	FeatureCount   int                 `json:"feature_count"`
	Threshold      float64             `json:"threshold"`
}

// ComponentsLoaded reports which scoring artifacts loaded.
type ComponentsLoaded struct {
	Model    bool `json:"model"`
	Scaler   bool `json:"scaler"`
	Encoders bool `json:"encoders"`
	Features bool `json:"features"`
	Metadata bool `json:"metadata"`
}

// All reports whether every component loaded.
func (c ComponentsLoaded) All() bool {
	return c.Model && c.Scaler && c.Encoders && c.Features && c.Metadata
}

// TestPrediction is the outcome of the health probe prediction.
type TestPrediction struct {
	ChurnPrediction  string  `json:"churn_prediction"`
	ChurnProbability float64 `json:"churn_probability"`
}

// HealthModelInfo is the short model summary in a health response.
type HealthModelInfo struct {
	Name   string `json:"name"`
	Recall string `json:"recall"`
}

// Health statuses.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthResponse is the answer of the health probe.
type HealthResponse struct {
	Timestamp        time.Time        `json:"timestamp"`
	TestPrediction   *TestPrediction  `json:"test_prediction"`
	Status           string           `json:"status"`
	Error            string           `json:"error,omitempty"`
	ModelInfo        HealthModelInfo  `json:"model_info"`
	ComponentsLoaded ComponentsLoaded `json:"components_loaded"`
	ModelLoaded      bool             `json:"model_loaded"`
}

// Healthy reports whether the service can serve predictions.
func (h HealthResponse) Healthy() bool { return h.Status == StatusHealthy }
