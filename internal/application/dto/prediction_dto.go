package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Heitorcp/customer-churn/internal/domain/model"
)

// PredictRequest asks for a churn decision on one customer.
type PredictRequest struct {
	CustomerID string         `json:"customer_id,omitempty"`
	Customer   CustomerRecord `json:"customer"`
}

// PredictionModelInfo is the provenance block of a prediction response.
type PredictionModelInfo struct {
	PredictionTimestamp time.Time `json:"prediction_timestamp"`
	ModelName           string    `json:"model_name"`
	ModelVersion        string    `json:"model_version"`
	Recall              float64   `json:"recall"`
	ThresholdUsed       float64   `json:"threshold_used"`
}

// PredictionResponse is the decision record returned to clients.
type PredictionResponse struct {
	ModelInfo         PredictionModelInfo `json:"model_info"`
	CustomerID        string              `json:"customer_id,omitempty"`
	ChurnPrediction   string              `json:"churn_prediction"`
	ConfidenceLevel   string              `json:"confidence_level"`
	RiskCategory      string              `json:"risk_category"`
	RecommendedAction string              `json:"recommended_action"`
	FallbackFields    []string            `json:"fallback_fields"`
	ChurnProbability  float64             `json:"churn_probability"`
	PredictionID      uuid.UUID           `json:"prediction_id"`
}

// FromPrediction converts a domain Prediction to its response form.
func FromPrediction(p *model.Prediction) PredictionResponse {
	fallbacks := p.FallbackFields()
	if fallbacks == nil {
		fallbacks = []string{}
	}
	return PredictionResponse{
		PredictionID:      p.ID(),
		CustomerID:        p.CustomerID(),
		ChurnProbability:  p.Probability(),
		ChurnPrediction:   p.Label().String(),
		ConfidenceLevel:   p.Confidence().String(),
		RiskCategory:      p.Risk().String(),
		RecommendedAction: p.RecommendedAction(),
		FallbackFields:    fallbacks,
		ModelInfo: PredictionModelInfo{
			ModelName:           p.ModelName(),
			ModelVersion:        p.ModelVersion(),
			Recall:              p.Recall(),
			ThresholdUsed:       p.Threshold(),
			PredictionTimestamp: p.PredictedAt(),
		},
	}
}

// GetPredictionRequest looks up a stored decision record.
type GetPredictionRequest struct {
	PredictionID uuid.UUID `json:"prediction_id"`
}

// BatchItem is one row of a batch request. ParseError is set by readers that
// could not decode the row; such rows are reported as failed.
type BatchItem struct {
	CustomerID string         `json:"customer_id,omitempty"`
	Customer   CustomerRecord `json:"customer"`
	ParseError string         `json:"-"`
}

// BatchRequest carries the rows to score.
type BatchRequest struct {
	Items []BatchItem `json:"items"`
}

// BatchFailure describes a row that could not be scored.
type BatchFailure struct {
	ChurnProbability *float64 `json:"churn_probability"`
	CustomerID       string   `json:"customer_id"`
	Error            string   `json:"error"`
	ChurnPrediction  string   `json:"churn_prediction"`
	RowIndex         int      `json:"row_index"`
}

// BatchFailurePrediction is the churn_prediction value of a failed row.
const BatchFailurePrediction = "Error"

// BatchEntry holds either a prediction or a failure for one input row.
type BatchEntry struct {
	Prediction *PredictionResponse
	Failure    *BatchFailure
}

// Failed reports whether the row failed.
func (e BatchEntry) Failed() bool { return e.Failure != nil }

// MarshalJSON flattens the entry into whichever variant it holds.
func (e BatchEntry) MarshalJSON() ([]byte, error) {
	if e.Failure != nil {
		return json.Marshal(e.Failure)
	}
	return json.Marshal(e.Prediction)
}

// UnmarshalJSON tells the variants apart by the churn_prediction value.
func (e *BatchEntry) UnmarshalJSON(data []byte) error {
	var probe struct {
		ChurnPrediction string `json:"churn_prediction"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.ChurnPrediction == BatchFailurePrediction {
		var f BatchFailure
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*e = BatchEntry{Failure: &f}
		return nil
	}
	var p PredictionResponse
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = BatchEntry{Prediction: &p}
	return nil
}

// BatchResponse always holds one entry per input row, in input order.
type BatchResponse struct {
	Timestamp   time.Time    `json:"timestamp"`
	Predictions []BatchEntry `json:"predictions"`
	BatchSize   int          `json:"batch_size"`
	Succeeded   int          `json:"succeeded"`
	Failed      int          `json:"failed"`
}
