package model

// DefaultDecisionThreshold is used when the metadata artifact carries no threshold.
const DefaultDecisionThreshold = 0.535

// PerformanceMetrics are the offline evaluation figures recorded at training time.
type PerformanceMetrics struct {
	Recall    float64 `json:"recall" yaml:"recall"`
	Precision float64 `json:"precision" yaml:"precision"`
	F1Score   float64 `json:"f1_score" yaml:"f1_score"`
	ROCAUC    float64 `json:"roc_auc" yaml:"roc_auc"`
	Accuracy  float64 `json:"accuracy" yaml:"accuracy"`
}

// ModelMetadata describes the trained model artifact.
type ModelMetadata struct {
	ModelName            string             `json:"model_name" yaml:"model_name"`
	ModelType            string             `json:"model_type" yaml:"model_type"`
	Version              string             `json:"version" yaml:"version"`
	TrainingDate         string             `json:"training_date,omitempty" yaml:"training_date"`
	RecommendedThreshold float64            `json:"recommended_threshold" yaml:"recommended_threshold"`
	PerformanceMetrics   PerformanceMetrics `json:"performance_metrics" yaml:"performance_metrics"`
}

// Threshold returns the recommended threshold, or the default when unset or
// outside (0, 1).
func (m ModelMetadata) Threshold() float64 {
	if m.RecommendedThreshold <= 0 || m.RecommendedThreshold >= 1 {
		return DefaultDecisionThreshold
	}
	return m.RecommendedThreshold
}

// Provenance identifies the model and threshold that produced a decision.
type Provenance struct {
	ModelName    string
	ModelVersion string
	Recall       float64
	Threshold    float64
}
