package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Heitorcp/customer-churn/internal/application/dto"
	"github.com/Heitorcp/customer-churn/internal/domain/model"
	"github.com/Heitorcp/customer-churn/internal/domain/service"
)

// Fixed UUIDs for deterministic testing.
var (
	TestUserID       = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestPredictionID = uuid.MustParse("00000000-0000-0000-0000-000000000010")
)

// FittedClasses mirrors the label encoders fitted on the Telco dataset.
var FittedClasses = map[string][]string{
	"gender":              {"Female", "Male"},
	"SeniorCitizen_Label": {"No", "Yes"},
	"Partner":             {"No", "Yes"},
	"Dependents":          {"No", "Yes"},
	"PhoneService":        {"No", "Yes"},
	"MultipleLines":       {"No", "No phone service", "Yes"},
	"InternetService":     {"DSL", "Fiber optic", "No"},
	"OnlineSecurity":      {"No", "No internet service", "Yes"},
	"OnlineBackup":        {"No", "No internet service", "Yes"},
	"DeviceProtection":    {"No", "No internet service", "Yes"},
	"TechSupport":         {"No", "No internet service", "Yes"},
	"StreamingTV":         {"No", "No internet service", "Yes"},
	"StreamingMovies":     {"No", "No internet service", "Yes"},
	"Contract":            {"Month-to-month", "One year", "Two year"},
	"PaperlessBilling":    {"No", "Yes"},
	"PaymentMethod":       {"Bank transfer (automatic)", "Credit card (automatic)", "Electronic check", "Mailed check"},
	"LifeStage":           {"Senior Couple", "Senior Individual", "Young Couple", "Young Family", "Young Individual"},
	"TenureCategory":      {"Established_Customer", "Long_Term_Customer", "New_Customer"},
}

// ModelFeatures is a feature layout covering every column the builder knows.
func ModelFeatures() []string {
	features := []string{
		"tenure", "MonthlyCharges", "TotalCharges",
		"SecurityBundle", "StreamingBundle", "OnlinePerksBundle", "BasicSupportBundle",
		"ServiceAdoptionScore", "MonthlyChargesPerService", "HasFiberOptic", "HasInternet",
	}
	for _, f := range service.EncodedFields {
		features = append(features, f+service.EncodedSuffix)
	}
	return features
}

// Metadata is model metadata with the recall-optimised threshold.
func Metadata() model.ModelMetadata {
	return model.ModelMetadata{
		ModelName:            "Logistic Regression",
		ModelType:            "Logistic Regression (Recall-Optimized)",
		Version:              "1.0.0",
		RecommendedThreshold: 0.535,
		PerformanceMetrics:   model.PerformanceMetrics{Recall: 0.917, Precision: 0.48, ROCAUC: 0.84},
	}
}

// ClassesWith returns a copy of FittedClasses with field refitted to classes.
func ClassesWith(field string, classes ...string) map[string][]string {
	out := make(map[string][]string, len(FittedClasses))
	for k, v := range FittedClasses {
		out[k] = v
	}
	out[field] = classes
	return out
}

// NewFeatureBuilder builds a FeatureBuilder over FittedClasses and ModelFeatures.
func NewFeatureBuilder(t *testing.T) *service.FeatureBuilder {
	t.Helper()
	return NewFeatureBuilderWithClasses(t, FittedClasses)
}

// NewFeatureBuilderWithClasses builds a FeatureBuilder over the given encoder classes.
func NewFeatureBuilderWithClasses(t *testing.T, fitted map[string][]string) *service.FeatureBuilder {
	t.Helper()

	encoders := make(map[string]*service.LabelEncoder, len(fitted))
	for field, classes := range fitted {
		enc, err := service.NewLabelEncoder(classes)
		require.NoError(t, err)
		encoders[field] = enc
	}

	scaler, err := service.NewStandardScaler(
		[]string{"tenure", "MonthlyCharges", "TotalCharges", "ServiceAdoptionScore", "MonthlyChargesPerService"},
		[]float64{32.4, 64.8, 2283.3, 3.1, 21.7},
		[]float64{24.6, 30.1, 2266.8, 2.2, 12.9},
	)
	require.NoError(t, err)

	builder, err := service.NewFeatureBuilder(encoders, scaler, ModelFeatures(), nil)
	require.NoError(t, err)
	return builder
}

// StaticScorer returns a fixed probability, or Err when set.
type StaticScorer struct {
	Err         error
	Probability float64
}

// Score implements port.Scorer.
func (s StaticScorer) Score(_ context.Context, _ []float64) (float64, error) {
	return s.Probability, s.Err
}

// NewPipeline wires a Pipeline with the default policy around scorer.
func NewPipeline(t *testing.T, scorer StaticScorer) *service.Pipeline {
	t.Helper()
	return NewPipelineWithBuilder(t, NewFeatureBuilder(t), scorer)
}

// NewPipelineWithBuilder wires a Pipeline with the default policy.
func NewPipelineWithBuilder(t *testing.T, builder *service.FeatureBuilder, scorer StaticScorer) *service.Pipeline {
	t.Helper()

	policy, err := service.NewDecisionPolicy(service.DefaultPolicyConfig())
	require.NoError(t, err)
	return service.NewPipeline(builder, scorer, policy)
}

// SampleRecord is a senior, two-month fiber customer streaming TV and movies.
func SampleRecord() model.CustomerRecord {
	return model.CustomerRecord{
		Gender:           "Female",
		SeniorCitizen:    1,
		Partner:          "No",
		Dependents:       "No",
		Tenure:           2,
		PhoneService:     "Yes",
		MultipleLines:    "No",
		InternetService:  "Fiber optic",
		OnlineSecurity:   "No",
		OnlineBackup:     "No",
		DeviceProtection: "No",
		TechSupport:      "No",
		StreamingTV:      "Yes",
		StreamingMovies:  "Yes",
		Contract:         "Month-to-month",
		PaperlessBilling: "Yes",
		PaymentMethod:    "Electronic check",
		MonthlyCharges:   decimal.RequireFromString("85.25"),
		TotalCharges:     decimal.RequireFromString("170.50"),
	}
}

// SampleCustomer is SampleRecord in wire form.
func SampleCustomer() dto.CustomerRecord {
	return dto.CustomerRecordFromModel(SampleRecord())
}
