package service_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Heitorcp/customer-churn/internal/domain/model"
	"github.com/Heitorcp/customer-churn/internal/domain/service"
)

var fittedClasses = map[string][]string{
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

func newEncoders(t *testing.T) map[string]*service.LabelEncoder {
	t.Helper()
	encoders := make(map[string]*service.LabelEncoder, len(fittedClasses))
	for field, classes := range fittedClasses {
		enc, err := service.NewLabelEncoder(classes)
		require.NoError(t, err)
		encoders[field] = enc
	}
	return encoders
}

func newScaler(t *testing.T) *service.StandardScaler {
	t.Helper()
	s, err := service.NewStandardScaler(
		[]string{"tenure", "MonthlyCharges", "TotalCharges", "ServiceAdoptionScore", "MonthlyChargesPerService"},
		[]float64{32, 65, 2280, 3, 20},
		[]float64{24, 30, 2266, 2, 10},
	)
	require.NoError(t, err)
	return s
}

func modelFeatures() []string {
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

func newBuilder(t *testing.T) *service.FeatureBuilder {
	t.Helper()
	b, err := service.NewFeatureBuilder(newEncoders(t), newScaler(t), modelFeatures(), nil)
	require.NoError(t, err)
	return b
}

// exampleRecord is a senior, short-tenure fiber customer with both streaming services.
func exampleRecord() model.CustomerRecord {
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

func noInternetRecord() model.CustomerRecord {
	r := exampleRecord()
	r.InternetService = "No"
	r.OnlineSecurity = "No internet service"
	r.OnlineBackup = "No internet service"
	r.DeviceProtection = "No internet service"
	r.TechSupport = "No internet service"
	r.StreamingTV = "No internet service"
	r.StreamingMovies = "No internet service"
	r.MonthlyCharges = decimal.RequireFromString("19.65")
	return r
}
