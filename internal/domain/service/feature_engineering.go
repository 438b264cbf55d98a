package service

import (
	"github.com/Heitorcp/customer-churn/internal/domain/model"
)

// Feature names the builder can populate besides the <field>_encoded columns.
const (
	FeatureTenure                   = "tenure"
	FeatureMonthlyCharges           = "MonthlyCharges"
	FeatureTotalCharges             = "TotalCharges"
	FeatureSeniorCitizen            = "SeniorCitizen"
	FeatureSecurityBundle           = "SecurityBundle"
	FeatureStreamingBundle          = "StreamingBundle"
	FeatureOnlinePerksBundle        = "OnlinePerksBundle"
	FeatureBasicSupportBundle       = "BasicSupportBundle"
	FeatureServiceAdoptionScore     = "ServiceAdoptionScore"
	FeatureMonthlyChargesPerService = "MonthlyChargesPerService"
	FeatureHasFiberOptic            = "HasFiberOptic"
	FeatureHasInternet              = "HasInternet"

	// EncodedSuffix marks a label-encoded categorical column.
	EncodedSuffix = "_encoded"

	FieldLifeStage      = "LifeStage"
	FieldTenureCategory = "TenureCategory"
)

// Life stages.
const (
	LifeStageSeniorIndividual = "Senior Individual"
	LifeStageSeniorCouple     = "Senior Couple"
	LifeStageYoungIndividual  = "Young Individual"
	LifeStageYoungFamily      = "Young Family"
	LifeStageYoungCouple      = "Young Couple"
)

// Tenure categories. Upper bounds are inclusive.
const (
	TenureNewCustomer         = "New_Customer"
	TenureEstablishedCustomer = "Established_Customer"
	TenureLongTermCustomer    = "Long_Term_Customer"

	newCustomerMaxMonths         = 12
	establishedCustomerMaxMonths = 36
)

// ContinuousFeatures are the only columns the scaler is applied to.
var ContinuousFeatures = []string{
	FeatureTenure,
	FeatureMonthlyCharges,
	FeatureTotalCharges,
	FeatureServiceAdoptionScore,
	FeatureMonthlyChargesPerService,
}

// EncodedFields are the categorical columns that get a <field>_encoded feature.
var EncodedFields = []string{
	"gender", "SeniorCitizen_Label", "Partner", "Dependents",
	"PhoneService", "MultipleLines", "InternetService",
	"OnlineSecurity", "OnlineBackup", "DeviceProtection",
	"TechSupport", "StreamingTV", "StreamingMovies",
	"Contract", "PaperlessBilling", "PaymentMethod",
	FieldLifeStage, FieldTenureCategory,
}

// premiumServices each add one point to the adoption score when set to Yes.
var premiumServices = []string{
	"OnlineSecurity", "OnlineBackup", "DeviceProtection",
	"TechSupport", "StreamingTV", "StreamingMovies",
}

type bundle struct {
	name     string
	services []string
}

// A bundle flag is 1 only when every service in the bundle is Yes.
var bundles = []bundle{
	{name: FeatureSecurityBundle, services: []string{"OnlineSecurity", "OnlineBackup", "DeviceProtection"}},
	{name: FeatureStreamingBundle, services: []string{"StreamingTV", "StreamingMovies"}},
	{name: FeatureOnlinePerksBundle, services: []string{"OnlineSecurity", "OnlineBackup", "TechSupport"}},
	{name: FeatureBasicSupportBundle, services: []string{"TechSupport", "DeviceProtection"}},
}

// EngineeredFeatures are the values derived from a raw record before encoding
// and scaling.
type EngineeredFeatures struct {
	LifeStage                string
	TenureCategory           string
	Bundles                  map[string]int
	MonthlyChargesPerService float64
	ServiceAdoptionScore     int
	HasFiberOptic            int
	HasInternet              int
}

// Engineer derives every engineered feature of r.
func Engineer(r model.CustomerRecord) EngineeredFeatures {
	score := ServiceAdoptionScore(r)

	bundleFlags := make(map[string]int, len(bundles))
	for _, b := range bundles {
		bundleFlags[b.name] = bundleFlag(r, b.services)
	}

	return EngineeredFeatures{
		LifeStage:                LifeStage(r),
		TenureCategory:           TenureCategory(r.Tenure),
		Bundles:                  bundleFlags,
		ServiceAdoptionScore:     score,
		MonthlyChargesPerService: r.MonthlyCharges.InexactFloat64() / float64(score+1),
		HasFiberOptic:            boolToInt(r.InternetService == model.InternetFiber),
		HasInternet:              boolToInt(r.InternetService != model.InternetNone),
	}
}

// LifeStage classifies a customer from the senior, partner and dependents flags.
func LifeStage(r model.CustomerRecord) string {
	if r.SeniorCitizen == 1 {
		if r.Partner == model.No {
			return LifeStageSeniorIndividual
		}
		return LifeStageSeniorCouple
	}
	switch {
	case r.Partner == model.No:
		return LifeStageYoungIndividual
	case r.Dependents == model.Yes:
		return LifeStageYoungFamily
	default:
		return LifeStageYoungCouple
	}
}

// TenureCategory buckets tenure at 12 and 36 months.
func TenureCategory(months int) string {
	switch {
	case months <= newCustomerMaxMonths:
		return TenureNewCustomer
	case months <= establishedCustomerMaxMonths:
		return TenureEstablishedCustomer
	default:
		return TenureLongTermCustomer
	}
}

// ServiceAdoptionScore adds 2 for fiber, 1 for DSL and 1 per premium service set to Yes.
func ServiceAdoptionScore(r model.CustomerRecord) int {
	score := 0
	switch r.InternetService {
	case model.InternetFiber:
		score += 2
	case model.InternetDSL:
		score++
	}
	for _, s := range premiumServices {
		if v, _ := r.Categorical(s); v == model.Yes {
			score++
		}
	}
	return score
}

func bundleFlag(r model.CustomerRecord, services []string) int {
	for _, s := range services {
		if v, _ := r.Categorical(s); v != model.Yes {
			return 0
		}
	}
	return 1
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
