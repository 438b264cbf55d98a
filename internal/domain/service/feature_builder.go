package service

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/Heitorcp/customer-churn/internal/domain/model"
)

// FeatureBuilder turns a raw customer record into the feature vector the
// trained model expects.
type FeatureBuilder struct {
	encoders   map[string]*LabelEncoder
	scaler     *StandardScaler
	continuous map[string]bool
	features   []string
}

// derivedClasses lists every label the builder itself can produce for the
// derived categoricals. An encoder fitted without one of them would silently
// fall back on records the builder considers valid.
var derivedClasses = map[string][]string{
	"SeniorCitizen_Label": {model.No, model.Yes},
	FieldLifeStage: {
		LifeStageSeniorCouple, LifeStageSeniorIndividual,
		LifeStageYoungCouple, LifeStageYoungFamily, LifeStageYoungIndividual,
	},
	FieldTenureCategory: {TenureEstablishedCustomer, TenureLongTermCustomer, TenureNewCustomer},
}

// NewFeatureBuilder checks the artifacts against each other. It fails when
// modelFeatures names a column the builder cannot populate, unless the column
// is listed in optional, when a continuous column has no scaler statistics,
// and when a derived categorical's encoder lacks a label the builder derives.
func NewFeatureBuilder(
	encoders map[string]*LabelEncoder,
	scaler *StandardScaler,
	modelFeatures []string,
	optional []string,
) (*FeatureBuilder, error) {
	if len(modelFeatures) == 0 {
		return nil, fmt.Errorf("model feature list is empty")
	}

	seen := make(map[string]bool, len(modelFeatures))
	continuous := make(map[string]bool)
	var unknown, unscaled []string

	for _, f := range modelFeatures {
		if seen[f] {
			return nil, fmt.Errorf("duplicate model feature %q", f)
		}
		seen[f] = true

		if !canPopulate(f, encoders) && !slices.Contains(optional, f) {
			unknown = append(unknown, f)
		}
		if slices.Contains(ContinuousFeatures, f) {
			continuous[f] = true
			if scaler == nil || !scaler.Has(f) {
				unscaled = append(unscaled, f)
			}
		}
	}

	if len(unknown) > 0 {
		return nil, fmt.Errorf("model features cannot be populated: %s", strings.Join(unknown, ", "))
	}
	if len(unscaled) > 0 {
		return nil, fmt.Errorf("scaler has no statistics for: %s", strings.Join(unscaled, ", "))
	}
	if err := checkDerivedClasses(encoders, seen); err != nil {
		return nil, err
	}

	return &FeatureBuilder{
		encoders:   encoders,
		scaler:     scaler,
		continuous: continuous,
		features:   append([]string(nil), modelFeatures...),
	}, nil
}

// Features returns the model feature names in vector order.
func (b *FeatureBuilder) Features() []string {
	return append([]string(nil), b.features...)
}

// Build assumes r has been validated. Columns that are not populated are zero.
func (b *FeatureBuilder) Build(r model.CustomerRecord) model.FeatureSet {
	eng := Engineer(r)
	named := numericFeatures(r, eng)

	values := make([]float64, len(b.features))
	var fallbacks []string

	for i, f := range b.features {
		var v float64
		if field, ok := strings.CutSuffix(f, EncodedSuffix); ok {
			if enc := b.encoders[field]; enc != nil {
				e := enc.Encode(categoricalValue(r, eng, field))
				if e.Fallback {
					fallbacks = append(fallbacks, field)
				}
				v = float64(e.Code)
			}
		} else {
			v = named[f]
		}
		if b.continuous[f] {
			v = b.scaler.Transform(f, v)
		}
		values[i] = v
	}

	return model.NewFeatureSet(b.features, values, fallbacks)
}

func numericFeatures(r model.CustomerRecord, eng EngineeredFeatures) map[string]float64 {
	named := map[string]float64{
		FeatureTenure:                   float64(r.Tenure),
		FeatureMonthlyCharges:           r.MonthlyCharges.InexactFloat64(),
		FeatureTotalCharges:             r.TotalCharges.InexactFloat64(),
		FeatureSeniorCitizen:            float64(r.SeniorCitizen),
		FeatureServiceAdoptionScore:     float64(eng.ServiceAdoptionScore),
		FeatureMonthlyChargesPerService: eng.MonthlyChargesPerService,
		FeatureHasFiberOptic:            float64(eng.HasFiberOptic),
		FeatureHasInternet:              float64(eng.HasInternet),
	}
	for name, flag := range eng.Bundles {
		named[name] = float64(flag)
	}
	return named
}

func categoricalValue(r model.CustomerRecord, eng EngineeredFeatures, field string) string {
	switch field {
	case FieldLifeStage:
		return eng.LifeStage
	case FieldTenureCategory:
		return eng.TenureCategory
	default:
		v, _ := r.Categorical(field)
		return v
	}
}

func canPopulate(feature string, encoders map[string]*LabelEncoder) bool {
	if field, ok := strings.CutSuffix(feature, EncodedSuffix); ok {
		return slices.Contains(EncodedFields, field) && encoders[field] != nil
	}
	switch feature {
	case FeatureTenure, FeatureMonthlyCharges, FeatureTotalCharges, FeatureSeniorCitizen,
		FeatureServiceAdoptionScore, FeatureMonthlyChargesPerService,
		FeatureHasFiberOptic, FeatureHasInternet:
		return true
	}
	for _, b := range bundles {
		if b.name == feature {
			return true
		}
	}
	return false
}

func checkDerivedClasses(encoders map[string]*LabelEncoder, features map[string]bool) error {
	var problems []string
	for _, field := range slices.Sorted(maps.Keys(derivedClasses)) {
		enc := encoders[field]
		if enc == nil || !features[field+EncodedSuffix] {
			continue
		}
		fitted := enc.Classes()
		var missing []string
		for _, label := range derivedClasses[field] {
			if !slices.Contains(fitted, label) {
				missing = append(missing, strconv.Quote(label))
			}
		}
		if len(missing) > 0 {
			problems = append(problems, fmt.Sprintf("%s lacks %s", field, strings.Join(missing, ", ")))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("label encoders do not cover derived labels: %s", strings.Join(problems, "; "))
	}
	return nil
}
