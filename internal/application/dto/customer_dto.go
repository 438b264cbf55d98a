package dto

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"github.com/Heitorcp/customer-churn/internal/domain/model"
)

// CustomerRecord is the wire form of a raw customer record. JSON keys are the
// dataset column names.
type CustomerRecord struct {
	Gender           string `json:"gender"`
	SeniorCitizen    Number `json:"SeniorCitizen"`
	Partner          string `json:"Partner"`
	Dependents       string `json:"Dependents"`
	Tenure           Number `json:"tenure"`
	PhoneService     string `json:"PhoneService"`
	MultipleLines    string `json:"MultipleLines"`
	InternetService  string `json:"InternetService"`
	OnlineSecurity   string `json:"OnlineSecurity"`
	OnlineBackup     string `json:"OnlineBackup"`
	DeviceProtection string `json:"DeviceProtection"`
	TechSupport      string `json:"TechSupport"`
	StreamingTV      string `json:"StreamingTV"`
	StreamingMovies  string `json:"StreamingMovies"`
	Contract         string `json:"Contract"`
	PaperlessBilling string `json:"PaperlessBilling"`
	PaymentMethod    string `json:"PaymentMethod"`
	MonthlyCharges   Number `json:"MonthlyCharges"`
	TotalCharges     Number `json:"TotalCharges"`
}

// ToModel converts and validates the record. The returned error is a
// *model.ValidationError listing every missing or out-of-domain field.
func (c CustomerRecord) ToModel() (model.CustomerRecord, error) {
	var ve model.ValidationError
	for _, f := range []struct {
		name string
		n    Number
	}{
		{name: "SeniorCitizen", n: c.SeniorCitizen},
		{name: "tenure", n: c.Tenure},
		{name: "MonthlyCharges", n: c.MonthlyCharges},
		{name: "TotalCharges", n: c.TotalCharges},
	} {
		if !f.n.Present {
			ve.Add(f.name, "field required")
		}
	}

	r := model.CustomerRecord{
		Gender:           c.Gender,
		SeniorCitizen:    int(math.Round(c.SeniorCitizen.Finite())),
		Partner:          c.Partner,
		Dependents:       c.Dependents,
		Tenure:           int(math.Round(c.Tenure.Finite())),
		PhoneService:     c.PhoneService,
		MultipleLines:    c.MultipleLines,
		InternetService:  c.InternetService,
		OnlineSecurity:   c.OnlineSecurity,
		OnlineBackup:     c.OnlineBackup,
		DeviceProtection: c.DeviceProtection,
		TechSupport:      c.TechSupport,
		StreamingTV:      c.StreamingTV,
		StreamingMovies:  c.StreamingMovies,
		Contract:         c.Contract,
		PaperlessBilling: c.PaperlessBilling,
		PaymentMethod:    c.PaymentMethod,
		MonthlyCharges:   decimal.NewFromFloat(c.MonthlyCharges.Finite()),
		TotalCharges:     decimal.NewFromFloat(c.TotalCharges.Finite()),
	}

	var fieldErrs *model.ValidationError
	if err := r.Validate(); errors.As(err, &fieldErrs) {
		ve.Merge(fieldErrs)
	}
	if !ve.Empty() {
		return model.CustomerRecord{}, &ve
	}
	return r, nil
}

// CustomerRecordFromModel converts a domain record to its wire form.
func CustomerRecordFromModel(r model.CustomerRecord) CustomerRecord {
	return CustomerRecord{
		Gender:           r.Gender,
		SeniorCitizen:    NewNumber(float64(r.SeniorCitizen)),
		Partner:          r.Partner,
		Dependents:       r.Dependents,
		Tenure:           NewNumber(float64(r.Tenure)),
		PhoneService:     r.PhoneService,
		MultipleLines:    r.MultipleLines,
		InternetService:  r.InternetService,
		OnlineSecurity:   r.OnlineSecurity,
		OnlineBackup:     r.OnlineBackup,
		DeviceProtection: r.DeviceProtection,
		TechSupport:      r.TechSupport,
		StreamingTV:      r.StreamingTV,
		StreamingMovies:  r.StreamingMovies,
		Contract:         r.Contract,
		PaperlessBilling: r.PaperlessBilling,
		PaymentMethod:    r.PaymentMethod,
		MonthlyCharges:   NewNumber(r.MonthlyCharges.InexactFloat64()),
		TotalCharges:     NewNumber(r.TotalCharges.InexactFloat64()),
	}
}
