package model

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Categorical values shared by several fields.
const (
	Yes               = "Yes"
	No                = "No"
	NoPhoneService    = "No phone service"
	NoInternetService = "No internet service"

	InternetDSL   = "DSL"
	InternetFiber = "Fiber optic"
	InternetNone  = "No"
)

// MaxTenureMonths is the upper bound accepted for tenure.
const MaxTenureMonths = 100

var (
	genderDomain        = []string{"Male", "Female"}
	yesNoDomain         = []string{Yes, No}
	multipleLinesDomain = []string{Yes, No, NoPhoneService}
	internetAddonDomain = []string{Yes, No, NoInternetService}
	internetDomain      = []string{InternetDSL, InternetFiber, InternetNone}
	contractDomain      = []string{"Month-to-month", "One year", "Two year"}
	paymentMethodDomain = []string{"Electronic check", "Mailed check", "Bank transfer (automatic)", "Credit card (automatic)"}
)

// CustomerRecord is the raw customer profile submitted for scoring. Field
// names follow the dataset columns, which are also the wire names.
type CustomerRecord struct {
	MonthlyCharges   decimal.Decimal
	TotalCharges     decimal.Decimal
	Gender           string
	Partner          string
	Dependents       string
	PhoneService     string
	MultipleLines    string
	InternetService  string
	OnlineSecurity   string
	OnlineBackup     string
	DeviceProtection string
	TechSupport      string
	StreamingTV      string
	StreamingMovies  string
	Contract         string
	PaperlessBilling string
	PaymentMethod    string
	SeniorCitizen    int
	Tenure           int
}

// Validate checks every field against its declared domain and reports all
// offending fields at once. Empty categorical values are reported as missing.
// The "No internet service" values are not cross-checked against InternetService.
func (r CustomerRecord) Validate() error {
	var ve ValidationError

	checkDomain := func(field, value string, domain []string) {
		switch {
		case value == "":
			ve.Add(field, "field required")
		case !slices.Contains(domain, value):
			ve.Add(field, "must be one of "+quoteAll(domain))
		}
	}

	checkDomain("gender", r.Gender, genderDomain)
	if r.SeniorCitizen != 0 && r.SeniorCitizen != 1 {
		ve.Add("SeniorCitizen", "must be 0 or 1")
	}
	checkDomain("Partner", r.Partner, yesNoDomain)
	checkDomain("Dependents", r.Dependents, yesNoDomain)
	if r.Tenure < 0 || r.Tenure > MaxTenureMonths {
		ve.Add("tenure", "must be between 0 and 100")
	}
	checkDomain("PhoneService", r.PhoneService, yesNoDomain)
	checkDomain("MultipleLines", r.MultipleLines, multipleLinesDomain)
	checkDomain("InternetService", r.InternetService, internetDomain)
	checkDomain("OnlineSecurity", r.OnlineSecurity, internetAddonDomain)
	checkDomain("OnlineBackup", r.OnlineBackup, internetAddonDomain)
	checkDomain("DeviceProtection", r.DeviceProtection, internetAddonDomain)
	checkDomain("TechSupport", r.TechSupport, internetAddonDomain)
	checkDomain("StreamingTV", r.StreamingTV, internetAddonDomain)
	checkDomain("StreamingMovies", r.StreamingMovies, internetAddonDomain)
	checkDomain("Contract", r.Contract, contractDomain)
	checkDomain("PaperlessBilling", r.PaperlessBilling, yesNoDomain)
	checkDomain("PaymentMethod", r.PaymentMethod, paymentMethodDomain)
	if r.MonthlyCharges.IsNegative() {
		ve.Add("MonthlyCharges", "must be non-negative")
	}
	if r.TotalCharges.IsNegative() {
		ve.Add("TotalCharges", "must be non-negative")
	}

	if ve.Empty() {
		return nil
	}
	return &ve
}

// SeniorCitizenLabel maps the 0/1 flag to the textual label used at training time.
func (r CustomerRecord) SeniorCitizenLabel() string {
	if r.SeniorCitizen == 1 {
		return Yes
	}
	return No
}

// Categorical returns the value of a raw categorical column by its dataset
// name, and false when the name is not a raw categorical column.
func (r CustomerRecord) Categorical(name string) (string, bool) {
	switch name {
	case "gender":
		return r.Gender, true
	case "SeniorCitizen_Label":
		return r.SeniorCitizenLabel(), true
	case "Partner":
		return r.Partner, true
	case "Dependents":
		return r.Dependents, true
	case "PhoneService":
		return r.PhoneService, true
	case "MultipleLines":
		return r.MultipleLines, true
	case "InternetService":
		return r.InternetService, true
	case "OnlineSecurity":
		return r.OnlineSecurity, true
	case "OnlineBackup":
		return r.OnlineBackup, true
	case "DeviceProtection":
		return r.DeviceProtection, true
	case "TechSupport":
		return r.TechSupport, true
	case "StreamingTV":
		return r.StreamingTV, true
	case "StreamingMovies":
		return r.StreamingMovies, true
	case "Contract":
		return r.Contract, true
	case "PaperlessBilling":
		return r.PaperlessBilling, true
	case "PaymentMethod":
		return r.PaymentMethod, true
	default:
		return "", false
	}
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return strings.Join(quoted, ", ")
}
