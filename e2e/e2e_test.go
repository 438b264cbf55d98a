//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serviceURL string

func TestMain(m *testing.M) {
	serviceURL = os.Getenv("CHURN_SERVICE_URL")
	if serviceURL == "" {
		serviceURL = "http://localhost:8000"
	}

	// Wait for the service to be ready
	for i := 0; i < 30; i++ {
		resp, err := http.Get(serviceURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		time.Sleep(2 * time.Second)
	}

	os.Exit(m.Run())
}

func TestHealthCheck(t *testing.T) {
	resp, err := http.Get(serviceURL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestPredictionFlow(t *testing.T) {
	token := login(t, "demo", "demo123")

	// Step 1: Score a month-to-month fibre customer
	customer := map[string]any{
		"gender":           "Female",
		"SeniorCitizen":    0,
		"Partner":          "Yes",
		"Dependents":       "No",
		"tenure":           1,
		"PhoneService":     "No",
		"MultipleLines":    "No phone service",
		"InternetService":  "Fiber optic",
		"OnlineSecurity":   "No",
		"OnlineBackup":     "Yes",
		"DeviceProtection": "No",
		"TechSupport":      "No",
		"StreamingTV":      "No",
		"StreamingMovies":  "No",
		"Contract":         "Month-to-month",
		"PaperlessBilling": "Yes",
		"PaymentMethod":    "Electronic check",
		"MonthlyCharges":   70.35,
		"TotalCharges":     "70.35",
	}
	resp := doJSON(t, http.MethodPost, "/predict?customer_id=e2e-0001", token, customer)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var prediction struct {
		PredictionID     string  `json:"prediction_id"`
		CustomerID       string  `json:"customer_id"`
		ChurnPrediction  string  `json:"churn_prediction"`
		RiskCategory     string  `json:"risk_category"`
		ChurnProbability float64 `json:"churn_probability"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&prediction))
	assert.Equal(t, "e2e-0001", prediction.CustomerID)
	assert.Contains(t, []string{"Will Churn", "Will Stay"}, prediction.ChurnPrediction)
	assert.Contains(t, []string{"High Risk", "Medium Risk", "Low Risk"}, prediction.RiskCategory)
	assert.GreaterOrEqual(t, prediction.ChurnProbability, 0.0)
	assert.LessOrEqual(t, prediction.ChurnProbability, 1.0)

	// Step 2: Read it back
	getResp := doJSON(t, http.MethodGet, "/predictions/"+prediction.PredictionID, token, nil)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusOK, getResp.StatusCode)

	// Step 3: Score the same customer as CSV
	csvBody := strings.Join([]string{
		"customerID,gender,SeniorCitizen,Partner,Dependents,tenure,PhoneService,MultipleLines,InternetService,OnlineSecurity,OnlineBackup,DeviceProtection,TechSupport,StreamingTV,StreamingMovies,Contract,PaperlessBilling,PaymentMethod,MonthlyCharges,TotalCharges",
		"e2e-0002,Female,0,Yes,No,1,No,No phone service,Fiber optic,No,Yes,No,No,No,No,Month-to-month,Yes,Electronic check,70.35,70.35",
		"e2e-0003,Male,0,No,No,abc,Yes,No,DSL,Yes,No,Yes,No,No,No,One year,No,Mailed check,56.95,1889.5",
	}, "\n")
	req, err := http.NewRequest(http.MethodPost, serviceURL+"/predict/batch/csv", strings.NewReader(csvBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/csv")
	req.Header.Set("Authorization", "Bearer "+token)
	csvResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer csvResp.Body.Close()
	require.Equal(t, http.StatusOK, csvResp.StatusCode)

	var batch struct {
		BatchSize int `json:"batch_size"`
		Succeeded int `json:"succeeded"`
		Failed    int `json:"failed"`
	}
	require.NoError(t, json.NewDecoder(csvResp.Body).Decode(&batch))
	assert.Equal(t, 2, batch.BatchSize)
	assert.Equal(t, 1, batch.Succeeded)
	assert.Equal(t, 1, batch.Failed)
}

func TestAdminEndpointsRequireAdminRole(t *testing.T) {
	token := login(t, "demo", "demo123")

	resp := doJSON(t, http.MethodGet, "/admin/users", token, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func login(t *testing.T, username, password string) string {
	t.Helper()

	resp := doJSON(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

func doJSON(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, fmt.Sprintf("%s%s", serviceURL, path), &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}
