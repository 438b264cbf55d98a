package kafka_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Heitorcp/customer-churn/internal/application/dto"
	"github.com/Heitorcp/customer-churn/internal/application/usecase"
	"github.com/Heitorcp/customer-churn/internal/domain/model"
	"github.com/Heitorcp/customer-churn/internal/domain/service"
	"github.com/Heitorcp/customer-churn/internal/infrastructure/kafka"
	pkgkafka "github.com/Heitorcp/customer-churn/pkg/kafka"
)

type mockPredictor struct {
	err  error
	reqs []dto.PredictRequest
}

func (m *mockPredictor) Execute(_ context.Context, req dto.PredictRequest) (dto.PredictionResponse, error) {
	m.reqs = append(m.reqs, req)
	if m.err != nil {
		return dto.PredictionResponse{}, m.err
	}
	return dto.PredictionResponse{CustomerID: req.CustomerID, RiskCategory: "Low Risk"}, nil
}

func TestScoringConsumer_Handle(t *testing.T) {
	validBody := []byte(`{"customer_id": "7590-VHVEG", "customer": {"gender": "Female", "tenure": 1}}`)

	tests := []struct {
		name      string
		msg       pkgkafka.Message
		err       error
		wantErr   bool
		wantCalls int
		wantID    string
	}{
		{
			name:      "scores a request",
			msg:       pkgkafka.Message{Value: validBody},
			wantCalls: 1,
			wantID:    "7590-VHVEG",
		},
		{
			name:      "falls back to the message key for the customer id",
			msg:       pkgkafka.Message{Key: []byte("from-key"), Value: []byte(`{"customer": {}}`)},
			wantCalls: 1,
			wantID:    "from-key",
		},
		{
			name: "acknowledges malformed json",
			msg:  pkgkafka.Message{Value: []byte(`{not json`)},
		},
		{
			name:      "acknowledges invalid records",
			msg:       pkgkafka.Message{Value: validBody},
			err:       &model.ValidationError{Fields: []model.FieldError{{Field: "Contract", Reason: "field required"}}},
			wantCalls: 1,
			wantID:    "7590-VHVEG",
		},
		{
			name:      "acknowledges scoring failures",
			msg:       pkgkafka.Message{Value: validBody},
			err:       fmt.Errorf("%w: probability 1.5 out of range", service.ErrScoring),
			wantCalls: 1,
			wantID:    "7590-VHVEG",
		},
		{
			name:      "returns model unavailability for retry",
			msg:       pkgkafka.Message{Value: validBody},
			err:       usecase.ErrModelUnavailable,
			wantErr:   true,
			wantCalls: 1,
			wantID:    "7590-VHVEG",
		},
		{
			name:      "returns persistence failures for retry",
			msg:       pkgkafka.Message{Value: validBody},
			err:       errors.New("connection refused"),
			wantErr:   true,
			wantCalls: 1,
			wantID:    "7590-VHVEG",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			predictor := &mockPredictor{err: tt.err}
			consumer := kafka.NewScoringConsumer(predictor, discardLogger())

			err := consumer.Handle(context.Background(), tt.msg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.Len(t, predictor.reqs, tt.wantCalls)
			if tt.wantCalls > 0 {
				assert.Equal(t, tt.wantID, predictor.reqs[0].CustomerID)
			}
		})
	}
}
