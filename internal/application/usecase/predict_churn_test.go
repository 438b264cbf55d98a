package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heitorcp/customer-churn/internal/application/dto"
	"github.com/Heitorcp/customer-churn/internal/application/usecase"
	"github.com/Heitorcp/customer-churn/internal/domain/event"
	"github.com/Heitorcp/customer-churn/internal/domain/model"
	"github.com/Heitorcp/customer-churn/internal/domain/service"
	"github.com/Heitorcp/customer-churn/pkg/testutil"
)

type fixture struct {
	repo      *mockPredictionRepository
	publisher *mockEventPublisher
	metrics   *mockMetrics
	serving   *usecase.ServingModel
	predict   *usecase.PredictChurn
}

func newFixture(t *testing.T, scorer testutil.StaticScorer) *fixture {
	t.Helper()
	f := &fixture{
		repo:      &mockPredictionRepository{},
		publisher: &mockEventPublisher{},
		metrics:   newMockMetrics(),
		serving:   usecase.NewServingModel(testutil.NewPipeline(t, scorer), testutil.Metadata(), time.Now()),
	}
	f.predict = usecase.NewPredictChurn(f.serving, f.repo, f.publisher, f.metrics, discardLogger())
	return f
}

func TestPredictChurn_Execute(t *testing.T) {
	t.Run("scores, persists and publishes a high risk customer", func(t *testing.T) {
		f := newFixture(t, testutil.StaticScorer{Probability: 0.912345})

		resp, err := f.predict.Execute(context.Background(), dto.PredictRequest{
			CustomerID: "7590-VHVEG",
			Customer:   testutil.SampleCustomer(),
		})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, resp.PredictionID)
		assert.Equal(t, "7590-VHVEG", resp.CustomerID)
		assert.Equal(t, 0.9123, resp.ChurnProbability)
		assert.Equal(t, "Will Churn", resp.ChurnPrediction)
		assert.Equal(t, "High Risk", resp.RiskCategory)
		assert.Equal(t, "High", resp.ConfidenceLevel)
		assert.Equal(t, service.ActionHighRisk, resp.RecommendedAction)
		assert.Equal(t, []string{}, resp.FallbackFields)
		assert.Equal(t, "Logistic Regression", resp.ModelInfo.ModelName)
		assert.Equal(t, 0.535, resp.ModelInfo.ThresholdUsed)
		assert.Equal(t, 0.917, resp.ModelInfo.Recall)

		require.Len(t, f.repo.saved, 1)
		require.Len(t, f.publisher.published, 2)
		assert.Equal(t, event.EventTypePredictionCompleted, f.publisher.published[0].EventType())
		assert.Equal(t, event.EventTypeHighChurnRisk, f.publisher.published[1].EventType())
		assert.Equal(t, 1, f.metrics.predictions["High Risk"])
	})

	t.Run("low risk customer publishes only the completion event", func(t *testing.T) {
		f := newFixture(t, testutil.StaticScorer{Probability: 0.1})

		resp, err := f.predict.Execute(context.Background(), dto.PredictRequest{Customer: testutil.SampleCustomer()})
		require.NoError(t, err)

		assert.Equal(t, "Low Risk", resp.RiskCategory)
		assert.Equal(t, "Will Stay", resp.ChurnPrediction)
		assert.Len(t, f.publisher.published, 1)
	})

	t.Run("invalid input lists fields and is not persisted", func(t *testing.T) {
		f := newFixture(t, testutil.StaticScorer{Probability: 0.5})
		customer := testutil.SampleCustomer()
		customer.Gender = ""
		customer.Contract = "Weekly"
		customer.Tenure = dto.Number{}

		_, err := f.predict.Execute(context.Background(), dto.PredictRequest{Customer: customer})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidInput)

		var ve *model.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.ElementsMatch(t, []string{"gender", "Contract", "tenure"}, ve.FieldNames())
		assert.Empty(t, f.repo.saved)
		assert.Equal(t, 1, f.metrics.failures[usecase.FailureValidation])
	})

	t.Run("scorer failure surfaces as a scoring error", func(t *testing.T) {
		f := newFixture(t, testutil.StaticScorer{Err: errors.New("shape mismatch")})

		_, err := f.predict.Execute(context.Background(), dto.PredictRequest{Customer: testutil.SampleCustomer()})
		assert.ErrorIs(t, err, service.ErrScoring)
		assert.Equal(t, 1, f.metrics.failures[usecase.FailureScoring])
	})

	t.Run("publish failure does not fail the prediction", func(t *testing.T) {
		f := newFixture(t, testutil.StaticScorer{Probability: 0.6})
		f.publisher.publishErr = errors.New("broker down")

		resp, err := f.predict.Execute(context.Background(), dto.PredictRequest{Customer: testutil.SampleCustomer()})
		require.NoError(t, err)
		assert.Equal(t, "Medium Risk", resp.RiskCategory)
		assert.Len(t, f.repo.saved, 1)
	})

	t.Run("persistence failure fails the prediction", func(t *testing.T) {
		f := newFixture(t, testutil.StaticScorer{Probability: 0.6})
		f.repo.saveErr = errors.New("connection refused")

		_, err := f.predict.Execute(context.Background(), dto.PredictRequest{Customer: testutil.SampleCustomer()})
		assert.Error(t, err)
		assert.Equal(t, 1, f.metrics.failures[usecase.FailurePersistence])
	})

	t.Run("unseen category is scored with fallback and reported", func(t *testing.T) {
		builder := testutil.NewFeatureBuilderWithClasses(t, testutil.ClassesWith("Contract", "One year", "Two year"))
		pipeline := testutil.NewPipelineWithBuilder(t, builder, testutil.StaticScorer{Probability: 0.3})
		metrics := newMockMetrics()
		serving := usecase.NewServingModel(pipeline, testutil.Metadata(), time.Now())
		uc := usecase.NewPredictChurn(serving, &mockPredictionRepository{}, &mockEventPublisher{}, metrics, discardLogger())

		resp, err := uc.Execute(context.Background(), dto.PredictRequest{Customer: testutil.SampleCustomer()})
		require.NoError(t, err)
		assert.Equal(t, []string{"Contract"}, resp.FallbackFields)
		assert.Equal(t, 1, metrics.fallbacks["Contract"])
	})
}

func TestPredictChurn_ModelUnavailable(t *testing.T) {
	serving := usecase.NewUnavailableModel(dto.ComponentsLoaded{Metadata: true}, model.ModelMetadata{}, errors.New("scaler missing"))
	metrics := newMockMetrics()
	uc := usecase.NewPredictChurn(serving, &mockPredictionRepository{}, &mockEventPublisher{}, metrics, discardLogger())

	_, err := uc.Execute(context.Background(), dto.PredictRequest{Customer: testutil.SampleCustomer()})
	assert.ErrorIs(t, err, usecase.ErrModelUnavailable)
	assert.Equal(t, 1, metrics.failures[usecase.FailureUnavailable])
}

func TestGetPrediction_Execute(t *testing.T) {
	f := newFixture(t, testutil.StaticScorer{Probability: 0.7})
	created, err := f.predict.Execute(context.Background(), dto.PredictRequest{CustomerID: "c-1", Customer: testutil.SampleCustomer()})
	require.NoError(t, err)

	uc := usecase.NewGetPrediction(f.repo)

	t.Run("found", func(t *testing.T) {
		got, err := uc.Execute(context.Background(), dto.GetPredictionRequest{PredictionID: created.PredictionID})
		require.NoError(t, err)
		assert.Equal(t, created.PredictionID, got.PredictionID)
		assert.Equal(t, "c-1", got.CustomerID)
		assert.Equal(t, created.ChurnProbability, got.ChurnProbability)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), dto.GetPredictionRequest{PredictionID: uuid.New()})
		assert.ErrorIs(t, err, usecase.ErrPredictionNotFound)
	})
}
