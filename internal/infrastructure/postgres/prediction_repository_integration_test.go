//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heitorcp/customer-churn/internal/domain/model"
	"github.com/Heitorcp/customer-churn/internal/domain/port"
	"github.com/Heitorcp/customer-churn/internal/domain/service"
	"github.com/Heitorcp/customer-churn/internal/infrastructure/postgres"
	"github.com/Heitorcp/customer-churn/pkg/testutil"
)

func TestPredictionRepository_Integration(t *testing.T) {
	ctx := context.Background()

	pg := testutil.NewPostgresContainer(ctx, t)
	defer pg.Cleanup(t)
	pg.RunMigrations(t, "../../../migrations")

	repo := postgres.NewPredictionRepository(pg.Pool)

	policy, err := service.NewDecisionPolicy(service.DefaultPolicyConfig())
	require.NoError(t, err)

	record := testutil.SampleRecord()
	prediction, err := model.NewPrediction(
		"7590-VHVEG", record, 0.812345, policy.Decide(0.812345),
		model.Provenance{ModelName: "Logistic Regression", ModelVersion: "1.0.0", Recall: 0.917, Threshold: 0.535}, []string{"Contract_encoded"},
	)
	require.NoError(t, err)

	t.Run("save and find", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, prediction))

		found, err := repo.FindByID(ctx, prediction.ID())
		require.NoError(t, err)

		assert.Equal(t, prediction.CustomerID(), found.CustomerID())
		assert.Equal(t, 0.8123, found.Probability())
		assert.Equal(t, prediction.Label(), found.Label())
		assert.Equal(t, prediction.Risk(), found.Risk())
		assert.Equal(t, prediction.Confidence(), found.Confidence())
		assert.Equal(t, prediction.RecommendedAction(), found.RecommendedAction())
		assert.Equal(t, []string{"Contract_encoded"}, found.FallbackFields())
		assert.True(t, record.MonthlyCharges.Equal(found.Record().MonthlyCharges))
		assert.Equal(t, record.PaymentMethod, found.Record().PaymentMethod)
		assert.WithinDuration(t, prediction.PredictedAt(), found.PredictedAt(), time.Millisecond)
	})

	t.Run("duplicate id", func(t *testing.T) {
		err := repo.Save(ctx, prediction)
		assert.ErrorIs(t, err, port.ErrAlreadyExists)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, port.ErrNotFound)
	})
}
