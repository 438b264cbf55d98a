package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heitorcp/customer-churn/internal/application/dto"
	"github.com/Heitorcp/customer-churn/internal/infrastructure/config"
	"github.com/Heitorcp/customer-churn/pkg/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadServingModel_ShippedArtifacts(t *testing.T) {
	cfg := config.Default()
	cfg.ArtifactsDir = "../../artifacts"

	serving := loadServingModel(&cfg, discardLogger())
	require.True(t, serving.Ready(), "load error: %v", serving.Err())
	assert.True(t, serving.Components().All())
	assert.Equal(t, 0.535, serving.Pipeline().Threshold())

	outcome, err := serving.Pipeline().Evaluate(context.Background(), testutil.SampleRecord())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, outcome.Probability, 0.0)
	assert.LessOrEqual(t, outcome.Probability, 1.0)
	assert.Equal(t, 29, outcome.Features.Len())
	assert.False(t, outcome.Features.UsedFallback())
}

func TestLoadServingModel_ThresholdOverride(t *testing.T) {
	cfg := config.Default()
	cfg.ArtifactsDir = "../../artifacts"
	threshold := 0.4
	cfg.DecisionThreshold = &threshold

	serving := loadServingModel(&cfg, discardLogger())
	require.True(t, serving.Ready())
	assert.Equal(t, 0.4, serving.Pipeline().Threshold())
}

func TestLoadServingModel_ZeroThresholdOverride(t *testing.T) {
	cfg := config.Default()
	cfg.ArtifactsDir = "../../artifacts"
	zero := 0.0
	cfg.DecisionThreshold = &zero

	serving := loadServingModel(&cfg, discardLogger())
	require.True(t, serving.Ready())
	assert.Zero(t, serving.Pipeline().Threshold())

	outcome, err := serving.Pipeline().Evaluate(context.Background(), testutil.SampleRecord())
	require.NoError(t, err)
	assert.Equal(t, "Will Churn", outcome.Decision.Label.String(), "every probability meets a zero threshold")
}

func TestLoadServingModel_MissingArtifacts(t *testing.T) {
	cfg := config.Default()
	cfg.ArtifactsDir = t.TempDir()

	serving := loadServingModel(&cfg, discardLogger())
	assert.False(t, serving.Ready())
	assert.Error(t, serving.Err())
	assert.Equal(t, dto.ComponentsLoaded{}, serving.Components())
}
