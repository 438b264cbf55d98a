//go:build integration

package messaging_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heitorcp/customer-churn/internal/domain/event"
	"github.com/Heitorcp/customer-churn/internal/domain/model"
	"github.com/Heitorcp/customer-churn/internal/domain/service"
	"github.com/Heitorcp/customer-churn/internal/infrastructure/kafka"
	"github.com/Heitorcp/customer-churn/internal/infrastructure/messaging"
	"github.com/Heitorcp/customer-churn/internal/infrastructure/postgres"
	pkgkafka "github.com/Heitorcp/customer-churn/pkg/kafka"
	"github.com/Heitorcp/customer-churn/pkg/testutil"
)

func TestOutboxRelay_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	const topic = "churn.prediction.events"

	pg := testutil.NewPostgresContainer(ctx, t)
	defer pg.Cleanup(t)
	pg.RunMigrations(t, "../../../migrations")

	broker := testutil.StartKafka(ctx, t, topic)
	producer, err := pkgkafka.NewProducer(pkgkafka.Config{Brokers: broker.Brokers})
	require.NoError(t, err)
	defer producer.Close()

	repo := postgres.NewPredictionRepository(pg.Pool, postgres.WithOutbox())
	store := postgres.NewOutboxRepository(pg.Pool)
	relay := messaging.NewOutboxRelay(store, kafka.NewPublisher(producer, topic, quietLogger()), messaging.RelayConfig{}, quietLogger())

	policy, err := service.NewDecisionPolicy(service.DefaultPolicyConfig())
	require.NoError(t, err)
	p, err := model.NewPrediction("7590-VHVEG", testutil.SampleRecord(), 0.93, policy.Decide(0.93),
		model.Provenance{ModelName: "Logistic Regression", ModelVersion: "1.0.0", Threshold: 0.535}, nil)
	require.NoError(t, err)
	pending := p.PendingEvents()

	require.NoError(t, repo.Save(ctx, p))

	n, err := relay.RelayOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	msgs := broker.ReadMessages(ctx, t, topic, 2)
	for i, m := range msgs {
		assert.Equal(t, p.ID().String(), string(m.Key))
		headers := map[string]string{}
		for _, h := range m.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, pending[i].EventID().String(), headers["event_id"])
	}
	assert.Contains(t, string(msgs[1].Value), event.EventTypeHighChurnRisk)

	// Nothing left to relay.
	n, err = relay.RelayOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
