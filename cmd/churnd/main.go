package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Heitorcp/customer-churn/internal/application/usecase"
	"github.com/Heitorcp/customer-churn/internal/domain/port"
	"github.com/Heitorcp/customer-churn/internal/infrastructure/config"
	"github.com/Heitorcp/customer-churn/internal/infrastructure/kafka"
	"github.com/Heitorcp/customer-churn/internal/infrastructure/memory"
	"github.com/Heitorcp/customer-churn/internal/infrastructure/messaging"
	"github.com/Heitorcp/customer-churn/internal/infrastructure/postgres"
	"github.com/Heitorcp/customer-churn/internal/infrastructure/telemetry"
	"github.com/Heitorcp/customer-churn/internal/infrastructure/userstore"
	grpcpresentation "github.com/Heitorcp/customer-churn/internal/presentation/grpc"
	"github.com/Heitorcp/customer-churn/internal/presentation/rest"
	"github.com/Heitorcp/customer-churn/pkg/auth"
	pkgkafka "github.com/Heitorcp/customer-churn/pkg/kafka"
	"github.com/Heitorcp/customer-churn/pkg/observability"
	pkgpostgres "github.com/Heitorcp/customer-churn/pkg/postgres"
)

const serviceName = "churn-service"

func main() {
	if err := run(); err != nil {
		slog.Error("churn-service failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: serviceName,
	})

	logger.Info("starting churn-service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"environment", cfg.Environment,
	)

	if cfg.TracingEnabled() {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: serviceName,
			Endpoint:    cfg.OTLPEndpoint,
			Insecure:    true,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: serviceName})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer meterProvider.Shutdown(context.Background())

	recorder, err := telemetry.NewRecorder(meterProvider.Meter(serviceName))
	if err != nil {
		return fmt.Errorf("init recorder: %w", err)
	}

	// Load model artifacts. A failed load keeps the service up in a degraded state.
	serving := loadServingModel(cfg, logger)

	// Wire infrastructure adapters.
	pingers := map[string]usecase.Pinger{}

	var (
		repo port.PredictionRepository
		pool *pgxpool.Pool
	)
	if cfg.DatabaseEnabled() {
		pool, err = pkgpostgres.NewPool(ctx, pkgpostgres.Config{
			URL:      cfg.DatabaseURL,
			MaxConns: int32(cfg.DatabaseMaxConns),
		})
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()

		version, err := pkgpostgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir)
		if err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		logger.Info("connected to database", "schema_version", version)

		pingers["database"] = databasePinger{pool: pool}
	} else {
		logger.Warn("no database configured, predictions are kept in memory")
		repo = memory.NewPredictionRepository()
	}

	kafkaCfg := pkgkafka.Config{
		Brokers:       cfg.KafkaBrokers,
		ConsumerGroup: cfg.KafkaConsumerGroup,
		SASLMechanism: cfg.KafkaSASLMechanism,
		SASLUsername:  cfg.KafkaSASLUsername,
		SASLPassword:  cfg.KafkaSASLPassword,
		TLS:           cfg.KafkaTLS,
	}

	// With both Postgres and Kafka, events are written to the outbox with the
	// decision record and a relay forwards them; the use case only logs them.
	var (
		publisher port.EventPublisher = messaging.NewLogPublisher(logger)
		relay     *messaging.OutboxRelay
	)
	if cfg.KafkaEnabled() {
		producer, err := pkgkafka.NewProducer(kafkaCfg)
		if err != nil {
			return fmt.Errorf("create kafka producer: %w", err)
		}
		defer producer.Close()
		kafkaPublisher := kafka.NewPublisher(producer, cfg.KafkaEventsTopic, logger)

		if pool != nil {
			repo = postgres.NewPredictionRepository(pool, postgres.WithOutbox())
			relay = messaging.NewOutboxRelay(postgres.NewOutboxRepository(pool), kafkaPublisher, messaging.RelayConfig{
				Interval:  cfg.OutboxRelayInterval,
				BatchSize: cfg.OutboxBatchSize,
			}, logger)
		} else {
			publisher = kafkaPublisher
		}
	}
	if pool != nil && repo == nil {
		repo = postgres.NewPredictionRepository(pool)
	}

	users, err := userstore.NewFileStore(cfg.UsersFile)
	if err != nil {
		return fmt.Errorf("open user store: %w", err)
	}

	jwtService, err := newJWTService(cfg, logger)
	if err != nil {
		return fmt.Errorf("init jwt: %w", err)
	}

	// Wire use cases.
	predictChurnUC := usecase.NewPredictChurn(serving, repo, publisher, recorder, logger)
	predictBatchUC := usecase.NewPredictBatch(predictChurnUC, cfg.MaxBatchSize)
	getPredictionUC := usecase.NewGetPrediction(repo)
	getModelInfoUC := usecase.NewGetModelInfo(serving)
	checkHealthUC := usecase.NewCheckHealth(serving, pingers)
	loginUC := usecase.NewLogin(users, jwtService)
	manageUsersUC := usecase.NewManageUsers(users)

	// gRPC server.
	grpcJWT := jwtService
	if !cfg.AuthEnabled {
		grpcJWT = nil
	}
	grpcHandler := grpcpresentation.NewChurnServiceHandler(
		predictChurnUC, predictBatchUC, getPredictionUC, getModelInfoUC, cfg.AuthEnabled, logger,
	)
	grpcServer, err := grpcpresentation.NewServer(grpcHandler, grpcpresentation.ServerConfig{
		JWT:         grpcJWT,
		Address:     cfg.GRPCAddress(),
		TLSCertFile: cfg.GRPCTLSCertFile,
		TLSKeyFile:  cfg.GRPCTLSKeyFile,
		Reflection:  cfg.GRPCReflection,
	}, logger)
	if err != nil {
		return fmt.Errorf("create gRPC server: %w", err)
	}
	grpcServer.SetServing(serving.Ready())

	// HTTP server.
	router := rest.NewRouter(rest.RouterConfig{
		Handler: rest.NewHandler(rest.UseCases{
			PredictChurn:  predictChurnUC,
			PredictBatch:  predictBatchUC,
			GetPrediction: getPredictionUC,
			GetModelInfo:  getModelInfoUC,
			Login:         loginUC,
			ManageUsers:   manageUsersUC,
		}, logger),
		Health:      rest.NewHealthHandler(checkHealthUC, logger),
		Metrics:     metricsHandler,
		JWT:         jwtService,
		Logger:      logger,
		CORSOrigins: cfg.CORSAllowedOrigins,
		RateLimit:   cfg.RateLimit,
		AuthEnabled: cfg.AuthEnabled,
	})

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// A message that keeps failing stops the consumer and the process with it,
	// so the group resumes from that message after a restart. Without a model
	// every message would fail, so the consumer is not started at all.
	var consumer *pkgkafka.Consumer
	if cfg.KafkaEnabled() && cfg.KafkaScoringTopic != "" && !serving.Ready() {
		logger.Warn("model not loaded, scoring consumer disabled", "topic", cfg.KafkaScoringTopic)
	} else if cfg.KafkaEnabled() && cfg.KafkaScoringTopic != "" {
		scoring := kafka.NewScoringConsumer(predictChurnUC, logger)
		consumer, err = pkgkafka.NewConsumer(kafkaCfg, cfg.KafkaScoringTopic, scoring.Handle, logger)
		if err != nil {
			return fmt.Errorf("create scoring consumer: %w", err)
		}
		defer consumer.Close()
	}

	// Start servers.
	errCh := make(chan error, 3)

	if relay != nil {
		go func() { _ = relay.Run(ctx) }()
		logger.Info("outbox relay started", "topic", cfg.KafkaEventsTopic)
	}

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	if consumer != nil {
		go func() {
			if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
				errCh <- fmt.Errorf("scoring consumer error: %w", err)
			}
		}()
		logger.Info("scoring consumer started", "topic", cfg.KafkaScoringTopic)
	}

	logger.Info("churn-service started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
		"model_ready", serving.Ready(),
	)

	// Wait for shutdown signal.
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("server error", "error", runErr)
	}

	// Graceful shutdown.
	logger.Info("shutting down churn-service")

	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("churn-service stopped")
	return runErr
}

// databasePinger bounds each health probe ping with a short deadline.
type databasePinger struct {
	pool pkgpostgres.Pinger
}

func (p databasePinger) Ping(ctx context.Context) error {
	return pkgpostgres.HealthCheck(ctx, p.pool)
}

// newJWTService prefers an RSA key file, then a shared secret. Without either
// a random secret is generated, so issued tokens do not survive a restart.
func newJWTService(cfg *config.Config, logger *slog.Logger) (*auth.JWTService, error) {
	jwtCfg := auth.JWTConfig{
		Secret:     cfg.JWTSecret,
		Issuer:     cfg.JWTIssuer,
		Expiration: cfg.JWTExpiration,
	}

	switch {
	case cfg.JWTPrivateKeyFile != "":
		key, err := auth.LoadKeyFromFile(cfg.JWTPrivateKeyFile)
		if err != nil {
			return nil, err
		}
		jwtCfg.PrivateKeyPEM = key
	case cfg.JWTSecret == "":
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		jwtCfg.Secret = hex.EncodeToString(secret)
		logger.Warn("no JWT secret configured, using an ephemeral one")
	}

	return auth.NewJWTService(jwtCfg)
}
