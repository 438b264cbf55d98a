package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the churn service.
type Config struct {
	HTTPPort    string
	GRPCPort    string
	Environment string
	LogLevel    string
	LogFormat   string

	ArtifactsDir     string
	OptionalFeatures []string
	MaxBatchSize     int

	// DecisionThreshold overrides the model metadata threshold when non-nil.
	// Zero is a valid override.
	DecisionThreshold   *float64
	HighRiskThreshold   float64
	ConfidenceHighUpper float64
	ConfidenceHighLower float64
	ConfidenceMedUpper  float64
	ConfidenceMedLower  float64

	DatabaseURL      string
	DatabaseMaxConns int
	MigrationsDir    string

	OutboxRelayInterval time.Duration
	OutboxBatchSize     int

	KafkaBrokers       []string
	KafkaEventsTopic   string
	KafkaScoringTopic  string
	KafkaConsumerGroup string
	KafkaTLS           bool
	KafkaSASLMechanism string
	KafkaSASLUsername  string
	KafkaSASLPassword  string

	AuthEnabled       bool
	JWTSecret         string
	JWTPrivateKeyFile string
	JWTIssuer         string
	JWTExpiration     time.Duration
	UsersFile         string

	CORSAllowedOrigins []string
	RateLimit          int

	OTLPEndpoint string

	GRPCTLSCertFile string
	GRPCTLSKeyFile  string
	GRPCReflection  bool
}

// configFile mirrors the YAML schema of configs/churnd.yaml.
type configFile struct {
	Service struct {
		HTTPPort    string `yaml:"http_port"`
		GRPCPort    string `yaml:"grpc_port"`
		Environment string `yaml:"environment"`
		LogLevel    string `yaml:"log_level"`
		LogFormat   string `yaml:"log_format"`
	} `yaml:"service"`
	Model struct {
		ArtifactsDir      string   `yaml:"artifacts_dir"`
		OptionalFeatures  []string `yaml:"optional_features"`
		MaxBatchSize      int      `yaml:"max_batch_size"`
		DecisionThreshold *float64 `yaml:"decision_threshold"`
		HighRiskThreshold float64  `yaml:"high_risk_threshold"`
		Confidence        struct {
			HighUpper   float64 `yaml:"high_upper"`
			HighLower   float64 `yaml:"high_lower"`
			MediumUpper float64 `yaml:"medium_upper"`
			MediumLower float64 `yaml:"medium_lower"`
		} `yaml:"confidence"`
	} `yaml:"model"`
	Database struct {
		URL             string `yaml:"url"`
		MaxConns        int    `yaml:"max_conns"`
		MigrationsDir   string `yaml:"migrations_dir"`
		OutboxInterval  string `yaml:"outbox_interval"`
		OutboxBatchSize int    `yaml:"outbox_batch_size"`
	} `yaml:"database"`
	Kafka struct {
		Brokers       []string `yaml:"brokers"`
		EventsTopic   string   `yaml:"events_topic"`
		ScoringTopic  string   `yaml:"scoring_topic"`
		ConsumerGroup string   `yaml:"consumer_group"`
		TLS           bool     `yaml:"tls"`
	} `yaml:"kafka"`
	Auth struct {
		Enabled    bool   `yaml:"enabled"`
		Issuer     string `yaml:"issuer"`
		Expiration string `yaml:"expiration"`
		UsersFile  string `yaml:"users_file"`
	} `yaml:"auth"`
	HTTP struct {
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		RateLimit          int      `yaml:"rate_limit"`
	} `yaml:"http"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTPPort:            "8000",
		GRPCPort:            "9000",
		Environment:         "development",
		LogLevel:            "info",
		LogFormat:           "json",
		ArtifactsDir:        "./artifacts",
		MaxBatchSize:        100,
		HighRiskThreshold:   0.80,
		ConfidenceHighUpper: 0.8,
		ConfidenceHighLower: 0.2,
		ConfidenceMedUpper:  0.6,
		ConfidenceMedLower:  0.4,
		DatabaseMaxConns:    10,
		MigrationsDir:       "file://./migrations",
		OutboxRelayInterval: 2 * time.Second,
		OutboxBatchSize:     100,
		KafkaEventsTopic:    "churn.prediction.events",
		KafkaConsumerGroup:  "churn-scoring",
		KafkaSASLMechanism:  "PLAIN",
		JWTIssuer:           "customer-churn",
		JWTExpiration:       time.Hour,
		UsersFile:           "./configs/users.json",
		CORSAllowedOrigins:  []string{"http://localhost:5173", "http://localhost:8501"},
		RateLimit:           50,
	}
}

// Load resolves configuration in priority order: defaults -> file -> env.
// The file is read from CHURN_CONFIG_FILE when set; a missing file is not an error.
func Load() (*Config, error) {
	cfg := Default()

	if path := getEnv("CHURN_CONFIG_FILE", ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&c.HTTPPort, f.Service.HTTPPort)
	setString(&c.GRPCPort, f.Service.GRPCPort)
	setString(&c.Environment, f.Service.Environment)
	setString(&c.LogLevel, f.Service.LogLevel)
	setString(&c.LogFormat, f.Service.LogFormat)

	setString(&c.ArtifactsDir, f.Model.ArtifactsDir)
	if len(f.Model.OptionalFeatures) > 0 {
		c.OptionalFeatures = f.Model.OptionalFeatures
	}
	setInt(&c.MaxBatchSize, f.Model.MaxBatchSize)
	if f.Model.DecisionThreshold != nil {
		c.DecisionThreshold = f.Model.DecisionThreshold
	}
	setFloat(&c.HighRiskThreshold, f.Model.HighRiskThreshold)
	setFloat(&c.ConfidenceHighUpper, f.Model.Confidence.HighUpper)
	setFloat(&c.ConfidenceHighLower, f.Model.Confidence.HighLower)
	setFloat(&c.ConfidenceMedUpper, f.Model.Confidence.MediumUpper)
	setFloat(&c.ConfidenceMedLower, f.Model.Confidence.MediumLower)

	setString(&c.DatabaseURL, f.Database.URL)
	setInt(&c.DatabaseMaxConns, f.Database.MaxConns)
	setString(&c.MigrationsDir, f.Database.MigrationsDir)
	if f.Database.OutboxInterval != "" {
		d, err := time.ParseDuration(f.Database.OutboxInterval)
		if err != nil {
			return fmt.Errorf("parse database.outbox_interval: %w", err)
		}
		c.OutboxRelayInterval = d
	}
	setInt(&c.OutboxBatchSize, f.Database.OutboxBatchSize)

	if len(f.Kafka.Brokers) > 0 {
		c.KafkaBrokers = f.Kafka.Brokers
	}
	setString(&c.KafkaEventsTopic, f.Kafka.EventsTopic)
	setString(&c.KafkaScoringTopic, f.Kafka.ScoringTopic)
	setString(&c.KafkaConsumerGroup, f.Kafka.ConsumerGroup)
	c.KafkaTLS = c.KafkaTLS || f.Kafka.TLS

	c.AuthEnabled = c.AuthEnabled || f.Auth.Enabled
	setString(&c.JWTIssuer, f.Auth.Issuer)
	if f.Auth.Expiration != "" {
		d, err := time.ParseDuration(f.Auth.Expiration)
		if err != nil {
			return fmt.Errorf("parse auth.expiration: %w", err)
		}
		c.JWTExpiration = d
	}
	setString(&c.UsersFile, f.Auth.UsersFile)

	if len(f.HTTP.CORSAllowedOrigins) > 0 {
		c.CORSAllowedOrigins = f.HTTP.CORSAllowedOrigins
	}
	setInt(&c.RateLimit, f.HTTP.RateLimit)
	return nil
}

func (c *Config) applyEnv() {
	c.HTTPPort = getEnv("HTTP_PORT", c.HTTPPort)
	c.GRPCPort = getEnv("GRPC_PORT", c.GRPCPort)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)

	c.ArtifactsDir = getEnv("CHURN_ARTIFACTS_DIR", c.ArtifactsDir)
	c.OptionalFeatures = getEnvList("CHURN_OPTIONAL_FEATURES", c.OptionalFeatures)
	c.MaxBatchSize = getEnvInt("CHURN_MAX_BATCH_SIZE", c.MaxBatchSize)
	c.DecisionThreshold = getEnvOptionalFloat("CHURN_DECISION_THRESHOLD", c.DecisionThreshold)
	c.HighRiskThreshold = getEnvFloat("CHURN_HIGH_RISK_THRESHOLD", c.HighRiskThreshold)
	c.ConfidenceHighUpper = getEnvFloat("CHURN_CONFIDENCE_HIGH_UPPER", c.ConfidenceHighUpper)
	c.ConfidenceHighLower = getEnvFloat("CHURN_CONFIDENCE_HIGH_LOWER", c.ConfidenceHighLower)
	c.ConfidenceMedUpper = getEnvFloat("CHURN_CONFIDENCE_MEDIUM_UPPER", c.ConfidenceMedUpper)
	c.ConfidenceMedLower = getEnvFloat("CHURN_CONFIDENCE_MEDIUM_LOWER", c.ConfidenceMedLower)

	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.DatabaseMaxConns = getEnvInt("DATABASE_MAX_CONNS", c.DatabaseMaxConns)
	c.MigrationsDir = getEnv("MIGRATIONS_DIR", c.MigrationsDir)
	c.OutboxRelayInterval = getEnvDuration("OUTBOX_RELAY_INTERVAL", c.OutboxRelayInterval)
	c.OutboxBatchSize = getEnvInt("OUTBOX_BATCH_SIZE", c.OutboxBatchSize)

	c.KafkaBrokers = getEnvList("KAFKA_BROKERS", c.KafkaBrokers)
	c.KafkaEventsTopic = getEnv("KAFKA_EVENTS_TOPIC", c.KafkaEventsTopic)
	c.KafkaScoringTopic = getEnv("KAFKA_SCORING_TOPIC", c.KafkaScoringTopic)
	c.KafkaConsumerGroup = getEnv("KAFKA_CONSUMER_GROUP", c.KafkaConsumerGroup)
	c.KafkaTLS = getEnvBool("KAFKA_TLS", c.KafkaTLS)
	c.KafkaSASLMechanism = getEnv("KAFKA_SASL_MECHANISM", c.KafkaSASLMechanism)
	c.KafkaSASLUsername = getEnv("KAFKA_SASL_USERNAME", c.KafkaSASLUsername)
	c.KafkaSASLPassword = getEnv("KAFKA_SASL_PASSWORD", c.KafkaSASLPassword)

	c.AuthEnabled = getEnvBool("AUTH_ENABLED", c.AuthEnabled)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTPrivateKeyFile = getEnv("JWT_PRIVATE_KEY_FILE", c.JWTPrivateKeyFile)
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)
	c.JWTExpiration = getEnvDuration("JWT_EXPIRATION", c.JWTExpiration)
	c.UsersFile = getEnv("USERS_FILE", c.UsersFile)

	c.CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", c.CORSAllowedOrigins)
	c.RateLimit = getEnvInt("RATE_LIMIT", c.RateLimit)

	c.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTLPEndpoint)

	c.GRPCTLSCertFile = getEnv("GRPC_TLS_CERT_FILE", c.GRPCTLSCertFile)
	c.GRPCTLSKeyFile = getEnv("GRPC_TLS_KEY_FILE", c.GRPCTLSKeyFile)
	c.GRPCReflection = getEnvBool("GRPC_REFLECTION", c.GRPCReflection)
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("CHURN_MAX_BATCH_SIZE must be positive")
	}
	if t := c.DecisionThreshold; t != nil && (*t < 0 || *t >= 1) {
		return fmt.Errorf("CHURN_DECISION_THRESHOLD must be within [0, 1)")
	}
	if c.OutboxRelayInterval <= 0 || c.OutboxBatchSize <= 0 {
		return fmt.Errorf("OUTBOX_RELAY_INTERVAL and OUTBOX_BATCH_SIZE must be positive")
	}
	if c.AuthEnabled && c.JWTSecret == "" && c.JWTPrivateKeyFile == "" {
		return fmt.Errorf("AUTH_ENABLED requires JWT_SECRET or JWT_PRIVATE_KEY_FILE")
	}
	if (c.GRPCTLSCertFile == "") != (c.GRPCTLSKeyFile == "") {
		return fmt.Errorf("GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together")
	}
	return nil
}

// GRPCAddress returns the full gRPC listen address.
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf(":%s", c.GRPCPort)
}

// HTTPAddress returns the full HTTP listen address.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.HTTPPort)
}

// DatabaseEnabled reports whether predictions are persisted to Postgres.
func (c *Config) DatabaseEnabled() bool { return c.DatabaseURL != "" }

// KafkaEnabled reports whether events go to Kafka.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// TracingEnabled reports whether spans are exported.
func (c *Config) TracingEnabled() bool { return c.OTLPEndpoint != "" }

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvOptionalFloat keeps defaultValue unless key holds a number, so an
// explicit 0 is distinguishable from unset.
func getEnvOptionalFloat(key string, defaultValue *float64) *float64 {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return &parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
