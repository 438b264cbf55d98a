package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Heitorcp/customer-churn/internal/domain/model"
	"github.com/Heitorcp/customer-churn/internal/domain/port"
	"github.com/Heitorcp/customer-churn/internal/domain/valueobject"
	"github.com/Heitorcp/customer-churn/pkg/events"
	pkgpostgres "github.com/Heitorcp/customer-churn/pkg/postgres"
)

// PredictionRepository implements port.PredictionRepository using PostgreSQL.
type PredictionRepository struct {
	db     pkgpostgres.DB
	outbox bool
}

// RepositoryOption configures a PredictionRepository.
type RepositoryOption func(*PredictionRepository)

// WithOutbox makes Save write the prediction's pending events to the outbox
// table in the same transaction as the decision record.
func WithOutbox() RepositoryOption {
	return func(r *PredictionRepository) { r.outbox = true }
}

// NewPredictionRepository creates a new PostgreSQL-backed prediction repository.
func NewPredictionRepository(db pkgpostgres.DB, opts ...RepositoryOption) *PredictionRepository {
	r := &PredictionRepository{db: db}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// customerDocument is the JSONB form of the raw record, keyed by column name.
type customerDocument struct {
	Gender           string          `json:"gender"`
	SeniorCitizen    int             `json:"SeniorCitizen"`
	Partner          string          `json:"Partner"`
	Dependents       string          `json:"Dependents"`
	Tenure           int             `json:"tenure"`
	PhoneService     string          `json:"PhoneService"`
	MultipleLines    string          `json:"MultipleLines"`
	InternetService  string          `json:"InternetService"`
	OnlineSecurity   string          `json:"OnlineSecurity"`
	OnlineBackup     string          `json:"OnlineBackup"`
	DeviceProtection string          `json:"DeviceProtection"`
	TechSupport      string          `json:"TechSupport"`
	StreamingTV      string          `json:"StreamingTV"`
	StreamingMovies  string          `json:"StreamingMovies"`
	Contract         string          `json:"Contract"`
	PaperlessBilling string          `json:"PaperlessBilling"`
	PaymentMethod    string          `json:"PaymentMethod"`
	MonthlyCharges   decimal.Decimal `json:"MonthlyCharges"`
	TotalCharges     decimal.Decimal `json:"TotalCharges"`
}

func toDocument(r model.CustomerRecord) customerDocument {
	return customerDocument{
		Gender:           r.Gender,
		SeniorCitizen:    r.SeniorCitizen,
		Partner:          r.Partner,
		Dependents:       r.Dependents,
		Tenure:           r.Tenure,
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
		MonthlyCharges:   r.MonthlyCharges,
		TotalCharges:     r.TotalCharges,
	}
}

func (d customerDocument) toModel() model.CustomerRecord {
	return model.CustomerRecord{
		Gender:           d.Gender,
		SeniorCitizen:    d.SeniorCitizen,
		Partner:          d.Partner,
		Dependents:       d.Dependents,
		Tenure:           d.Tenure,
		PhoneService:     d.PhoneService,
		MultipleLines:    d.MultipleLines,
		InternetService:  d.InternetService,
		OnlineSecurity:   d.OnlineSecurity,
		OnlineBackup:     d.OnlineBackup,
		DeviceProtection: d.DeviceProtection,
		TechSupport:      d.TechSupport,
		StreamingTV:      d.StreamingTV,
		StreamingMovies:  d.StreamingMovies,
		Contract:         d.Contract,
		PaperlessBilling: d.PaperlessBilling,
		PaymentMethod:    d.PaymentMethod,
		MonthlyCharges:   d.MonthlyCharges,
		TotalCharges:     d.TotalCharges,
	}
}

// Save persists a decision record. Records are immutable, so a duplicate id
// is an error. With the outbox enabled the record and its events commit or
// roll back together; the events stay pending on p for the caller.
func (r *PredictionRepository) Save(ctx context.Context, p *model.Prediction) error {
	if !r.outbox {
		return r.insert(ctx, r.db, p)
	}

	entries, err := events.NewOutboxEntries(p.PendingEvents())
	if err != nil {
		return err
	}
	return pkgpostgres.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		if err := r.insert(ctx, tx, p); err != nil {
			return err
		}
		return writeOutbox(ctx, tx, entries)
	})
}

func (r *PredictionRepository) insert(ctx context.Context, q pkgpostgres.Querier, p *model.Prediction) error {
	doc, err := json.Marshal(toDocument(p.Record()))
	if err != nil {
		return fmt.Errorf("failed to encode customer record: %w", err)
	}

	fallbacks := p.FallbackFields()
	if fallbacks == nil {
		fallbacks = []string{}
	}

	query := `
		INSERT INTO predictions (
			id, customer_id, churn_probability,
			churn_prediction, risk_category, confidence_level, recommended_action,
			threshold_used, model_name, model_version, model_recall,
			fallback_fields, monthly_charges, total_charges, customer, predicted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO NOTHING
	`

	tag, err := q.Exec(ctx, query,
		p.ID(),
		p.CustomerID(),
		p.Probability(),
		p.Label().String(),
		p.Risk().String(),
		p.Confidence().String(),
		p.RecommendedAction(),
		p.Threshold(),
		p.ModelName(),
		p.ModelVersion(),
		p.Recall(),
		fallbacks,
		p.Record().MonthlyCharges,
		p.Record().TotalCharges,
		doc,
		p.PredictedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("prediction %s: %w", p.ID(), port.ErrAlreadyExists)
	}

	return nil
}

// FindByID retrieves a decision record by its unique identifier.
func (r *PredictionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Prediction, error) {
	query := `
		SELECT id, customer_id, churn_probability,
			churn_prediction, risk_category, confidence_level, recommended_action,
			threshold_used, model_name, model_version, model_recall,
			fallback_fields, customer, predicted_at
		FROM predictions
		WHERE id = $1
	`

	return r.scanPrediction(r.db.QueryRow(ctx, query, id))
}

func (r *PredictionRepository) scanPrediction(row pgx.Row) (*model.Prediction, error) {
	var (
		id             uuid.UUID
		customerID     string
		probability    float64
		labelStr       string
		riskStr        string
		confidenceStr  string
		action         string
		threshold      float64
		modelName      string
		modelVersion   string
		recall         float64
		fallbackFields []string
		rawCustomer    []byte
		predictedAt    time.Time
	)

	err := row.Scan(
		&id, &customerID, &probability,
		&labelStr, &riskStr, &confidenceStr, &action,
		&threshold, &modelName, &modelVersion, &recall,
		&fallbackFields, &rawCustomer, &predictedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, port.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan prediction: %w", err)
	}

	label, err := valueobject.ChurnLabelFromString(labelStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse churn label: %w", err)
	}
	risk, err := valueobject.RiskCategoryFromString(riskStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse risk category: %w", err)
	}
	confidence, err := valueobject.ConfidenceLevelFromString(confidenceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse confidence level: %w", err)
	}

	var doc customerDocument
	if err := json.Unmarshal(rawCustomer, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode customer record: %w", err)
	}

	return model.ReconstructPrediction(
		id,
		customerID,
		doc.toModel(),
		probability,
		model.Decision{
			Label:             label,
			Risk:              risk,
			Confidence:        confidence,
			RecommendedAction: action,
			Threshold:         threshold,
		},
		model.Provenance{
			ModelName:    modelName,
			ModelVersion: modelVersion,
			Recall:       recall,
			Threshold:    threshold,
		},
		fallbackFields,
		predictedAt.UTC(),
	), nil
}
