package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Heitorcp/customer-churn/internal/domain/model"
	"github.com/Heitorcp/customer-churn/internal/domain/service"
)

// Artifact components, named after their file stems.
const (
	ComponentEncoders = "label_encoders"
	ComponentScaler   = "scaler"
	ComponentFeatures = "model_features"
	ComponentMetadata = "model_metadata"
	ComponentModel    = "model"
)

// extensions are tried in order; the first existing file wins.
var extensions = []string{".json", ".yaml", ".yml"}

// LoadError reports a scoring artifact that could not be loaded.
type LoadError struct {
	Err       error
	Component string
	Path      string
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("artifact %s: %v", e.Component, e.Err)
	}
	return fmt.Sprintf("artifact %s (%s): %v", e.Component, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ScalerParams are the fitted standard-scaler statistics.
type ScalerParams struct {
	Features []string  `json:"features" yaml:"features"`
	Mean     []float64 `json:"mean" yaml:"mean"`
	Scale    []float64 `json:"scale" yaml:"scale"`
}

// LogisticParams are the fitted logistic-regression parameters.
type LogisticParams struct {
	Coefficients map[string]float64 `json:"coefficients" yaml:"coefficients"`
	Intercept    float64            `json:"intercept" yaml:"intercept"`
}

// Status records which components loaded.
type Status struct {
	Model    bool
	Scaler   bool
	Encoders bool
	Features bool
	Metadata bool
}

// Bundle is the set of artifacts produced by offline training.
type Bundle struct {
	Encoders map[string][]string
	Model    LogisticParams
	Metadata model.ModelMetadata
	Scaler   ScalerParams
	Features []string
}

// Load reads every artifact from dir. It always returns the Status and
// whatever loaded; the error joins one *LoadError per failed component.
func Load(dir string) (*Bundle, Status, error) {
	var (
		b      Bundle
		status Status
		errs   []error
	)

	load := func(component string, dst any, ok *bool) {
		if err := decodeComponent(dir, component, dst); err != nil {
			errs = append(errs, err)
			return
		}
		*ok = true
	}

	load(ComponentEncoders, &b.Encoders, &status.Encoders)
	load(ComponentScaler, &b.Scaler, &status.Scaler)
	load(ComponentFeatures, &b.Features, &status.Features)
	load(ComponentMetadata, &b.Metadata, &status.Metadata)
	load(ComponentModel, &b.Model, &status.Model)

	if status.Features && len(b.Features) == 0 {
		status.Features = false
		errs = append(errs, &LoadError{Component: ComponentFeatures, Err: errors.New("feature list is empty")})
	}
	if status.Encoders && len(b.Encoders) == 0 {
		status.Encoders = false
		errs = append(errs, &LoadError{Component: ComponentEncoders, Err: errors.New("no encoders defined")})
	}

	return &b, status, errors.Join(errs...)
}

func decodeComponent(dir, component string, dst any) error {
	path, err := locate(dir, component)
	if err != nil {
		return &LoadError{Component: component, Err: err}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return &LoadError{Component: component, Path: path, Err: err}
	}

	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(raw, dst)
	} else {
		err = yaml.Unmarshal(raw, dst)
	}
	if err != nil {
		return &LoadError{Component: component, Path: path, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

func locate(dir, component string) (string, error) {
	for _, ext := range extensions {
		path := filepath.Join(dir, component+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("no %s file in %s: %w", component, dir, fs.ErrNotExist)
}

// LabelEncoders builds the domain encoders.
func (b *Bundle) LabelEncoders() (map[string]*service.LabelEncoder, error) {
	encoders := make(map[string]*service.LabelEncoder, len(b.Encoders))
	for field, classes := range b.Encoders {
		enc, err := service.NewLabelEncoder(classes)
		if err != nil {
			return nil, &LoadError{Component: ComponentEncoders, Err: fmt.Errorf("%s: %w", field, err)}
		}
		encoders[field] = enc
	}
	return encoders, nil
}

// StandardScaler builds the domain scaler.
func (b *Bundle) StandardScaler() (*service.StandardScaler, error) {
	s, err := service.NewStandardScaler(b.Scaler.Features, b.Scaler.Mean, b.Scaler.Scale)
	if err != nil {
		return nil, &LoadError{Component: ComponentScaler, Err: err}
	}
	return s, nil
}
