package ml

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrModelUnavailable = errors.New("prediction model unavailable")
	ErrSchemaMismatch   = errors.New("feature schema mismatch")
	ErrUnsupportedModel = errors.New("unsupported model type")
)

// Classifier is the opaque binary model. Label 1 means survived.
type Classifier interface {
	Predict(features []float64) (int, error)
	PredictProba(features []float64) ([]float64, error)
}

type Prediction struct {
	Label         int        `json:"label"`
	Probabilities [2]float64 `json:"probabilities"`
}

func (p Prediction) Survived() bool {
	return p.Label == 1
}

func (p Prediction) SurvivalProbability() float64 {
	return p.Probabilities[1]
}

// Confidence is the probability assigned to the predicted label.
func (p Prediction) Confidence() float64 {
	if p.Survived() {
		return p.Probabilities[1]
	}
	return p.Probabilities[0]
}

// Run evaluates the classifier on one vector.
func Run(c Classifier, vector FeatureVector) (Prediction, error) {
	values := vector.Values()
	label, err := c.Predict(values)
	if err != nil {
		return Prediction{}, err
	}
	if label != 0 && label != 1 {
		return Prediction{}, fmt.Errorf("classifier returned label %d", label)
	}
	proba, err := c.PredictProba(values)
	if err != nil {
		return Prediction{}, err
	}
	if len(proba) != 2 {
		return Prediction{}, fmt.Errorf("classifier returned %d probabilities", len(proba))
	}
	sum := proba[0] + proba[1]
	if sum <= 0 || math.IsNaN(sum) {
		return Prediction{}, errors.New("classifier returned invalid probabilities")
	}
	return Prediction{
		Label:         label,
		Probabilities: [2]float64{proba[0] / sum, proba[1] / sum},
	}, nil
}

// Model is a loaded artifact. It is never modified after LoadModel returns.
type Model struct {
	Classifier Classifier
	Type       string
	Path       string
	Version    string
	LoadedAt   time.Time
}

type ModelInfo struct {
	Type     string    `json:"type"`
	Path     string    `json:"path"`
	Version  string    `json:"version"`
	LoadedAt time.Time `json:"loaded_at"`
	Features []string  `json:"features"`
}

func (m *Model) Info() ModelInfo {
	return ModelInfo{
		Type:     m.Type,
		Path:     m.Path,
		Version:  m.Version,
		LoadedAt: m.LoadedAt,
		Features: FeatureNames(),
	}
}
