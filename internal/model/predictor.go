package model

import (
	"fmt"
	"math"

	"github.com/danarta/loan-decision-service/internal/features"
	"github.com/danarta/loan-decision-service/internal/models"
)

// Decision and bucketing thresholds on the default probability.
const (
	labelThreshold = 0.5

	riskLowBound    = 0.15 // probability < 0.15 is low risk
	riskMediumBound = 0.35 // probability < 0.35 is medium risk
)

// Predictor is the prediction port: pure, deterministic inference over a
// frozen artifact. Safe for concurrent use; nothing mutates after load.
type Predictor struct {
	artifact *Artifact
}

// NewPredictor wraps a loaded artifact.
func NewPredictor(artifact *Artifact) *Predictor {
	return &Predictor{artifact: artifact}
}

// Version returns the artifact version string.
func (p *Predictor) Version() string { return p.artifact.Version }

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// margin computes one term's log-odds contribution for the given vector.
func (t Term) margin(v *features.Vector) (float64, error) {
	f, ok := v.Get(t.Feature)
	if !ok {
		return 0, &features.FeatureSchemaError{
			Reason: fmt.Sprintf("model expects feature %q absent from the vector", t.Feature),
		}
	}
	if t.Kind == CategoricalTerm {
		if w, ok := t.Levels[f.Cat]; ok {
			return w, nil
		}
		return t.Default, nil
	}
	return t.Weight * (f.Num - t.Mean), nil
}

// margins returns every term's log-odds contribution, in term order.
func (p *Predictor) margins(v *features.Vector) ([]float64, error) {
	out := make([]float64, len(p.artifact.Terms))
	for i, term := range p.artifact.Terms {
		m, err := term.margin(v)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

func riskCategory(probability float64) models.RiskCategory {
	switch {
	case probability < riskLowBound:
		return models.RiskLow
	case probability < riskMediumBound:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}

// confidence is checked in precedence order: the extreme bands first.
func confidence(probability float64) models.Confidence {
	if probability < 0.10 || probability > 0.70 {
		return models.ConfidenceHigh
	}
	if probability < 0.30 || probability > 0.50 {
		return models.ConfidenceMedium
	}
	return models.ConfidenceLow
}

// Predict runs frozen-model inference over a schema-validated feature vector.
func (p *Predictor) Predict(v *features.Vector) (*models.PredictionResult, error) {
	if v.SchemaVersion != p.artifact.SchemaVersion {
		return nil, &features.FeatureSchemaError{
			Reason: fmt.Sprintf("vector schema %q does not match artifact schema %q",
				v.SchemaVersion, p.artifact.SchemaVersion),
		}
	}

	margins, err := p.margins(v)
	if err != nil {
		return nil, err
	}

	score := p.artifact.Intercept
	for _, m := range margins {
		score += m
	}
	probability := sigmoid(score)

	label := 0
	if probability >= labelThreshold {
		label = 1
	}

	return &models.PredictionResult{
		Probability:  probability,
		Label:        label,
		RiskCategory: riskCategory(probability),
		Confidence:   confidence(probability),
		ModelVersion: p.artifact.Version,
	}, nil
}
