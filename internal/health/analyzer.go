// Package health implements the transparent, rule-based financial health
// assessment: metric computation, threshold-band scoring, risk flags, and
// persona classification. Everything here is pure and deterministic so the
// scenario simulator can replay it under perturbed inputs.
package health

import "github.com/danarta/loan-decision-service/internal/models"

// Analyzer coordinates metrics, rules, and persona classification.
type Analyzer struct{}

// NewAnalyzer initializes a new health analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze runs the full health assessment for one financial profile.
func (a *Analyzer) Analyze(p models.FinancialProfile) (*models.HealthAssessment, error) {
	metrics, err := ComputeMetrics(p)
	if err != nil {
		return nil, err
	}

	result := EvaluateRules(metrics)
	persona := ClassifyPersona(metrics)

	return &models.HealthAssessment{
		Score:           result.Score,
		Status:          result.Status,
		Metrics:         metrics,
		ComponentScores: result.ComponentScores,
		Explanations:    result.Explanations,
		RiskFlags:       result.RiskFlags,
		Persona:         persona,
	}, nil
}
