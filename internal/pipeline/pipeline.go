// Package pipeline composes the deterministic decision stages: metrics,
// health rules, persona, feature assembly, frozen-model inference, and
// attribution. The scenario simulator re-invokes this exact chain under
// perturbed inputs; there is deliberately no second code path.
package pipeline

import (
	"time"

	"github.com/danarta/loan-decision-service/internal/features"
	"github.com/danarta/loan-decision-service/internal/health"
	"github.com/danarta/loan-decision-service/internal/model"
	"github.com/danarta/loan-decision-service/internal/models"
)

// Pipeline runs the six core stages for one request. Stateless per request;
// the injected collaborators are read-only after process start, so a single
// Pipeline is safe for concurrent use.
type Pipeline struct {
	analyzer  *health.Analyzer
	assembler *features.Assembler
	predictor *model.Predictor
}

// New wires the pipeline stages.
func New(analyzer *health.Analyzer, assembler *features.Assembler, predictor *model.Predictor) *Pipeline {
	return &Pipeline{analyzer: analyzer, assembler: assembler, predictor: predictor}
}

// Outcome is everything the six stages produce for one invocation.
type Outcome struct {
	Health      *models.HealthAssessment
	Features    *features.Vector
	Prediction  *models.PredictionResult
	Attribution *models.AttributionReport
}

// Run executes metrics, rules, persona, assembly, prediction, and
// attribution. The reference clock asOf pins all temporal features so a
// replay of the same inputs yields a bit-identical outcome.
func (p *Pipeline) Run(profile models.FinancialProfile, req models.LoanRequest, asOf time.Time) (*Outcome, error) {
	healthResult, err := p.analyzer.Analyze(profile)
	if err != nil {
		return nil, err
	}

	vector, err := p.assembler.Assemble(profile, req, healthResult.Metrics, asOf)
	if err != nil {
		return nil, err
	}

	prediction, err := p.predictor.Predict(vector)
	if err != nil {
		return nil, err
	}

	attribution, err := p.predictor.Attribute(vector, prediction.Probability)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Health:      healthResult,
		Features:    vector,
		Prediction:  prediction,
		Attribution: attribution,
	}, nil
}
