package insight

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/danarta/loan-decision-service/internal/models"
	"github.com/danarta/loan-decision-service/internal/pipeline"
	"github.com/danarta/loan-decision-service/internal/policy"
)

// Impact score weights: probability reduction dominates health gain.
const (
	impactHealthWeight = 0.3
	impactRiskWeight   = 0.7
)

// Simulator replays the primary pipeline under the scenario catalog's input
// deltas. It owns no computation of its own: every scenario re-invokes the
// injected pipeline on a perturbed copy of the inputs, which is what makes
// a no-op scenario reproduce the primary outcome exactly.
type Simulator struct {
	pipe *pipeline.Pipeline
	pol  *policy.Policy
}

// NewSimulator builds a simulator over the pipeline and scenario catalog.
func NewSimulator(pipe *pipeline.Pipeline, pol *policy.Policy) *Simulator {
	return &Simulator{pipe: pipe, pol: pol}
}

// applyDeltas returns perturbed copies of the baseline inputs. The inputs
// are value types, so the copies are deep by construction; optional pointer
// fields on the request are re-allocated to keep the baseline untouched.
func applyDeltas(
	profile models.FinancialProfile,
	req models.LoanRequest,
	deltas []policy.Delta,
) (models.FinancialProfile, models.LoanRequest, error) {
	if req.TotalRepayment != nil {
		v := *req.TotalRepayment
		req.TotalRepayment = &v
	}
	if req.LenderPortion != nil {
		v := *req.LenderPortion
		req.LenderPortion = &v
	}

	apply := func(current float64, d policy.Delta) float64 {
		if d.Op == "add" {
			return current + d.Value
		}
		return current * d.Value
	}

	for _, d := range deltas {
		if d.Op != "scale" && d.Op != "add" {
			return profile, req, fmt.Errorf("unknown delta op %q", d.Op)
		}
		switch d.Target {
		case "income":
			profile.Income = apply(profile.Income, d)
		case "fixed_expenses":
			profile.FixedExpenses = apply(profile.FixedExpenses, d)
		case "variable_expenses":
			profile.VariableExpenses = apply(profile.VariableExpenses, d)
		case "savings":
			profile.Savings = apply(profile.Savings, d)
		case "debt":
			profile.Debt = apply(profile.Debt, d)
		case "amount":
			req.Amount = apply(req.Amount, d)
		case "duration_days":
			req.DurationDays = int(math.Round(apply(float64(req.DurationDays), d)))
		default:
			return profile, req, fmt.Errorf("unknown delta target %q", d.Target)
		}
	}
	return profile, req, nil
}

// Simulate replays the full pipeline for one scenario against the baseline
// outcome. The baseline's reference clock is reused so temporal features
// stay identical between the primary run and the replay.
func (s *Simulator) Simulate(
	profile models.FinancialProfile,
	req models.LoanRequest,
	baseline *pipeline.Outcome,
	spec policy.ScenarioSpec,
	asOf time.Time,
) models.ScenarioResult {
	result := models.ScenarioResult{
		ScenarioName: spec.Name,
		Description:  spec.Description,
		Effort:       spec.Effort,
		Timeline:     spec.Timeline,
	}

	newProfile, newReq, err := applyDeltas(profile, req, spec.Deltas)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	outcome, err := s.pipe.Run(newProfile, newReq, asOf)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Health = outcome.Health
	result.Prediction = outcome.Prediction
	result.ScoreDelta = outcome.Health.Score - baseline.Health.Score
	result.ProbabilityDelta = outcome.Prediction.Probability - baseline.Prediction.Probability
	result.ImpactScore = impactHealthWeight*float64(result.ScoreDelta) +
		impactRiskWeight*100*(-result.ProbabilityDelta)
	return result
}

// RunAll replays every catalog scenario and resolves combination synergy.
// One scenario's failure is annotated on its own result and never aborts
// its siblings. Results are merged by scenario name, in catalog order, so
// output is deterministic regardless of execution order.
func (s *Simulator) RunAll(
	ctx context.Context,
	profile models.FinancialProfile,
	req models.LoanRequest,
	baseline *pipeline.Outcome,
	asOf time.Time,
) ([]models.ScenarioResult, error) {
	byName := make(map[string]models.ScenarioResult, len(s.pol.Scenarios))
	for _, spec := range s.pol.Scenarios {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		byName[spec.Name] = s.Simulate(profile, req, baseline, spec, asOf)
	}

	results := make([]models.ScenarioResult, 0, len(s.pol.Scenarios))
	for _, spec := range s.pol.Scenarios {
		r := byName[spec.Name]
		if len(spec.Components) > 0 && !r.Failed() {
			r.Synergy = synergy(r, spec.Components, byName)
		}
		results = append(results, r)
	}
	return results, nil
}

// synergy computes the portion of a combined scenario's effect not explained
// by the sum of its components' individual effects. Sign is unconstrained;
// a positive value is surfaced to the recommendation layer.
func synergy(combined models.ScenarioResult, components []string, byName map[string]models.ScenarioResult) *models.SynergyEffect {
	scoreSum := 0
	probSum := 0.0
	for _, name := range components {
		c, ok := byName[name]
		if !ok || c.Failed() {
			return nil
		}
		scoreSum += c.ScoreDelta
		probSum += c.ProbabilityDelta
	}
	return &models.SynergyEffect{
		Components:      components,
		ScoreSynergy:    float64(combined.ScoreDelta - scoreSum),
		ProbabilityDrop: -(combined.ProbabilityDelta - probSum),
	}
}

// BestScenario returns the successful scenario with the highest impact
// score, or nil when every scenario failed.
func BestScenario(results []models.ScenarioResult) *models.ScenarioResult {
	var best *models.ScenarioResult
	for i := range results {
		r := &results[i]
		if r.Failed() {
			continue
		}
		if best == nil || r.ImpactScore > best.ImpactScore {
			best = r
		}
	}
	return best
}
