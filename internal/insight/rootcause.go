// Package insight is the reasoning layer on top of the pipeline: causal
// root-cause ranking, what-if scenario replay, template-keyed
// recommendations, and the executive decision summary. It never modifies
// the model; everything derives from pipeline outcomes.
package insight

import (
	"fmt"
	"sort"

	"github.com/danarta/loan-decision-service/internal/models"
	"github.com/danarta/loan-decision-service/internal/policy"
)

const (
	sourceRiskFlag = "risk_flag"
	sourceModel    = "model"
)

// flagExplanations describe the underlying state behind each risk flag.
var flagExplanations = map[string]string{
	models.FlagHighDebtBurden:      "Debt-to-income ratio shows an excessive debt load",
	models.FlagExcessiveExpenses:   "Uncontrolled spending reduces repayment capacity",
	models.FlagInsufficientSavings: "Emergency fund cannot absorb a financial shock",
	models.FlagNegativeCashflow:    "Spending exceeds income; additional installments are not sustainable",
}

// flagForFeature maps a model feature back to the risk flag covering the
// same underlying state. When that flag is active the model factor is
// skipped, so one cause is never counted twice.
var flagForFeature = map[string]string{
	"dti":              models.FlagHighDebtBurden,
	"expense_ratio":    models.FlagExcessiveExpenses,
	"savings_ratio":    models.FlagInsufficientSavings,
	"disposable_ratio": models.FlagNegativeCashflow,
}

// RootCauseSynthesizer merges rule-derived and model-derived signals into
// one ranked causal explanation.
type RootCauseSynthesizer struct {
	pol policy.RootCausePolicy
}

// NewRootCauseSynthesizer builds a synthesizer over the given policy.
func NewRootCauseSynthesizer(pol policy.RootCausePolicy) *RootCauseSynthesizer {
	return &RootCauseSynthesizer{pol: pol}
}

func clampScale(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

func (s *RootCauseSynthesizer) flagFactor(flag string) models.CausalFactor {
	score, ok := s.pol.Flags[flag]
	if !ok {
		score = policy.FactorScore{Severity: 5, Impact: 5, Actionability: s.pol.DefaultActionability}
	}
	return models.CausalFactor{
		Name:          flag,
		Source:        sourceRiskFlag,
		Severity:      score.Severity,
		Impact:        score.Impact,
		Actionability: score.Actionability,
		PriorityScore: score.Severity * score.Impact * score.Actionability,
		Explanation:   flagExplanations[flag],
	}
}

func (s *RootCauseSynthesizer) modelFactor(c models.FeatureContribution) models.CausalFactor {
	magnitude := clampScale(abs(c.Contribution) * s.pol.ContributionScale)
	actionability, ok := s.pol.FeatureActionability[c.Feature]
	if !ok {
		actionability = s.pol.DefaultActionability
	}
	return models.CausalFactor{
		Name:          c.Feature,
		Source:        sourceModel,
		Severity:      magnitude,
		Impact:        magnitude,
		Actionability: actionability,
		PriorityScore: magnitude * magnitude * actionability,
		Explanation: fmt.Sprintf("Model attributes %+.1f%% default probability to %s (current value %s)",
			c.Contribution*100, c.Feature, c.Value),
	}
}

// Synthesize combines the active risk flags with the top attribution
// factors, scores each on the policy scales, and partitions by priority.
// Actionability zero always lands in the non-actionable bucket regardless
// of raw priority.
func (s *RootCauseSynthesizer) Synthesize(
	healthResult *models.HealthAssessment,
	attribution *models.AttributionReport,
) *models.RootCauseReport {
	factors := make([]models.CausalFactor, 0, len(healthResult.RiskFlags)+len(attribution.TopRiskFactors))

	for _, flag := range healthResult.RiskFlags {
		factors = append(factors, s.flagFactor(flag))
	}
	for _, c := range attribution.TopRiskFactors {
		if flag, covered := flagForFeature[c.Feature]; covered && healthResult.HasFlag(flag) {
			continue
		}
		factors = append(factors, s.modelFactor(c))
	}

	sort.SliceStable(factors, func(i, j int) bool {
		if factors[i].PriorityScore != factors[j].PriorityScore {
			return factors[i].PriorityScore > factors[j].PriorityScore
		}
		return factors[i].Name < factors[j].Name
	})

	report := &models.RootCauseReport{
		PrimaryFactors:       []models.CausalFactor{},
		SecondaryFactors:     []models.CausalFactor{},
		NonActionableFactors: []models.CausalFactor{},
	}
	for _, f := range factors {
		switch {
		case f.Actionability == 0:
			report.NonActionableFactors = append(report.NonActionableFactors, f)
		case f.PriorityScore >= s.pol.PrimaryThreshold:
			report.PrimaryFactors = append(report.PrimaryFactors, f)
		case f.PriorityScore >= s.pol.SecondaryThreshold:
			report.SecondaryFactors = append(report.SecondaryFactors, f)
		}
	}
	return report
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
