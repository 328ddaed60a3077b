package insight

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danarta/loan-decision-service/internal/models"
	"github.com/danarta/loan-decision-service/internal/pipeline"
)

// Recommendation tiers, most favorable first.
const (
	TierRecommended         = "recommended"
	TierConditional         = "conditional"
	TierRestructureRequired = "restructure_required"
	TierNotRecommended      = "not_recommended"
)

// decideTier maps the predicted risk band and the availability of actionable
// primary factors to a lending stance. Medium and high risk soften when the
// analysis found concrete levers the borrower can pull.
func decideTier(prediction *models.PredictionResult, rootCause *models.RootCauseReport) string {
	actionable := len(rootCause.PrimaryFactors) > 0
	switch prediction.RiskCategory {
	case models.RiskLow:
		return TierRecommended
	case models.RiskMedium:
		if actionable {
			return TierConditional
		}
		return TierRecommended
	default:
		if actionable {
			return TierRestructureRequired
		}
		return TierNotRecommended
	}
}

func tierReasoning(tier string, health *models.HealthAssessment, prediction *models.PredictionResult) string {
	p := prediction.Probability * 100
	switch tier {
	case TierRecommended:
		return fmt.Sprintf(
			"Financial health score of %d (%s) and a default probability of %.1f%% support approving this loan as requested.",
			health.Score, health.Status, p)
	case TierConditional:
		return fmt.Sprintf(
			"Default probability of %.1f%% is in the medium band, but the identified risk drivers are actionable. Approval is viable if the primary factors are addressed first.",
			p)
	case TierRestructureRequired:
		return fmt.Sprintf(
			"Default probability of %.1f%% is too high for the current structure, yet the main risk drivers can be changed. Restructure the loan or the finances before proceeding.",
			p)
	default:
		return fmt.Sprintf(
			"Default probability of %.1f%% is in the high band and no actionable primary driver was found. Proceeding is not advisable at this time.",
			p)
	}
}

// riskProfile positions the applicant on a health-by-risk matrix.
func riskProfile(health *models.HealthAssessment, prediction *models.PredictionResult) string {
	switch prediction.RiskCategory {
	case models.RiskLow:
		if health.Status == models.StatusHealthy {
			return "Stable"
		}
		return "Stable with Weaknesses"
	case models.RiskMedium:
		if health.Status == models.StatusAtRisk {
			return "Elevated Risk"
		}
		return "Moderate Risk"
	default:
		if health.Status == models.StatusAtRisk {
			return "Severe Risk"
		}
		return "High Risk"
	}
}

func keyInsights(
	health *models.HealthAssessment,
	prediction *models.PredictionResult,
	rootCause *models.RootCauseReport,
	scenarios []models.ScenarioResult,
) []string {
	insights := []string{
		fmt.Sprintf("Financial health score is %d of 100 (%s).", health.Score, health.Status),
		fmt.Sprintf("Predicted default probability is %.1f%% (%s risk, %s confidence).",
			prediction.Probability*100, prediction.RiskCategory, prediction.Confidence),
	}
	if n := len(health.RiskFlags); n > 0 {
		insights = append(insights, fmt.Sprintf("%d financial risk flag(s) are active.", n))
	}
	if len(rootCause.PrimaryFactors) > 0 {
		f := rootCause.PrimaryFactors[0]
		insights = append(insights, fmt.Sprintf("The dominant risk driver is %s: %s", f.Name, f.Explanation))
	}
	if best := BestScenario(scenarios); best != nil && best.ImpactScore > 0 {
		insights = append(insights, fmt.Sprintf(
			"The most effective improvement is %q: %+d health points and a %.1f pp change in default probability.",
			best.ScenarioName, best.ScoreDelta, best.ProbabilityDelta*100))
	}
	return insights
}

func topActions(recs []models.Recommendation, limit int) []string {
	actions := make([]string, 0, limit)
	for _, r := range recs {
		if len(actions) == limit {
			break
		}
		actions = append(actions, r.Action)
	}
	return actions
}

// BuildReport assembles the full decision report from a pipeline outcome and
// the downstream analyses. The timestamp comes from the injected clock so
// that replays of the same inputs produce the same report body.
func BuildReport(
	outcome *pipeline.Outcome,
	rootCause *models.RootCauseReport,
	scenarios []models.ScenarioResult,
	recs []models.Recommendation,
	asOf time.Time,
) *models.DecisionReport {
	tier := decideTier(outcome.Prediction, rootCause)
	hasCritical := false
	for _, r := range recs {
		if r.Priority == "critical" {
			hasCritical = true
			break
		}
	}

	return &models.DecisionReport{
		ID:               uuid.NewString(),
		GeneratedAt:      asOf.UTC(),
		HealthAssessment: outcome.Health,
		LoanPrediction:   outcome.Prediction,
		Attribution:      outcome.Attribution,
		RootCause:        rootCause,
		Scenarios:        scenarios,
		Recommendations:  recs,
		ActionPlan:       BuildActionPlan(recs),
		DecisionSummary: models.DecisionSummary{
			RecommendationTier:      tier,
			Reasoning:               tierReasoning(tier, outcome.Health, outcome.Prediction),
			RiskProfile:             riskProfile(outcome.Health, outcome.Prediction),
			KeyInsights:             keyInsights(outcome.Health, outcome.Prediction, rootCause, scenarios),
			TopActions:              topActions(recs, 3),
			RequiresImmediateAction: hasCritical || outcome.Health.HasFlag(models.FlagNegativeCashflow),
		},
	}
}
