package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danarta/loan-decision-service/internal/health"
	"github.com/danarta/loan-decision-service/internal/models"
)

func findByCategory(recs []models.Recommendation, category string) *models.Recommendation {
	for i := range recs {
		if recs[i].Category == category {
			return &recs[i]
		}
	}
	return nil
}

func TestBuildRecommendationsFromFlags(t *testing.T) {
	healthResult := &models.HealthAssessment{
		RiskFlags: []string{models.FlagHighDebtBurden, models.FlagInsufficientSavings},
		Metrics:   models.MetricsSet{DTI: 7.2, ExpenseRatio: 0.62, SavingsRatio: 0.8},
		Persona:   models.Persona{FocusTag: health.FocusDebtPaydown},
	}
	prediction := &models.PredictionResult{Probability: 0.22, RiskCategory: models.RiskMedium}
	scenarios := []models.ScenarioResult{
		{ScenarioName: "debt_reduction_30", ScoreDelta: 12, ProbabilityDelta: -0.05},
		{ScenarioName: "savings_boost_50", ScoreDelta: 4, ProbabilityDelta: -0.01},
	}

	recs := BuildRecommendations(healthResult, prediction, &models.RootCauseReport{}, scenarios)

	debt := findByCategory(recs, "Debt Management")
	require.NotNil(t, debt)
	assert.Equal(t, "high", debt.Priority)
	assert.Contains(t, debt.Detail, "7.20")
	require.NotNil(t, debt.ExpectedImpact)
	assert.Equal(t, "debt_reduction_30", debt.ExpectedImpact.Scenario)
	assert.Equal(t, 12, debt.ExpectedImpact.ScoreGain)
	assert.InDelta(t, 0.05, debt.ExpectedImpact.ProbabilityDrop, 1e-9)

	savings := findByCategory(recs, "Savings Building")
	require.NotNil(t, savings)
	require.NotNil(t, savings.ExpectedImpact)
	assert.Equal(t, 4, savings.ExpectedImpact.ScoreGain)
}

func TestBuildRecommendationsSkipsImpactForFailedScenario(t *testing.T) {
	healthResult := &models.HealthAssessment{
		RiskFlags: []string{models.FlagHighDebtBurden},
		Metrics:   models.MetricsSet{DTI: 8.0},
	}
	prediction := &models.PredictionResult{Probability: 0.2, RiskCategory: models.RiskMedium}
	scenarios := []models.ScenarioResult{
		{ScenarioName: "debt_reduction_30", Error: "scenario replay failed"},
	}

	recs := BuildRecommendations(healthResult, prediction, &models.RootCauseReport{}, scenarios)

	debt := findByCategory(recs, "Debt Management")
	require.NotNil(t, debt)
	assert.Nil(t, debt.ExpectedImpact, "failed replays must not produce numbers")
}

func TestBuildRecommendationsFlagOutranksPersonaFocus(t *testing.T) {
	healthResult := &models.HealthAssessment{
		RiskFlags: []string{models.FlagHighDebtBurden},
		Metrics:   models.MetricsSet{DTI: 7.0},
		Persona:   models.Persona{FocusTag: health.FocusDebtPaydown},
	}
	prediction := &models.PredictionResult{Probability: 0.2, RiskCategory: models.RiskMedium}

	recs := BuildRecommendations(healthResult, prediction, &models.RootCauseReport{}, nil)

	count := 0
	for _, r := range recs {
		if r.Category == "Debt Management" {
			count++
		}
	}
	assert.Equal(t, 1, count, "the flag template covers the category; the focus template must not duplicate it")
	assert.Equal(t, "Accelerate debt paydown", findByCategory(recs, "Debt Management").Action)
}

func TestBuildRecommendationsPersonaFocusFillsGap(t *testing.T) {
	healthResult := &models.HealthAssessment{
		RiskFlags: []string{},
		Persona:   models.Persona{FocusTag: health.FocusIncomeGrowth},
	}
	prediction := &models.PredictionResult{Probability: 0.05, RiskCategory: models.RiskLow}

	recs := BuildRecommendations(healthResult, prediction, &models.RootCauseReport{}, nil)

	income := findByCategory(recs, "Income Growth")
	require.NotNil(t, income)
	assert.Equal(t, "Grow income to fund savings", income.Action)
}

func TestBuildRecommendationsPrimaryModelFactor(t *testing.T) {
	healthResult := &models.HealthAssessment{Persona: models.Persona{FocusTag: health.FocusGeneral}}
	prediction := &models.PredictionResult{Probability: 0.2, RiskCategory: models.RiskMedium}
	rootCause := &models.RootCauseReport{
		PrimaryFactors: []models.CausalFactor{
			{Name: "amount", Source: "model", PriorityScore: 400},
			{Name: "high_debt_burden", Source: "risk_flag", PriorityScore: 504},
		},
	}

	recs := BuildRecommendations(healthResult, prediction, rootCause, nil)

	loan := findByCategory(recs, "Loan Structure")
	require.NotNil(t, loan)
	assert.Equal(t, "Reduce the requested loan amount", loan.Action)
}

func TestBuildRecommendationsHighRiskAddsRestructure(t *testing.T) {
	healthResult := &models.HealthAssessment{Persona: models.Persona{FocusTag: health.FocusGeneral}}
	prediction := &models.PredictionResult{Probability: 0.62, RiskCategory: models.RiskHigh}
	scenarios := []models.ScenarioResult{
		{ScenarioName: "loan_reduction_25", ScoreDelta: 0, ProbabilityDelta: -0.08},
	}

	recs := BuildRecommendations(healthResult, prediction, &models.RootCauseReport{}, scenarios)

	loan := findByCategory(recs, "Loan Structure")
	require.NotNil(t, loan)
	assert.Equal(t, "critical", loan.Priority)
	assert.Contains(t, loan.Detail, "62.0%")
	require.NotNil(t, loan.ExpectedImpact)
	assert.InDelta(t, 0.08, loan.ExpectedImpact.ProbabilityDrop, 1e-9)
}

func TestBuildRecommendationsSortedByPriority(t *testing.T) {
	healthResult := &models.HealthAssessment{
		RiskFlags: []string{
			models.FlagInsufficientSavings,
			models.FlagNegativeCashflow,
			models.FlagHighDebtBurden,
		},
		Metrics: models.MetricsSet{DTI: 9.0, ExpenseRatio: 1.1, SavingsRatio: 0.2},
	}
	prediction := &models.PredictionResult{Probability: 0.3, RiskCategory: models.RiskMedium}

	recs := BuildRecommendations(healthResult, prediction, &models.RootCauseReport{}, nil)

	require.NotEmpty(t, recs)
	assert.Equal(t, "critical", recs[0].Priority)
	for i := 1; i < len(recs); i++ {
		assert.LessOrEqual(t, priorityRank[recs[i-1].Priority], priorityRank[recs[i].Priority])
	}
}

func TestBuildActionPlanPhases(t *testing.T) {
	recs := []models.Recommendation{
		{Action: "Restructure the loan", Priority: "critical", Timeframe: "immediate"},
		{Action: "Cut spending", Priority: "high", Timeframe: "3-6 months"},
		{Action: "Build savings", Priority: "medium", Timeframe: "12-18 months"},
		{Action: "Pay down debt", Priority: "high", Timeframe: "6-12 months"},
	}

	plan := BuildActionPlan(recs)

	assert.Equal(t, []string{"Restructure the loan"}, plan.Immediate)
	assert.Equal(t, []string{"Cut spending"}, plan.ShortTerm)
	assert.ElementsMatch(t, []string{"Build savings", "Pay down debt"}, plan.LongTerm)
	assert.ElementsMatch(t, []string{"Restructure the loan", "Cut spending"}, plan.QuickWins)
}
