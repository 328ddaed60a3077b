package insight

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danarta/loan-decision-service/internal/features"
	"github.com/danarta/loan-decision-service/internal/health"
	"github.com/danarta/loan-decision-service/internal/model"
	"github.com/danarta/loan-decision-service/internal/models"
	"github.com/danarta/loan-decision-service/internal/pipeline"
	"github.com/danarta/loan-decision-service/internal/policy"
)

const scenarioArtifactXML = `<?xml version="1.0" encoding="UTF-8"?>
<scorecard model="gradient-scorecard" version="2.0.0" schema="v3">
  <intercept>-1.80</intercept>
  <terms>
    <numeric feature="dti" weight="0.30" mean="3.0"/>
    <numeric feature="expense_ratio" weight="1.50" mean="0.70"/>
    <numeric feature="savings_ratio" weight="-0.15" mean="3.0"/>
    <numeric feature="disposable_ratio" weight="-2.00" mean="0.15"/>
    <numeric feature="payment_burden" weight="0.60" mean="0.50"/>
  </terms>
</scorecard>`

var testClock = time.Date(2024, 6, 14, 10, 0, 0, 0, time.UTC)

func testPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	artifact, err := model.ParseArtifact([]byte(scenarioArtifactXML))
	require.NoError(t, err)
	tables := features.NewTables(map[string]map[string]float64{}, 0.08)
	return pipeline.New(health.NewAnalyzer(), features.NewAssembler(tables), model.NewPredictor(artifact))
}

func testInputs() (models.FinancialProfile, models.LoanRequest) {
	profile := models.FinancialProfile{
		Income:           10_000_000,
		FixedExpenses:    4_000_000,
		VariableExpenses: 2_500_000,
		Savings:          15_000_000,
		Debt:             40_000_000,
	}
	req := models.LoanRequest{
		Amount:           30_000_000,
		DurationDays:     180,
		LoanType:         "Modal Usaha",
		Province:         "DKI Jakarta",
		BorrowerStatus:   "Individual",
		Sector:           "Perdagangan",
		Education:        "S1",
		CollateralType:   "BPKB Motor",
		DisbursementDate: "2024-03-15",
	}
	return profile, req
}

func runBaseline(t *testing.T, pipe *pipeline.Pipeline) *pipeline.Outcome {
	t.Helper()
	profile, req := testInputs()
	outcome, err := pipe.Run(profile, req, testClock)
	require.NoError(t, err)
	return outcome
}

func TestSimulateNoOpScenarioMatchesBaseline(t *testing.T) {
	pipe := testPipeline(t)
	profile, req := testInputs()
	baseline := runBaseline(t, pipe)
	sim := NewSimulator(pipe, policy.Default())

	spec := policy.ScenarioSpec{
		Name:        "no_op",
		Description: "Change nothing",
		Deltas:      []policy.Delta{{Target: "income", Op: "scale", Value: 1.0}},
	}
	result := sim.Simulate(profile, req, baseline, spec, testClock)

	require.False(t, result.Failed())
	assert.Equal(t, 0, result.ScoreDelta)
	assert.Zero(t, result.ProbabilityDelta)
	assert.Equal(t, baseline.Prediction.Probability, result.Prediction.Probability)
	assert.Equal(t, baseline.Health.Score, result.Health.Score)
	assert.Equal(t, baseline.Health.Persona.Name, result.Health.Persona.Name)
}

func TestSimulateDebtReductionImprovesOutlook(t *testing.T) {
	pipe := testPipeline(t)
	profile, req := testInputs()
	baseline := runBaseline(t, pipe)
	sim := NewSimulator(pipe, policy.Default())

	spec, ok := policy.Default().Scenario("debt_reduction_30")
	require.True(t, ok)
	result := sim.Simulate(profile, req, baseline, spec, testClock)

	require.False(t, result.Failed())
	assert.Less(t, result.Health.Metrics.DTI, baseline.Health.Metrics.DTI)
	assert.Less(t, result.Prediction.Probability, baseline.Prediction.Probability)
	assert.GreaterOrEqual(t, result.ScoreDelta, 0)
	assert.Positive(t, result.ImpactScore)
}

func TestSimulateLeavesBaselineInputsUntouched(t *testing.T) {
	pipe := testPipeline(t)
	profile, req := testInputs()
	repayment := 34_500_000.0
	req.TotalRepayment = &repayment
	baseline, err := pipe.Run(profile, req, testClock)
	require.NoError(t, err)
	sim := NewSimulator(pipe, policy.Default())

	spec := policy.ScenarioSpec{
		Name:   "everything",
		Deltas: []policy.Delta{{Target: "debt", Op: "scale", Value: 0.5}, {Target: "amount", Op: "add", Value: 1_000_000}},
	}
	sim.Simulate(profile, req, baseline, spec, testClock)

	assert.Equal(t, 40_000_000.0, profile.Debt)
	assert.Equal(t, 30_000_000.0, req.Amount)
	assert.Equal(t, 34_500_000.0, *req.TotalRepayment)
}

func TestSimulateFailureIsIsolated(t *testing.T) {
	pipe := testPipeline(t)
	profile, req := testInputs()
	baseline := runBaseline(t, pipe)

	pol := &policy.Policy{
		RootCause: policy.Default().RootCause,
		Scenarios: []policy.ScenarioSpec{
			{Name: "break_income", Deltas: []policy.Delta{{Target: "income", Op: "scale", Value: 0}}},
			{Name: "bad_target", Deltas: []policy.Delta{{Target: "mortgage", Op: "scale", Value: 0.5}}},
			{Name: "good", Deltas: []policy.Delta{{Target: "debt", Op: "scale", Value: 0.7}}},
		},
	}
	sim := NewSimulator(pipe, pol)

	results, err := sim.RunAll(context.Background(), profile, req, baseline, testClock)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Failed(), "zeroed income must fail profile validation")
	assert.True(t, results[1].Failed(), "unknown target must fail")
	assert.Contains(t, results[1].Error, "mortgage")
	assert.False(t, results[2].Failed())
}

func TestRunAllCatalogOrderAndSynergy(t *testing.T) {
	pipe := testPipeline(t)
	profile, req := testInputs()
	baseline := runBaseline(t, pipe)
	pol := policy.Default()
	sim := NewSimulator(pipe, pol)

	results, err := sim.RunAll(context.Background(), profile, req, baseline, testClock)
	require.NoError(t, err)
	require.Len(t, results, len(pol.Scenarios))

	byName := map[string]models.ScenarioResult{}
	for i, r := range results {
		assert.Equal(t, pol.Scenarios[i].Name, r.ScenarioName)
		byName[r.ScenarioName] = r
	}

	combined := byName["debt_and_expense_reduction"]
	require.False(t, combined.Failed())
	require.NotNil(t, combined.Synergy)

	debt := byName["debt_reduction_30"]
	expense := byName["expense_reduction_15"]
	assert.InDelta(t,
		float64(combined.ScoreDelta-debt.ScoreDelta-expense.ScoreDelta),
		combined.Synergy.ScoreSynergy, 1e-9)
	assert.InDelta(t,
		-(combined.ProbabilityDelta - debt.ProbabilityDelta - expense.ProbabilityDelta),
		combined.Synergy.ProbabilityDrop, 1e-9)
	assert.ElementsMatch(t, []string{"debt_reduction_30", "expense_reduction_15"}, combined.Synergy.Components)

	for _, r := range results {
		if r.ScenarioName == "debt_and_expense_reduction" {
			continue
		}
		assert.Nil(t, r.Synergy)
	}
}

func TestRunAllIsReproducible(t *testing.T) {
	pipe := testPipeline(t)
	profile, req := testInputs()
	baseline := runBaseline(t, pipe)
	sim := NewSimulator(pipe, policy.Default())

	first, err := sim.RunAll(context.Background(), profile, req, baseline, testClock)
	require.NoError(t, err)
	second, err := sim.RunAll(context.Background(), profile, req, baseline, testClock)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ScoreDelta, second[i].ScoreDelta)
		assert.Equal(t, first[i].ProbabilityDelta, second[i].ProbabilityDelta)
		assert.Equal(t, first[i].ImpactScore, second[i].ImpactScore)
	}
}

func TestRunAllHonorsContextCancellation(t *testing.T) {
	pipe := testPipeline(t)
	profile, req := testInputs()
	baseline := runBaseline(t, pipe)
	sim := NewSimulator(pipe, policy.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.RunAll(ctx, profile, req, baseline, testClock)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBestScenario(t *testing.T) {
	results := []models.ScenarioResult{
		{ScenarioName: "a", ImpactScore: 1.5},
		{ScenarioName: "broken", ImpactScore: 99, Error: "boom"},
		{ScenarioName: "b", ImpactScore: 3.2},
	}
	best := BestScenario(results)
	require.NotNil(t, best)
	assert.Equal(t, "b", best.ScenarioName)

	assert.Nil(t, BestScenario([]models.ScenarioResult{{ScenarioName: "x", Error: "boom"}}))
	assert.Nil(t, BestScenario(nil))
}
