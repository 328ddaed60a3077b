package health

import (
	"math"

	"github.com/danarta/loan-decision-service/internal/models"
)

// Band levels, ordered best to worst.
const (
	levelExcellent = "excellent"
	levelGood      = "good"
	levelWarning   = "warning"
	levelAtRisk    = "at_risk"
	levelCritical  = "critical"
)

// Band level to score mapping, fixed across all metrics.
var bandScores = map[string]int{
	levelExcellent: 100,
	levelGood:      80,
	levelWarning:   50,
	levelAtRisk:    25,
	levelCritical:  0,
}

// Composite weights per metric component.
const (
	weightDTI        = 0.30
	weightExpense    = 0.25
	weightSavings    = 0.25
	weightDisposable = 0.20
)

// Status cutoffs on the composite score.
const (
	healthyCutoff = 75
	warningCutoff = 50
)

// RuleResult is the rules engine output before persona assignment.
type RuleResult struct {
	Score           int
	Status          models.HealthStatus
	ComponentScores map[string]int
	Explanations    map[string]string
	RiskFlags       []string
}

func assessDTI(dti float64) (string, string) {
	switch {
	case dti <= 1.0:
		return levelExcellent, "Debt burden is very low (under 1x monthly income)"
	case dti <= 3.0:
		return levelGood, "Debt burden is under control (1-3x monthly income)"
	case dti <= 6.0:
		return levelWarning, "Debt burden is elevated (3-6x monthly income)"
	case dti <= 12.0:
		return levelAtRisk, "Debt burden is very high (6-12x monthly income)"
	default:
		return levelCritical, "Debt burden is critical (over 12x monthly income)"
	}
}

func assessExpenseRatio(ratio float64) (string, string) {
	switch {
	case ratio <= 0.50:
		return levelExcellent, "Spending is very efficient (under 50% of income)"
	case ratio <= 0.70:
		return levelGood, "Spending is under control (50-70% of income)"
	case ratio <= 0.85:
		return levelWarning, "Spending is high (70-85% of income)"
	case ratio < 1.0:
		return levelAtRisk, "Spending is very high (85-100% of income)"
	default:
		return levelCritical, "Spending exceeds income"
	}
}

func assessSavingsRatio(ratio float64) (string, string) {
	switch {
	case ratio >= 6.0:
		return levelExcellent, "Emergency fund is very strong (6+ months of income)"
	case ratio >= 3.0:
		return levelGood, "Emergency fund is adequate (3-6 months of income)"
	case ratio >= 1.0:
		return levelWarning, "Emergency fund is minimal (1-3 months of income)"
	case ratio > 0:
		return levelAtRisk, "Emergency fund is very limited (under 1 month of income)"
	default:
		return levelCritical, "No emergency fund"
	}
}

func assessDisposableRatio(ratio float64) (string, string) {
	switch {
	case ratio >= 0.30:
		return levelExcellent, "Cashflow is very healthy (30%+ of income free)"
	case ratio >= 0.15:
		return levelGood, "Cashflow is healthy (15-30% of income free)"
	case ratio >= 0.05:
		return levelWarning, "Cashflow is tight (5-15% of income free)"
	case ratio > 0:
		return levelAtRisk, "Cashflow is very tight (under 5% of income free)"
	default:
		return levelCritical, "Cashflow is negative (spending exceeds income)"
	}
}

func flagged(level string) bool {
	return level == levelAtRisk || level == levelCritical
}

// EvaluateRules assesses each metric against its threshold bands and
// combines the band scores into the weighted composite health score.
// Risk flags are raised independently of the composite.
func EvaluateRules(m models.MetricsSet) RuleResult {
	dtiLevel, dtiExpl := assessDTI(m.DTI)
	expenseLevel, expenseExpl := assessExpenseRatio(m.ExpenseRatio)
	savingsLevel, savingsExpl := assessSavingsRatio(m.SavingsRatio)
	cashflowLevel, cashflowExpl := assessDisposableRatio(m.DisposableRatio)

	dtiScore := bandScores[dtiLevel]
	expenseScore := bandScores[expenseLevel]
	savingsScore := bandScores[savingsLevel]
	cashflowScore := bandScores[cashflowLevel]

	composite := float64(dtiScore)*weightDTI +
		float64(expenseScore)*weightExpense +
		float64(savingsScore)*weightSavings +
		float64(cashflowScore)*weightDisposable
	score := int(math.Round(composite))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	status := models.StatusAtRisk
	if score >= healthyCutoff {
		status = models.StatusHealthy
	} else if score >= warningCutoff {
		status = models.StatusWarning
	}

	flags := make([]string, 0, 4)
	if flagged(dtiLevel) {
		flags = append(flags, models.FlagHighDebtBurden)
	}
	if flagged(expenseLevel) {
		flags = append(flags, models.FlagExcessiveExpenses)
	}
	if flagged(savingsLevel) {
		flags = append(flags, models.FlagInsufficientSavings)
	}
	if flagged(cashflowLevel) {
		flags = append(flags, models.FlagNegativeCashflow)
	}

	return RuleResult{
		Score:  score,
		Status: status,
		ComponentScores: map[string]int{
			"debt_to_income":     dtiScore,
			"expense_efficiency": expenseScore,
			"savings_adequacy":   savingsScore,
			"cashflow_health":    cashflowScore,
		},
		Explanations: map[string]string{
			"debt_to_income":     dtiExpl,
			"expense_efficiency": expenseExpl,
			"savings_adequacy":   savingsExpl,
			"cashflow_health":    cashflowExpl,
		},
		RiskFlags: flags,
	}
}
