package insight

import (
	"fmt"
	"sort"
	"strings"

	"github.com/danarta/loan-decision-service/internal/health"
	"github.com/danarta/loan-decision-service/internal/models"
)

// Recommendation priorities, best-first sort order.
var priorityRank = map[string]int{
	"critical": 0,
	"high":     1,
	"medium":   2,
	"low":      3,
}

// template is one recommendation blueprint. ScenarioName binds the template
// to the catalog scenario whose replay quantifies its expected impact.
type template struct {
	Category     string
	Priority     string
	Action       string
	Detail       string
	Steps        []string
	ScenarioName string
	Timeframe    string
}

// Templates keyed by risk flag.
var flagTemplates = map[string]template{
	models.FlagHighDebtBurden: {
		Category: "Debt Management",
		Priority: "high",
		Action:   "Accelerate debt paydown",
		Detail:   "Current DTI of %.2fx is above the 3.0x comfort band",
		Steps: []string{
			"Pay down the highest-interest debt first",
			"Consider debt consolidation",
			"Avoid taking on new debt",
			"Target at least a 30% reduction of outstanding debt",
		},
		ScenarioName: "debt_reduction_30",
		Timeframe:    "6-12 months",
	},
	models.FlagExcessiveExpenses: {
		Category: "Expense Optimization",
		Priority: "high",
		Action:   "Cut non-essential spending",
		Detail:   "Expense ratio of %.0f%% leaves too little room for installments",
		Steps: []string{
			"Review and categorize all spending",
			"Identify the three largest expense areas",
			"Target a 15% cut across fixed and variable expenses",
			"Run a strict budget for the first three months",
		},
		ScenarioName: "expense_reduction_15",
		Timeframe:    "3-6 months",
	},
	models.FlagInsufficientSavings: {
		Category: "Savings Building",
		Priority: "medium",
		Action:   "Build the emergency fund",
		Detail:   "Savings cover %.1f months of income; the target is 3-6 months",
		Steps: []string{
			"Set an automatic transfer of 10-15% of income to savings",
			"Keep the emergency fund in a separate account",
			"Use windfalls to accelerate the build-up",
		},
		ScenarioName: "savings_boost_50",
		Timeframe:    "12-18 months",
	},
	models.FlagNegativeCashflow: {
		Category: "Cashflow Management",
		Priority: "critical",
		Action:   "Fix the negative cashflow immediately",
		Detail:   "Spending exceeds income; this is not sustainable",
		Steps: []string{
			"Stop all non-essential spending now",
			"Look for additional income sources",
			"Renegotiate fixed costs such as rent and utilities",
			"Consider a temporary lifestyle downgrade",
		},
		ScenarioName: "expense_reduction_15",
		Timeframe:    "immediate",
	},
}

// Templates keyed by persona focus tag. Flags take precedence; a focus
// template is only added when its category is not already covered.
var focusTemplates = map[string]template{
	health.FocusDebtPaydown: {
		Category:     "Debt Management",
		Priority:     "high",
		Action:       "Prioritize debt reduction before new commitments",
		Detail:       "The financial pattern is dominated by debt pressure",
		Steps:        []string{"Freeze new borrowing", "Direct surplus cashflow at the principal"},
		ScenarioName: "debt_reduction_30",
		Timeframe:    "6-12 months",
	},
	health.FocusCashflowRescue: {
		Category:     "Cashflow Management",
		Priority:     "high",
		Action:       "Restore a positive cashflow margin",
		Detail:       "Disposable income is too thin to absorb an installment",
		Steps:        []string{"Cut variable spending", "Raise income where possible"},
		ScenarioName: "expense_reduction_15",
		Timeframe:    "1-3 months",
	},
	health.FocusEmergencyFund: {
		Category:     "Savings Building",
		Priority:     "medium",
		Action:       "Keep building the financial foundation",
		Detail:       "Spending is disciplined; the gap is the emergency fund",
		Steps:        []string{"Automate monthly saving", "Protect the fund from casual withdrawals"},
		ScenarioName: "savings_boost_50",
		Timeframe:    "12-18 months",
	},
	health.FocusIncomeGrowth: {
		Category:     "Income Growth",
		Priority:     "medium",
		Action:       "Grow income to fund savings",
		Detail:       "Spending is already lean; the constraint is income",
		Steps:        []string{"Pursue additional income sources", "Direct all new surplus to savings"},
		ScenarioName: "income_increase_20",
		Timeframe:    "6-12 months",
	},
	health.FocusExpenseCut: {
		Category:     "Expense Optimization",
		Priority:     "high",
		Action:       "Adopt a strict budget",
		Detail:       "Spending dominates the financial profile",
		Steps:        []string{"Cap variable spending per category", "Review every recurring cost"},
		ScenarioName: "expense_reduction_15",
		Timeframe:    "3-6 months",
	},
	health.FocusExpenseReview: {
		Category:     "Expense Optimization",
		Priority:     "medium",
		Action:       "Review spending efficiency",
		Detail:       "Income supports the lifestyle, but the savings rate can improve",
		Steps:        []string{"Audit subscriptions and discretionary categories", "Raise the savings rate gradually"},
		ScenarioName: "expense_reduction_15",
		Timeframe:    "3-6 months",
	},
}

// Templates keyed by primary root-cause model features not already covered
// by a flag template.
var featureTemplates = map[string]template{
	"amount": {
		Category:     "Loan Structure",
		Priority:     "high",
		Action:       "Reduce the requested loan amount",
		Detail:       "The loan amount is a primary driver of the default risk",
		Steps:        []string{"Re-scope the financing need", "Request roughly 25% less"},
		ScenarioName: "loan_reduction_25",
		Timeframe:    "immediate",
	},
	"duration_days": {
		Category:     "Loan Structure",
		Priority:     "high",
		Action:       "Adjust the loan tenor",
		Detail:       "The repayment schedule pressures the daily burden",
		Steps:        []string{"Extend the tenor to lower the per-period burden"},
		ScenarioName: "duration_extend_30",
		Timeframe:    "immediate",
	},
	"payment_burden": {
		Category:     "Loan Structure",
		Priority:     "high",
		Action:       "Lower the daily payment burden",
		Detail:       "Daily payments are high relative to daily income",
		Steps:        []string{"Extend the tenor or reduce the amount"},
		ScenarioName: "duration_extend_30",
		Timeframe:    "immediate",
	},
	"daily_payment": {
		Category:     "Loan Structure",
		Priority:     "medium",
		Action:       "Smooth the repayment schedule",
		Detail:       "The daily payment is a notable risk driver",
		Steps:        []string{"Extend the tenor to spread repayments"},
		ScenarioName: "duration_extend_30",
		Timeframe:    "immediate",
	},
	"loan_intensity": {
		Category:     "Loan Structure",
		Priority:     "medium",
		Action:       "Rebalance amount against duration",
		Detail:       "The amount borrowed per day of tenor is high",
		Steps:        []string{"Reduce the amount or extend the tenor"},
		ScenarioName: "loan_reduction_25",
		Timeframe:    "immediate",
	},
}

func renderDetail(tpl template, flag string, m models.MetricsSet) string {
	switch flag {
	case models.FlagHighDebtBurden:
		return fmt.Sprintf(tpl.Detail, m.DTI)
	case models.FlagExcessiveExpenses:
		return fmt.Sprintf(tpl.Detail, m.ExpenseRatio*100)
	case models.FlagInsufficientSavings:
		return fmt.Sprintf(tpl.Detail, m.SavingsRatio)
	default:
		return tpl.Detail
	}
}

// materialize turns a template into a recommendation, pulling the expected
// impact from the scenario that actually simulated the action. A failed or
// missing scenario leaves the impact unset rather than inventing numbers.
func materialize(tpl template, detail string, scenarios []models.ScenarioResult) models.Recommendation {
	rec := models.Recommendation{
		Category:  tpl.Category,
		Priority:  tpl.Priority,
		Action:    tpl.Action,
		Detail:    detail,
		Steps:     tpl.Steps,
		Timeframe: tpl.Timeframe,
	}
	for i := range scenarios {
		r := &scenarios[i]
		if r.ScenarioName != tpl.ScenarioName || r.Failed() {
			continue
		}
		rec.ExpectedImpact = &models.ExpectedImpact{
			Scenario:        r.ScenarioName,
			ScoreGain:       r.ScoreDelta,
			ProbabilityDrop: -r.ProbabilityDelta,
		}
		break
	}
	return rec
}

// BuildRecommendations maps active risk flags, the persona focus, and
// primary root-cause factors onto recommendation templates, each quantified
// by its matching scenario replay.
func BuildRecommendations(
	healthResult *models.HealthAssessment,
	prediction *models.PredictionResult,
	rootCause *models.RootCauseReport,
	scenarios []models.ScenarioResult,
) []models.Recommendation {
	recs := make([]models.Recommendation, 0, 8)
	covered := map[string]bool{}

	add := func(tpl template, detail string) {
		key := tpl.Category + "|" + tpl.Action
		if covered[key] || covered[tpl.Category] {
			return
		}
		covered[key] = true
		covered[tpl.Category] = true
		recs = append(recs, materialize(tpl, detail, scenarios))
	}

	for _, flag := range healthResult.RiskFlags {
		if tpl, ok := flagTemplates[flag]; ok {
			add(tpl, renderDetail(tpl, flag, healthResult.Metrics))
		}
	}

	if tpl, ok := focusTemplates[healthResult.Persona.FocusTag]; ok {
		add(tpl, tpl.Detail)
	}

	for _, factor := range rootCause.PrimaryFactors {
		if factor.Source != sourceModel {
			continue
		}
		if tpl, ok := featureTemplates[factor.Name]; ok {
			add(tpl, tpl.Detail)
		}
	}

	// High default risk always earns a loan-structure review, even when no
	// single factor crossed the primary threshold.
	if prediction.RiskCategory == models.RiskHigh {
		add(template{
			Category: "Loan Structure",
			Priority: "critical",
			Action:   "Restructure the loan before proceeding",
			Detail: fmt.Sprintf("Default probability of %.1f%% is in the high-risk band",
				prediction.Probability*100),
			Steps: []string{
				"Consider postponing the application",
				"Reduce the requested amount by 25% or more",
				"Extend the tenor to lower the per-period burden",
			},
			ScenarioName: "loan_reduction_25",
			Timeframe:    "immediate",
		}, fmt.Sprintf("Default probability of %.1f%% is in the high-risk band", prediction.Probability*100))
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank[recs[i].Priority] < priorityRank[recs[j].Priority]
	})
	return recs
}

// BuildActionPlan phases recommendations by timeframe and pulls out quick
// wins: high-priority actions achievable in the near term.
func BuildActionPlan(recs []models.Recommendation) models.ActionPlan {
	plan := models.ActionPlan{
		QuickWins: []string{},
		Immediate: []string{},
		ShortTerm: []string{},
		LongTerm:  []string{},
	}
	for _, r := range recs {
		tf := strings.ToLower(r.Timeframe)
		switch {
		case strings.Contains(tf, "immediate"):
			plan.Immediate = append(plan.Immediate, r.Action)
		case strings.Contains(tf, "1-3") || strings.Contains(tf, "3-6"):
			plan.ShortTerm = append(plan.ShortTerm, r.Action)
		default:
			plan.LongTerm = append(plan.LongTerm, r.Action)
		}
		if (r.Priority == "critical" || r.Priority == "high") &&
			(strings.Contains(tf, "immediate") || strings.Contains(tf, "1-3") || strings.Contains(tf, "3-6")) {
			plan.QuickWins = append(plan.QuickWins, r.Action)
		}
	}
	return plan
}
