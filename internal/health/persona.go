package health

import "github.com/danarta/loan-decision-service/internal/models"

// Recommendation focus tags attached to personas, consumed by the
// recommendation engine.
const (
	FocusInvestment     = "investment_optimization"
	FocusGradualSavings = "gradual_savings"
	FocusExpenseReview  = "expense_review"
	FocusDebtPaydown    = "debt_paydown"
	FocusCashflowRescue = "cashflow_rescue"
	FocusEmergencyFund  = "emergency_fund"
	FocusIncomeGrowth   = "income_growth"
	FocusExpenseCut     = "expense_cut"
	FocusGeneral        = "general"
)

type personaDef struct {
	name        string
	match       func(m models.MetricsSet) bool
	description string
	strengths   []string
	focusAreas  []string
	focusTag    string
}

// The ordered persona taxonomy. Evaluation is top to bottom and the first
// matching predicate wins; the final entry always matches, so exactly one
// persona is assigned per invocation.
var personas = []personaDef{
	{
		name: "Conservative Saver",
		match: func(m models.MetricsSet) bool {
			return m.DTI < 1.0 && m.ExpenseRatio < 0.60 && m.SavingsRatio >= 6.0
		},
		description: "Very conservative financial pattern with low debt, efficient spending, and a strong emergency fund.",
		strengths:   []string{"Disciplined saving", "Low debt", "Controlled spending"},
		focusAreas:  []string{"Consider investing for better returns", "Maintain current habits"},
		focusTag:    FocusInvestment,
	},
	{
		name: "Stable & Balanced",
		match: func(m models.MetricsSet) bool {
			return m.DTI < 3.0 && m.ExpenseRatio < 0.75 && m.SavingsRatio >= 3.0 && m.DisposableRatio >= 0.15
		},
		description: "Balanced financial profile with controlled debt, moderate spending, and adequate savings.",
		strengths:   []string{"Balanced finances", "Adequate savings", "Healthy cashflow"},
		focusAreas:  []string{"Grow the savings ratio gradually", "Monitor debt levels"},
		focusTag:    FocusGradualSavings,
	},
	{
		name: "High Earner - High Spender",
		match: func(m models.MetricsSet) bool {
			return m.DTI < 2.0 && m.ExpenseRatio >= 0.70 && m.SavingsRatio >= 2.0
		},
		description: "High income with a high spending pattern, while still maintaining savings.",
		strengths:   []string{"High income", "Able to maintain savings"},
		focusAreas:  []string{"Review spending efficiency", "Optimize the savings rate"},
		focusTag:    FocusExpenseReview,
	},
	{
		name: "Debt Pressured",
		match: func(m models.MetricsSet) bool {
			return m.DTI >= 6.0
		},
		description: "Debt burden is high relative to income; paying debt down should be the priority.",
		strengths:   []string{"Awareness of the financial situation"},
		focusAreas:  []string{"Priority: pay down debt", "Re-evaluate any new debt commitments"},
		focusTag:    FocusDebtPaydown,
	},
	{
		name: "Cashflow Challenged",
		match: func(m models.MetricsSet) bool {
			return m.DisposableRatio <= 0.05
		},
		description: "Facing cashflow pressure with very limited or negative disposable income.",
		strengths:   []string{"Awareness of the challenge"},
		focusAreas:  []string{"Urgent: raise income or cut expenses", "Review all spending"},
		focusTag:    FocusCashflowRescue,
	},
	{
		name: "Building Financial Foundation",
		match: func(m models.MetricsSet) bool {
			return m.SavingsRatio < 3.0 && m.ExpenseRatio < 0.75 && m.DisposableRatio >= 0.10
		},
		description: "Building a financial foundation with a focus on accumulating savings.",
		strengths:   []string{"Controlled spending", "Positive cashflow"},
		focusAreas:  []string{"Accelerate the emergency fund build-up", "Keep spending disciplined"},
		focusTag:    FocusEmergencyFund,
	},
	{
		name: "Frugal & Low Savings",
		match: func(m models.MetricsSet) bool {
			return m.ExpenseRatio < 0.50 && m.SavingsRatio < 2.0
		},
		description: "Frugal lifestyle but savings are not yet adequate.",
		strengths:   []string{"Frugal lifestyle", "Low spending"},
		focusAreas:  []string{"Look for income growth opportunities", "Direct the surplus to savings"},
		focusTag:    FocusIncomeGrowth,
	},
	{
		name: "Needs Expense Optimization",
		match: func(m models.MetricsSet) bool {
			return m.ExpenseRatio >= 0.85 && m.DTI < 6.0
		},
		description: "Spending needs optimization to improve financial health.",
		strengths:   []string{"Debt is still under control"},
		focusAreas:  []string{"Review and cut non-essential spending", "Adopt a strict budget"},
		focusTag:    FocusExpenseCut,
	},
	{
		name:        "General Financial Profile",
		match:       func(models.MetricsSet) bool { return true },
		description: "General financial profile with no single dominant pattern.",
		strengths:   []string{"Neutral financial condition"},
		focusAreas:  []string{"Identify specific areas to improve", "Set clear financial goals"},
		focusTag:    FocusGeneral,
	},
}

// ClassifyPersona assigns the financial persona for the given metrics.
func ClassifyPersona(m models.MetricsSet) models.Persona {
	for _, def := range personas {
		if def.match(m) {
			return models.Persona{
				Name:        def.name,
				Description: def.description,
				Strengths:   def.strengths,
				FocusAreas:  def.focusAreas,
				FocusTag:    def.focusTag,
			}
		}
	}
	// Unreachable: the final entry always matches.
	return models.Persona{}
}
