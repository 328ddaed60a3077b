package models

// HealthStatus is the overall financial health verdict.
type HealthStatus string

const (
	StatusHealthy HealthStatus = "Healthy"
	StatusWarning HealthStatus = "Warning"
	StatusAtRisk  HealthStatus = "At Risk"
)

// Risk flags raised independently of the composite score.
const (
	FlagHighDebtBurden      = "high_debt_burden"
	FlagExcessiveExpenses   = "excessive_expenses"
	FlagInsufficientSavings = "insufficient_savings"
	FlagNegativeCashflow    = "negative_cashflow"
)

// Persona is a descriptive behavioral category, not a risk label.
type Persona struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Strengths   []string `json:"strengths"`
	FocusAreas  []string `json:"focus_areas"`
	FocusTag    string   `json:"focus_tag"`
}

// HealthAssessment is the full output of the health rules engine.
type HealthAssessment struct {
	Score           int               `json:"score"`
	Status          HealthStatus      `json:"status"`
	Metrics         MetricsSet        `json:"metrics"`
	ComponentScores map[string]int    `json:"component_scores"`
	Explanations    map[string]string `json:"explanations"`
	RiskFlags       []string          `json:"risk_flags"`
	Persona         Persona           `json:"persona"`
}

// HasFlag reports whether the given risk flag is active.
func (h *HealthAssessment) HasFlag(flag string) bool {
	for _, f := range h.RiskFlags {
		if f == flag {
			return true
		}
	}
	return false
}
