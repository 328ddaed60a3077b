package models

import "time"

// CausalFactor is a risk flag or attribution-ranked feature judged to
// contribute to the current risk level.
type CausalFactor struct {
	Name          string  `json:"name"`
	Source        string  `json:"source"` // "risk_flag" or "model"
	Severity      float64 `json:"severity"`
	Impact        float64 `json:"impact"`
	Actionability float64 `json:"actionability"`
	PriorityScore float64 `json:"priority_score"`
	Explanation   string  `json:"explanation"`
}

// RootCauseReport partitions causal factors by priority and actionability.
type RootCauseReport struct {
	PrimaryFactors       []CausalFactor `json:"primary_factors"`
	SecondaryFactors     []CausalFactor `json:"secondary_factors"`
	NonActionableFactors []CausalFactor `json:"non_actionable_factors"`
}

// SynergyEffect is the portion of a combined scenario's effect not explained
// by summing its component scenarios' individual effects.
type SynergyEffect struct {
	Components      []string `json:"components"`
	ScoreSynergy    float64  `json:"score_synergy"`
	ProbabilityDrop float64  `json:"probability_drop_synergy"`
}

// ScenarioResult is the outcome of replaying the pipeline under one scenario.
type ScenarioResult struct {
	ScenarioName     string            `json:"scenario_name"`
	Description      string            `json:"description"`
	Health           *HealthAssessment `json:"health,omitempty"`
	Prediction       *PredictionResult `json:"prediction,omitempty"`
	ScoreDelta       int               `json:"score_delta"`
	ProbabilityDelta float64           `json:"probability_delta"`
	ImpactScore      float64           `json:"impact_score"`
	Synergy          *SynergyEffect    `json:"synergy,omitempty"`
	Effort           string            `json:"effort"`
	Timeline         string            `json:"timeline"`
	Error            string            `json:"error,omitempty"`
}

// Failed reports whether the scenario could not be replayed.
func (r *ScenarioResult) Failed() bool { return r.Error != "" }

// ExpectedImpact quantifies a recommendation from its backing scenario.
type ExpectedImpact struct {
	Scenario        string  `json:"scenario"`
	ScoreGain       int     `json:"score_gain"`
	ProbabilityDrop float64 `json:"probability_drop"`
}

// Recommendation is one prioritized, measurable action.
type Recommendation struct {
	Category       string          `json:"category"`
	Priority       string          `json:"priority"` // critical/high/medium/low
	Action         string          `json:"action"`
	Detail         string          `json:"detail"`
	Steps          []string        `json:"steps"`
	ExpectedImpact *ExpectedImpact `json:"expected_impact,omitempty"`
	Timeframe      string          `json:"timeframe"`
}

// ActionPlan groups recommendations into execution phases.
type ActionPlan struct {
	QuickWins []string `json:"quick_wins"`
	Immediate []string `json:"immediate"`
	ShortTerm []string `json:"short_term"`
	LongTerm  []string `json:"long_term"`
}

// DecisionSummary is the executive view of the assessment.
type DecisionSummary struct {
	RecommendationTier      string   `json:"recommendation_tier"`
	Reasoning               string   `json:"reasoning"`
	RiskProfile             string   `json:"risk_profile"`
	KeyInsights             []string `json:"key_insights"`
	TopActions              []string `json:"top_actions"`
	RequiresImmediateAction bool     `json:"requires_immediate_action"`
}

// DecisionReport aggregates the full pipeline output for one request.
type DecisionReport struct {
	ID               string             `json:"id"`
	GeneratedAt      time.Time          `json:"generated_at"`
	HealthAssessment *HealthAssessment  `json:"health_assessment"`
	LoanPrediction   *PredictionResult  `json:"loan_prediction"`
	Attribution      *AttributionReport `json:"attribution"`
	RootCause        *RootCauseReport   `json:"root_cause"`
	Scenarios        []ScenarioResult   `json:"scenarios"`
	Recommendations  []Recommendation   `json:"recommendations"`
	ActionPlan       ActionPlan         `json:"action_plan"`
	DecisionSummary  DecisionSummary    `json:"decision_summary"`
}
