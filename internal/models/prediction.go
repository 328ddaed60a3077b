package models

// RiskCategory buckets the default probability.
type RiskCategory string

const (
	RiskLow    RiskCategory = "low"
	RiskMedium RiskCategory = "medium"
	RiskHigh   RiskCategory = "high"
)

// Confidence expresses how far the probability sits from the decision boundary.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// PredictionResult is the output of the prediction port.
type PredictionResult struct {
	Probability  float64      `json:"probability"`
	Label        int          `json:"label"`
	RiskCategory RiskCategory `json:"risk_category"`
	Confidence   Confidence   `json:"confidence"`
	ModelVersion string       `json:"model_version"`
}

// FeatureContribution is one feature's signed share of the prediction.
type FeatureContribution struct {
	Feature      string  `json:"feature"`
	Value        string  `json:"value"`
	Contribution float64 `json:"contribution"`
}

// AttributionReport is an additive decomposition of a prediction:
// BaselineProbability plus the sum of all contributions equals the
// predicted probability.
type AttributionReport struct {
	BaselineProbability  float64               `json:"baseline_probability"`
	Contributions        []FeatureContribution `json:"contributions"`
	TopRiskFactors       []FeatureContribution `json:"top_risk_factors"`
	TopProtectiveFactors []FeatureContribution `json:"top_protective_factors"`
}
