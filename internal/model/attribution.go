package model

import (
	"sort"

	"github.com/danarta/loan-decision-service/internal/features"
	"github.com/danarta/loan-decision-service/internal/models"
)

// Number of factors surfaced on each side of the attribution report.
const topFactorCount = 5

// Attribute decomposes a prediction into baseline plus per-feature signed
// contributions. Each term's log-odds margin is scaled into probability
// space proportionally, so the contributions sum to probability - baseline
// exactly (up to float rounding).
func (p *Predictor) Attribute(v *features.Vector, probability float64) (*models.AttributionReport, error) {
	margins, err := p.margins(v)
	if err != nil {
		return nil, err
	}

	baseline := sigmoid(p.artifact.Intercept)
	totalMargin := 0.0
	for _, m := range margins {
		totalMargin += m
	}

	contributions := make([]models.FeatureContribution, len(margins))
	for i, term := range p.artifact.Terms {
		feat, _ := v.Get(term.Feature)
		contribution := 0.0
		if totalMargin != 0 {
			contribution = (probability - baseline) * margins[i] / totalMargin
		}
		contributions[i] = models.FeatureContribution{
			Feature:      term.Feature,
			Value:        feat.DisplayValue(),
			Contribution: contribution,
		}
	}

	// Descending by absolute magnitude; name as a stable tie-break.
	sort.SliceStable(contributions, func(i, j int) bool {
		ai, aj := abs(contributions[i].Contribution), abs(contributions[j].Contribution)
		if ai != aj {
			return ai > aj
		}
		return contributions[i].Feature < contributions[j].Feature
	})

	report := &models.AttributionReport{
		BaselineProbability: baseline,
		Contributions:       contributions,
	}
	for _, c := range contributions {
		if c.Contribution > 0 && len(report.TopRiskFactors) < topFactorCount {
			report.TopRiskFactors = append(report.TopRiskFactors, c)
		}
		if c.Contribution < 0 && len(report.TopProtectiveFactors) < topFactorCount {
			report.TopProtectiveFactors = append(report.TopProtectiveFactors, c)
		}
	}
	return report, nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
