package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributionSumsToProbabilityMinusBaseline(t *testing.T) {
	p := NewPredictor(testArtifact(t))

	cases := []struct {
		name   string
		values map[string]float64
		cats   map[string]string
	}{
		{
			name:   "risky profile",
			values: map[string]float64{"dti": 8.0, "payment_burden": 2.0, "disposable_ratio": 0.02},
			cats:   map[string]string{"province": "Jawa Barat"},
		},
		{
			name:   "protective profile",
			values: map[string]float64{"dti": 0.5, "payment_burden": 0.2, "disposable_ratio": 0.55},
			cats:   map[string]string{"province": "DKI Jakarta"},
		},
		{
			name:   "mixed profile",
			values: map[string]float64{"dti": 5.0, "payment_burden": 0.4, "disposable_ratio": 0.40},
			cats:   map[string]string{"province": "Unknown"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := testVector(tc.values, tc.cats)
			pred, err := p.Predict(v)
			require.NoError(t, err)

			report, err := p.Attribute(v, pred.Probability)
			require.NoError(t, err)

			sum := 0.0
			for _, c := range report.Contributions {
				sum += c.Contribution
			}
			assert.InDelta(t, pred.Probability-report.BaselineProbability, sum, 1e-3)
			assert.InDelta(t, sigmoid(-2.70), report.BaselineProbability, 1e-12)
		})
	}
}

func TestAttributionRankedByMagnitude(t *testing.T) {
	p := NewPredictor(testArtifact(t))
	v := testVector(
		map[string]float64{"dti": 8.0, "payment_burden": 2.0, "disposable_ratio": 0.02},
		map[string]string{"province": "Jawa Barat"},
	)

	pred, err := p.Predict(v)
	require.NoError(t, err)
	report, err := p.Attribute(v, pred.Probability)
	require.NoError(t, err)

	for i := 1; i < len(report.Contributions); i++ {
		assert.GreaterOrEqual(t,
			abs(report.Contributions[i-1].Contribution),
			abs(report.Contributions[i].Contribution),
			"contributions must be ordered by absolute magnitude")
	}
}

func TestAttributionFactorSplit(t *testing.T) {
	p := NewPredictor(testArtifact(t))
	// dti and payment_burden push risk up, disposable_ratio pulls it down.
	v := testVector(
		map[string]float64{"dti": 8.0, "payment_burden": 2.0, "disposable_ratio": 0.60},
		map[string]string{"province": "DKI Jakarta"},
	)

	pred, err := p.Predict(v)
	require.NoError(t, err)
	report, err := p.Attribute(v, pred.Probability)
	require.NoError(t, err)

	riskNames := map[string]bool{}
	for _, f := range report.TopRiskFactors {
		assert.Positive(t, f.Contribution)
		assert.NotEmpty(t, f.Value, "factors are rendered with their current value")
		riskNames[f.Feature] = true
	}
	assert.True(t, riskNames["dti"])
	assert.True(t, riskNames["payment_burden"])

	protectiveNames := map[string]bool{}
	for _, f := range report.TopProtectiveFactors {
		assert.Negative(t, f.Contribution)
		protectiveNames[f.Feature] = true
	}
	assert.True(t, protectiveNames["disposable_ratio"])
}

func TestAttributionZeroMargin(t *testing.T) {
	// A zero-weight scorecard: probability equals baseline, so every
	// contribution must be exactly zero.
	a := &Artifact{
		Version:       "t",
		SchemaVersion: "v3",
		Intercept:     -1.5,
		Terms:         []Term{{Feature: "dti", Kind: NumericTerm, Weight: 0, Mean: 0}},
	}
	zp := NewPredictor(a)
	v := testVector(map[string]float64{"dti": 3}, nil)

	pred, err := zp.Predict(v)
	require.NoError(t, err)
	report, err := zp.Attribute(v, pred.Probability)
	require.NoError(t, err)

	assert.Equal(t, pred.Probability, report.BaselineProbability)
	for _, c := range report.Contributions {
		assert.Zero(t, c.Contribution)
	}
}
