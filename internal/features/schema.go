// Package features turns a loan request plus health metrics into the ordered,
// schema-validated feature vector the frozen model was trained on. The
// assembler is stateless; category aggregation tables are read-only and
// loaded once at process start.
package features

import (
	"fmt"
	"strconv"
)

// SchemaVersion identifies the feature contract between the assembler and
// the model artifact. The artifact records the version it was trained
// against; a mismatch is fatal at load time.
const SchemaVersion = "v3"

// Kind distinguishes numeric from categorical features.
type Kind int

const (
	Numeric Kind = iota
	Categorical
)

// Column is one entry of the expected feature schema.
type Column struct {
	Name string
	Kind Kind
}

// Schema is the fixed, ordered feature list matching the model's
// training-time contract. Order and names are part of the contract:
// feature assembly reorders and selects against this exact list.
var Schema = []Column{
	{"province", Categorical},
	{"loan_type", Categorical},
	{"borrower_status", Categorical},
	{"amount", Numeric},
	{"total_repayment", Numeric},
	{"duration_days", Numeric},
	{"lender_portion", Numeric},
	{"sector", Categorical},
	{"education", Categorical},
	{"collateral_type", Categorical},
	{"interest", Numeric},
	{"interest_ratio", Numeric},
	{"lender_ratio", Numeric},
	{"month", Numeric},
	{"quarter", Numeric},
	{"day_of_week", Numeric},
	{"is_month_end", Numeric},
	{"province_default_rate", Numeric},
	{"loan_type_default_rate", Numeric},
	{"sector_default_rate", Numeric},
	{"education_default_rate", Numeric},
	{"collateral_default_rate", Numeric},
	{"daily_payment", Numeric},
	{"loan_intensity", Numeric},
	{"payment_burden", Numeric},
	{"dti", Numeric},
	{"expense_ratio", Numeric},
	{"savings_ratio", Numeric},
	{"disposable_ratio", Numeric},
}

// SchemaHas reports whether the named feature is part of the schema.
func SchemaHas(name string) bool {
	for _, c := range Schema {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Feature is one named value of a feature vector.
type Feature struct {
	Name string
	Kind Kind
	Num  float64
	Cat  string
}

// DisplayValue renders the feature's current value for explanations.
func (f Feature) DisplayValue() string {
	if f.Kind == Categorical {
		return f.Cat
	}
	return strconv.FormatFloat(f.Num, 'g', 6, 64)
}

// Vector is an ordered feature vector validated against the schema.
type Vector struct {
	SchemaVersion string
	Features      []Feature

	index map[string]int
}

// NewVector builds a vector from features already in schema order.
func NewVector(feats []Feature) *Vector {
	idx := make(map[string]int, len(feats))
	for i, f := range feats {
		idx[f.Name] = i
	}
	return &Vector{SchemaVersion: SchemaVersion, Features: feats, index: idx}
}

// Get returns the named feature.
func (v *Vector) Get(name string) (Feature, bool) {
	i, ok := v.index[name]
	if !ok {
		return Feature{}, false
	}
	return v.Features[i], true
}

// FeatureSchemaError indicates a violation of the feature contract between
// assembly and the model. It signals a build or versioning defect, never a
// user-input problem, and must not be silently patched.
type FeatureSchemaError struct {
	Reason string
}

func (e *FeatureSchemaError) Error() string {
	return fmt.Sprintf("feature schema violation: %s", e.Reason)
}
