package features

import (
	"fmt"
	"time"

	"github.com/danarta/loan-decision-service/internal/models"
)

// Imputation constants derived from the training data distribution.
const (
	medianReturnRatio  = 1.15
	medianLenderRatio  = 0.95
	medianDurationDays = 90
)

const dateLayout = "2006-01-02"

// InvalidRequestError indicates a loan request that fails validation after
// cleaning and imputation.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid loan request: %s: %s", e.Field, e.Reason)
}

// Assembler builds schema-aligned feature vectors. Stateless apart from the
// read-only aggregation tables.
type Assembler struct {
	tables *Tables
}

// NewAssembler initializes a feature assembler over the given tables.
func NewAssembler(tables *Tables) *Assembler {
	return &Assembler{tables: tables}
}

// cleaned is the loan request after cleaning and imputation.
type cleaned struct {
	amount         float64
	durationDays   float64
	totalRepayment float64
	lenderPortion  float64
	disbursedAt    time.Time
	categories     map[string]string
}

// clean fixes known data issues: negative durations are taken absolute,
// disbursement dates in the future are shifted back one year, and a missing
// date resolves to the pipeline's reference clock.
func clean(req models.LoanRequest, asOf time.Time) cleaned {
	c := cleaned{
		amount:       req.Amount,
		durationDays: float64(req.DurationDays),
	}
	if c.durationDays < 0 {
		c.durationDays = -c.durationDays
	}

	c.disbursedAt = asOf
	if req.DisbursementDate != "" {
		if ts, err := time.Parse(dateLayout, req.DisbursementDate); err == nil {
			if ts.After(asOf) {
				ts = ts.AddDate(-1, 0, 0)
			}
			c.disbursedAt = ts
		}
	}

	c.categories = map[string]string{
		FieldProvince:     req.Province,
		FieldLoanType:     req.LoanType,
		"borrower_status": req.BorrowerStatus,
		FieldSector:       req.Sector,
		FieldEducation:    req.Education,
		FieldCollateral:   req.CollateralType,
	}

	if req.TotalRepayment != nil {
		c.totalRepayment = *req.TotalRepayment
	}
	if req.LenderPortion != nil {
		c.lenderPortion = *req.LenderPortion
	}
	return c
}

// impute fills missing values following the training methodology. Ratio
// based, not absolute, so imputation stays scale-invariant.
func impute(c *cleaned) {
	if c.durationDays == 0 {
		c.durationDays = medianDurationDays
	}
	if c.totalRepayment == 0 {
		c.totalRepayment = c.amount * medianReturnRatio
	}
	if c.lenderPortion == 0 {
		c.lenderPortion = c.totalRepayment * medianLenderRatio
	}
	for field, value := range c.categories {
		if value == "" {
			c.categories[field] = "Unknown"
		}
	}
}

func validate(c cleaned) error {
	if c.amount <= 0 {
		return &InvalidRequestError{Field: "amount", Reason: "must be positive"}
	}
	if c.durationDays <= 0 {
		return &InvalidRequestError{Field: "duration_days", Reason: "must be positive after cleaning"}
	}
	return nil
}

func isMonthEnd(t time.Time) float64 {
	if t.AddDate(0, 0, 1).Day() == 1 {
		return 1
	}
	return 0
}

// Assemble cleans, imputes, derives, aggregates, merges the health ratios,
// and aligns the result to the expected schema. The reference clock asOf is
// injected so a scenario replay sees the same temporal features as the
// primary run.
func (a *Assembler) Assemble(
	profile models.FinancialProfile,
	req models.LoanRequest,
	metrics models.MetricsSet,
	asOf time.Time,
) (*Vector, error) {
	c := clean(req, asOf)
	impute(&c)
	if err := validate(c); err != nil {
		return nil, err
	}

	interest := c.totalRepayment - c.amount
	values := map[string]float64{
		"amount":          c.amount,
		"total_repayment": c.totalRepayment,
		"duration_days":   c.durationDays,
		"lender_portion":  c.lenderPortion,
		"interest":        interest,
		"interest_ratio":  interest / c.amount,
		"lender_ratio":    c.lenderPortion / c.totalRepayment,

		"month":        float64(c.disbursedAt.Month()),
		"quarter":      float64((int(c.disbursedAt.Month())-1)/3 + 1),
		"day_of_week":  float64(c.disbursedAt.Weekday()),
		"is_month_end": isMonthEnd(c.disbursedAt),

		"province_default_rate":   a.tables.Rate(FieldProvince, c.categories[FieldProvince]),
		"loan_type_default_rate":  a.tables.Rate(FieldLoanType, c.categories[FieldLoanType]),
		"sector_default_rate":     a.tables.Rate(FieldSector, c.categories[FieldSector]),
		"education_default_rate":  a.tables.Rate(FieldEducation, c.categories[FieldEducation]),
		"collateral_default_rate": a.tables.Rate(FieldCollateral, c.categories[FieldCollateral]),

		"daily_payment":  c.totalRepayment / c.durationDays,
		"loan_intensity": c.amount / c.durationDays,
		"payment_burden": (c.totalRepayment / c.durationDays) / (profile.Income / 30),

		// Health metrics copied verbatim; the model was trained expecting
		// these fields, so omitting them is a correctness bug.
		"dti":              metrics.DTI,
		"expense_ratio":    metrics.ExpenseRatio,
		"savings_ratio":    metrics.SavingsRatio,
		"disposable_ratio": metrics.DisposableRatio,
	}

	feats := make([]Feature, 0, len(Schema))
	for _, col := range Schema {
		if col.Kind == Categorical {
			cat, ok := c.categories[col.Name]
			if !ok {
				return nil, &FeatureSchemaError{
					Reason: fmt.Sprintf("required categorical feature %q missing after imputation", col.Name),
				}
			}
			feats = append(feats, Feature{Name: col.Name, Kind: Categorical, Cat: cat})
			continue
		}
		num, ok := values[col.Name]
		if !ok {
			return nil, &FeatureSchemaError{
				Reason: fmt.Sprintf("required feature %q missing after assembly", col.Name),
			}
		}
		feats = append(feats, Feature{Name: col.Name, Kind: Numeric, Num: num})
	}

	return NewVector(feats), nil
}
