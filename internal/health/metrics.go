package health

import (
	"fmt"

	"github.com/danarta/loan-decision-service/internal/models"
)

// InvalidProfileError indicates a financial profile that fails validation
// before any metric is computed.
type InvalidProfileError struct {
	Field  string
	Reason string
}

func (e *InvalidProfileError) Error() string {
	return fmt.Sprintf("invalid financial profile: %s: %s", e.Field, e.Reason)
}

// ValidateProfile checks the profile invariants: income strictly positive,
// every amount non-negative.
func ValidateProfile(p models.FinancialProfile) error {
	if p.Income <= 0 {
		return &InvalidProfileError{Field: "income", Reason: "must be positive"}
	}
	amounts := []struct {
		name  string
		value float64
	}{
		{"fixed_expenses", p.FixedExpenses},
		{"variable_expenses", p.VariableExpenses},
		{"savings", p.Savings},
		{"debt", p.Debt},
	}
	for _, a := range amounts {
		if a.value < 0 {
			return &InvalidProfileError{Field: a.name, Reason: "cannot be negative"}
		}
	}
	return nil
}

// ComputeMetrics calculates all financial health ratios from a profile.
// Pure: identical output for identical input, which scenario replay relies on.
func ComputeMetrics(p models.FinancialProfile) (models.MetricsSet, error) {
	if err := ValidateProfile(p); err != nil {
		return models.MetricsSet{}, err
	}

	totalExpenses := p.FixedExpenses + p.VariableExpenses
	disposable := p.Income - totalExpenses

	return models.MetricsSet{
		DTI:              p.Debt / p.Income,
		ExpenseRatio:     totalExpenses / p.Income,
		SavingsRatio:     p.Savings / p.Income,
		DisposableIncome: disposable,
		DisposableRatio:  disposable / p.Income,
		NetCashflow:      disposable,
	}, nil
}
