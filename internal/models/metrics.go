package models

// MetricsSet holds the scale-invariant financial health metrics.
// All ratios are relative to monthly income; a MetricsSet is immutable
// once computed and owned by the pipeline invocation that produced it.
type MetricsSet struct {
	DTI              float64 `json:"dti"`
	ExpenseRatio     float64 `json:"expense_ratio"`
	SavingsRatio     float64 `json:"savings_ratio"`
	DisposableIncome float64 `json:"disposable_income"`
	DisposableRatio  float64 `json:"disposable_ratio"`
	NetCashflow      float64 `json:"net_cashflow"`
}
