package models

// FinancialProfile represents a borrower's monthly financial position
type FinancialProfile struct {
	Income           float64 `json:"income"`
	FixedExpenses    float64 `json:"fixed_expenses"`
	VariableExpenses float64 `json:"variable_expenses"`
	Savings          float64 `json:"savings"`
	Debt             float64 `json:"debt"`
}

// LoanRequest represents a loan application to be assessed.
// Optional fields left at their zero value are resolved by imputation
// during feature assembly and never cause an error.
type LoanRequest struct {
	Amount           float64  `json:"amount"`
	DurationDays     int      `json:"duration_days"`
	LoanType         string   `json:"loan_type"`
	Province         string   `json:"province"`
	BorrowerStatus   string   `json:"borrower_status"`
	Sector           string   `json:"sector"`
	Education        string   `json:"education"`
	CollateralType   string   `json:"collateral_type"`
	DisbursementDate string   `json:"disbursement_date,omitempty"` // YYYY-MM-DD
	TotalRepayment   *float64 `json:"total_repayment,omitempty"`
	LenderPortion    *float64 `json:"lender_portion,omitempty"`
}
