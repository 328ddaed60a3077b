package features

// Categorical fields covered by the aggregation tables.
const (
	FieldProvince   = "province"
	FieldLoanType   = "loan_type"
	FieldSector     = "sector"
	FieldEducation  = "education"
	FieldCollateral = "collateral_type"
)

// Tables holds the precomputed historical default rates per categorical
// value, plus the global average used for unseen categories. Loaded once at
// process start and treated as read-only for the process lifetime.
type Tables struct {
	rates      map[string]map[string]float64
	globalRate float64
}

// NewTables builds aggregation tables from per-field rate maps and the
// global fallback rate.
func NewTables(rates map[string]map[string]float64, globalRate float64) *Tables {
	if rates == nil {
		rates = map[string]map[string]float64{}
	}
	return &Tables{rates: rates, globalRate: globalRate}
}

// Rate looks up the historical default rate for a category value. An unseen
// key falls back to the global average; the lookup never fails.
func (t *Tables) Rate(field, category string) float64 {
	if byCategory, ok := t.rates[field]; ok {
		if rate, ok := byCategory[category]; ok {
			return rate
		}
	}
	return t.globalRate
}

// GlobalRate returns the global average default rate.
func (t *Tables) GlobalRate() float64 { return t.globalRate }
