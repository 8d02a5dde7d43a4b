package domain

// GeneralProfitRate is the fixed house cut taken from every delivered
// transfer's principal. Not configurable.
const GeneralProfitRate = 0.10

// GeneralProfit returns the house cut for a transfer principal.
func GeneralProfit(amount float64) float64 {
	return amount * GeneralProfitRate
}

// MonthlyAccrual holds running profit totals for one employee in one
// calendar month. Rows are mutated additively every time a transfer is
// delivered in that period.
type MonthlyAccrual struct {
	ID          int64
	EmployeeID  int64
	Month       int
	Year        int
	GeneralBase float64
	Personal    float64
	Total       float64
}
