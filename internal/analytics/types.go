// Package analytics derives aggregate metrics, health scores, forecasts and
// pattern findings from an in-memory transaction set.
//
// Every function in this package is a pure, deterministic transform over an
// immutable record slice: no I/O, no shared state, no errors. Empty input
// always yields a fully-populated zero result, never a fault.
package analytics

import "finpilot/internal/core"

// DateRange is the inclusive span covered by the parseable dates in a
// transaction set. DaySpan is 0 only for the empty summary.
type DateRange struct {
	Min     string `json:"min"`
	Max     string `json:"max"`
	DaySpan int    `json:"day_span"`
}

// MonthlyTrend accumulates income and expenses for one calendar year-month.
type MonthlyTrend struct {
	Month    string  `json:"month"` // YYYY-MM
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

// CategoryTotal is one entry of the expense category breakdown.
type CategoryTotal struct {
	Name       string  `json:"name"`
	Total      float64 `json:"total"`
	Percentage float64 `json:"percentage"`
}

// EntityTotal is one entry of the customer or supplier breakdown.
type EntityTotal struct {
	Name       string  `json:"name"`
	Total      float64 `json:"total"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Summary is the full set of aggregate metrics for one transaction set.
// It is recomputed from scratch on every call and carries no identity
// beyond its fields.
type Summary struct {
	TotalIncome       float64         `json:"total_income"`
	TotalExpenses     float64         `json:"total_expenses"`
	NetProfit         float64         `json:"net_profit"`
	TransactionCount  int             `json:"transaction_count"`
	IncomeCount       int             `json:"income_count"`
	ExpenseCount      int             `json:"expense_count"`
	AvgDailyIncome    float64         `json:"avg_daily_income"`
	AvgDailyExpense   float64         `json:"avg_daily_expense"`
	NetDailyChange    float64         `json:"net_daily_change"`
	ProfitMargin      float64         `json:"profit_margin"`
	ExpenseRatio      float64         `json:"expense_ratio"`
	DateRange         DateRange       `json:"date_range"`
	MonthlyTrends     []MonthlyTrend  `json:"monthly_trends"`
	CategoryBreakdown []CategoryTotal `json:"category_breakdown"`
	Customers         []EntityTotal   `json:"customers"`
	Suppliers         []EntityTotal   `json:"suppliers"`
}

// Factor is one named contribution to a health score.
type Factor struct {
	Label    string `json:"label"`
	Points   int    `json:"pts"`
	Positive bool   `json:"positive"`
}

// HealthScore is a heuristic 0-100 rating of financial stability.
type HealthScore struct {
	Score       int      `json:"score"`
	Status      string   `json:"status"`
	StatusColor string   `json:"status_color"`
	Factors     []Factor `json:"factors"`
}

// Forecast is a linear cash-flow projection for a fixed day horizon.
type Forecast struct {
	Days              int     `json:"days"`
	ProjectedIncome   float64 `json:"projected_income"`
	ProjectedExpenses float64 `json:"projected_expenses"`
	NetChange         float64 `json:"net_change"`
}

// RecurringGroup is a set of same-description expense records whose amounts
// all sit within tolerance of the group mean.
type RecurringGroup struct {
	Description string  `json:"description"`
	Count       int     `json:"count"`
	AvgAmount   float64 `json:"avg_amount"`
	Category    string  `json:"category"`
	Type        string  `json:"type"`
}

// Anomaly flags a record whose magnitude greatly exceeds its type's mean.
type Anomaly struct {
	core.TransactionRecord
	Multiplier float64 `json:"multiplier"`
}
