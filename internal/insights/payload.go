// Package insights turns analytics output into LLM prompts and parses the
// model's replies into stored findings.
package insights

import "finpilot/internal/analytics"

// FinancialData is the condensed metrics block embedded in insight and
// summary prompts. Only the strongest signals go in; the model does not
// need the full transaction history.
type FinancialData struct {
	TotalIncome    float64          `json:"total_income"`
	TotalExpenses  float64          `json:"total_expenses"`
	NetProfit      float64          `json:"net_profit"`
	ProfitMargin   float64          `json:"profit_margin"`
	ExpenseRatio   float64          `json:"expense_ratio"`
	TopCategories  []CategoryShare  `json:"top_expense_categories"`
	TopCustomers   []EntityShare    `json:"top_customers"`
	RecentTrends   []MonthlySnap    `json:"recent_monthly_trends"`
	RecurringCosts []RecurringShape `json:"recurring_expenses"`
}

type CategoryShare struct {
	Name       string  `json:"name"`
	Total      float64 `json:"total"`
	Percentage float64 `json:"percentage"`
}

type EntityShare struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

type MonthlySnap struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

type RecurringShape struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// ChatContext extends FinancialData with everything a conversational answer
// may need to reference.
type ChatContext struct {
	FinancialData
	TopSuppliers     []EntityShare `json:"top_suppliers"`
	HealthScore      int           `json:"health_score"`
	HealthStatus     string        `json:"health_status"`
	AvgDailyIncome   float64       `json:"avg_daily_income"`
	AvgDailyExpense  float64       `json:"avg_daily_expense"`
	TransactionCount int           `json:"transaction_count"`
}

const (
	topCategories = 5
	topEntities   = 5
	topRecurring  = 5
	recentMonths  = 3
)

// BuildFinancialData shapes a summary and recurring groups into the prompt
// payload. Slices are trimmed to their caps and never nil.
func BuildFinancialData(summary analytics.Summary, recurring []analytics.RecurringGroup) FinancialData {
	fd := FinancialData{
		TotalIncome:    summary.TotalIncome,
		TotalExpenses:  summary.TotalExpenses,
		NetProfit:      summary.NetProfit,
		ProfitMargin:   summary.ProfitMargin,
		ExpenseRatio:   summary.ExpenseRatio,
		TopCategories:  make([]CategoryShare, 0, topCategories),
		TopCustomers:   make([]EntityShare, 0, topEntities),
		RecentTrends:   make([]MonthlySnap, 0, recentMonths),
		RecurringCosts: make([]RecurringShape, 0, topRecurring),
	}

	for _, c := range summary.CategoryBreakdown {
		if len(fd.TopCategories) == topCategories {
			break
		}
		fd.TopCategories = append(fd.TopCategories, CategoryShare{
			Name:       c.Name,
			Total:      c.Total,
			Percentage: c.Percentage,
		})
	}

	for _, e := range summary.Customers {
		if len(fd.TopCustomers) == topEntities {
			break
		}
		fd.TopCustomers = append(fd.TopCustomers, EntityShare{Name: e.Name, Total: e.Total})
	}

	trends := summary.MonthlyTrends
	if len(trends) > recentMonths {
		trends = trends[len(trends)-recentMonths:]
	}
	for _, t := range trends {
		fd.RecentTrends = append(fd.RecentTrends, MonthlySnap{
			Month:    t.Month,
			Income:   t.Income,
			Expenses: t.Expenses,
		})
	}

	for _, g := range recurring {
		if len(fd.RecurringCosts) == topRecurring {
			break
		}
		fd.RecurringCosts = append(fd.RecurringCosts, RecurringShape{
			Description: g.Description,
			Amount:      g.AvgAmount,
		})
	}

	return fd
}

// BuildChatContext extends the insight payload with supplier, health and
// cadence data for free-form questions.
func BuildChatContext(summary analytics.Summary, health analytics.HealthScore, recurring []analytics.RecurringGroup) ChatContext {
	cc := ChatContext{
		FinancialData:    BuildFinancialData(summary, recurring),
		TopSuppliers:     make([]EntityShare, 0, topEntities),
		HealthScore:      health.Score,
		HealthStatus:     health.Status,
		AvgDailyIncome:   summary.AvgDailyIncome,
		AvgDailyExpense:  summary.AvgDailyExpense,
		TransactionCount: summary.TransactionCount,
	}

	for _, e := range summary.Suppliers {
		if len(cc.TopSuppliers) == topEntities {
			break
		}
		cc.TopSuppliers = append(cc.TopSuppliers, EntityShare{Name: e.Name, Total: e.Total})
	}

	return cc
}
