package analytics

import (
	"math"
	"sort"
	"time"

	"finpilot/internal/core"
)

// DefaultCategory labels expense records with no category assignment.
const DefaultCategory = "Miscellaneous"

type entityAccumulator struct {
	name  string
	total float64
	count int
}

// ComputeSummary reduces a transaction sequence to aggregate financial
// metrics. Record order is irrelevant to the result. Empty input yields the
// zero Summary with a day-span of 0 and empty breakdown lists.
func ComputeSummary(records []core.TransactionRecord) Summary {
	if len(records) == 0 {
		return emptySummary()
	}

	s := Summary{TransactionCount: len(records)}

	for _, r := range records {
		switch r.Type {
		case core.Income:
			s.IncomeCount++
			s.TotalIncome += r.Amount
		case core.Expense:
			s.ExpenseCount++
			s.TotalExpenses += r.AbsAmount()
		}
	}
	s.NetProfit = s.TotalIncome - s.TotalExpenses

	s.DateRange = computeDateRange(records)
	daySpan := s.DateRange.DaySpan
	if daySpan < 1 {
		// No parseable dates: fall back to a single-day span so the
		// per-day averages stay defined.
		daySpan = 1
	}
	s.AvgDailyIncome = s.TotalIncome / float64(daySpan)
	s.AvgDailyExpense = s.TotalExpenses / float64(daySpan)
	s.NetDailyChange = s.AvgDailyIncome - s.AvgDailyExpense

	s.MonthlyTrends = computeMonthlyTrends(records)
	s.CategoryBreakdown = computeCategoryBreakdown(records, s.TotalExpenses)
	s.Customers = computeEntityBreakdown(records, core.Income, s.TotalIncome)
	s.Suppliers = computeEntityBreakdown(records, core.Expense, s.TotalExpenses)

	if s.TotalIncome > 0 {
		s.ProfitMargin = s.NetProfit / s.TotalIncome * 100
		s.ExpenseRatio = s.TotalExpenses / s.TotalIncome * 100
	}

	return s
}

func emptySummary() Summary {
	return Summary{
		MonthlyTrends:     []MonthlyTrend{},
		CategoryBreakdown: []CategoryTotal{},
		Customers:         []EntityTotal{},
		Suppliers:         []EntityTotal{},
	}
}

// computeDateRange finds the inclusive day span of the parseable dates.
// Records with unparseable dates are excluded here but still count toward
// totals. With no parseable dates at all the range stays empty with a
// span of 1.
func computeDateRange(records []core.TransactionRecord) DateRange {
	var minDate, maxDate time.Time
	found := false
	for _, r := range records {
		d, err := time.Parse(core.DateLayout, r.Date)
		if err != nil {
			continue
		}
		if !found || d.Before(minDate) {
			minDate = d
		}
		if !found || d.After(maxDate) {
			maxDate = d
		}
		found = true
	}

	if !found {
		return DateRange{DaySpan: 1}
	}

	span := int(maxDate.Sub(minDate).Hours()/24) + 1
	if span < 1 {
		span = 1
	}
	return DateRange{
		Min:     minDate.Format(core.DateLayout),
		Max:     maxDate.Format(core.DateLayout),
		DaySpan: span,
	}
}

func computeMonthlyTrends(records []core.TransactionRecord) []MonthlyTrend {
	monthly := make(map[string]*MonthlyTrend)
	for _, r := range records {
		d, err := time.Parse(core.DateLayout, r.Date)
		if err != nil {
			continue
		}
		key := d.Format("2006-01")
		entry, ok := monthly[key]
		if !ok {
			entry = &MonthlyTrend{Month: key}
			monthly[key] = entry
		}
		if r.Type == core.Income {
			entry.Income += r.Amount
		} else {
			entry.Expenses += r.AbsAmount()
		}
	}

	trends := make([]MonthlyTrend, 0, len(monthly))
	for _, entry := range monthly {
		trends = append(trends, *entry)
	}
	// Lexicographic order on YYYY-MM equals chronological order.
	sort.Slice(trends, func(i, j int) bool { return trends[i].Month < trends[j].Month })
	return trends
}

func computeCategoryBreakdown(records []core.TransactionRecord, totalExpenses float64) []CategoryTotal {
	totals := make(map[string]float64)
	order := make([]string, 0)
	for _, r := range records {
		if r.Type != core.Expense {
			continue
		}
		name := r.CategoryName
		if name == "" {
			name = DefaultCategory
		}
		if _, ok := totals[name]; !ok {
			order = append(order, name)
		}
		totals[name] += r.AbsAmount()
	}

	breakdown := make([]CategoryTotal, 0, len(order))
	for _, name := range order {
		entry := CategoryTotal{Name: name, Total: totals[name]}
		if totalExpenses > 0 {
			entry.Percentage = totals[name] / totalExpenses * 100
		}
		breakdown = append(breakdown, entry)
	}
	sort.SliceStable(breakdown, func(i, j int) bool { return breakdown[i].Total > breakdown[j].Total })
	return breakdown
}

// computeEntityBreakdown groups records of one type by non-empty entity name.
// Percentages are shares of the supplied type total, 0 when the total is 0.
func computeEntityBreakdown(records []core.TransactionRecord, txType core.TransactionType, typeTotal float64) []EntityTotal {
	accs := make(map[string]*entityAccumulator)
	order := make([]string, 0)
	for _, r := range records {
		if r.Type != txType || r.EntityName == "" {
			continue
		}
		acc, ok := accs[r.EntityName]
		if !ok {
			acc = &entityAccumulator{name: r.EntityName}
			accs[r.EntityName] = acc
			order = append(order, r.EntityName)
		}
		if txType == core.Income {
			acc.total += r.Amount
		} else {
			acc.total += r.AbsAmount()
		}
		acc.count++
	}

	breakdown := make([]EntityTotal, 0, len(order))
	for _, name := range order {
		acc := accs[name]
		entry := EntityTotal{Name: acc.name, Total: acc.total, Count: acc.count}
		if typeTotal > 0 {
			entry.Percentage = acc.total / typeTotal * 100
		}
		breakdown = append(breakdown, entry)
	}
	sort.SliceStable(breakdown, func(i, j int) bool { return breakdown[i].Total > breakdown[j].Total })
	return breakdown
}

// round2 rounds to 2 decimal places for wire-facing values.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round1 rounds to 1 decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
