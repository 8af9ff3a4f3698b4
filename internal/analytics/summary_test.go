package analytics

import (
	"math"
	"testing"

	"finpilot/internal/core"
)

func expense(date, desc string, amount float64) core.TransactionRecord {
	return core.TransactionRecord{Date: date, Description: desc, Amount: amount, Type: core.Expense}
}

func income(date, desc string, amount float64) core.TransactionRecord {
	return core.TransactionRecord{Date: date, Description: desc, Amount: amount, Type: core.Income}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeSummary_Empty(t *testing.T) {
	s := ComputeSummary(nil)

	if s.TotalIncome != 0 || s.TotalExpenses != 0 || s.NetProfit != 0 {
		t.Errorf("empty summary totals = %v/%v/%v, want all 0", s.TotalIncome, s.TotalExpenses, s.NetProfit)
	}
	if s.TransactionCount != 0 {
		t.Errorf("TransactionCount = %d, want 0", s.TransactionCount)
	}
	if s.DateRange.DaySpan != 0 {
		t.Errorf("DaySpan = %d, want 0", s.DateRange.DaySpan)
	}
	if len(s.MonthlyTrends) != 0 || len(s.CategoryBreakdown) != 0 || len(s.Customers) != 0 || len(s.Suppliers) != 0 {
		t.Error("empty summary should have empty breakdown lists")
	}
	if s.MonthlyTrends == nil || s.CategoryBreakdown == nil || s.Customers == nil || s.Suppliers == nil {
		t.Error("empty summary lists should be non-nil for serialization")
	}
}

func TestComputeSummary_Totals(t *testing.T) {
	records := []core.TransactionRecord{
		income("2024-01-01", "Invoice 1", 1000),
		income("2024-01-05", "Invoice 2", 500),
		expense("2024-01-03", "Fuel", -200),
		expense("2024-01-10", "Rent", -300),
	}

	s := ComputeSummary(records)

	if !almostEqual(s.TotalIncome, 1500) {
		t.Errorf("TotalIncome = %v, want 1500", s.TotalIncome)
	}
	if !almostEqual(s.TotalExpenses, 500) {
		t.Errorf("TotalExpenses = %v, want 500 (absolute values)", s.TotalExpenses)
	}
	if !almostEqual(s.NetProfit, 1000) {
		t.Errorf("NetProfit = %v, want 1000", s.NetProfit)
	}
	if s.IncomeCount != 2 || s.ExpenseCount != 2 {
		t.Errorf("counts = %d/%d, want 2/2", s.IncomeCount, s.ExpenseCount)
	}

	// Jan 1 through Jan 10 inclusive.
	if s.DateRange.DaySpan != 10 {
		t.Errorf("DaySpan = %d, want 10", s.DateRange.DaySpan)
	}
	if s.DateRange.Min != "2024-01-01" || s.DateRange.Max != "2024-01-10" {
		t.Errorf("date range = %s..%s, want 2024-01-01..2024-01-10", s.DateRange.Min, s.DateRange.Max)
	}
	if !almostEqual(s.AvgDailyIncome, 150) {
		t.Errorf("AvgDailyIncome = %v, want 150", s.AvgDailyIncome)
	}
	if !almostEqual(s.NetDailyChange, 100) {
		t.Errorf("NetDailyChange = %v, want 100", s.NetDailyChange)
	}

	// Margins of the 1500/500 split.
	if !almostEqual(s.ProfitMargin, 1000.0/1500.0*100) {
		t.Errorf("ProfitMargin = %v", s.ProfitMargin)
	}
	if !almostEqual(s.ExpenseRatio, 500.0/1500.0*100) {
		t.Errorf("ExpenseRatio = %v", s.ExpenseRatio)
	}
}

func TestComputeSummary_UnparseableDates(t *testing.T) {
	records := []core.TransactionRecord{
		income("2024-01-01", "Invoice", 100),
		income("not-a-date", "Cash sale", 50),
	}

	s := ComputeSummary(records)

	// The malformed record still counts toward totals.
	if !almostEqual(s.TotalIncome, 150) {
		t.Errorf("TotalIncome = %v, want 150", s.TotalIncome)
	}
	// But is excluded from the date range.
	if s.DateRange.DaySpan != 1 {
		t.Errorf("DaySpan = %d, want 1", s.DateRange.DaySpan)
	}
	if len(s.MonthlyTrends) != 1 {
		t.Fatalf("MonthlyTrends count = %d, want 1", len(s.MonthlyTrends))
	}
	if !almostEqual(s.MonthlyTrends[0].Income, 100) {
		t.Errorf("monthly income = %v, want 100 (malformed date excluded)", s.MonthlyTrends[0].Income)
	}
}

func TestComputeSummary_NoParseableDates(t *testing.T) {
	records := []core.TransactionRecord{
		income("??", "A", 70),
	}

	s := ComputeSummary(records)

	if s.DateRange.DaySpan != 1 {
		t.Errorf("DaySpan = %d, want 1 to guard division", s.DateRange.DaySpan)
	}
	if !almostEqual(s.AvgDailyIncome, 70) {
		t.Errorf("AvgDailyIncome = %v, want 70", s.AvgDailyIncome)
	}
}

func TestComputeSummary_MonthlyTrendsSorted(t *testing.T) {
	records := []core.TransactionRecord{
		expense("2024-03-01", "Rent", -100),
		income("2023-11-15", "Invoice", 400),
		expense("2024-01-20", "Fuel", -50),
		income("2024-03-02", "Invoice", 900),
	}

	s := ComputeSummary(records)

	want := []string{"2023-11", "2024-01", "2024-03"}
	if len(s.MonthlyTrends) != len(want) {
		t.Fatalf("MonthlyTrends count = %d, want %d", len(s.MonthlyTrends), len(want))
	}
	for i, m := range want {
		if s.MonthlyTrends[i].Month != m {
			t.Errorf("MonthlyTrends[%d].Month = %s, want %s", i, s.MonthlyTrends[i].Month, m)
		}
	}
	if !almostEqual(s.MonthlyTrends[2].Income, 900) || !almostEqual(s.MonthlyTrends[2].Expenses, 100) {
		t.Errorf("2024-03 = %v income / %v expenses, want 900/100",
			s.MonthlyTrends[2].Income, s.MonthlyTrends[2].Expenses)
	}
}

func TestComputeSummary_CategoryBreakdown(t *testing.T) {
	r1 := expense("2024-01-01", "Diesel", -100)
	r1.CategoryName = "Fuel"
	r2 := expense("2024-01-02", "Diesel again", -300)
	r2.CategoryName = "Fuel"
	r3 := expense("2024-01-03", "Odd charge", -100)
	// r3 has no category and falls back to the default label.

	s := ComputeSummary([]core.TransactionRecord{r1, r2, r3})

	if len(s.CategoryBreakdown) != 2 {
		t.Fatalf("CategoryBreakdown count = %d, want 2", len(s.CategoryBreakdown))
	}
	if s.CategoryBreakdown[0].Name != "Fuel" {
		t.Errorf("top category = %s, want Fuel (sorted descending by total)", s.CategoryBreakdown[0].Name)
	}
	if s.CategoryBreakdown[1].Name != DefaultCategory {
		t.Errorf("fallback category = %s, want %s", s.CategoryBreakdown[1].Name, DefaultCategory)
	}

	var pctSum float64
	for _, c := range s.CategoryBreakdown {
		pctSum += c.Percentage
	}
	if math.Abs(pctSum-100) > 1e-9 {
		t.Errorf("category percentages sum = %v, want 100", pctSum)
	}
}

func TestComputeSummary_EntityBreakdowns(t *testing.T) {
	r1 := income("2024-01-01", "Payment", 600)
	r1.EntityName = "Acme"
	r2 := income("2024-01-02", "Payment", 400)
	r2.EntityName = "Globex"
	r3 := income("2024-01-03", "Cash", 100) // no entity, excluded
	r4 := expense("2024-01-04", "Stock", -250)
	r4.EntityName = "WholesaleCo"

	s := ComputeSummary([]core.TransactionRecord{r1, r2, r3, r4})

	if len(s.Customers) != 2 {
		t.Fatalf("Customers count = %d, want 2", len(s.Customers))
	}
	if s.Customers[0].Name != "Acme" || s.Customers[0].Count != 1 {
		t.Errorf("top customer = %+v, want Acme with count 1", s.Customers[0])
	}
	// Percentage is a share of total income including unattributed income.
	if !almostEqual(s.Customers[0].Percentage, 600.0/1100.0*100) {
		t.Errorf("top customer percentage = %v", s.Customers[0].Percentage)
	}

	if len(s.Suppliers) != 1 {
		t.Fatalf("Suppliers count = %d, want 1", len(s.Suppliers))
	}
	if !almostEqual(s.Suppliers[0].Percentage, 100) {
		t.Errorf("supplier percentage = %v, want 100", s.Suppliers[0].Percentage)
	}
}

func TestComputeSummary_ZeroIncomeGuards(t *testing.T) {
	s := ComputeSummary([]core.TransactionRecord{
		expense("2024-01-01", "Rent", -500),
	})

	if s.ProfitMargin != 0 {
		t.Errorf("ProfitMargin = %v, want 0 when income is 0", s.ProfitMargin)
	}
	if s.ExpenseRatio != 0 {
		t.Errorf("ExpenseRatio = %v, want 0 when income is 0", s.ExpenseRatio)
	}
}
