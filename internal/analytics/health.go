package analytics

// Status breakpoints and display colors for the health score.
const (
	statusHealthy        = "Healthy"
	statusStable         = "Stable"
	statusNeedsAttention = "Needs Attention"
	statusAtRisk         = "At Risk"

	colorHealthy        = "#10b981"
	colorStable         = "#3b82f6"
	colorNeedsAttention = "#f59e0b"
	colorAtRisk         = "#ef4444"
)

// ComputeHealthScore rates a business's financial stability on a 0-100
// scale. Scoring is additive from a baseline of 50; every applied rule is
// recorded as a factor, negative contributions included.
func ComputeHealthScore(s Summary) HealthScore {
	score := 50
	factors := make([]Factor, 0, 4)

	apply := func(label string, pts int) {
		score += pts
		factors = append(factors, Factor{Label: label, Points: pts, Positive: pts > 0})
	}

	// Profitability, tiered by margin. A barely-positive margin still earns
	// its 2 points but is flagged as a negative signal.
	if s.NetProfit > 0 {
		switch {
		case s.ProfitMargin > 30:
			apply("Strong profit margin", 25)
		case s.ProfitMargin > 15:
			apply("Healthy profit margin", 15)
		case s.ProfitMargin > 5:
			apply("Thin profit margin", 8)
		default:
			score += 2
			factors = append(factors, Factor{Label: "Very thin margin", Points: 2, Positive: false})
		}
	} else {
		apply("Operating at a loss", -20)
	}

	// Expense ratio.
	switch {
	case s.ExpenseRatio < 50:
		apply("Low expense ratio", 15)
	case s.ExpenseRatio < 70:
		apply("Moderate expense ratio", 8)
	case s.ExpenseRatio < 85:
		apply("High expense ratio", -5)
	default:
		apply("Very high expense ratio", -15)
	}

	// Customer concentration, only when there is income attributed to
	// customers at all.
	if len(s.Customers) > 0 && s.TotalIncome > 0 {
		topShare := s.Customers[0].Total / s.TotalIncome * 100
		switch {
		case topShare > 60:
			apply("High customer concentration risk", -10)
		case topShare > 40:
			apply("Moderate concentration risk", -5)
		default:
			apply("Diversified customer base", 5)
		}
	}

	// Cash-flow direction.
	if s.NetDailyChange > 0 {
		apply("Positive daily cash flow", 5)
	} else {
		apply("Negative daily cash flow", -5)
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	status, color := statusFor(score)
	return HealthScore{
		Score:       score,
		Status:      status,
		StatusColor: color,
		Factors:     factors,
	}
}

func statusFor(score int) (string, string) {
	switch {
	case score >= 80:
		return statusHealthy, colorHealthy
	case score >= 60:
		return statusStable, colorStable
	case score >= 40:
		return statusNeedsAttention, colorNeedsAttention
	default:
		return statusAtRisk, colorAtRisk
	}
}
