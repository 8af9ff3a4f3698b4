package analytics

// ForecastHorizons are the fixed day counts projections are computed for.
var ForecastHorizons = []int{7, 30, 90}

// ComputeForecast extrapolates the summary's daily averages linearly over
// the fixed horizons. No seasonality, no model fitting.
func ComputeForecast(s Summary) []Forecast {
	forecasts := make([]Forecast, 0, len(ForecastHorizons))
	for _, days := range ForecastHorizons {
		d := float64(days)
		forecasts = append(forecasts, Forecast{
			Days:              days,
			ProjectedIncome:   round2(s.AvgDailyIncome * d),
			ProjectedExpenses: round2(s.AvgDailyExpense * d),
			NetChange:         round2(s.NetDailyChange * d),
		})
	}
	return forecasts
}
