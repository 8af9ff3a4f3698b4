// Package services orchestrates storage, analytics and insight generation
// behind the transport layer.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"finpilot/internal/analytics"
	"finpilot/internal/core"
	"finpilot/internal/insights"
)

// TransactionReader is the slice of the repository the analytics service
// needs.
type TransactionReader interface {
	ListTransactions(ctx context.Context, businessID string) ([]core.TransactionRecord, error)
}

// Dashboard bundles everything the overview screen renders in one payload.
type Dashboard struct {
	Summary          analytics.Summary          `json:"summary"`
	Health           analytics.HealthScore      `json:"health_score"`
	Forecasts        []analytics.Forecast       `json:"forecasts"`
	Recurring        []analytics.RecurringGroup `json:"recurring_expenses"`
	Anomalies        []analytics.Anomaly        `json:"anomalies"`
	Duplicates       []core.TransactionRecord   `json:"potential_duplicates"`
	ExecutiveSummary string                     `json:"executive_summary"`
}

const (
	noDataStatus = "No Data"
	noDataColor  = "#64748b"

	emptySummaryText = "Upload transactions to see your AI-generated business summary."
)

type AnalyticsService struct {
	store     TransactionReader
	generator insights.Generator // nil when no LLM is configured
	logger    *slog.Logger
}

func NewAnalyticsService(store TransactionReader, generator insights.Generator, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		store:     store,
		generator: generator,
		logger:    logger,
	}
}

// Summary recomputes the aggregate metrics for one business.
func (s *AnalyticsService) Summary(ctx context.Context, businessID string) (analytics.Summary, error) {
	records, err := s.store.ListTransactions(ctx, businessID)
	if err != nil {
		return analytics.Summary{}, fmt.Errorf("load transactions: %w", err)
	}
	return analytics.ComputeSummary(records), nil
}

// Dashboard assembles the full overview: summary, health, forecasts and the
// three pattern detectors. The detectors run concurrently since each scans
// the record set independently.
func (s *AnalyticsService) Dashboard(ctx context.Context, businessID string) (Dashboard, error) {
	records, err := s.store.ListTransactions(ctx, businessID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load transactions: %w", err)
	}

	summary := analytics.ComputeSummary(records)

	if len(records) == 0 {
		return Dashboard{
			Summary: summary,
			Health: analytics.HealthScore{
				Status:      noDataStatus,
				StatusColor: noDataColor,
				Factors:     []analytics.Factor{},
			},
			Forecasts:        analytics.ComputeForecast(summary),
			Recurring:        []analytics.RecurringGroup{},
			Anomalies:        []analytics.Anomaly{},
			Duplicates:       []core.TransactionRecord{},
			ExecutiveSummary: emptySummaryText,
		}, nil
	}

	var (
		recurring  []analytics.RecurringGroup
		anomalies  []analytics.Anomaly
		duplicates []core.TransactionRecord
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		recurring = analytics.DetectRecurring(expenseRecords(records))
		return nil
	})
	g.Go(func() error {
		anomalies = analytics.DetectAnomalies(records)
		return nil
	})
	g.Go(func() error {
		duplicates = analytics.DetectDuplicates(records)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	dash := Dashboard{
		Summary:    summary,
		Health:     analytics.ComputeHealthScore(summary),
		Forecasts:  analytics.ComputeForecast(summary),
		Recurring:  recurring,
		Anomalies:  anomalies,
		Duplicates: duplicates,
	}
	dash.ExecutiveSummary = s.executiveSummary(ctx, summary, recurring)

	s.logger.InfoContext(ctx, "Dashboard assembled",
		"business_id", businessID,
		"transaction_count", summary.TransactionCount,
		"health_score", dash.Health.Score,
		"anomaly_count", len(anomalies))

	return dash, nil
}

func (s *AnalyticsService) executiveSummary(ctx context.Context, summary analytics.Summary, recurring []analytics.RecurringGroup) string {
	if s.generator != nil {
		data := insights.BuildFinancialData(summary, recurring)
		text, err := s.generator.ExecutiveSummary(ctx, data)
		if err == nil {
			return text
		}
		s.logger.WarnContext(ctx, "Executive summary generation failed, using fallback", "error", err)
	}
	return fmt.Sprintf(
		"Across %d transactions the business earned %.2f against %.2f in expenses, a net of %.2f (%.1f%% margin).",
		summary.TransactionCount, summary.TotalIncome, summary.TotalExpenses,
		summary.NetProfit, summary.ProfitMargin)
}

// expenseRecords filters to expense-type records, the only input the
// recurring detector accepts.
func expenseRecords(records []core.TransactionRecord) []core.TransactionRecord {
	expenses := make([]core.TransactionRecord, 0, len(records))
	for _, r := range records {
		if r.Type == core.Expense {
			expenses = append(expenses, r)
		}
	}
	return expenses
}

// Chat answers a free-form question about one business's finances.
func (s *AnalyticsService) Chat(ctx context.Context, businessID, question string) (string, error) {
	if s.generator == nil {
		return "", fmt.Errorf("chat unavailable: no LLM configured")
	}

	records, err := s.store.ListTransactions(ctx, businessID)
	if err != nil {
		return "", fmt.Errorf("load transactions: %w", err)
	}

	summary := analytics.ComputeSummary(records)
	health := analytics.ComputeHealthScore(summary)
	recurring := analytics.DetectRecurring(expenseRecords(records))

	cc := insights.BuildChatContext(summary, health, recurring)
	answer, err := s.generator.Chat(ctx, cc, question)
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	return answer, nil
}
