package services

import (
	"context"
	"fmt"
	"log/slog"

	"finpilot/internal/analytics"
	"finpilot/internal/core"
	"finpilot/internal/insights"
	"finpilot/internal/storage"
)

// InsightStore is the slice of the repository the insight service needs.
type InsightStore interface {
	ListTransactions(ctx context.Context, businessID string) ([]core.TransactionRecord, error)
	ReplaceInsights(ctx context.Context, businessID string, insights []storage.Insight) error
	ListInsights(ctx context.Context, businessID string) ([]storage.Insight, error)
}

type InsightService struct {
	store     InsightStore
	generator insights.Generator
	logger    *slog.Logger
}

func NewInsightService(store InsightStore, generator insights.Generator, logger *slog.Logger) *InsightService {
	return &InsightService{
		store:     store,
		generator: generator,
		logger:    logger,
	}
}

// Refresh regenerates and stores the insight set for one business. A business
// with no transactions gets its insights cleared rather than a model call.
func (s *InsightService) Refresh(ctx context.Context, businessID string) error {
	if s.generator == nil {
		return fmt.Errorf("insight refresh unavailable: no LLM configured")
	}

	records, err := s.store.ListTransactions(ctx, businessID)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	if len(records) == 0 {
		if err := s.store.ReplaceInsights(ctx, businessID, nil); err != nil {
			return fmt.Errorf("clear insights: %w", err)
		}
		return nil
	}

	summary := analytics.ComputeSummary(records)
	recurring := analytics.DetectRecurring(expenseRecords(records))
	data := insights.BuildFinancialData(summary, recurring)

	generated, err := s.generator.GenerateInsights(ctx, data)
	if err != nil {
		return fmt.Errorf("generate insights: %w", err)
	}

	stored := make([]storage.Insight, 0, len(generated))
	for _, ins := range generated {
		text := ins.Text
		if ins.Title != "" {
			text = ins.Title + ": " + ins.Text
		}
		stored = append(stored, storage.Insight{
			BusinessID: businessID,
			Text:       text,
			Type:       ins.Type,
			Severity:   ins.Severity,
		})
	}

	if err := s.store.ReplaceInsights(ctx, businessID, stored); err != nil {
		return fmt.Errorf("store insights: %w", err)
	}

	s.logger.InfoContext(ctx, "Insights refreshed",
		"business_id", businessID,
		"count", len(stored))

	return nil
}

// List returns the stored insight set for one business.
func (s *InsightService) List(ctx context.Context, businessID string) ([]storage.Insight, error) {
	return s.store.ListInsights(ctx, businessID)
}
