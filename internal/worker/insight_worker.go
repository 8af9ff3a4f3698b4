// Package worker runs insight generation outside the request path.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"finpilot/internal/amqp"
	"finpilot/internal/services"
)

// BusinessLister enumerates businesses for the periodic sweep.
type BusinessLister interface {
	ListBusinessIDs(ctx context.Context) ([]string, error)
}

// InsightWorker regenerates stored insights, either on demand via AMQP
// refresh messages or periodically across all businesses.
type InsightWorker struct {
	insights   *services.InsightService
	businesses BusinessLister
}

func NewInsightWorker(insights *services.InsightService, businesses BusinessLister) *InsightWorker {
	return &InsightWorker{
		insights:   insights,
		businesses: businesses,
	}
}

// HandleRefreshMessage processes a single insight refresh message from AMQP
func (w *InsightWorker) HandleRefreshMessage(ctx context.Context, msg *amqp.InsightRefreshMessage) error {
	if msg.BusinessID == "" {
		// Malformed message, nothing to retry.
		slog.WarnContext(ctx, "Refresh message missing business ID, dropping")
		return nil
	}

	slog.InfoContext(ctx, "Processing refresh message",
		"business_id", msg.BusinessID,
		"requested_at", msg.RequestedAt)

	if err := w.insights.Refresh(ctx, msg.BusinessID); err != nil {
		return fmt.Errorf("refresh insights: %w", err)
	}

	return nil
}

// RefreshAll regenerates insights for every business. This is the backup
// mechanism in case AMQP messages are lost, and keeps insights from going
// stale for businesses with no recent imports.
func (w *InsightWorker) RefreshAll(ctx context.Context) error {
	ids, err := w.businesses.ListBusinessIDs(ctx)
	if err != nil {
		return fmt.Errorf("list businesses: %w", err)
	}

	if len(ids) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Starting periodic insight refresh", "business_count", len(ids))

	successCount := 0
	errorCount := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := w.insights.Refresh(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to refresh insights",
				"business_id", id, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Periodic insight refresh completed",
		"total", len(ids),
		"refreshed", successCount,
		"errors", errorCount)

	return nil
}
