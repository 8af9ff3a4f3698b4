package services

import (
	"context"
	"fmt"
	"log/slog"

	"finpilot/internal/core"
	"finpilot/internal/ingest"
	"finpilot/internal/insights"
)

// TransactionWriter is the slice of the repository the ingest service needs.
type TransactionWriter interface {
	CreateTransactions(ctx context.Context, businessID string, recs []core.TransactionRecord, methods []string) (int, error)
}

// RefreshPublisher requests an asynchronous insight refresh after an import.
type RefreshPublisher interface {
	PublishRefresh(ctx context.Context, businessID string) error
}

type IngestService struct {
	store      TransactionWriter
	generator  insights.Generator // nil when no LLM is configured
	publisher  RefreshPublisher   // nil when AMQP is not configured
	batchSize  int
	logger     *slog.Logger
}

func NewIngestService(store TransactionWriter, generator insights.Generator, publisher RefreshPublisher, batchSize int, logger *slog.Logger) *IngestService {
	return &IngestService{
		store:     store,
		generator: generator,
		publisher: publisher,
		batchSize: batchSize,
		logger:    logger,
	}
}

// ImportCSV parses CSV text, classifies the rows and stores them for the
// business. Returns the number of transactions imported.
func (s *IngestService) ImportCSV(ctx context.Context, businessID, content string) (int, error) {
	raw, err := ingest.ParseCSV(content)
	if err != nil {
		return 0, err
	}

	records := make([]core.TransactionRecord, len(raw))
	methods := make([]string, len(raw))
	for i, tx := range raw {
		records[i] = core.TransactionRecord{
			Date:        tx.Date,
			Description: tx.Description,
			Amount:      tx.Amount,
			Type:        core.TypeForAmount(tx.Amount),
		}
		methods[i] = tx.PaymentMethod
	}

	s.classify(ctx, records)

	count, err := s.store.CreateTransactions(ctx, businessID, records, methods)
	if err != nil {
		return 0, fmt.Errorf("store transactions: %w", err)
	}

	s.logger.InfoContext(ctx, "CSV import complete",
		"business_id", businessID,
		"transaction_count", count)

	s.requestRefresh(ctx, businessID)

	return count, nil
}

// classify fills category and entity fields in place, batch by batch. Model
// failures degrade to deterministic defaults instead of failing the import.
func (s *IngestService) classify(ctx context.Context, records []core.TransactionRecord) {
	if s.generator == nil {
		for i := range records {
			c := insights.FallbackClassification(records[i])
			records[i].CategoryName = c.CategoryName
			records[i].EntityName = c.EntityName
			records[i].EntityType = c.EntityType
		}
		return
	}

	size := s.batchSize
	if size < 1 {
		size = 1
	}
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		classifications, err := s.generator.ClassifyBatch(ctx, batch)
		if err != nil || len(classifications) != len(batch) {
			s.logger.WarnContext(ctx, "Batch classification failed, using fallbacks",
				"batch_start", start, "error", err)
			for i := range batch {
				c := insights.FallbackClassification(batch[i])
				batch[i].CategoryName = c.CategoryName
				batch[i].EntityName = c.EntityName
				batch[i].EntityType = c.EntityType
			}
			continue
		}
		for i, c := range classifications {
			batch[i].CategoryName = c.CategoryName
			batch[i].EntityName = c.EntityName
			batch[i].EntityType = c.EntityType
		}
	}
}

func (s *IngestService) requestRefresh(ctx context.Context, businessID string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRefresh(ctx, businessID); err != nil {
		// An import must not fail because the broker is down.
		s.logger.WarnContext(ctx, "Failed to request insight refresh",
			"business_id", businessID, "error", err)
	}
}
