package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"finpilot/internal/amqp"
	"finpilot/internal/core"
	"finpilot/internal/insights"
	"finpilot/internal/services"
	"finpilot/internal/storage"
)

type stubStore struct {
	records  map[string][]core.TransactionRecord
	replaced map[string][]storage.Insight
}

func (s *stubStore) ListTransactions(ctx context.Context, businessID string) ([]core.TransactionRecord, error) {
	return s.records[businessID], nil
}

func (s *stubStore) ReplaceInsights(ctx context.Context, businessID string, ins []storage.Insight) error {
	if s.replaced == nil {
		s.replaced = make(map[string][]storage.Insight)
	}
	s.replaced[businessID] = ins
	return nil
}

func (s *stubStore) ListInsights(ctx context.Context, businessID string) ([]storage.Insight, error) {
	return s.replaced[businessID], nil
}

func (s *stubStore) ListBusinessIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	return ids, nil
}

type stubGenerator struct{}

func (stubGenerator) GenerateInsights(ctx context.Context, data insights.FinancialData) ([]insights.GeneratedInsight, error) {
	return []insights.GeneratedInsight{
		{Title: "Note", Text: "Looks fine.", Type: "info", Severity: "low"},
	}, nil
}

func (stubGenerator) ExecutiveSummary(ctx context.Context, data insights.FinancialData) (string, error) {
	return "", nil
}

func (stubGenerator) Chat(ctx context.Context, cc insights.ChatContext, question string) (string, error) {
	return "", nil
}

func (stubGenerator) ClassifyBatch(ctx context.Context, records []core.TransactionRecord) ([]insights.Classification, error) {
	return make([]insights.Classification, len(records)), nil
}

func newTestWorker(store *stubStore) *InsightWorker {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := services.NewInsightService(store, stubGenerator{}, logger)
	return NewInsightWorker(svc, store)
}

func TestHandleRefreshMessage(t *testing.T) {
	store := &stubStore{records: map[string][]core.TransactionRecord{
		"biz-1": {{Date: "2024-01-01", Description: "Invoice", Amount: 100, Type: core.Income}},
	}}
	w := newTestWorker(store)

	msg := amqp.NewInsightRefreshMessage("biz-1")
	if err := w.HandleRefreshMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleRefreshMessage() error = %v", err)
	}

	if len(store.replaced["biz-1"]) != 1 {
		t.Errorf("stored %d insights, want 1", len(store.replaced["biz-1"]))
	}
}

func TestHandleRefreshMessage_EmptyBusinessID(t *testing.T) {
	w := newTestWorker(&stubStore{})

	msg := &amqp.InsightRefreshMessage{}
	if err := w.HandleRefreshMessage(context.Background(), msg); err != nil {
		t.Errorf("HandleRefreshMessage() error = %v, want nil for malformed message", err)
	}
}

func TestRefreshAll(t *testing.T) {
	store := &stubStore{records: map[string][]core.TransactionRecord{
		"biz-1": {{Date: "2024-01-01", Description: "Invoice", Amount: 100, Type: core.Income}},
		"biz-2": {{Date: "2024-02-01", Description: "Rent", Amount: -500, Type: core.Expense}},
	}}
	w := newTestWorker(store)

	if err := w.RefreshAll(context.Background()); err != nil {
		t.Fatalf("RefreshAll() error = %v", err)
	}

	for _, id := range []string{"biz-1", "biz-2"} {
		if len(store.replaced[id]) != 1 {
			t.Errorf("business %s has %d insights, want 1", id, len(store.replaced[id]))
		}
	}
}
