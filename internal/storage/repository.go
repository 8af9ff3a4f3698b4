package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"finpilot/internal/core"
)

var ErrNotFound = errors.New("not found")

// Business is a tenant owning a transaction history.
type Business struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Insight is a stored narrative finding generated for a business.
type Insight struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	Text       string    `json:"text"`
	Type       string    `json:"insight_type"`
	Severity   string    `json:"severity"`
	CreatedAt  time.Time `json:"created_at"`
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateBusiness inserts a new business and returns it with a fresh ID.
func (r *SQLiteRepository) CreateBusiness(ctx context.Context, name string) (Business, error) {
	b := Business{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO businesses (id, name, created_at) VALUES (?, ?, ?)`,
		b.ID, b.Name, b.CreatedAt)
	if err != nil {
		return Business{}, fmt.Errorf("create business: %w", err)
	}

	slog.InfoContext(ctx, "Business created", "business_id", b.ID, "name", b.Name)
	return b, nil
}

// GetBusiness returns one business by ID, or ErrNotFound.
func (r *SQLiteRepository) GetBusiness(ctx context.Context, id string) (Business, error) {
	var b Business
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM businesses WHERE id = ?`, id).
		Scan(&b.ID, &b.Name, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Business{}, ErrNotFound
	}
	if err != nil {
		return Business{}, fmt.Errorf("get business: %w", err)
	}
	return b, nil
}

// ListBusinesses returns all businesses, newest first.
func (r *SQLiteRepository) ListBusinesses(ctx context.Context) ([]Business, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM businesses ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()

	businesses := make([]Business, 0)
	for rows.Next() {
		var b Business
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan business: %w", err)
		}
		businesses = append(businesses, b)
	}
	return businesses, rows.Err()
}

// ListBusinessIDs returns the IDs of every business, for the insight worker's
// periodic sweep.
func (r *SQLiteRepository) ListBusinessIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM businesses`)
	if err != nil {
		return nil, fmt.Errorf("list business ids: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan business id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CreateTransaction inserts one transaction record and returns its ID.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, businessID string, rec core.TransactionRecord, paymentMethod string) (string, error) {
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions
		 (id, business_id, date, description, amount, type, category_name, entity_name, entity_type, payment_method, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, businessID, rec.Date, rec.Description, rec.Amount, string(rec.Type),
		rec.CategoryName, rec.EntityName, rec.EntityType, paymentMethod, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"transaction_id", id,
		"business_id", businessID,
		"type", string(rec.Type),
		"amount", rec.Amount)

	return id, nil
}

// CreateTransactions bulk-inserts records in a single database transaction.
// methods carries the per-record payment method and may be nil.
func (r *SQLiteRepository) CreateTransactions(ctx context.Context, businessID string, recs []core.TransactionRecord, methods []string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transactions
		 (id, business_id, date, description, amount, type, category_name, entity_name, entity_type, payment_method, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	inserted := 0
	for i, rec := range recs {
		id := rec.ID
		if id == "" {
			id = uuid.NewString()
		}
		method := ""
		if i < len(methods) {
			method = methods[i]
		}
		if _, err := stmt.ExecContext(ctx,
			id, businessID, rec.Date, rec.Description, rec.Amount, string(rec.Type),
			rec.CategoryName, rec.EntityName, rec.EntityType, method, now); err != nil {
			return 0, fmt.Errorf("insert transaction: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transactions: %w", err)
	}

	slog.InfoContext(ctx, "Transactions bulk-inserted",
		"business_id", businessID,
		"transaction_count", inserted)

	return inserted, nil
}

// ListTransactions returns a business's records in ascending date order, the
// order the analytics layer assumes for encounter-order semantics.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, businessID string) ([]core.TransactionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, description, amount, type, category_name, entity_name, entity_type
		 FROM transactions WHERE business_id = ?
		 ORDER BY date ASC, created_at ASC`, businessID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	records := make([]core.TransactionRecord, 0)
	for rows.Next() {
		var rec core.TransactionRecord
		var txType string
		if err := rows.Scan(&rec.ID, &rec.Date, &rec.Description, &rec.Amount, &txType,
			&rec.CategoryName, &rec.EntityName, &rec.EntityType); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		rec.Type = core.TransactionType(txType)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteTransaction removes one record. Missing IDs are not an error.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// ReplaceInsights clears a business's stored insights and inserts the new
// set atomically.
func (r *SQLiteRepository) ReplaceInsights(ctx context.Context, businessID string, insights []Insight) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM insights WHERE business_id = ?`, businessID); err != nil {
		return fmt.Errorf("clear insights: %w", err)
	}

	now := time.Now().UTC()
	for _, ins := range insights {
		id := ins.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO insights (id, business_id, text, insight_type, severity, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, businessID, ins.Text, ins.Type, ins.Severity, now); err != nil {
			return fmt.Errorf("insert insight: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insights: %w", err)
	}

	slog.InfoContext(ctx, "Insights replaced",
		"business_id", businessID,
		"count", len(insights))

	return nil
}

// ListInsights returns a business's stored insights, newest first.
func (r *SQLiteRepository) ListInsights(ctx context.Context, businessID string) ([]Insight, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, business_id, text, insight_type, severity, created_at
		 FROM insights WHERE business_id = ? ORDER BY created_at DESC, id`, businessID)
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	defer rows.Close()

	insights := make([]Insight, 0)
	for rows.Next() {
		var ins Insight
		if err := rows.Scan(&ins.ID, &ins.BusinessID, &ins.Text, &ins.Type, &ins.Severity, &ins.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan insight: %w", err)
		}
		insights = append(insights, ins)
	}
	return insights, rows.Err()
}
