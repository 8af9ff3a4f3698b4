package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// DateLayout is the canonical date format for transaction records.
// Every record entering the analytics layer carries its date in this form.
const DateLayout = "2006-01-02"

type (
	TransactionType string

	// TransactionRecord is one financial transaction as consumed by the
	// analytics layer. Expense amounts may be stored negative; aggregation
	// always works on absolute values.
	TransactionRecord struct {
		ID           string
		Date         string // canonical YYYY-MM-DD
		Description  string
		Amount       float64
		Type         TransactionType
		CategoryName string
		EntityName   string
		EntityType   string // "customer" or "supplier", empty when unknown
	}
)

var (
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
)

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

// TypeForAmount returns the transaction type implied by the sign convention:
// negative amounts are expenses, everything else is income.
func TypeForAmount(amount float64) TransactionType {
	if amount < 0 {
		return Expense
	}
	return Income
}

func (r TransactionRecord) Validate() error {
	if err := r.Type.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(r.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(r.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return ErrInvalidDate
	}
	if r.Type == Income && r.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// MatchKey returns the description in its normalized matching form:
// lower-cased and whitespace-trimmed.
func (r TransactionRecord) MatchKey() string {
	return strings.ToLower(strings.TrimSpace(r.Description))
}

// AbsAmount returns the magnitude of the record's amount.
func (r TransactionRecord) AbsAmount() float64 {
	if r.Amount < 0 {
		return -r.Amount
	}
	return r.Amount
}
