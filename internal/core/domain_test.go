package core

import (
	"errors"
	"testing"
)

func TestTransactionType_Validate(t *testing.T) {
	tests := []struct {
		name    string
		txType  TransactionType
		wantErr bool
	}{
		{"income", Income, false},
		{"expense", Expense, false},
		{"empty", TransactionType(""), true},
		{"unknown", TransactionType("transfer"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.txType.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTypeForAmount(t *testing.T) {
	if got := TypeForAmount(-12.5); got != Expense {
		t.Errorf("TypeForAmount(-12.5) = %s, want expense", got)
	}
	if got := TypeForAmount(12.5); got != Income {
		t.Errorf("TypeForAmount(12.5) = %s, want income", got)
	}
	if got := TypeForAmount(0); got != Income {
		t.Errorf("TypeForAmount(0) = %s, want income", got)
	}
}

func TestTransactionRecord_Validate(t *testing.T) {
	valid := TransactionRecord{
		Date:        "2024-01-15",
		Description: "Fuel purchase",
		Amount:      -45.50,
		Type:        Expense,
	}

	tests := []struct {
		name    string
		mutate  func(r *TransactionRecord)
		wantErr error
	}{
		{"valid record", func(r *TransactionRecord) {}, nil},
		{"bad type", func(r *TransactionRecord) { r.Type = "refund" }, ErrInvalidType},
		{"blank description", func(r *TransactionRecord) { r.Description = "   " }, ErrEmptyDescription},
		{"bad date", func(r *TransactionRecord) { r.Date = "15/01/2024" }, ErrInvalidDate},
		{"negative income", func(r *TransactionRecord) { r.Type = Income; r.Amount = -10 }, ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransactionRecord_MatchKey(t *testing.T) {
	r := TransactionRecord{Description: "  Monthly RENT "}
	if got := r.MatchKey(); got != "monthly rent" {
		t.Errorf("MatchKey() = %q, want %q", got, "monthly rent")
	}
}

func TestTransactionRecord_AbsAmount(t *testing.T) {
	if got := (TransactionRecord{Amount: -42.5}).AbsAmount(); got != 42.5 {
		t.Errorf("AbsAmount() = %v, want 42.5", got)
	}
	if got := (TransactionRecord{Amount: 42.5}).AbsAmount(); got != 42.5 {
		t.Errorf("AbsAmount() = %v, want 42.5", got)
	}
}
