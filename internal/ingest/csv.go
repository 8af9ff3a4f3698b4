// Package ingest turns uploaded CSV statements into normalized raw
// transactions ready for classification and storage.
package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"finpilot/internal/core"
)

// RawTransaction is one CSV row after header aliasing and normalization.
// Classification (category, entity) happens downstream.
type RawTransaction struct {
	Date          string
	Description   string
	Amount        float64
	PaymentMethod string
}

var ErrNoTransactions = errors.New("no valid transactions found in CSV")

// Column aliases seen across exported bank statements. Keys are compared
// against lower-cased, quote-stripped header cells.
var (
	dateAliases        = map[string]bool{"date": true, "transaction date": true, "tx date": true}
	descriptionAliases = map[string]bool{"description": true, "desc": true, "narration": true, "details": true, "particulars": true}
	amountAliases      = map[string]bool{"amount": true, "amt": true, "value": true, "debit/credit": true}
	methodAliases      = map[string]bool{"payment method": true, "method": true, "mode": true, "paymentmethod": true, "payment_method": true}
)

// ParseCSV reads CSV text and extracts transactions. Rows missing any of
// date, description or amount are skipped rather than failing the upload;
// dates are normalized through the ordered fallback chain. Returns
// ErrNoTransactions when nothing usable remains.
func ParseCSV(content string) ([]RawTransaction, error) {
	reader := csv.NewReader(strings.NewReader(strings.TrimSpace(content)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, ErrNoTransactions
	}

	dateCol, descCol, amountCol, methodCol := -1, -1, -1, -1
	for i, cell := range header {
		key := cleanCell(strings.ToLower(cell))
		switch {
		case dateAliases[key] && dateCol == -1:
			dateCol = i
		case descriptionAliases[key] && descCol == -1:
			descCol = i
		case amountAliases[key] && amountCol == -1:
			amountCol = i
		case methodAliases[key] && methodCol == -1:
			methodCol = i
		}
	}
	if dateCol == -1 || descCol == -1 || amountCol == -1 {
		return nil, ErrNoTransactions
	}

	transactions := make([]RawTransaction, 0)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row, skip it and keep going.
			continue
		}

		if dateCol >= len(row) || descCol >= len(row) || amountCol >= len(row) {
			continue
		}

		amount, err := core.ParseAmount(row[amountCol])
		if err != nil {
			continue
		}
		description := cleanCell(row[descCol])
		if description == "" {
			continue
		}
		date, _ := core.NormalizeDate(row[dateCol])
		if date == "" {
			continue
		}

		tx := RawTransaction{
			Date:        date,
			Description: description,
			Amount:      amount,
		}
		if methodCol != -1 && methodCol < len(row) {
			tx.PaymentMethod = strings.TrimSpace(row[methodCol])
		}
		transactions = append(transactions, tx)
	}

	if len(transactions) == 0 {
		return nil, ErrNoTransactions
	}
	return transactions, nil
}

func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.ReplaceAll(s, "'", "")
	return strings.TrimSpace(s)
}
