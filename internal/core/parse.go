// Package core provides the transaction domain model and parsing utilities.
//
// This file contains functions for normalizing dates and monetary amounts
// coming from external sources (CSV uploads, API payloads) into the canonical
// forms the analytics layer expects.
package core

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts is the ordered fallback chain for date normalization.
// The first layout that parses wins; ambiguous day/month orderings resolve
// in favor of the earlier entry.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"01/02/2006",
}

// NormalizeDate converts a date string in any supported format to the
// canonical YYYY-MM-DD form.
//
// It strips surrounding whitespace and quote characters first. Returns the
// normalized date and true on success, or the cleaned input and false when
// no layout matches. Callers decide whether an unparseable date is fatal;
// the aggregator only excludes such records from date-range computation.
func NormalizeDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	if len(s) > 10 {
		// Timestamps like "2024-01-02T15:04:05" keep only the date part.
		if _, err := time.Parse(DateLayout, s[:10]); err == nil {
			return s[:10], true
		}
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Format(DateLayout), true
		}
	}
	return s, false
}

// ParseAmount converts a monetary string to a float64.
//
// It tolerates surrounding whitespace and quotes and thousands separators
// (1,234.56). Signed values are accepted; the sign carries the
// income/expense convention. Returns an error for anything that is not a
// number after cleanup.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}
