package analytics

import (
	"sort"
	"strconv"

	"finpilot/internal/core"
)

const (
	// recurringTolerance is the maximum relative deviation from the group
	// mean for a group to qualify as recurring.
	recurringTolerance = 0.1

	// anomalyThreshold is the magnitude-to-mean ratio above which a record
	// is flagged.
	anomalyThreshold = 2.5

	// anomalyLimit caps how many anomalies are reported across both types.
	anomalyLimit = 5

	// meanFloor guards ratio computations against near-zero means.
	meanFloor = 0.01
)

// DetectRecurring finds groups of same-description records with low amount
// variance. Callers restrict the input to expense-type records. A group of
// two or more qualifies only if every member's absolute amount lies within
// tolerance of the group mean; one outlier disqualifies the whole group.
func DetectRecurring(records []core.TransactionRecord) []RecurringGroup {
	groups := make(map[string][]core.TransactionRecord)
	order := make([]string, 0)
	for _, r := range records {
		key := r.MatchKey()
		if key == "" {
			continue
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}

	recurring := make([]RecurringGroup, 0)
	for _, key := range order {
		group := groups[key]
		if len(group) < 2 {
			continue
		}

		var sum float64
		for _, r := range group {
			sum += r.AbsAmount()
		}
		mean := sum / float64(len(group))

		denom := mean
		if denom < meanFloor {
			denom = meanFloor
		}
		allSimilar := true
		for _, r := range group {
			dev := r.AbsAmount() - mean
			if dev < 0 {
				dev = -dev
			}
			if dev/denom >= recurringTolerance {
				allSimilar = false
				break
			}
		}
		if !allSimilar {
			continue
		}

		recurring = append(recurring, RecurringGroup{
			Description: group[0].Description,
			Count:       len(group),
			AvgAmount:   round2(mean),
			Category:    group[0].CategoryName,
			Type:        string(group[0].Type),
		})
	}

	return recurring
}

// DetectAnomalies flags records whose magnitude exceeds the threshold
// multiple of their type's mean. Each type needs at least 3 records to be
// considered; the top results across both types are returned by descending
// multiplier.
func DetectAnomalies(records []core.TransactionRecord) []Anomaly {
	anomalies := make([]Anomaly, 0)
	for _, txType := range []core.TransactionType{core.Income, core.Expense} {
		typed := make([]core.TransactionRecord, 0, len(records))
		for _, r := range records {
			if r.Type == txType {
				typed = append(typed, r)
			}
		}
		if len(typed) < 3 {
			continue // insufficient sample
		}

		var sum float64
		for _, r := range typed {
			sum += r.AbsAmount()
		}
		mean := sum / float64(len(typed))
		if mean < meanFloor {
			mean = meanFloor
		}

		for _, r := range typed {
			mult := r.AbsAmount() / mean
			if mult > anomalyThreshold {
				anomalies = append(anomalies, Anomaly{
					TransactionRecord: r,
					Multiplier:        round1(mult),
				})
			}
		}
	}

	sort.SliceStable(anomalies, func(i, j int) bool {
		return anomalies[i].Multiplier > anomalies[j].Multiplier
	})
	if len(anomalies) > anomalyLimit {
		anomalies = anomalies[:anomalyLimit]
	}
	return anomalies
}

// DetectDuplicates reports records sharing a (date, amount, normalized
// description) key with an earlier record, in encounter order. Exact key
// equality only, no fuzzy matching.
func DetectDuplicates(records []core.TransactionRecord) []core.TransactionRecord {
	seen := make(map[string]bool)
	duplicates := make([]core.TransactionRecord, 0)
	for _, r := range records {
		key := r.Date + "|" + strconv.FormatFloat(r.Amount, 'g', -1, 64) + "|" + r.MatchKey()
		if seen[key] {
			duplicates = append(duplicates, r)
		} else {
			seen[key] = true
		}
	}
	return duplicates
}
