package analytics

import (
	"math"
	"testing"

	"finpilot/internal/core"
)

func TestDetectRecurring(t *testing.T) {
	tests := []struct {
		name    string
		amounts []float64
		want    int
	}{
		{
			name:    "stable rent qualifies",
			amounts: []float64{1000, 1000, 1010, 990, 1005},
			want:    1,
		},
		{
			name:    "one outlier disqualifies the whole group",
			amounts: []float64{1000, 1000, 1010, 990, 2000},
			want:    0,
		},
		{
			name:    "single occurrence is not recurring",
			amounts: []float64{1000},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([]core.TransactionRecord, 0, len(tt.amounts))
			for i, a := range tt.amounts {
				r := expense("2024-01-01", "Rent", -a)
				r.ID = string(rune('a' + i))
				r.CategoryName = "Rent"
				records = append(records, r)
			}

			got := DetectRecurring(records)
			if len(got) != tt.want {
				t.Fatalf("recurring groups = %d, want %d", len(got), tt.want)
			}
			if tt.want == 1 {
				g := got[0]
				if g.Count != len(tt.amounts) {
					t.Errorf("Count = %d, want %d", g.Count, len(tt.amounts))
				}
				if math.Abs(g.AvgAmount-1001) > 0.01 {
					t.Errorf("AvgAmount = %v, want 1001", g.AvgAmount)
				}
				if g.Category != "Rent" || g.Type != "expense" {
					t.Errorf("group metadata = %s/%s, want Rent/expense", g.Category, g.Type)
				}
			}
		})
	}
}

func TestDetectRecurring_DescriptionNormalization(t *testing.T) {
	records := []core.TransactionRecord{
		expense("2024-01-01", "Netflix", -15),
		expense("2024-02-01", "netflix ", -15),
		expense("2024-03-01", " NETFLIX", -15),
	}

	got := DetectRecurring(records)

	if len(got) != 1 {
		t.Fatalf("recurring groups = %d, want 1 (case/space-insensitive grouping)", len(got))
	}
	if got[0].Count != 3 {
		t.Errorf("Count = %d, want 3", got[0].Count)
	}
	// The representative description is the first member's original text.
	if got[0].Description != "Netflix" {
		t.Errorf("Description = %q, want %q", got[0].Description, "Netflix")
	}
}

func TestDetectAnomalies(t *testing.T) {
	records := []core.TransactionRecord{
		expense("2024-01-01", "Coffee", -10),
		expense("2024-01-02", "Coffee", -10),
		expense("2024-01-03", "Coffee", -10),
		expense("2024-01-04", "Coffee", -10),
		expense("2024-01-05", "Equipment", -100),
	}

	got := DetectAnomalies(records)

	if len(got) != 1 {
		t.Fatalf("anomalies = %d, want 1", len(got))
	}
	// Mean abs amount is 28, so 100 is ~3.6x.
	if got[0].Description != "Equipment" {
		t.Errorf("flagged %q, want Equipment", got[0].Description)
	}
	if got[0].Multiplier < 2.5 {
		t.Errorf("Multiplier = %v, want >= 2.5", got[0].Multiplier)
	}
	if math.Abs(got[0].Multiplier-3.6) > 1e-9 {
		t.Errorf("Multiplier = %v, want 3.6 (rounded to 1 decimal)", got[0].Multiplier)
	}
}

func TestDetectAnomalies_InsufficientSample(t *testing.T) {
	records := []core.TransactionRecord{
		expense("2024-01-01", "A", -10),
		expense("2024-01-02", "B", -1000),
	}

	if got := DetectAnomalies(records); len(got) != 0 {
		t.Errorf("anomalies = %d, want 0 with fewer than 3 records per type", len(got))
	}
}

func TestDetectAnomalies_TopFiveByMultiplier(t *testing.T) {
	records := make([]core.TransactionRecord, 0)
	// A large base of small expenses keeps the mean low.
	for i := 0; i < 40; i++ {
		records = append(records, expense("2024-01-01", "Base", -10))
	}
	// Seven spikes of increasing size, all well past the threshold; only
	// the top 5 should be reported.
	for i := 1; i <= 7; i++ {
		records = append(records, expense("2024-01-02", "Spike", float64(-10000*i)))
	}

	got := DetectAnomalies(records)

	if len(got) != 5 {
		t.Fatalf("anomalies = %d, want 5", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Multiplier > got[i-1].Multiplier {
			t.Errorf("anomalies not sorted by descending multiplier at index %d", i)
		}
	}
	if got[0].Amount != -70000 {
		t.Errorf("top anomaly amount = %v, want -70000", got[0].Amount)
	}
}

func TestDetectDuplicates(t *testing.T) {
	records := []core.TransactionRecord{
		expense("2024-01-01", "Fuel", -50),
		expense("2024-01-01", "fuel ", -50), // same key after normalization
		expense("2024-01-02", "Fuel", -50),  // different date, not a duplicate
	}

	got := DetectDuplicates(records)

	if len(got) != 1 {
		t.Fatalf("duplicates = %d, want 1", len(got))
	}
	if got[0].Description != "fuel " {
		t.Errorf("duplicate = %q, want the second record", got[0].Description)
	}
}

func TestDetectDuplicates_EncounterOrder(t *testing.T) {
	records := []core.TransactionRecord{
		expense("2024-01-01", "A", -10),
		expense("2024-01-01", "B", -20),
		expense("2024-01-01", "B", -20),
		expense("2024-01-01", "A", -10),
		expense("2024-01-01", "A", -10),
	}

	got := DetectDuplicates(records)

	if len(got) != 3 {
		t.Fatalf("duplicates = %d, want 3", len(got))
	}
	wantDesc := []string{"B", "A", "A"}
	for i, w := range wantDesc {
		if got[i].Description != w {
			t.Errorf("duplicates[%d] = %q, want %q", i, got[i].Description, w)
		}
	}
}

func TestDetectDuplicates_AmountSensitivity(t *testing.T) {
	records := []core.TransactionRecord{
		expense("2024-01-01", "Fuel", -50),
		expense("2024-01-01", "Fuel", -50.01),
	}

	if got := DetectDuplicates(records); len(got) != 0 {
		t.Errorf("duplicates = %d, want 0 for differing amounts", len(got))
	}
}
