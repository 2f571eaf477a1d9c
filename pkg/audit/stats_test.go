package audit

import (
	"math"
	"testing"
)

func TestStandardDeviation(t *testing.T) {
	if got := StandardDeviation(nil); got != 0 {
		t.Errorf("Expected 0 for empty list, got %f", got)
	}

	// population standard deviation, divide by N
	got := StandardDeviation([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if got != 2.0 {
		t.Errorf("Expected 2.0, got %f", got)
	}

	if got := StandardDeviation([]float64{5, 5, 5}); got != 0 {
		t.Errorf("Expected 0 for equal values, got %f", got)
	}

	for _, values := range [][]float64{{1}, {0, 0}, {-3, 7, 12}, {1.5, 2.5}} {
		if got := StandardDeviation(values); got < 0 {
			t.Errorf("Standard deviation must never be negative, got %f for %v", got, values)
		}
	}
}

func TestHoursScore(t *testing.T) {
	delta, target, score := HoursScore([]HoursPair{{0, 10}, {0, 10}})
	if delta != 0 || target != 20 || score != 100.0 {
		t.Errorf("Expected (0, 20, 100.0), got (%f, %f, %f)", delta, target, score)
	}

	// zero total target yields score 0 with the sums still returned
	delta, target, score = HoursScore([]HoursPair{{3, 0}, {2, 0}})
	if delta != 5 || target != 0 || score != 0 {
		t.Errorf("Expected (5, 0, 0), got (%f, %f, %f)", delta, target, score)
	}

	// deviation ratio capped at 1, score floors at 0
	_, _, score = HoursScore([]HoursPair{{50, 10}})
	if score != 0 {
		t.Errorf("Expected score floored at 0, got %f", score)
	}

	delta, target, score = HoursScore([]HoursPair{{5, 50}, {5, 50}})
	if delta != 10 || target != 100 || score != 90.0 {
		t.Errorf("Expected (10, 100, 90.0), got (%f, %f, %f)", delta, target, score)
	}

	delta, target, score = HoursScore(nil)
	if delta != 0 || target != 0 || score != 0 {
		t.Errorf("Expected zeros for empty list, got (%f, %f, %f)", delta, target, score)
	}
}

func TestFairnessScore(t *testing.T) {
	deviation, score := FairnessScore([]float64{5, 5, 5})
	if deviation != 0 || score != 100.0 {
		t.Errorf("Expected (0, 100.0), got (%f, %f)", deviation, score)
	}

	deviation, score = FairnessScore([]float64{0, 10})
	if deviation != 10 || score != 0 {
		t.Errorf("Expected (10, 0.0), got (%f, %f)", deviation, score)
	}

	deviation, score = FairnessScore(nil)
	if deviation != 0 || score != 0 {
		t.Errorf("Expected (0, 0.0) for empty list, got (%f, %f)", deviation, score)
	}

	// zero total sum yields the deviation with score 0
	deviation, score = FairnessScore([]float64{0, 0, 0})
	if deviation != 0 || score != 0 {
		t.Errorf("Expected (0, 0.0) for all-zero list, got (%f, %f)", deviation, score)
	}

	inputs := [][]float64{{1, 2, 3}, {10, 0, 0}, {4}, {2, 8, 2, 8}}
	for _, values := range inputs {
		_, score := FairnessScore(values)
		if score < 0 || score > 100 {
			t.Errorf("Score out of [0, 100] for %v: %f", values, score)
		}
	}
}

func TestWithoutExtremes(t *testing.T) {
	got := WithoutExtremes([]float64{1, 9, 5, 3})
	if len(got) != 2 || got[0] != 5 || got[1] != 3 {
		t.Errorf("Expected [5 3], got %v", got)
	}

	// duplicate extremes: exactly one min and one max entry removed
	got = WithoutExtremes([]float64{1, 1, 3, 3})
	if len(got) != 2 {
		t.Fatalf("Expected 2 entries left, got %v", got)
	}
	if got[0] != 1 || got[1] != 3 {
		t.Errorf("Expected [1 3], got %v", got)
	}

	// all equal: still remove two distinct entries
	got = WithoutExtremes([]float64{2, 2, 2})
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("Expected [2], got %v", got)
	}

	// shorter than 3: unchanged
	got = WithoutExtremes([]float64{7, 1})
	if len(got) != 2 || got[0] != 7 || got[1] != 1 {
		t.Errorf("Expected [7 1] unchanged, got %v", got)
	}
	if got := WithoutExtremes(nil); len(got) != 0 {
		t.Errorf("Expected empty result, got %v", got)
	}
}

func TestHoursPairsWithoutExtremes(t *testing.T) {
	pairs := []HoursPair{{5, 10}, {1, 20}, {9, 30}, {4, 40}}
	got := HoursPairsWithoutExtremes(pairs)
	if len(got) != 2 {
		t.Fatalf("Expected 2 pairs left, got %d", len(got))
	}
	// keyed on the raw delta: {1,20} and {9,30} removed
	if got[0].Target != 10 || got[1].Target != 40 {
		t.Errorf("Expected targets [10 40], got [%f %f]", got[0].Target, got[1].Target)
	}

	short := []HoursPair{{3, 5}, {4, 6}}
	if got := HoursPairsWithoutExtremes(short); len(got) != 2 {
		t.Errorf("Expected short list unchanged, got %v", got)
	}
}

func TestTrimmedStatsAgainstFull(t *testing.T) {
	values := []float64{1, 4, 4, 4, 100}
	full, _ := FairnessScore(values)
	trimmedValues := WithoutExtremes(values)
	trimmed, trimmedScore := FairnessScore(trimmedValues)

	if len(trimmedValues) != 3 {
		t.Fatalf("Expected 3 values after trimming, got %d", len(trimmedValues))
	}
	if trimmed >= full {
		t.Errorf("Outlier removal should shrink total deviation: full %f, trimmed %f", full, trimmed)
	}
	if trimmedScore != 100.0 {
		t.Errorf("Expected perfect score after removing outliers, got %f", trimmedScore)
	}
	if math.Signbit(trimmed) {
		t.Errorf("Deviation must be non-negative, got %f", trimmed)
	}
}
