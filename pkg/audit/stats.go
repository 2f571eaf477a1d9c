package audit

import "math"

// HoursPair is one person's hours delta against their target
type HoursPair struct {
	Delta  float64
	Target float64
}

// StandardDeviation returns the population standard deviation of values,
// rounded to one decimal. An empty list yields 0.
func StandardDeviation(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	average := sum / float64(n)

	var term float64
	for _, v := range values {
		deviation := v - average
		term += deviation * deviation
	}
	return round1(math.Sqrt(term / float64(n)))
}

// HoursScore computes a 0-100 score for hours targets: 100 minus the total
// delta as a percentage of the total target, with the deviation factor
// capped at 1. A zero total target yields a score of 0 with the sums still
// returned.
func HoursScore(pairs []HoursPair) (totalDelta, totalTarget, score float64) {
	for _, p := range pairs {
		totalDelta += p.Delta
		totalTarget += p.Target
	}
	if totalTarget == 0 {
		return totalDelta, totalTarget, 0
	}
	score = round1(100 - 100*math.Min(totalDelta/totalTarget, 1))
	return totalDelta, totalTarget, score
}

// FairnessScore computes a 0-100 score for how evenly values are spread:
// 100 minus the total absolute deviation from the mean as a percentage of
// the total sum, capped at a deviation ratio of 1. An empty list yields
// (0, 0); a zero total sum yields the deviation with a score of 0.
func FairnessScore(values []float64) (totalDeviation, score float64) {
	if len(values) == 0 {
		return 0, 0
	}

	var total float64
	for _, v := range values {
		total += v
	}
	mean := total / float64(len(values))

	for _, v := range values {
		totalDeviation += math.Abs(v - mean)
	}
	if total == 0 {
		return totalDeviation, 0
	}
	score = round1(100 - 100*math.Min(totalDeviation/total, 1))
	return totalDeviation, score
}

// WithoutExtremes returns values with the single minimum and single maximum
// entries removed. Lists shorter than 3 are returned unchanged, so the
// trimmed statistics degenerate to the full-list ones.
func WithoutExtremes(values []float64) []float64 {
	trimmed := make([]float64, 0, len(values))
	minIdx, maxIdx := extremeIndexes(len(values), func(i int) float64 { return values[i] })
	for i, v := range values {
		if i == minIdx || i == maxIdx {
			continue
		}
		trimmed = append(trimmed, v)
	}
	return trimmed
}

// HoursPairsWithoutExtremes trims pairs the same way, keyed on the raw delta
func HoursPairsWithoutExtremes(pairs []HoursPair) []HoursPair {
	trimmed := make([]HoursPair, 0, len(pairs))
	minIdx, maxIdx := extremeIndexes(len(pairs), func(i int) float64 { return pairs[i].Delta })
	for i, p := range pairs {
		if i == minIdx || i == maxIdx {
			continue
		}
		trimmed = append(trimmed, p)
	}
	return trimmed
}

// extremeIndexes picks the single minimum and single maximum entries of a
// list by key. The two indexes are always distinct for lists of 3 or more,
// even when every value is equal; shorter lists yield (-1, -1) so nothing
// is removed.
func extremeIndexes(n int, key func(int) float64) (minIdx, maxIdx int) {
	if n < 3 {
		return -1, -1
	}

	minIdx = 0
	for i := 1; i < n; i++ {
		if key(i) < key(minIdx) {
			minIdx = i
		}
	}

	maxIdx = -1
	for i := 0; i < n; i++ {
		if i == minIdx {
			continue
		}
		if maxIdx == -1 || key(i) > key(maxIdx) {
			maxIdx = i
		}
	}
	return minIdx, maxIdx
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
