package ingest

import "math"

// MeanSkipNulls averages the non-nil entries of values, rounded to two
// decimal places. It returns nil when values is empty or every entry is nil,
// so a day with no readings persists as NULL rather than zero.
func MeanSkipNulls(values []*float64) *float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v == nil {
			continue
		}
		sum += *v
		n++
	}
	if n == 0 {
		return nil
	}
	mean := math.Round(sum/float64(n)*100) / 100
	return &mean
}

// QualityScore is the percentage of expected samples that carried a value.
// A zero total yields zero, never a division error.
func QualityScore(total, valid int) float64 {
	if total == 0 {
		return 0
	}
	return float64(valid) / float64(total) * 100
}

// Quality flags for aggregated rows.
const (
	QualityGood = "good"
	QualityFair = "fair"
	QualityPoor = "poor"
)

// QualityFlag buckets a completeness score: above 75 is good, above 50 is
// fair, anything else poor.
func QualityFlag(score float64) string {
	switch {
	case score > 75:
		return QualityGood
	case score > 50:
		return QualityFair
	default:
		return QualityPoor
	}
}
