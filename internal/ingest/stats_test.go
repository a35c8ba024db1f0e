package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

func TestMeanSkipNulls(t *testing.T) {
	tests := []struct {
		name   string
		values []*float64
		want   *float64
	}{
		{name: "empty input", values: nil, want: nil},
		{name: "all nil", values: []*float64{nil, nil, nil}, want: nil},
		{name: "skips nil entries", values: []*float64{fptr(1), nil, fptr(3)}, want: fptr(2)},
		{name: "single value", values: []*float64{fptr(4.5)}, want: fptr(4.5)},
		{name: "rounds to two decimals", values: []*float64{fptr(1), fptr(1), fptr(2)}, want: fptr(1.33)},
		{name: "negative values", values: []*float64{fptr(-2), fptr(2)}, want: fptr(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MeanSkipNulls(tt.values)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 0.0001)
		})
	}
}

func TestQualityScore(t *testing.T) {
	assert.Zero(t, QualityScore(0, 0), "zero expected samples never divides")
	assert.InDelta(t, 50.0, QualityScore(24, 12), 0.0001)
	assert.InDelta(t, 100.0, QualityScore(24, 24), 0.0001)
}

func TestQualityFlag(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, QualityGood},
		{76, QualityGood},
		{75, QualityFair}, // boundary belongs to the lower bucket
		{51, QualityFair},
		{50, QualityPoor},
		{0, QualityPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, QualityFlag(tt.score), "score %v", tt.score)
	}
}
