package ingest

import (
	"context"

	"github.com/vientodata/enviro-etl-service/internal/catalog"
	"github.com/vientodata/enviro-etl-service/internal/storage"
)

// Quality flags stored with each reading.
const (
	qualityGood    = "good"
	qualityMissing = "missing"
)

// paramSeries pairs one catalog parameter code with its hourly value array.
type paramSeries struct {
	code   string
	values []*float64
}

// buildDataPoints flattens parallel hourly arrays into storable readings.
// Series the upstream omitted entirely are skipped; nil entries within a
// present series become NULL readings, preserving the time axis.
func buildDataPoints(ctx context.Context, params CodeResolver, timeAxis []string, series []paramSeries) ([]storage.DataPoint, error) {
	points := make([]storage.DataPoint, 0, len(timeAxis)*len(series))
	for _, s := range series {
		if len(s.values) == 0 {
			continue
		}
		paramID, err := params.Resolve(ctx, s.code)
		if err != nil {
			return nil, err
		}
		def, err := catalog.LookupParameter(s.code)
		if err != nil {
			return nil, err
		}
		for i, ts := range timeAxis {
			if i >= len(s.values) {
				break
			}
			validTime, err := parseHourlyTime(ts)
			if err != nil {
				continue
			}
			flag := qualityGood
			if s.values[i] == nil {
				flag = qualityMissing
			}
			points = append(points, storage.DataPoint{
				ParameterID: paramID,
				ValidTime:   validTime,
				Value:       s.values[i],
				Unit:        def.Unit,
				QualityFlag: flag,
			})
		}
	}
	return points, nil
}

// at returns the i-th entry of a pointer slice, or nil when the slice is
// shorter than the time axis.
func at[T any](s []*T, i int) *T {
	if i >= len(s) {
		return nil
	}
	return s[i]
}
