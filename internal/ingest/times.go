package ingest

import (
	"fmt"
	"time"
)

// Open-Meteo returns local wall-clock timestamps without a zone suffix.
// They are stored as UTC instants of the same wall-clock value so axis
// alignment and uniqueness keys stay deterministic.
const (
	hourlyTimeLayout = "2006-01-02T15:04"
	dateLayout       = "2006-01-02"
)

func parseHourlyTime(s string) (time.Time, error) {
	t, err := time.Parse(hourlyTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

func parseHourlyTimePtr(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := parseHourlyTime(*s)
	if err != nil {
		return nil
	}
	return &t
}
