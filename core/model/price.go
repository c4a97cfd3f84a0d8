package model

import (
	"fmt"
	"time"
)

// PriceSample is one bucket of the electricity price forecast. Price is in
// currency per kWh for the whole bucket.
type PriceSample struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
	Price float64   `json:"price" yaml:"price"`
}

// Duration returns the bucket length.
func (s PriceSample) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Forecast is an ordered price time series. Samples are sorted ascending and
// never overlap; gaps between buckets are allowed and must be tolerated by
// consumers.
type Forecast []PriceSample

// Validate checks ordering, non-overlap and positive bucket durations.
func (f Forecast) Validate() error {
	for i, s := range f {
		if !s.End.After(s.Start) {
			return fmt.Errorf("sample %d: end %s not after start %s", i, s.End, s.Start)
		}
		if i > 0 && s.Start.Before(f[i-1].End) {
			return fmt.Errorf("sample %d: start %s overlaps previous end %s", i, s.Start, f[i-1].End)
		}
	}
	return nil
}

// Coverage returns the first covered and last covered instant, or false when
// the forecast is empty.
func (f Forecast) Coverage() (time.Time, time.Time, bool) {
	if len(f) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return f[0].Start, f[len(f)-1].End, true
}

// Between returns the samples overlapping [from, till).
func (f Forecast) Between(from, till time.Time) Forecast {
	var out Forecast
	for _, s := range f {
		if s.End.After(from) && s.Start.Before(till) {
			out = append(out, s)
		}
	}
	return out
}

// Covers reports whether every instant of [from, till) falls inside a
// sample, with no gap.
func (f Forecast) Covers(from, till time.Time) bool {
	cursor := from
	for _, s := range f {
		if !s.End.After(cursor) {
			continue
		}
		if s.Start.After(cursor) {
			return false
		}
		cursor = s.End
		if !cursor.Before(till) {
			return true
		}
	}
	return !cursor.Before(till)
}
