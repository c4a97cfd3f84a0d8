package model

import (
	"fmt"
	"time"
)

// TimeSlot is a recurring local-time interval on a single weekday.
//
// Till is exclusive. A Till of 00:00:00 always means end-of-day (24:00), so
// "00:00:00 - 00:00:00" covers the whole day and "10:00:00 - 00:00:00" runs
// from ten in the morning until midnight. A slot with From later on the clock
// than a non-midnight Till crosses midnight and spills into the next day.
type TimeSlot struct {
	From ClockTime `json:"from" yaml:"from"`
	Till ClockTime `json:"till" yaml:"till"`
}

// CrossesMidnight reports whether the slot spills into the following day.
func (s TimeSlot) CrossesMidnight() bool {
	return !s.Till.IsMidnight() && s.Till.Before(s.From)
}

// Validate rejects slots that cannot be resolved unambiguously.
func (s TimeSlot) Validate() error {
	if s.From == s.Till && !s.From.IsMidnight() {
		return fmt.Errorf("zero-length slot %s - %s", s.From, s.Till)
	}
	return nil
}

// DesinfectionSlot is a TimeSlot with an optional price ceiling. A nil
// IfPriceBelow means any price is acceptable while the slot is open.
type DesinfectionSlot struct {
	TimeSlot     `yaml:",inline"`
	IfPriceBelow *float64 `json:"ifPriceBelow" yaml:"ifPriceBelow,omitempty"`
}

// WeeklySlots is a lookup table of recurring heating slots indexed by
// time.Weekday. A weekday with no slots is an empty list, never a missing
// key.
type WeeklySlots [7][]TimeSlot

// WeeklyDesinfectionSlots is the desinfection counterpart of WeeklySlots.
type WeeklyDesinfectionSlots [7][]DesinfectionSlot

// Window is a concrete absolute interval a session may be placed in,
// carrying the price ceiling of the slot it was resolved from.
type Window struct {
	Start        time.Time
	End          time.Time
	PriceCeiling *float64
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Overlaps reports whether two windows share any instant.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}
