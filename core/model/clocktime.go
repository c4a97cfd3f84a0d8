package model

import (
	"fmt"
	"time"
)

// ClockTime is a wall-clock time of day without a date or zone attached.
// The zero value is midnight.
type ClockTime struct {
	Hour   int
	Minute int
	Second int
}

// ParseClockTime parses "HH:MM:SS" or "HH:MM" in the range
// [00:00:00, 24:00:00).
func ParseClockTime(s string) (ClockTime, error) {
	var c ClockTime
	var err error
	switch {
	case len(s) == 0:
		return c, fmt.Errorf("empty clock time")
	default:
		if _, scanErr := fmt.Sscanf(s, "%d:%d:%d", &c.Hour, &c.Minute, &c.Second); scanErr != nil {
			c.Second = 0
			_, err = fmt.Sscanf(s, "%d:%d", &c.Hour, &c.Minute)
		}
	}
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 || c.Second < 0 || c.Second > 59 {
		return ClockTime{}, fmt.Errorf("clock time %q out of range", s)
	}
	return c, nil
}

// IsMidnight reports whether the time is exactly 00:00:00.
func (c ClockTime) IsMidnight() bool {
	return c.Hour == 0 && c.Minute == 0 && c.Second == 0
}

// Offset returns the duration since midnight. Only meaningful for comparing
// two clock times on the same day; zone transitions are handled by On.
func (c ClockTime) Offset() time.Duration {
	return time.Duration(c.Hour)*time.Hour +
		time.Duration(c.Minute)*time.Minute +
		time.Duration(c.Second)*time.Second
}

// Before reports whether c reads earlier on the clock face than o.
func (c ClockTime) Before(o ClockTime) bool {
	return c.Offset() < o.Offset()
}

// On anchors the clock time on the given calendar day in loc.
func (c ClockTime) On(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, c.Hour, c.Minute, c.Second, 0, loc)
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// MarshalText implements encoding.TextMarshaler.
func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ClockTime) UnmarshalText(b []byte) error {
	parsed, err := ParseClockTime(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
