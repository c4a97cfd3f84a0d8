// Package desinfection decides whether an anti-legionella cycle is due and
// within which calendar windows it may be scheduled.
package desinfection

import (
	"time"

	"github.com/hweijer/tapplan/core/calendar"
	"github.com/hweijer/tapplan/core/model"
)

// Decide returns the session spec for a desinfection cycle, or nil when no
// cycle is due yet.
//
// Due-ness uses calendar-day granularity in the local timezone: a cycle is
// due when no cycle ever completed or when at least minimalDaysBetween local
// calendar days passed since the last completed cycle. The returned spec may
// carry no windows at all (no desinfection slot opens within the horizon);
// placement then finds nothing and the cycle simply stays due for the next
// run. Each window keeps the price ceiling of its own slot.
func Decide(lastCompletedAt *time.Time, referenceNow time.Time, minimalDaysBetween int,
	slots model.WeeklyDesinfectionSlots, duration time.Duration, horizonEnd time.Time, loc *time.Location) *model.SessionSpec {

	if lastCompletedAt != nil && daysBetween(*lastCompletedAt, referenceNow, loc) < minimalDaysBetween {
		return nil
	}
	return &model.SessionSpec{
		Kind:       model.SessionDesinfection,
		Duration:   duration,
		Windows:    calendar.ResolveDesinfection(slots, referenceNow, horizonEnd, loc),
		HorizonEnd: horizonEnd,
	}
}

// daysBetween counts whole local calendar days from a to b, ignoring the
// time of day. Crossing midnight counts as one day regardless of hours.
func daysBetween(a, b time.Time, loc *time.Location) int {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	aDay := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	bDay := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(bDay.Sub(aDay) / (24 * time.Hour))
}
