// Package calendar expands recurring weekly time slots into concrete
// absolute intervals on a planning horizon.
//
// All resolution happens in a single local timezone; the resulting windows
// are absolute instants and zone-independent from there on. Conversion to
// the heatpump's operating timezone only happens at the device boundary.
package calendar

import (
	"sort"
	"time"

	"github.com/hweijer/tapplan/core/model"
)

// Resolve expands the weekly heating slots into absolute windows intersected
// with [referenceNow, horizonEnd]. Windows are sorted by start and clipped
// to the horizon; windows from consecutive days are kept separate even when
// contiguous.
func Resolve(slots model.WeeklySlots, referenceNow, horizonEnd time.Time, loc *time.Location) []model.Window {
	var out []model.Window
	eachDay(referenceNow, horizonEnd, loc, func(year int, month time.Month, day int, weekday time.Weekday) {
		for _, slot := range slots[weekday] {
			out = append(out, expand(slot, nil, year, month, day, loc)...)
		}
	})
	return clipAndSort(out, referenceNow, horizonEnd)
}

// ResolveDesinfection is Resolve for desinfection slots; each resolved
// window carries the price ceiling of the slot it came from.
func ResolveDesinfection(slots model.WeeklyDesinfectionSlots, referenceNow, horizonEnd time.Time, loc *time.Location) []model.Window {
	var out []model.Window
	eachDay(referenceNow, horizonEnd, loc, func(year int, month time.Month, day int, weekday time.Weekday) {
		for _, slot := range slots[weekday] {
			out = append(out, expand(slot.TimeSlot, slot.IfPriceBelow, year, month, day, loc)...)
		}
	})
	return clipAndSort(out, referenceNow, horizonEnd)
}

// eachDay visits every calendar day the horizon touches, starting one day
// early so that midnight-crossing slots of the previous day are not lost.
func eachDay(referenceNow, horizonEnd time.Time, loc *time.Location, visit func(year int, month time.Month, day int, weekday time.Weekday)) {
	day := referenceNow.In(loc).AddDate(0, 0, -1)
	last := horizonEnd.In(loc)
	for {
		y, m, d := day.Date()
		visit(y, m, d, day.Weekday())
		if y2, m2, d2 := last.Date(); y == y2 && m == m2 && d == d2 {
			return
		}
		day = day.AddDate(0, 0, 1)
	}
}

// expand turns one slot on one calendar day into up to two windows. The end
// of a slot whose Till is 00:00:00 is the next day's midnight, and a slot
// crossing midnight is split so each part stays within a single day.
func expand(slot model.TimeSlot, ceiling *float64, year int, month time.Month, day int, loc *time.Location) []model.Window {
	start := slot.From.On(year, month, day, loc)
	nextMidnight := model.ClockTime{}.On(year, month, day+1, loc)

	if slot.Till.IsMidnight() {
		return []model.Window{{Start: start, End: nextMidnight, PriceCeiling: ceiling}}
	}
	end := slot.Till.On(year, month, day, loc)
	if slot.CrossesMidnight() {
		return []model.Window{
			{Start: start, End: nextMidnight, PriceCeiling: ceiling},
			{Start: model.ClockTime{}.On(year, month, day+1, loc), End: slot.Till.On(year, month, day+1, loc), PriceCeiling: ceiling},
		}
	}
	return []model.Window{{Start: start, End: end, PriceCeiling: ceiling}}
}

func clipAndSort(windows []model.Window, referenceNow, horizonEnd time.Time) []model.Window {
	out := windows[:0]
	for _, w := range windows {
		if w.Start.Before(referenceNow) {
			w.Start = referenceNow
		}
		if w.End.After(horizonEnd) {
			w.End = horizonEnd
		}
		if w.End.After(w.Start) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].End.Before(out[j].End)
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out
}
