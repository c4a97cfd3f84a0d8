package placement

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/hweijer/tapplan/core/model"
)

// Consecutive places the whole session duration inside one uninterrupted
// qualifying interval: every forecast bucket the session overlaps must
// individually sit below the window's price ceiling, a single expensive
// sub-bucket disqualifies the candidate.
type Consecutive struct {
	opts Options
}

type candidate struct {
	start        time.Time
	windowEnd    time.Time
	cost         float64
	averagePrice float64
	belowCeiling bool
}

// Place implements Strategy.
func (c *Consecutive) Place(spec model.SessionSpec, forecast model.Forecast) (model.ScheduledSession, bool) {
	windows := clipToForecast(spec.Windows, forecast, spec.HorizonEnd)
	if spec.Kind == model.SessionHeating && c.opts.BlockWorstHeatingTimes {
		windows = subtract(windows, c.blockedBuckets(windows, forecast))
	}

	var best *candidate
	for _, w := range windows {
		if w.Duration() < spec.Duration {
			continue
		}
		for _, sample := range forecast {
			start := sample.Start
			if start.Before(w.Start) || start.Add(spec.Duration).After(w.End) {
				continue
			}
			cand, ok := evaluate(start, spec.Duration, w, forecast)
			if !ok {
				continue
			}
			if best == nil || cand.cost < best.cost ||
				(cand.cost == best.cost && cand.start.Before(best.start)) {
				best = &cand
			}
		}
	}
	if best == nil {
		return model.ScheduledSession{}, false
	}

	start := c.jitter(best.start, spec.Duration, best.windowEnd)
	return model.ScheduledSession{
		Kind:         spec.Kind,
		Start:        start,
		End:          start.Add(spec.Duration),
		AveragePrice: best.averagePrice,
		BelowCeiling: best.belowCeiling,
	}, true
}

// evaluate computes the price-weighted cost of running from start for dur.
// Candidates spanning a forecast gap or a bucket at or above the window's
// ceiling are rejected.
func evaluate(start time.Time, dur time.Duration, w model.Window, forecast model.Forecast) (candidate, bool) {
	end := start.Add(dur)
	if !forecast.Covers(start, end) {
		return candidate{}, false
	}
	var cost float64
	below := false
	for _, s := range forecast.Between(start, end) {
		if w.PriceCeiling != nil {
			if s.Price >= *w.PriceCeiling {
				return candidate{}, false
			}
			below = true
		}
		overlap := minTime(s.End, end).Sub(maxTime(s.Start, start))
		cost += s.Price * overlap.Hours()
	}
	return candidate{
		start:        start,
		windowEnd:    w.End,
		cost:         cost,
		averagePrice: cost / dur.Hours(),
		belowCeiling: below,
	}, true
}

// blockedBuckets returns the forecast buckets whose price falls in the top
// bracket of the price distribution, per the configured scope.
func (c *Consecutive) blockedBuckets(windows []model.Window, forecast model.Forecast) []model.Window {
	population := forecast
	if c.opts.BlacklistScope == BlacklistWindows {
		population = nil
		for _, s := range forecast {
			for _, w := range windows {
				if s.End.After(w.Start) && s.Start.Before(w.End) {
					population = append(population, s)
					break
				}
			}
		}
	}
	if len(population) < 2 {
		return nil
	}

	fraction := c.opts.BlacklistFraction
	if fraction <= 0 || fraction >= 1 {
		fraction = 0.25
	}
	prices := make([]float64, len(population))
	for i, s := range population {
		prices[i] = s.Price
	}
	sort.Float64s(prices)
	threshold := stat.Quantile(1-fraction, stat.Empirical, prices, nil)

	var blocked []model.Window
	for _, s := range population {
		if s.Price > threshold {
			blocked = append(blocked, model.Window{Start: s.Start, End: s.End})
		}
	}
	return blocked
}

// subtract carves the blocked intervals out of the windows, splitting
// windows where a blocked bucket falls in the middle.
func subtract(windows, blocked []model.Window) []model.Window {
	if len(blocked) == 0 {
		return windows
	}
	var out []model.Window
	for _, w := range windows {
		parts := []model.Window{w}
		for _, b := range blocked {
			var next []model.Window
			for _, p := range parts {
				if !p.Overlaps(b) {
					next = append(next, p)
					continue
				}
				if b.Start.After(p.Start) {
					next = append(next, model.Window{Start: p.Start, End: b.Start, PriceCeiling: p.PriceCeiling})
				}
				if b.End.Before(p.End) {
					next = append(next, model.Window{Start: b.End, End: p.End, PriceCeiling: p.PriceCeiling})
				}
			}
			parts = next
		}
		out = append(out, parts...)
	}
	return out
}

// clipToForecast intersects windows with the forecast's covered range and
// the horizon end.
func clipToForecast(windows []model.Window, forecast model.Forecast, horizonEnd time.Time) []model.Window {
	first, last, ok := forecast.Coverage()
	if !ok {
		return nil
	}
	if last.After(horizonEnd) {
		last = horizonEnd
	}
	var out []model.Window
	for _, w := range windows {
		if w.Start.Before(first) {
			w.Start = first
		}
		if w.End.After(last) {
			w.End = last
		}
		if w.End.After(w.Start) {
			out = append(out, w)
		}
	}
	return out
}

// jitter shifts the start by a random whole-minute offset within JitterMax,
// clamping back to the unperturbed start when the session would no longer
// fit the window.
func (c *Consecutive) jitter(start time.Time, dur time.Duration, windowEnd time.Time) time.Time {
	if c.opts.Rand == nil || c.opts.JitterMax < time.Minute {
		return start
	}
	offset := time.Duration(c.opts.Rand.Int63n(int64(c.opts.JitterMax/time.Minute)+1)) * time.Minute
	shifted := start.Add(offset)
	if shifted.Add(dur).After(windowEnd) {
		return start
	}
	return shifted
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
