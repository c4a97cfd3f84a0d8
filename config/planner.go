package config

import (
	"strings"
	"time"

	"github.com/hweijer/tapplan/core/calendar"
	"github.com/hweijer/tapplan/core/model"
	"github.com/hweijer/tapplan/core/placement"
	"github.com/hweijer/tapplan/core/planner"
)

// RawTimeSlot is a time slot as written in the configuration document.
// Times are "HH:MM:SS" wall-clock strings; a Till of "00:00:00" means
// end-of-day, so "00:00:00" - "00:00:00" covers the whole day.
type RawTimeSlot struct {
	From         string   `json:"from"`
	Till         string   `json:"till"`
	IfPriceBelow *float64 `json:"ifPriceBelow"`
}

// PlannerConfig is the raw planning section of the configuration document.
// Weekday keys are lowercase English day names.
type PlannerConfig struct {
	PlanningStrategy                string                   `json:"planningStrategy"`
	PlannableLocalTimeSlots         map[string][]RawTimeSlot `json:"plannableLocalTimeSlots"`
	DesinfectionLocalTimeSlots      map[string][]RawTimeSlot `json:"desinfectionLocalTimeSlots"`
	SessionDurationInSeconds        int                      `json:"sessionDurationInSeconds"`
	LocalTimeZone                   string                   `json:"localTimeZone"`
	HeatpumpTimeZone                string                   `json:"heatpumpTimeZone"`
	MaximumHoursToPlanAhead         int                      `json:"maximumHoursToPlanAhead"`
	DesiredTapWaterTemperature      float64                  `json:"desiredTapWaterTemperature"`
	MinimalDaysBetweenDesinfection  int                      `json:"minimalDaysBetweenDesinfection"`
	JitterMaxMinutes                int                      `json:"jitterMaxMinutes"`
	JitterSeed                      int64                    `json:"jitterSeed"`
	EnableBlockingWorstHeatingTimes bool                     `json:"enableBlockingWorstHeatingTimes"`
	WorstHeatingTimesScope          string                   `json:"worstHeatingTimesScope"`
	WorstHeatingTimesFraction       float64                  `json:"worstHeatingTimesFraction"`
}

// SetDefaults applies sane defaults.
func (c *PlannerConfig) SetDefaults() {
	if c.PlanningStrategy == "" {
		c.PlanningStrategy = placement.StrategyConsecutive
	}
	if c.SessionDurationInSeconds == 0 {
		c.SessionDurationInSeconds = 7200
	}
	if c.MaximumHoursToPlanAhead == 0 {
		c.MaximumHoursToPlanAhead = 12
	}
	if c.MinimalDaysBetweenDesinfection == 0 {
		c.MinimalDaysBetweenDesinfection = 4
	}
	if c.WorstHeatingTimesScope == "" {
		c.WorstHeatingTimesScope = string(placement.BlacklistHorizon)
	}
	if c.DesiredTapWaterTemperature == 0 {
		c.DesiredTapWaterTemperature = 50
	}
}

// Validate checks the raw section for contradictions without compiling it.
func (c PlannerConfig) Validate() error {
	_, _, err := c.Compile()
	return err
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Compile turns the raw section into the planner's typed config plus the
// heatpump's operating timezone. All slot validation happens here: unknown
// zones, unparseable or zero-length slots and overlapping resolved windows
// are configuration errors.
func (c PlannerConfig) Compile() (planner.Config, *time.Location, error) {
	var cfg planner.Config

	local, err := time.LoadLocation(c.LocalTimeZone)
	if err != nil {
		return cfg, nil, errf("unknown localTimeZone %q", c.LocalTimeZone)
	}
	device, err := time.LoadLocation(c.HeatpumpTimeZone)
	if err != nil {
		return cfg, nil, errf("unknown heatpumpTimeZone %q", c.HeatpumpTimeZone)
	}
	if c.SessionDurationInSeconds <= 0 {
		return cfg, nil, errf("sessionDurationInSeconds must be positive, got %d", c.SessionDurationInSeconds)
	}
	if c.MaximumHoursToPlanAhead <= 0 {
		return cfg, nil, errf("maximumHoursToPlanAhead must be positive, got %d", c.MaximumHoursToPlanAhead)
	}
	if c.MinimalDaysBetweenDesinfection <= 0 {
		return cfg, nil, errf("minimalDaysBetweenDesinfection must be positive, got %d", c.MinimalDaysBetweenDesinfection)
	}
	if c.JitterMaxMinutes < 0 {
		return cfg, nil, errf("jitterMaxMinutes must not be negative, got %d", c.JitterMaxMinutes)
	}
	if c.WorstHeatingTimesFraction != 0 && (c.WorstHeatingTimesFraction < 0 || c.WorstHeatingTimesFraction >= 1) {
		return cfg, nil, errf("worstHeatingTimesFraction must be in [0, 1), got %v", c.WorstHeatingTimesFraction)
	}
	scope := placement.BlacklistScope(strings.ToLower(c.WorstHeatingTimesScope))
	if scope != placement.BlacklistHorizon && scope != placement.BlacklistWindows {
		return cfg, nil, errf("worstHeatingTimesScope must be %q or %q, got %q",
			placement.BlacklistHorizon, placement.BlacklistWindows, c.WorstHeatingTimesScope)
	}
	if _, err := placement.New(c.PlanningStrategy, placement.Options{}); err != nil {
		return cfg, nil, &Error{Err: err}
	}

	heatingOnly, err := compileHeatingSlots(c.PlannableLocalTimeSlots)
	if err != nil {
		return cfg, nil, err
	}
	desinfection, err := compileSlots(c.DesinfectionLocalTimeSlots, "desinfectionLocalTimeSlots")
	if err != nil {
		return cfg, nil, err
	}
	if err := checkOverlap(heatingOnly, local, "plannableLocalTimeSlots"); err != nil {
		return cfg, nil, err
	}
	if err := checkDesinfectionOverlap(desinfection, local); err != nil {
		return cfg, nil, err
	}

	cfg = planner.Config{
		Strategy:                       c.PlanningStrategy,
		PlannableSlots:                 heatingOnly,
		DesinfectionSlots:              desinfection,
		SessionDuration:                time.Duration(c.SessionDurationInSeconds) * time.Second,
		Local:                          local,
		MaxHoursToPlanAhead:            c.MaximumHoursToPlanAhead,
		MinimalDaysBetweenDesinfection: c.MinimalDaysBetweenDesinfection,
		JitterMax:                      time.Duration(c.JitterMaxMinutes) * time.Minute,
		JitterSeed:                     c.JitterSeed,
		BlockWorstHeatingTimes:         c.EnableBlockingWorstHeatingTimes,
		BlacklistScope:                 scope,
		BlacklistFraction:              c.WorstHeatingTimesFraction,
	}
	return cfg, device, nil
}

func compileSlots(raw map[string][]RawTimeSlot, section string) (model.WeeklyDesinfectionSlots, error) {
	var out model.WeeklyDesinfectionSlots
	for dayName, slots := range raw {
		day, ok := weekdays[strings.ToLower(dayName)]
		if !ok {
			return out, errf("%s: unknown weekday %q", section, dayName)
		}
		for _, raw := range slots {
			from, err := model.ParseClockTime(raw.From)
			if err != nil {
				return out, errf("%s/%s: %v", section, dayName, err)
			}
			till, err := model.ParseClockTime(raw.Till)
			if err != nil {
				return out, errf("%s/%s: %v", section, dayName, err)
			}
			slot := model.DesinfectionSlot{
				TimeSlot:     model.TimeSlot{From: from, Till: till},
				IfPriceBelow: raw.IfPriceBelow,
			}
			if err := slot.Validate(); err != nil {
				return out, errf("%s/%s: %v", section, dayName, err)
			}
			out[day] = append(out[day], slot)
		}
	}
	return out, nil
}

// compileHeatingSlots compiles the plannable section. Price ceilings belong
// to desinfection slots only; writing one on a heating slot is a
// contradiction, not something to silently ignore.
func compileHeatingSlots(raw map[string][]RawTimeSlot) (model.WeeklySlots, error) {
	var out model.WeeklySlots
	for dayName, slots := range raw {
		for _, s := range slots {
			if s.IfPriceBelow != nil {
				return out, errf("plannableLocalTimeSlots/%s: ifPriceBelow is only valid on desinfection slots", dayName)
			}
		}
	}
	compiled, err := compileSlots(raw, "plannableLocalTimeSlots")
	if err != nil {
		return out, err
	}
	for day, list := range compiled {
		for _, s := range list {
			out[day] = append(out[day], s.TimeSlot)
		}
	}
	return out, nil
}

// checkOverlap resolves one canonical week and rejects configurations whose
// expanded windows collide, including midnight spill-over into the next
// day's slots.
func checkOverlap(slots model.WeeklySlots, loc *time.Location, section string) error {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, loc) // a Monday
	windows := calendar.Resolve(slots, start, start.AddDate(0, 0, 8), loc)
	return overlapError(windows, section)
}

func checkDesinfectionOverlap(slots model.WeeklyDesinfectionSlots, loc *time.Location) error {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, loc)
	windows := calendar.ResolveDesinfection(slots, start, start.AddDate(0, 0, 8), loc)
	return overlapError(windows, "desinfectionLocalTimeSlots")
}

func overlapError(windows []model.Window, section string) error {
	for i := 1; i < len(windows); i++ {
		if windows[i].Overlaps(windows[i-1]) {
			return errf("%s: slots %s - %s and %s - %s overlap", section,
				windows[i-1].Start, windows[i-1].End, windows[i].Start, windows[i].End)
		}
	}
	return nil
}
