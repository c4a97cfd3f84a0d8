// Package planner computes a tap-water heating plan for a single heatpump.
// One invocation is a pure function of (config, forecast, state, now): given
// identical inputs and jitter seed, two runs produce identical plans.
package planner

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/hweijer/tapplan/core/calendar"
	"github.com/hweijer/tapplan/core/desinfection"
	"github.com/hweijer/tapplan/core/logger"
	"github.com/hweijer/tapplan/core/model"
	"github.com/hweijer/tapplan/core/placement"
)

// Config carries the validated planning parameters. It is compiled from the
// raw configuration document by the config package.
type Config struct {
	Strategy                       string
	PlannableSlots                 model.WeeklySlots
	DesinfectionSlots              model.WeeklyDesinfectionSlots
	SessionDuration                time.Duration
	Local                          *time.Location
	MaxHoursToPlanAhead            int
	MinimalDaysBetweenDesinfection int
	JitterMax                      time.Duration
	JitterSeed                     int64
	BlockWorstHeatingTimes         bool
	BlacklistScope                 placement.BlacklistScope
	BlacklistFraction              float64
}

// Planner runs the planning pipeline: calendar resolution, desinfection
// decision, session placement, plan assembly.
type Planner struct {
	cfg Config
	log logger.Logger
}

// New validates the config and returns a Planner.
func New(cfg Config, log logger.Logger) (*Planner, error) {
	if cfg.SessionDuration <= 0 {
		return nil, fmt.Errorf("session duration must be positive")
	}
	if cfg.MaxHoursToPlanAhead <= 0 {
		return nil, fmt.Errorf("maximumHoursToPlanAhead must be positive")
	}
	if cfg.Local == nil {
		return nil, fmt.Errorf("local timezone is required")
	}
	if _, err := placement.New(cfg.Strategy, placement.Options{}); err != nil {
		return nil, err
	}
	return &Planner{cfg: cfg, log: log}, nil
}

// Plan computes the plan for one run. The heating session is always
// attempted; the desinfection session only when due. A session for which no
// valid placement exists is left out of the plan without error, and an
// unplaced desinfection stays due for the next run.
func (p *Planner) Plan(forecast model.Forecast, state model.PlannerState, referenceNow time.Time) (*model.Plan, error) {
	if err := forecast.Validate(); err != nil {
		return nil, fmt.Errorf("invalid price forecast: %w", err)
	}

	seed := p.cfg.JitterSeed
	if seed == 0 {
		seed = referenceNow.UnixNano()
	}
	strategy, err := placement.New(p.cfg.Strategy, placement.Options{
		JitterMax:              p.cfg.JitterMax,
		Rand:                   rand.New(rand.NewSource(seed)),
		BlockWorstHeatingTimes: p.cfg.BlockWorstHeatingTimes,
		BlacklistScope:         p.cfg.BlacklistScope,
		BlacklistFraction:      p.cfg.BlacklistFraction,
	})
	if err != nil {
		return nil, err
	}

	horizonEnd := referenceNow.Add(time.Duration(p.cfg.MaxHoursToPlanAhead) * time.Hour)
	plan := &model.Plan{
		// Derived from the inputs so that identical runs produce identical
		// plans.
		ID:        uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "tapplan-%d-%d", referenceNow.UnixNano(), seed)).String(),
		CreatedAt: referenceNow,
		State:     model.PlannerState{LastDesinfectionCompletedAt: state.LastDesinfectionCompletedAt},
	}

	heating := model.SessionSpec{
		Kind:       model.SessionHeating,
		Duration:   p.cfg.SessionDuration,
		Windows:    calendar.Resolve(p.cfg.PlannableSlots, referenceNow, horizonEnd, p.cfg.Local),
		HorizonEnd: horizonEnd,
	}
	if session, ok := strategy.Place(heating, forecast); ok {
		plan.Sessions = append(plan.Sessions, session)
		p.log.Infof("planned heating session %s - %s at avg %.4f", session.Start, session.End, session.AveragePrice)
	} else {
		p.log.Warnf("no valid heating placement within the next %dh", p.cfg.MaxHoursToPlanAhead)
	}

	if spec := desinfection.Decide(state.LastDesinfectionCompletedAt, referenceNow,
		p.cfg.MinimalDaysBetweenDesinfection, p.cfg.DesinfectionSlots,
		p.cfg.SessionDuration, horizonEnd, p.cfg.Local); spec != nil {
		if session, ok := strategy.Place(*spec, forecast); ok {
			plan.Sessions = append(plan.Sessions, session)
			end := session.End
			plan.ProposedDesinfection = &end
			p.log.Infof("planned desinfection session %s - %s at avg %.4f", session.Start, session.End, session.AveragePrice)
		} else {
			p.log.Warnf("desinfection is due but no eligible window fits; staying due")
		}
	}

	plan.State.LastPlan = plan.Sessions
	return plan, nil
}
