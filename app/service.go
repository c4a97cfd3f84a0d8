// Package app wires the planning core to its external collaborators for one
// run: the blob store, the device executor, the metrics sinks and the
// optional MQTT announcement.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/hweijer/tapplan/config"
	"github.com/hweijer/tapplan/core/model"
	"github.com/hweijer/tapplan/core/planner"

	coremetrics "github.com/hweijer/tapplan/core/metrics"
	"github.com/hweijer/tapplan/infra/logger"
	"github.com/hweijer/tapplan/infra/luxtronik"
	"github.com/hweijer/tapplan/infra/mqtt"
	"github.com/hweijer/tapplan/infra/state"

	// Register the built-in metrics sinks.
	_ "github.com/hweijer/tapplan/infra/metrics"
)

// Service runs one planning invocation end to end.
type Service struct {
	cfg       *config.Config
	planner   *planner.Planner
	executor  planner.Executor
	store     *state.Store
	sink      coremetrics.MetricsSink
	publisher *mqtt.PlanPublisher
	log       logger.Logger
}

// New builds a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")

	plannerCfg, deviceZone, err := cfg.Planner.Compile()
	if err != nil {
		return nil, err
	}
	p, err := planner.New(plannerCfg, logger.New("planner"))
	if err != nil {
		return nil, err
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	var executor planner.Executor = planner.NopExecutor{}
	if !cfg.DryRun {
		executor = luxtronik.NewExecutor(cfg.Heatpump, cfg.Planner.DesiredTapWaterTemperature, deviceZone)
	}

	return &Service{
		cfg:       cfg,
		planner:   p,
		executor:  executor,
		store:     state.NewStore(cfg.State.Dir),
		sink:      sink,
		publisher: mqtt.NewPlanPublisher(cfg.MQTT),
		log:       log,
	}, nil
}

// Run executes one planning invocation. State is only persisted after the
// plan was computed and handed to the device; any earlier failure leaves
// the previous state blob authoritative for the next run.
func (s *Service) Run(ctx context.Context) error {
	now := time.Now()

	prior := s.store.LoadState(s.cfg.State.StateKey)
	forecast, err := s.store.LoadSpotPrices(s.cfg.State.SpotPricesKey)
	if err != nil {
		return fmt.Errorf("load spot prices: %w", err)
	}

	plan, err := s.planner.Plan(forecast, prior, now)
	if err != nil {
		return err
	}

	// An empty plan is still persisted: each run fully supersedes the
	// previous one, so sessions from a prior plan must not keep being
	// advertised.
	var results []planner.SessionResult
	if len(plan.Sessions) == 0 {
		s.log.Warnf("nothing plannable this run")
	} else {
		results, err = s.executor.Execute(ctx, plan)
		if err != nil {
			return fmt.Errorf("execute plan: %w", err)
		}
	}
	executed := map[model.SessionKind]bool{}
	for _, r := range results {
		// A dry run touches no device, so nothing counts as executed and
		// the desinfection bookkeeping stays put.
		executed[r.Kind] = r.OK && !s.cfg.DryRun
		if !r.OK {
			s.log.Errorf("%s session failed on device: %s", r.Kind, r.Err)
		}
	}
	if executed[model.SessionDesinfection] {
		plan.ConfirmDesinfection()
	}

	if err := s.store.StoreState(s.cfg.State.StateKey, plan.State); err != nil {
		return err
	}

	s.record(plan, executed, len(forecast))
	if err := s.publisher.Publish(plan); err != nil {
		s.log.Warnf("plan announcement failed: %v", err)
	}

	for _, r := range results {
		if !r.OK {
			return fmt.Errorf("%s session was not accepted by the device", r.Kind)
		}
	}
	return nil
}

func (s *Service) record(plan *model.Plan, executed map[model.SessionKind]bool, forecastSamples int) {
	ev := coremetrics.PlanEvent{
		PlanID:              plan.ID,
		CreatedAt:           plan.CreatedAt,
		Sessions:            len(plan.Sessions),
		DesinfectionPlanned: plan.ProposedDesinfection != nil,
		ForecastSamples:     forecastSamples,
	}
	if err := s.sink.RecordPlan(ev); err != nil {
		s.log.Warnf("record plan: %v", err)
	}
	sessions := make([]coremetrics.SessionEvent, 0, len(plan.Sessions))
	for _, session := range plan.Sessions {
		sessions = append(sessions, coremetrics.SessionEvent{
			PlanID:       plan.ID,
			Kind:         session.Kind,
			Start:        session.Start,
			End:          session.End,
			AveragePrice: session.AveragePrice,
			BelowCeiling: session.BelowCeiling,
			Executed:     executed[session.Kind],
		})
	}
	if err := s.sink.RecordSessions(sessions); err != nil {
		s.log.Warnf("record sessions: %v", err)
	}
	if err := s.sink.Flush(); err != nil {
		s.log.Warnf("flush metrics: %v", err)
	}
}
