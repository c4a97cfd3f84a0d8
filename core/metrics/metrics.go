// Package metrics defines the observability events a planning run emits and
// the sink interface adapters implement.
package metrics

import (
	"time"

	"github.com/hweijer/tapplan/core/model"
)

// PlanEvent summarizes one planning run.
type PlanEvent struct {
	PlanID              string
	CreatedAt           time.Time
	Sessions            int
	DesinfectionPlanned bool
	ForecastSamples     int
}

// SessionEvent records one scheduled session and its execution outcome.
type SessionEvent struct {
	PlanID       string
	Kind         model.SessionKind
	Start        time.Time
	End          time.Time
	AveragePrice float64
	BelowCeiling bool
	Executed     bool
}

// MetricsSink records planning events for observability purposes.
type MetricsSink interface {
	RecordPlan(ev PlanEvent) error
	RecordSessions(evs []SessionEvent) error
	// Flush pushes buffered data out; a one-shot job calls it right before
	// exiting.
	Flush() error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordPlan(PlanEvent) error          { return nil }
func (NopSink) RecordSessions([]SessionEvent) error { return nil }
func (NopSink) Flush() error                        { return nil }
