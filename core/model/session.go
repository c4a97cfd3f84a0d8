package model

import (
	"time"
)

// SessionKind distinguishes the two session types the planner schedules.
type SessionKind int

const (
	SessionHeating SessionKind = iota
	SessionDesinfection
)

// String returns a human-readable representation of the session kind.
func (k SessionKind) String() string {
	switch k {
	case SessionHeating:
		return "heating"
	case SessionDesinfection:
		return "desinfection"
	default:
		return "unknown"
	}
}

// SessionSpec describes one session to be placed by a strategy.
type SessionSpec struct {
	Kind       SessionKind
	Duration   time.Duration
	Windows    []Window
	HorizonEnd time.Time
}

// ScheduledSession is a placed session. Immutable once produced.
type ScheduledSession struct {
	Kind         SessionKind `json:"kind" yaml:"kind"`
	Start        time.Time   `json:"start" yaml:"start"`
	End          time.Time   `json:"end" yaml:"end"`
	AveragePrice float64     `json:"averagePrice" yaml:"averagePrice"`
	BelowCeiling bool        `json:"belowCeiling" yaml:"belowCeiling"`
}

// PlannerState is the cross-run bookkeeping persisted between invocations.
// An empty state means desinfection is due and no plan exists yet.
type PlannerState struct {
	LastDesinfectionCompletedAt *time.Time         `json:"lastDesinfectionCompletedAt" yaml:"lastDesinfectionCompletedAt,omitempty"`
	LastPlan                    []ScheduledSession `json:"lastPlan" yaml:"lastPlan,omitempty"`
}

// Plan is the output of one planning run. It fully supersedes any previous
// plan; runs are idempotent recomputations, never incremental patches.
//
// State holds the next PlannerState with the desinfection bookkeeping NOT
// yet advanced. The proposed advance is applied through ConfirmDesinfection
// once the execution collaborator reports success, so a failed desinfection
// attempt stays due on the next run.
type Plan struct {
	ID                   string             `json:"id" yaml:"id"`
	CreatedAt            time.Time          `json:"createdAt" yaml:"createdAt"`
	Sessions             []ScheduledSession `json:"sessions" yaml:"sessions"`
	State                PlannerState       `json:"state" yaml:"state"`
	ProposedDesinfection *time.Time         `json:"proposedDesinfection" yaml:"proposedDesinfection,omitempty"`
}

// Session returns the scheduled session of the given kind, if any.
func (p *Plan) Session(kind SessionKind) (ScheduledSession, bool) {
	for _, s := range p.Sessions {
		if s.Kind == kind {
			return s, true
		}
	}
	return ScheduledSession{}, false
}

// ConfirmDesinfection advances the desinfection bookkeeping to the planned
// session's end instant. Call only after confirmed device execution.
func (p *Plan) ConfirmDesinfection() {
	if p.ProposedDesinfection == nil {
		return
	}
	t := *p.ProposedDesinfection
	p.State.LastDesinfectionCompletedAt = &t
}
