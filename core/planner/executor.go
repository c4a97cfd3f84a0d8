package planner

import (
	"context"

	"github.com/hweijer/tapplan/core/model"
)

// SessionResult reports the outcome of executing one scheduled session on
// the device.
type SessionResult struct {
	Kind model.SessionKind
	OK   bool
	Err  string
}

// Executor translates a plan into device commands. Implementations own the
// device protocol; the planner only sees one success/failure signal per
// session.
type Executor interface {
	Execute(ctx context.Context, plan *model.Plan) ([]SessionResult, error)
}

// NopExecutor accepts every session without touching a device. Used for
// dry runs.
type NopExecutor struct{}

// Execute implements Executor.
func (NopExecutor) Execute(_ context.Context, plan *model.Plan) ([]SessionResult, error) {
	results := make([]SessionResult, len(plan.Sessions))
	for i, s := range plan.Sessions {
		results[i] = SessionResult{Kind: s.Kind, OK: true}
	}
	return results, nil
}
