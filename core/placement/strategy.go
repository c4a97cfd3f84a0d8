// Package placement selects the cheapest valid start instant for a session
// given a price forecast and a set of eligible windows.
package placement

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/hweijer/tapplan/core/model"
)

// Strategy names accepted by New.
const (
	StrategyConsecutive = "consecutive"
)

// BlacklistScope selects the price population the worst-hours blacklist is
// computed over.
type BlacklistScope string

const (
	// BlacklistHorizon computes the threshold over every forecast bucket in
	// the horizon.
	BlacklistHorizon BlacklistScope = "horizon"
	// BlacklistWindows computes the threshold only over buckets overlapping
	// an eligible window.
	BlacklistWindows BlacklistScope = "windows"
)

// Options tunes a placement strategy.
type Options struct {
	// JitterMax bounds the random start offset; zero disables jitter.
	JitterMax time.Duration
	// Rand drives the jitter; a fixed seed makes placement reproducible.
	// Nil disables jitter.
	Rand *rand.Rand
	// BlockWorstHeatingTimes removes the most expensive bucket bracket from
	// heating candidates before optimization.
	BlockWorstHeatingTimes bool
	// BlacklistScope selects the population for the worst-hours threshold.
	BlacklistScope BlacklistScope
	// BlacklistFraction is the fraction of the price distribution treated
	// as the worst bracket.
	BlacklistFraction float64
}

// Strategy places a session inside the forecast. It returns false when no
// candidate satisfies the duration and price constraints anywhere in the
// horizon; that is an empty result, not an error.
type Strategy interface {
	Place(spec model.SessionSpec, forecast model.Forecast) (model.ScheduledSession, bool)
}

// New returns the strategy registered under name.
func New(name string, opts Options) (Strategy, error) {
	switch strings.ToLower(name) {
	case StrategyConsecutive:
		return &Consecutive{opts: opts}, nil
	default:
		return nil, fmt.Errorf("unknown planning strategy %q", name)
	}
}
