package metrics

import "errors"

// MultiSink fans events out to several sinks, collecting every error.
type MultiSink struct {
	sinks []MetricsSink
}

// NewMultiSink returns a sink writing to all given sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// RecordPlan implements MetricsSink.
func (m *MultiSink) RecordPlan(ev PlanEvent) error {
	var errs []error
	for _, s := range m.sinks {
		errs = append(errs, s.RecordPlan(ev))
	}
	return errors.Join(errs...)
}

// RecordSessions implements MetricsSink.
func (m *MultiSink) RecordSessions(evs []SessionEvent) error {
	var errs []error
	for _, s := range m.sinks {
		errs = append(errs, s.RecordSessions(evs))
	}
	return errors.Join(errs...)
}

// Flush implements MetricsSink.
func (m *MultiSink) Flush() error {
	var errs []error
	for _, s := range m.sinks {
		errs = append(errs, s.Flush())
	}
	return errors.Join(errs...)
}
