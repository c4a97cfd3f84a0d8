package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	coremetrics "github.com/hweijer/tapplan/core/metrics"
)

// PromSink records planning metrics and pushes them to a Prometheus
// pushgateway. The planner is a one-shot batch job, so metrics are pushed on
// Flush rather than scraped.
type PromSink struct {
	registry *prometheus.Registry
	pusher   *push.Pusher

	planSessions  prometheus.Gauge
	planTimestamp prometheus.Gauge
	sessionStart  *prometheus.GaugeVec
	sessionPrice  *prometheus.GaugeVec
	sessionRuns   *prometheus.CounterVec
}

// NewPromSink builds a sink pushing to the given pushgateway URL under the
// given job name.
func NewPromSink(url, job string) (*PromSink, error) {
	registry := prometheus.NewRegistry()
	s := &PromSink{
		registry: registry,
		pusher:   push.New(url, job).Gatherer(registry),
		planSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tapplan_plan_sessions",
			Help: "Number of sessions in the most recent plan",
		}),
		planTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tapplan_plan_created_timestamp_seconds",
			Help: "Creation time of the most recent plan",
		}),
		sessionStart: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tapplan_session_start_timestamp_seconds",
			Help: "Planned start instant per session kind",
		}, []string{"kind"}),
		sessionPrice: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tapplan_session_average_price",
			Help: "Realized average price per session kind",
		}, []string{"kind"}),
		sessionRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tapplan_sessions_total",
			Help: "Planned sessions by kind and execution outcome",
		}, []string{"kind", "executed"}),
	}
	for _, c := range []prometheus.Collector{
		s.planSessions, s.planTimestamp, s.sessionStart, s.sessionPrice, s.sessionRuns,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// RecordPlan implements coremetrics.MetricsSink.
func (s *PromSink) RecordPlan(ev coremetrics.PlanEvent) error {
	s.planSessions.Set(float64(ev.Sessions))
	s.planTimestamp.Set(float64(ev.CreatedAt.Unix()))
	return nil
}

// RecordSessions implements coremetrics.MetricsSink.
func (s *PromSink) RecordSessions(evs []coremetrics.SessionEvent) error {
	for _, ev := range evs {
		kind := ev.Kind.String()
		s.sessionStart.WithLabelValues(kind).Set(float64(ev.Start.Unix()))
		s.sessionPrice.WithLabelValues(kind).Set(ev.AveragePrice)
		s.sessionRuns.WithLabelValues(kind, strconv.FormatBool(ev.Executed)).Inc()
	}
	return nil
}

// Flush pushes all recorded metrics to the pushgateway.
func (s *PromSink) Flush() error {
	return s.pusher.Push()
}
