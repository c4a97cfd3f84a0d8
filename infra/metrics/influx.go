package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/hweijer/tapplan/core/logger"
	coremetrics "github.com/hweijer/tapplan/core/metrics"
	infralogger "github.com/hweijer/tapplan/infra/logger"
)

// InfluxSink writes planning events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB
// endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	client := influxdb2.NewClientWithOptions(url, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      infralogger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns
// a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordPlan writes the plan summary as a point.
func (s *InfluxSink) RecordPlan(ev coremetrics.PlanEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("plan").
		AddTag("plan_id", ev.PlanID).
		AddField("sessions", ev.Sessions).
		AddField("desinfection_planned", ev.DesinfectionPlanned).
		AddField("forecast_samples", ev.ForecastSamples).
		SetTime(ev.CreatedAt)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSessions writes one point per scheduled session.
func (s *InfluxSink) RecordSessions(evs []coremetrics.SessionEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, ev := range evs {
		p := write.NewPointWithMeasurement("planned_session").
			AddTag("plan_id", ev.PlanID).
			AddTag("kind", ev.Kind.String()).
			AddTag("executed", strconv.FormatBool(ev.Executed)).
			AddField("start", ev.Start.Unix()).
			AddField("end", ev.End.Unix()).
			AddField("average_price", ev.AveragePrice).
			AddField("below_ceiling", ev.BelowCeiling).
			SetTime(ev.Start)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Flush closes the underlying client.
func (s *InfluxSink) Flush() error {
	s.client.Close()
	return nil
}
