package metrics

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	TripsCreatedTotal        metric.Int64Counter
	TripDurationSeconds      metric.Float64Histogram
	ExternalCallDuration     metric.Float64Histogram
	ExternalCallErrorsTotal  metric.Int64Counter
	ChatMessagesTotal        metric.Int64Counter
	DbQueryDurationSeconds   metric.Float64Histogram
	DbQueryErrorsTotal       metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments exactly once,
// using the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("travel-planner-api")
		var err error
		m := &AppMetrics{}

		m.TripsCreatedTotal, err = meter.Int64Counter(
			"trips_created_total",
			metric.WithDescription("Total number of trips synthesized"),
			metric.WithUnit("{trip}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create trips_created_total: %v", err)
		}

		m.TripDurationSeconds, err = meter.Float64Histogram(
			"trip_synthesis_duration_seconds",
			metric.WithDescription("Duration of trip synthesis in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create trip_synthesis_duration_seconds: %v", err)
		}

		m.ExternalCallDuration, err = meter.Float64Histogram(
			"external_call_duration_seconds",
			metric.WithDescription("Duration of outbound geocoder, weather and model calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create external_call_duration_seconds: %v", err)
		}

		m.ExternalCallErrorsTotal, err = meter.Int64Counter(
			"external_call_errors_total",
			metric.WithDescription("Total number of failed outbound calls"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create external_call_errors_total: %v", err)
		}

		m.ChatMessagesTotal, err = meter.Int64Counter(
			"chat_messages_total",
			metric.WithDescription("Total number of chat messages processed"),
			metric.WithUnit("{message}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create chat_messages_total: %v", err)
		}

		m.DbQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_duration_seconds: %v", err)
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance, initializing
// it against the current global MeterProvider on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}

// ObserveDBQuery records the elapsed time of a database query against
// its table and counts it as an error when err is non-nil. Callers pass
// nil for misses they do not consider failures.
func ObserveDBQuery(ctx context.Context, table string, start time.Time, err error) {
	m := Get()
	attrs := metric.WithAttributes(attribute.String("db.sql.table", table))
	m.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		m.DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}
