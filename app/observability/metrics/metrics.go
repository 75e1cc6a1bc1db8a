package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	ReviewsCreatedTotal    metric.Int64Counter
	BroadcastsSentTotal    metric.Int64Counter
	UploadsTotal           metric.Int64Counter
	DbQueryDurationSeconds metric.Float64Histogram
	DbQueryErrorsTotal     metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments once, using the
// globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("BTSGreenLineExplorer")
		var err error
		m := &AppMetrics{}

		m.ReviewsCreatedTotal, err = meter.Int64Counter(
			"reviews_created_total",
			metric.WithDescription("Total number of reviews accepted"),
			metric.WithUnit("{review}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create reviews_created_total: %v", err)
		}

		m.BroadcastsSentTotal, err = meter.Int64Counter(
			"broadcasts_sent_total",
			metric.WithDescription("Total number of review_updated broadcasts published"),
			metric.WithUnit("{message}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create broadcasts_sent_total: %v", err)
		}

		m.UploadsTotal, err = meter.Int64Counter(
			"uploads_total",
			metric.WithDescription("Total number of image files persisted"),
			metric.WithUnit("{file}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create uploads_total: %v", err)
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

		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance. Panics if
// InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
