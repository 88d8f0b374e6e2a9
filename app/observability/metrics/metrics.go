package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the discovery engine's metric instruments.
type AppMetrics struct {
	InterestExtractionTotal   metric.Int64Counter
	PlaceFetchTotal           metric.Int64Counter
	PlaceFetchDurationSeconds metric.Float64Histogram
	AffinityUpdateErrorsTotal metric.Int64Counter
	RecommenderRequestsTotal  metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments once from the global MeterProvider.
// Call it after the provider is installed so the instruments are exported.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("GeoGuide")
		var err error
		m := &AppMetrics{}

		m.InterestExtractionTotal, err = meter.Int64Counter(
			"interest_extraction_total",
			metric.WithDescription("Interest extractions by the stage that produced the tags"),
			metric.WithUnit("{extraction}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create interest_extraction_total: %v", err)
		}

		m.PlaceFetchTotal, err = meter.Int64Counter(
			"place_fetch_total",
			metric.WithDescription("Per-category place provider calls by outcome"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create place_fetch_total: %v", err)
		}

		m.PlaceFetchDurationSeconds, err = meter.Float64Histogram(
			"place_fetch_duration_seconds",
			metric.WithDescription("Duration of per-category place provider calls"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create place_fetch_duration_seconds: %v", err)
		}

		m.AffinityUpdateErrorsTotal, err = meter.Int64Counter(
			"affinity_update_errors_total",
			metric.WithDescription("Failed affinity increments"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create affinity_update_errors_total: %v", err)
		}

		m.RecommenderRequestsTotal, err = meter.Int64Counter(
			"recommender_requests_total",
			metric.WithDescription("Tag recommender calls by outcome"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create recommender_requests_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the instruments, creating them against the current global
// provider on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
