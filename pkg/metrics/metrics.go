package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	JobsInQueue         prometheus.Gauge
	PagesTotal          *prometheus.CounterVec
	RowsExtracted       prometheus.Counter
	DaysTotal           *prometheus.CounterVec
	ValidationFailures  *prometheus.CounterVec
	DayDuration         prometheus.Histogram
}

// New registers the metrics with reg. Tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		JobsInQueue: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "scrape_jobs_in_queue",
				Help: "Current number of scrape jobs waiting in the queue.",
			},
		),
		PagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_pages_total",
				Help: "Total number of search result pages requested.",
			},
			[]string{"status"}, // ok, failed
		),
		RowsExtracted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "hotel_rows_extracted_total",
				Help: "Total number of hotel rows extracted from search pages.",
			},
		),
		DaysTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scrape_days_total",
				Help: "Total number of daily scrapes by outcome.",
			},
			[]string{"outcome"}, // rows, empty, invalid, failed, mismatch
		),
		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_validation_failures_total",
				Help: "Responses whose echoed parameters differed from the request.",
			},
			[]string{"field"},
		),
		DayDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scrape_day_duration_seconds",
				Help:    "Duration of one day's scrape including all pages.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
		),
	}
}
