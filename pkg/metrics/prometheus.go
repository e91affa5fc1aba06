package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	FilesProcessed prometheus.Counter
	FilesSkipped   prometheus.Counter
	FilesFailed    prometheus.Counter
	RowsIngested   prometheus.Counter
	RowsFiltered   prometheus.Counter
	StageDuration  *prometheus.HistogramVec
	StageFailures  *prometheus.CounterVec
	ErrorsCount    *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics registered on reg
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FilesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_processed_total",
			Help:      "The total number of spreadsheet files ingested into the raw store",
		}),
		FilesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_skipped_total",
			Help:      "The total number of files skipped because the ledger already holds them",
		}),
		FilesFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_failed_total",
			Help:      "The total number of files rejected during ingestion",
		}),
		RowsIngested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "raw_rows_ingested_total",
			Help:      "The total number of raw movement rows appended",
		}),
		RowsFiltered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "raw_rows_filtered_total",
			Help:      "The total number of normalized rows dropped for missing flight number and aircraft type",
		}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time taken by rule engine stages",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		StageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "The total number of failed rule engine stages",
		}, []string{"stage"}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
