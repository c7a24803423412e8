package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the PQTable pipeline: training,
// encoding, table construction and search.
type Metrics struct {
	// Training metrics
	TrainingRuns       prometheus.Counter
	TrainingDuration   prometheus.Histogram
	TrainingRestarts   prometheus.Histogram
	TrainingInertia    prometheus.Histogram

	// Encoding metrics
	VectorsEncoded   prometheus.Counter
	EncodeDuration   prometheus.Histogram

	// Table construction metrics
	TablesBuilt        *prometheus.CounterVec
	BuildDuration      *prometheus.HistogramVec
	HashTableGroups    *prometheus.GaugeVec
	HashTablePostings  *prometheus.GaugeVec
	HashTableSparsity  *prometheus.GaugeVec

	// Search metrics
	SearchesTotal       prometheus.Counter
	SearchLatency       prometheus.Histogram
	CandidatesScanned   prometheus.Histogram
	KeysGenerated       prometheus.Histogram
	StopRankReached     prometheus.Histogram
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		TrainingRuns: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pqtable_training_runs_total",
				Help: "Total number of codebook training runs",
			},
		),
		TrainingDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pqtable_training_duration_seconds",
				Help:    "Codebook training duration in seconds",
				Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300, 600},
			},
		),
		TrainingRestarts: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pqtable_training_restarts",
				Help:    "Number of k-means restarts performed per sub-quantizer",
				Buckets: []float64{1, 2, 3, 4, 5},
			},
		),
		TrainingInertia: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pqtable_training_inertia",
				Help:    "Final k-means inertia (sum of squared distances) summed over all sub-quantizers, per training run",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
		),

		VectorsEncoded: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pqtable_vectors_encoded_total",
				Help: "Total number of vectors encoded into PQ codes",
			},
		),
		EncodeDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pqtable_encode_duration_seconds",
				Help:    "Batch encode duration in seconds",
				Buckets: []float64{.001, .01, .1, .5, 1, 5, 10, 30, 60},
			},
		),

		TablesBuilt: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pqtable_tables_built_total",
				Help: "Total number of PQ tables built by kind (single, multi)",
			},
			[]string{"kind"},
		),
		BuildDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pqtable_build_duration_seconds",
				Help:    "Table build duration in seconds by kind",
				Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 300},
			},
			[]string{"kind"},
		),
		HashTableGroups: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pqtable_hashtable_groups",
				Help: "Number of populated bucket groups per sub-table",
			},
			[]string{"subtable"},
		),
		HashTablePostings: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pqtable_hashtable_postings",
				Help: "Total number of postings stored per sub-table",
			},
			[]string{"subtable"},
		),
		HashTableSparsity: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pqtable_hashtable_sparsity_ratio",
				Help: "Ratio of populated buckets to addressable key space per sub-table",
			},
			[]string{"subtable"},
		),

		SearchesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pqtable_searches_total",
				Help: "Total number of queries served",
			},
		),
		SearchLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pqtable_search_latency_seconds",
				Help:    "Query latency in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
		),
		CandidatesScanned: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pqtable_candidates_scanned",
				Help:    "Number of posting-list entries scanned to answer a query",
				Buckets: prometheus.ExponentialBuckets(1, 2, 16),
			},
		),
		KeysGenerated: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pqtable_keys_generated",
				Help:    "Number of PQ keys drawn from the generator to answer a query",
				Buckets: prometheus.ExponentialBuckets(1, 2, 16),
			},
		),
		StopRankReached: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pqtable_stop_rank",
				Help:    "Generator rank at which the multi-table stop rule fired",
				Buckets: prometheus.ExponentialBuckets(1, 2, 16),
			},
		),
	}

	return m
}

// RecordTraining records one codebook-training run.
func (m *Metrics) RecordTraining(duration time.Duration, restarts int, inertia float64) {
	m.TrainingRuns.Inc()
	m.TrainingDuration.Observe(duration.Seconds())
	m.TrainingRestarts.Observe(float64(restarts))
	m.TrainingInertia.Observe(inertia)
}

// RecordEncode records a batch encode operation.
func (m *Metrics) RecordEncode(duration time.Duration, count int) {
	m.VectorsEncoded.Add(float64(count))
	m.EncodeDuration.Observe(duration.Seconds())
}

// RecordBuild records a table build operation.
func (m *Metrics) RecordBuild(kind string, duration time.Duration) {
	m.TablesBuilt.WithLabelValues(kind).Inc()
	m.BuildDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// UpdateHashTableStats updates the populated-group/posting/sparsity gauges
// for one sub-table (subtable is "0" for a single-table index).
func (m *Metrics) UpdateHashTableStats(subtable string, groups, postings int, sparsity float64) {
	m.HashTableGroups.WithLabelValues(subtable).Set(float64(groups))
	m.HashTablePostings.WithLabelValues(subtable).Set(float64(postings))
	m.HashTableSparsity.WithLabelValues(subtable).Set(sparsity)
}

// RecordSearch records one query's latency and the work it did.
func (m *Metrics) RecordSearch(duration time.Duration, candidatesScanned, keysGenerated, stopRank int) {
	m.SearchesTotal.Inc()
	m.SearchLatency.Observe(duration.Seconds())
	m.CandidatesScanned.Observe(float64(candidatesScanned))
	m.KeysGenerated.Observe(float64(keysGenerated))
	if stopRank > 0 {
		m.StopRankReached.Observe(float64(stopRank))
	}
}
