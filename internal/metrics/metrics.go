package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	subsystem = "transcoder"

	formatLabel = "format"
	statusLabel = "status"
)

var jobsStartedMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "jobs_started_total",
		Help:      "number of conversion processes successfully spawned",
	},
	[]string{formatLabel},
)

var jobStartFailuresMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "jobs_start_failures_total",
		Help:      "number of conversion processes that could not be spawned",
	},
	[]string{formatLabel},
)

var jobsFinishedMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "jobs_finished_total",
		Help:      "number of conversions that reached a terminal status",
	},
	[]string{formatLabel, statusLabel},
)

var jobDurationMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Subsystem: subsystem,
		Name:      "job_duration_seconds",
		Help:      "wall time from job creation to terminal status",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	},
	[]string{formatLabel, statusLabel},
)

var jobsInFlightMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: subsystem,
		Name:      "jobs_in_flight",
		Help:      "number of conversion processes currently running",
	},
)

func JobStarted(format string) {
	jobsStartedMetric.With(prometheus.Labels{formatLabel: format}).Inc()
	jobsInFlightMetric.Inc()
}

func JobStartFailed(format string) {
	jobStartFailuresMetric.With(prometheus.Labels{formatLabel: format}).Inc()
}

func JobFinished(format, status string, elapsed time.Duration) {
	labels := prometheus.Labels{formatLabel: format, statusLabel: status}
	jobsFinishedMetric.With(labels).Inc()
	jobDurationMetric.With(labels).Observe(elapsed.Seconds())
	jobsInFlightMetric.Dec()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(jobsStartedMetric)
	prometheus.MustRegister(jobStartFailuresMetric)
	prometheus.MustRegister(jobsFinishedMetric)
	prometheus.MustRegister(jobDurationMetric)
	prometheus.MustRegister(jobsInFlightMetric)
}
