package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shipwright",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Finished pipeline runs by final status.",
	}, []string{"status"})

	metricRunsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "shipwright",
		Subsystem: "pipeline",
		Name:      "runs_in_flight",
		Help:      "Pipeline runs currently executing.",
	})

	metricStepDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shipwright",
		Subsystem: "pipeline",
		Name:      "step_duration_seconds",
		Help:      "Duration in seconds of each pipeline step.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"step"})
)

func init() {
	prometheus.MustRegister(metricRunsTotal, metricRunsInFlight, metricStepDuration)
}
