package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	vesselCompliance = "vessel_compliance"

	// Calculation metrics
	calculationsTotal          = "calculations_total"
	calculationDurationSeconds = "calculation_duration_seconds"
	quotaDenialsTotal          = "quota_denials_total"

	// Labels
	calculationTypeLabel   = "calculation_type"
	calculationStatusLabel = "status"
	planLabel              = "plan"
)

var calculationsTotalLabels = []string{
	calculationTypeLabel,
	calculationStatusLabel,
}

var calculationDurationLabels = []string{
	calculationTypeLabel,
}

var quotaDenialsTotalLabels = []string{
	planLabel,
}

/**
* Metrics definition
**/
var calculationsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: vesselCompliance,
		Name:      calculationsTotal,
		Help:      "number of calculations reaching a terminal status, by type and status",
	},
	calculationsTotalLabels,
)

var calculationDurationSecondsMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Subsystem: vesselCompliance,
		Name:      calculationDurationSeconds,
		Help:      "time spent computing a calculation, by type",
		Buckets:   prometheus.DefBuckets,
	},
	calculationDurationLabels,
)

var quotaDenialsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: vesselCompliance,
		Name:      quotaDenialsTotal,
		Help:      "number of calculations denied by the monthly quota, by plan",
	},
	quotaDenialsTotalLabels,
)

func IncreaseCalculationsTotalMetric(calculationType, status string) {
	labels := prometheus.Labels{
		calculationTypeLabel:   calculationType,
		calculationStatusLabel: status,
	}
	calculationsTotalMetric.With(labels).Inc()
}

func ObserveCalculationDurationMetric(calculationType string, seconds float64) {
	labels := prometheus.Labels{
		calculationTypeLabel: calculationType,
	}
	calculationDurationSecondsMetric.With(labels).Observe(seconds)
}

func IncreaseQuotaDenialsTotalMetric(plan string) {
	labels := prometheus.Labels{
		planLabel: plan,
	}
	quotaDenialsTotalMetric.With(labels).Inc()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(calculationsTotalMetric)
	prometheus.MustRegister(calculationDurationSecondsMetric)
	prometheus.MustRegister(quotaDenialsTotalMetric)
}
