package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric names
const (
	MetricRebalanceTotal    = "lsequity_rebalance_total"
	MetricRebalanceDuration = "lsequity_rebalance_duration_seconds"
	MetricStageFailures     = "lsequity_stage_failures_total"
	MetricSelectionSize     = "lsequity_selection_size"
	MetricEligible          = "lsequity_eligible_securities"
	MetricPositions         = "lsequity_positions"
	MetricGrossExposure     = "lsequity_target_gross_exposure"
)

// Rebalance outcome labels
const (
	StatusSuccess = "success"
	StatusEmpty   = "empty"
	StatusDryRun  = "dry_run"
	StatusFailure = "failure"
)

// Metrics holds the Prometheus collectors of the rebalance pipeline
// ⭐ SSOT: 메트릭 정의는 여기서만
type Metrics struct {
	registry *prometheus.Registry

	rebalanceTotal    *prometheus.CounterVec
	rebalanceDuration *prometheus.HistogramVec
	stageFailures     *prometheus.CounterVec
	selectionSize     *prometheus.GaugeVec
	eligible          *prometheus.GaugeVec
	positions         *prometheus.GaugeVec
	grossExposure     *prometheus.GaugeVec
}

// New creates the collectors and registers them on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rebalanceTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRebalanceTotal,
				Help: "Rebalance cycles by strategy and outcome",
			},
			[]string{"strategy", "status"},
		),
		rebalanceDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricRebalanceDuration,
				Help:    "Duration of a rebalance cycle in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
			[]string{"strategy"},
		),
		stageFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricStageFailures,
				Help: "Pipeline failures by strategy and stage",
			},
			[]string{"strategy", "stage"},
		),
		selectionSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricSelectionSize,
				Help: "Number of selected securities of the latest ranking by side",
			},
			[]string{"strategy", "side"},
		),
		eligible: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricEligible,
				Help: "Securities with a combined score in the latest ranking",
			},
			[]string{"strategy"},
		),
		positions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricPositions,
				Help: "Currently held positions reported by the order router",
			},
			[]string{"strategy"},
		),
		grossExposure: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricGrossExposure,
				Help: "Gross exposure of the latest target weights",
			},
			[]string{"strategy"},
		),
	}

	m.registry.MustRegister(m.Collectors()...)
	return m
}

// Collectors returns all collectors
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.rebalanceTotal,
		m.rebalanceDuration,
		m.stageFailures,
		m.selectionSize,
		m.eligible,
		m.positions,
		m.grossExposure,
	}
}

// Registry returns the registry backing Handler
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRebalance records one finished cycle
// nil Metrics는 기록 생략 (CLI 단발 실행, 테스트)
func (m *Metrics) ObserveRebalance(strategy, status string, seconds float64) {
	if m == nil {
		return
	}
	m.rebalanceTotal.WithLabelValues(strategy, status).Inc()
	m.rebalanceDuration.WithLabelValues(strategy).Observe(seconds)
}

// IncStageFailure counts a failed stage
func (m *Metrics) IncStageFailure(strategy, stage string) {
	if m == nil {
		return
	}
	m.stageFailures.WithLabelValues(strategy, stage).Inc()
}

// SetSelection records selection sizes
func (m *Metrics) SetSelection(strategy string, longs, shorts, eligible int) {
	if m == nil {
		return
	}
	m.selectionSize.WithLabelValues(strategy, "long").Set(float64(longs))
	m.selectionSize.WithLabelValues(strategy, "short").Set(float64(shorts))
	m.eligible.WithLabelValues(strategy).Set(float64(eligible))
}

// SetPositions records the held position count
func (m *Metrics) SetPositions(strategy string, count int) {
	if m == nil {
		return
	}
	m.positions.WithLabelValues(strategy).Set(float64(count))
}

// SetGrossExposure records the gross exposure of the latest targets
func (m *Metrics) SetGrossExposure(strategy string, gross float64) {
	if m == nil {
		return
	}
	m.grossExposure.WithLabelValues(strategy).Set(gross)
}
