package services

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/temcen/mealrec/pkg/models"
)

// Cache lookup outcomes recorded by RecordCacheResult.
const (
	CacheResultHit   = "hit"
	CacheResultMiss  = "miss"
	CacheResultError = "error"
)

// MetricsCollector holds the prometheus metrics of the recommendation
// service. A nil collector ignores every call.
type MetricsCollector struct {
	recommendations *prometheus.CounterVec
	duration        prometheus.Histogram
	relaxations     *prometheus.CounterVec
	selectedItems   prometheus.Histogram
	catalogItems    prometheus.Gauge
	cacheRequests   *prometheus.CounterVec
	dependencyUp    *prometheus.GaugeVec
}

func NewMetricsCollector(reg prometheus.Registerer, logger *logrus.Logger) *MetricsCollector {
	mc := &MetricsCollector{
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mealrec_recommendations_total",
			Help: "Total number of recommendation runs",
		}, []string{"goal", "fallback"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mealrec_recommendation_duration_seconds",
			Help:    "Time spent in the recommendation pipeline",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
		}),
		relaxations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mealrec_filter_relaxations_total",
			Help: "Filter steps skipped because they would have emptied the candidate set",
		}, []string{"step"}),
		selectedItems: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mealrec_selected_items",
			Help:    "Number of items in a recommendation",
			Buckets: prometheus.LinearBuckets(0, 3, 8),
		}),
		catalogItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mealrec_catalog_items",
			Help: "Number of food records in the loaded catalog",
		}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mealrec_cache_requests_total",
			Help: "Recommendation cache lookups by result",
		}, []string{"result"}),
		dependencyUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mealrec_dependency_up",
			Help: "Health check status (1 = healthy, 0 = unhealthy)",
		}, []string{"dependency"}),
	}

	mc.recommendations = register(reg, logger, mc.recommendations)
	mc.duration = register(reg, logger, mc.duration)
	mc.relaxations = register(reg, logger, mc.relaxations)
	mc.selectedItems = register(reg, logger, mc.selectedItems)
	mc.catalogItems = register(reg, logger, mc.catalogItems)
	mc.cacheRequests = register(reg, logger, mc.cacheRequests)
	mc.dependencyUp = register(reg, logger, mc.dependencyUp)

	return mc
}

// register adds c to reg. If an identical collector is already registered
// that one is returned instead.
func register[C prometheus.Collector](reg prometheus.Registerer, logger *logrus.Logger, c C) C {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
			return c
		}
		logger.WithError(err).Warn("Failed to register metric")
	}
	return c
}

func (mc *MetricsCollector) ObserveRecommendation(goal models.Goal, rec *models.Recommendation, elapsed time.Duration) {
	if mc == nil || rec == nil {
		return
	}

	mc.recommendations.WithLabelValues(string(goal), strconv.FormatBool(rec.Fallback)).Inc()
	mc.duration.Observe(elapsed.Seconds())
	for _, step := range rec.Relaxed {
		mc.relaxations.WithLabelValues(step).Inc()
	}
	mc.selectedItems.Observe(float64(rec.Summary.ItemCount))
}

func (mc *MetricsCollector) SetCatalogSize(n int) {
	if mc == nil {
		return
	}
	mc.catalogItems.Set(float64(n))
}

func (mc *MetricsCollector) RecordCacheResult(result string) {
	if mc == nil {
		return
	}
	mc.cacheRequests.WithLabelValues(result).Inc()
}

func (mc *MetricsCollector) SetDependencyHealth(name string, healthy bool) {
	if mc == nil {
		return
	}
	if healthy {
		mc.dependencyUp.WithLabelValues(name).Set(1)
	} else {
		mc.dependencyUp.WithLabelValues(name).Set(0)
	}
}
