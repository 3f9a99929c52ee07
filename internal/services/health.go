package services

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/temcen/mealrec/internal/catalog"
	"github.com/temcen/mealrec/internal/config"
	"github.com/temcen/mealrec/internal/database"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"

	checkTimeout = 5 * time.Second
)

var errEmptyCatalog = errors.New("catalog is empty")

type HealthService struct {
	config  *config.Config
	logger  *logrus.Logger
	db      *database.Database
	catalog *catalog.Catalog
	metrics *MetricsCollector
}

type HealthStatus struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Services    map[string]string      `json:"services"`
	Critical    []string               `json:"critical_failures,omitempty"`
	NonCritical []string               `json:"non_critical_failures,omitempty"`
	Latency     time.Duration          `json:"latency,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

func NewHealthService(cfg *config.Config, logger *logrus.Logger, db *database.Database, cat *catalog.Catalog, metrics *MetricsCollector) *HealthService {
	return &HealthService{
		config:  cfg,
		logger:  logger,
		db:      db,
		catalog: cat,
		metrics: metrics,
	}
}

// CheckHealth pings the configured stores. PostgreSQL is critical when the
// catalog is served from it; redis and an empty catalog only degrade the
// service since recommendations still work without them.
func (s *HealthService) CheckHealth(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{
		Timestamp: start,
		Services:  make(map[string]string),
	}

	criticalServices := map[string]func(context.Context) error{}
	nonCriticalServices := map[string]func(context.Context) error{
		"catalog": s.checkCatalog,
	}

	if s.db != nil && s.db.PG != nil {
		if s.config.Catalog.Source == catalog.SourcePostgres {
			criticalServices["postgresql"] = s.checkPostgreSQL
		} else {
			nonCriticalServices["postgresql"] = s.checkPostgreSQL
		}
	}
	if s.db != nil && s.db.Redis != nil {
		nonCriticalServices["redis"] = s.checkRedis
	}

	allCriticalHealthy := true
	for name, checkFunc := range criticalServices {
		if err := checkFunc(ctx); err != nil {
			status.Services[name] = StatusUnhealthy
			status.Critical = append(status.Critical, name)
			allCriticalHealthy = false
			s.logger.WithError(err).Errorf("Critical service %s is unhealthy", name)
			s.metrics.SetDependencyHealth(name, false)
		} else {
			status.Services[name] = StatusHealthy
			s.metrics.SetDependencyHealth(name, true)
		}
	}

	for name, checkFunc := range nonCriticalServices {
		if err := checkFunc(ctx); err != nil {
			status.Services[name] = StatusUnhealthy
			status.NonCritical = append(status.NonCritical, name)
			s.logger.WithError(err).Warnf("Non-critical service %s is unhealthy", name)
			s.metrics.SetDependencyHealth(name, false)
		} else {
			status.Services[name] = StatusHealthy
			s.metrics.SetDependencyHealth(name, true)
		}
	}

	switch {
	case !allCriticalHealthy:
		status.Status = StatusUnhealthy
	case len(status.NonCritical) > 0:
		status.Status = StatusDegraded
	default:
		status.Status = StatusHealthy
	}

	status.Details = map[string]interface{}{
		"catalog_items":  s.catalogSize(),
		"catalog_source": s.config.Catalog.Source,
		"goroutines":     runtime.NumGoroutine(),
	}
	status.Latency = time.Since(start)

	return status
}

func (s *HealthService) catalogSize() int {
	if s.catalog == nil {
		return 0
	}
	return s.catalog.Len()
}

func (s *HealthService) checkCatalog(context.Context) error {
	if s.catalogSize() == 0 {
		return errEmptyCatalog
	}
	return nil
}

func (s *HealthService) checkPostgreSQL(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	return s.db.PG.Ping(ctx)
}

func (s *HealthService) checkRedis(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	return s.db.Redis.Ping(ctx).Err()
}
