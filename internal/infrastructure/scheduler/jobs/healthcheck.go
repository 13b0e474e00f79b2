package jobs

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH CHECK JOB
// ══════════════════════════════════════════════════════════════════════════════

// HealthChecker reports whether an external dependency is reachable.
type HealthChecker interface {
	IsHealthy(ctx context.Context) bool
}

// HealthCheckJob periodically probes external dependencies and logs
// transitions. It keeps a snapshot so the HTTP layer can report the
// last known state without probing on every request.
type HealthCheckJob struct {
	name    string
	checker HealthChecker
	logger  *slog.Logger

	healthy atomic.Bool
	checked atomic.Value // time.Time
}

// NewHealthCheckJob creates a health check job for a named dependency.
func NewHealthCheckJob(name string, checker HealthChecker, logger *slog.Logger) *HealthCheckJob {
	if logger == nil {
		logger = slog.Default()
	}

	j := &HealthCheckJob{
		name:    name,
		checker: checker,
		logger:  logger,
	}
	j.healthy.Store(true)
	return j
}

// Name returns the job name.
func (j *HealthCheckJob) Name() string {
	return "healthcheck_" + j.name
}

// Description returns a human-readable description.
func (j *HealthCheckJob) Description() string {
	return "Probes the " + j.name + " dependency"
}

// Run performs a single probe.
func (j *HealthCheckJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	healthy := j.checker.IsHealthy(ctx)
	was := j.healthy.Swap(healthy)
	j.checked.Store(time.Now())

	if healthy != was {
		if healthy {
			j.logger.Info("dependency recovered", "dependency", j.name)
		} else {
			j.logger.Warn("dependency unhealthy", "dependency", j.name)
		}
	}

	return nil
}

// Healthy returns the result of the last probe.
func (j *HealthCheckJob) Healthy() bool {
	return j.healthy.Load()
}

// LastChecked returns when the last probe ran (zero before the first run).
func (j *HealthCheckJob) LastChecked() time.Time {
	t := j.checked.Load()
	if t == nil {
		return time.Time{}
	}
	return t.(time.Time)
}
