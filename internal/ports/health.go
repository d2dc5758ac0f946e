package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultCheckTimeout bounds a single health check.
const DefaultCheckTimeout = 2 * time.Second

// ErrDuplicateChecker is returned when a checker name is registered twice.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// HealthChecker is a component that /-/ready reports on: the storage
// backends and the remote quote endpoint.
type HealthChecker interface {
	// Name keys the check in readiness output and must be unique.
	Name() string

	// Check returns nil when the component is usable.
	Check(ctx context.Context) error
}

// Criticality decides what a failing check does to readiness.
type Criticality int

const (
	// Critical failures take the service out of rotation.
	Critical Criticality = iota

	// Degrading failures are reported while the service keeps taking
	// traffic. Quotes are still served from local storage when the remote
	// is down.
	Degrading
)

// HealthRegistry runs every registered check on demand.
type HealthRegistry interface {
	Register(checker HealthChecker, level Criticality) error
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus is the outcome of one check or of all of them.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult aggregates one CheckAll run. Status is unhealthy when a
// critical check failed and degraded when only degrading checks did.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// CheckResult is one checker's outcome.
type CheckResult struct {
	Status   HealthStatus `json:"status"`
	Critical bool         `json:"critical"`
	Message  string       `json:"message,omitempty"`
	Duration string       `json:"duration"`
}

type registration struct {
	checker HealthChecker
	level   Criticality
}

// Registry is the HealthRegistry used by the service.
type Registry struct {
	mu      sync.RWMutex
	entries []registration
	timeout time.Duration
}

var _ HealthRegistry = (*Registry)(nil)

// NewHealthRegistry returns an empty registry whose checks time out after
// DefaultCheckTimeout.
func NewHealthRegistry() *Registry {
	return &Registry{timeout: DefaultCheckTimeout}
}

// Register adds checker at the given level.
func (r *Registry) Register(checker HealthChecker, level Criticality) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := checker.Name()
	for _, e := range r.entries {
		if e.checker.Name() == name {
			return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
		}
	}

	r.entries = append(r.entries, registration{checker: checker, level: level})

	return nil
}

// CheckAll runs every check concurrently, each under its own timeout.
func (r *Registry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	entries := append([]registration(nil), r.entries...)
	r.mu.RUnlock()

	results := make([]*CheckResult, len(entries))

	var wg sync.WaitGroup

	for i, e := range entries {
		wg.Go(func() {
			results[i] = r.run(ctx, e)
		})
	}

	wg.Wait()

	out := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(entries)),
		Timestamp: time.Now().UTC(),
	}

	for i, e := range entries {
		res := results[i]
		out.Checks[e.checker.Name()] = res

		switch {
		case res.Status == HealthStatusHealthy:
		case e.level == Critical:
			out.Status = HealthStatusUnhealthy
		case out.Status == HealthStatusHealthy:
			out.Status = HealthStatusDegraded
		}
	}

	return out
}

func (r *Registry) run(ctx context.Context, e registration) *CheckResult {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	err := e.checker.Check(ctx)

	res := &CheckResult{
		Status:   HealthStatusHealthy,
		Critical: e.level == Critical,
		Duration: time.Since(start).Round(time.Microsecond).String(),
	}

	if err != nil {
		res.Status = HealthStatusUnhealthy
		res.Message = err.Error()
	}

	return res
}
