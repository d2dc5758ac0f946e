// Package metrics holds the Prometheus collectors the service exports on /-/metrics.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quotekeeper"

// Sync run results used as the "result" label.
const (
	ResultEqual    = "equal"
	ResultConflict = "conflict"
	ResultError    = "error"
	ResultSkipped  = "skipped"
)

// Sync groups the collectors updated by the sync agent.
type Sync struct {
	Runs            *prometheus.CounterVec
	ConflictPending prometheus.Gauge
}

// NewSync creates the sync collectors and registers them with reg.
// A nil reg leaves them unregistered, which is what most tests want.
// Collectors already registered under the same names are reused.
func NewSync(reg prometheus.Registerer) (*Sync, error) {
	m := &Sync{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Sync cycles by result.",
		}, []string{"result"}),
		ConflictPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "conflict_pending",
			Help:      "1 while a sync conflict awaits a decision, 0 otherwise.",
		}),
	}

	// Pre-create every label so dashboards see zeros instead of gaps.
	for _, result := range []string{ResultEqual, ResultConflict, ResultError, ResultSkipped} {
		m.Runs.WithLabelValues(result)
	}

	if reg == nil {
		return m, nil
	}

	runs, err := register(reg, m.Runs)
	if err != nil {
		return nil, err
	}

	pending, err := register(reg, m.ConflictPending)
	if err != nil {
		return nil, err
	}

	m.Runs = runs
	m.ConflictPending = pending

	return m, nil
}

// ObserveRun counts one sync cycle with the given result.
func (m *Sync) ObserveRun(result string) {
	if m == nil {
		return
	}

	m.Runs.WithLabelValues(result).Inc()
}

// SetConflictPending reports whether a conflict is outstanding.
func (m *Sync) SetConflictPending(pending bool) {
	if m == nil {
		return
	}

	if pending {
		m.ConflictPending.Set(1)
	} else {
		m.ConflictPending.Set(0)
	}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}

	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(C); ok {
			return existing, nil
		}
	}

	var zero C

	return zero, fmt.Errorf("registering collector: %w", err)
}
