package health

import (
	"context"
	"sync"
	"time"
)

// DefaultCheckInterval rate limits checks so /health cannot hammer the backends.
const DefaultCheckInterval = 5 * time.Second

// Checker reports whether a component is usable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

// Component is a named check. A failing critical component makes the system
// critical; any other failure only degrades it.
type Component struct {
	Name     string
	Checker  Checker
	Critical bool
}

// Monitor aggregates health status from the registered components.
type Monitor struct {
	components []Component
	interval   time.Duration
	timeout    time.Duration
	lastCheck  time.Time
	lastReport *HealthReport
	mu         sync.Mutex
}

// NewMonitor creates a new health monitor.
func NewMonitor(components ...Component) *Monitor {
	return &Monitor{
		components: components,
		interval:   DefaultCheckInterval,
		timeout:    2 * time.Second,
	}
}

// SetInterval changes how long a report is reused. Zero disables reuse.
func (m *Monitor) SetInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interval = d
}

// CheckHealth runs every component check, reusing a recent report.
func (m *Monitor) CheckHealth(ctx context.Context) HealthReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastReport != nil && time.Since(m.lastCheck) < m.interval {
		return *m.lastReport
	}

	report := HealthReport{
		SystemStatus: StatusHealthy,
		Components:   make(map[string]ComponentHealth, len(m.components)),
	}

	for _, c := range m.components {
		result := m.check(ctx, c)
		report.Components[c.Name] = result
		report.SystemStatus = worse(report.SystemStatus, result.Status)
	}

	m.lastCheck = time.Now()
	m.lastReport = &report
	return report
}

func (m *Monitor) check(ctx context.Context, c Component) ComponentHealth {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	err := c.Checker.Check(ctx)
	result := ComponentHealth{
		Name:      c.Name,
		Status:    StatusHealthy,
		Critical:  c.Critical,
		LatencyMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		result.Error = err.Error()
		result.Status = StatusDegraded
		if c.Critical {
			result.Status = StatusCritical
		}
	}
	return result
}
