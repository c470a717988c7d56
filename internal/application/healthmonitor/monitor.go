// Package healthmonitor implements the cooperative, per-service health
// monitoring scheduler: one interruptible periodic probe task per service,
// driving restart decisions through threshold-crossing callbacks without
// ever blocking shutdown.
package healthmonitor

import (
	"context"
	"sync"
	"time"

	"github.com/kodflow/daemon/internal/domain/localport"
)

// OnHealthChange is invoked on a threshold crossing: either failure_threshold
// consecutive failures (transition to unhealthy) or success_threshold
// consecutive successes (transition back to healthy). Stale callbacks (for
// an id whose epoch has since moved on) are the caller's responsibility to
// drop; the monitor itself has no notion of epoch.
type OnHealthChange func(id localport.ServiceId, status localport.HealthStatus)

// monitoredService is the scheduler's private bookkeeping for one service.
type monitoredService struct {
	id      localport.ServiceId
	target  localport.Target
	spec    localport.HealthCheckSpec
	prober  localport.Prober
	stopCh  chan struct{}

	mu                   sync.Mutex
	consecutiveFailures  int
	consecutiveSuccesses int
	current              localport.HealthStatusValue
}

// Monitor owns one cooperative periodic task per monitored service.
type Monitor struct {
	mu       sync.Mutex
	services map[localport.ServiceId]*monitoredService
	wg       sync.WaitGroup
	onChange OnHealthChange
}

// NewMonitor creates a health monitor scheduler.
//
// Params:
//   - onChange: invoked on every threshold crossing.
//
// Returns:
//   - *Monitor: a ready-to-use scheduler with no services registered.
func NewMonitor(onChange OnHealthChange) *Monitor {
	return &Monitor{
		services: make(map[localport.ServiceId]*monitoredService),
		onChange: onChange,
	}
}

// Register starts a cooperative probe loop for id. A newly registered
// service begins in HealthUnknown; the first probe result is evaluated
// against a zero counter baseline, so a single failure only crosses the
// threshold when failure_threshold == 1.
//
// Params:
//   - ctx: parent context; the loop exits when ctx is done.
//   - id: the service id to monitor.
//   - target: the probe target (local port, cluster context).
//   - spec: the effective health check spec for this service.
//   - prober: the prober implementation for spec.Kind.
func (m *Monitor) Register(ctx context.Context, id localport.ServiceId, target localport.Target, spec localport.HealthCheckSpec, prober localport.Prober) {
	m.mu.Lock()
	if existing, ok := m.services[id]; ok {
		close(existing.stopCh)
		delete(m.services, id)
	}
	ms := &monitoredService{
		id:      id,
		target:  target,
		spec:    spec,
		prober:  prober,
		stopCh:  make(chan struct{}),
		current: localport.HealthUnknown,
	}
	m.services[id] = ms
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.run(ctx, ms)
	}()
}

// Unregister stops the probe loop for id, if any. It is idempotent.
//
// Params:
//   - id: the service id to stop monitoring.
func (m *Monitor) Unregister(id localport.ServiceId) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.services[id]
	if !ok {
		return
	}
	close(ms.stopCh)
	delete(m.services, id)
}

// Stop stops every registered probe loop and waits for all of them to exit.
// Every probe and inter-probe wait is interruptible, so this returns well
// within the shutdown coordinator's Cancel-phase deadline.
func (m *Monitor) Stop() {
	m.mu.Lock()
	for id, ms := range m.services {
		close(ms.stopCh)
		delete(m.services, id)
	}
	m.mu.Unlock()
	m.wg.Wait()
}

// run is the per-service cooperative loop: an immediate initial probe, then
// a ticker-driven loop, both interruptible via stopCh and ctx.Done.
//
// Params:
//   - ctx: parent context.
//   - ms: the service's monitoring state.
func (m *Monitor) run(ctx context.Context, ms *monitoredService) {
	interval := ms.spec.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	select {
	case <-ms.stopCh:
		return
	case <-ctx.Done():
		return
	default:
		m.probeOnce(ctx, ms)
	}

	for {
		select {
		case <-ms.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probeOnce(ctx, ms)
		}
	}
}

// probeOnce runs the configured prober with a hard per-probe timeout and
// applies the result to the threshold counters.
//
// Params:
//   - ctx: parent context.
//   - ms: the service's monitoring state.
func (m *Monitor) probeOnce(ctx context.Context, ms *monitoredService) {
	timeout := ms.spec.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result := ms.prober.Probe(probeCtx, ms.target, ms.spec)
	m.applyResult(ms, result.IsSuccess(), result.Error)
}

// applyResult updates consecutive counters and fires onChange exactly once
// per threshold crossing, never on every probe.
//
// Params:
//   - ms: the service's monitoring state.
//   - success: whether the probe succeeded.
//   - probeErr: the probe's diagnostic error, if any.
func (m *Monitor) applyResult(ms *monitoredService, success bool, probeErr error) {
	ms.mu.Lock()

	failureThreshold := ms.spec.FailureThreshold
	if failureThreshold <= 0 {
		failureThreshold = 1
	}
	successThreshold := ms.spec.SuccessThreshold
	if successThreshold <= 0 {
		successThreshold = 1
	}

	var crossed bool
	var next localport.HealthStatusValue
	if success {
		ms.consecutiveFailures = 0
		ms.consecutiveSuccesses++
		if ms.consecutiveSuccesses >= successThreshold && ms.current != localport.HealthHealthy {
			next = localport.HealthHealthy
			crossed = true
		}
	} else {
		ms.consecutiveSuccesses = 0
		ms.consecutiveFailures++
		if ms.consecutiveFailures >= failureThreshold && ms.current != localport.HealthUnhealthy {
			next = localport.HealthUnhealthy
			crossed = true
		}
	}

	if !crossed {
		ms.mu.Unlock()
		return
	}
	ms.current = next
	diagnostic := ""
	if probeErr != nil {
		diagnostic = probeErr.Error()
	}
	status := localport.HealthStatus{
		Value:       next,
		LastChecked: time.Now(),
		Diagnostic:  diagnostic,
	}
	id := ms.id
	onChange := m.onChange
	ms.mu.Unlock()
	// Invoke the callback outside ms.mu; m.mu is not held here either, so
	// there is no lock-ordering hazard with Register/Unregister.
	if onChange != nil {
		onChange(id, status)
	}
}
