package monitoring

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Monitor tracks the visible state of the fetch-and-analyze operation: idle,
// in-flight, done or errored. A new run cannot begin while one is in
// flight; the in-flight run is never aborted.
type Monitor struct {
	mu             sync.Mutex
	inFlight       bool
	lastRunSuccess bool
	lastRunTime    time.Time
	lastSummary    string
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

// TryBegin marks a run as in flight. It returns false when another run is
// already in flight, in which case the caller must reject the initiation.
func (m *Monitor) TryBegin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.inFlight {
		return false
	}
	m.inFlight = true
	return true
}

func (m *Monitor) RecordSuccess(summary string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.inFlight = false
	m.lastRunSuccess = true
	m.lastRunTime = time.Now()
	m.lastSummary = summary

	log.Printf("Run completed successfully - %s (took %v)", summary, duration)
}

func (m *Monitor) RecordFailure(err error, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.inFlight = false
	m.lastRunSuccess = false
	m.lastRunTime = time.Now()
	m.lastSummary = err.Error()

	log.Printf("RUN FAILED: %s (took %v)", err.Error(), duration)
}

func (m *Monitor) InFlight() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight
}

func (m *Monitor) IsHealthy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastRunTime.IsZero() {
		return true // No runs yet, assume healthy
	}
	return m.lastRunSuccess
}

func (m *Monitor) GetStatusSummary() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.inFlight {
		return "Analysis in flight"
	}
	if m.lastRunTime.IsZero() {
		return "No runs yet"
	}
	if m.lastRunSuccess {
		return fmt.Sprintf("Last run %s: %s", m.lastRunTime.Format("Jan 2 15:04"), m.lastSummary)
	}
	return fmt.Sprintf("Last run failed %s: %s", m.lastRunTime.Format("Jan 2 15:04"), m.lastSummary)
}
