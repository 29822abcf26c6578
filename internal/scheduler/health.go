package scheduler

import (
	"sync"
	"sync/atomic"
	"time"
)

// HealthStatus is the last known state of a component.
type HealthStatus struct {
	Healthy     bool      `json:"healthy"`
	Message     string    `json:"message"`
	LastCheck   time.Time `json:"last_check"`
	LastSuccess time.Time `json:"last_success"`
	LastError   string    `json:"last_error,omitempty"`
}

// Health tracks component health and overall readiness.
type Health struct {
	mu         sync.RWMutex
	components map[string]HealthStatus
	ready      atomic.Bool
	now        func() time.Time
}

// NewHealth creates a new health tracker. It starts not ready.
func NewHealth() *Health {
	return &Health{
		components: make(map[string]HealthStatus),
		now:        time.Now,
	}
}

// SetHealthy marks a component as healthy.
func (h *Health) SetHealthy(component, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	status := h.components[component]
	status.Healthy = true
	status.Message = message
	status.LastCheck = now
	status.LastSuccess = now
	status.LastError = ""
	h.components[component] = status
}

// SetUnhealthy marks a component as unhealthy. The last success time is kept.
func (h *Health) SetUnhealthy(component string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	status := h.components[component]
	status.Healthy = false
	status.Message = err.Error()
	status.LastCheck = h.now()
	status.LastError = err.Error()
	h.components[component] = status
}

// Status returns the status of a component.
func (h *Health) Status(component string) (HealthStatus, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status, ok := h.components[component]
	return status, ok
}

// Statuses returns a copy of all component statuses.
func (h *Health) Statuses() map[string]HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]HealthStatus, len(h.components))
	for name, status := range h.components {
		out[name] = status
	}
	return out
}

// IsOverallHealthy returns true if all components are healthy.
func (h *Health) IsOverallHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, status := range h.components {
		if !status.Healthy {
			return false
		}
	}
	return true
}

// SetReady sets whether the scheduler is running.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Ready reports whether the scheduler is running.
func (h *Health) Ready() bool {
	return h.ready.Load()
}
