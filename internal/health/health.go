// SPDX-License-Identifier: MIT

// Package health provides liveness and readiness probes for deployments.
// Liveness only reports that the process is up; readiness aggregates
// dependency checks (redis, postgres) with per-component detail.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/occamtv/occam/internal/log"
)

// Status represents the overall health/readiness status.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// defaultCheckTimeout bounds a single dependency check.
const defaultCheckTimeout = 2 * time.Second

// CheckResult represents the result of a component check.
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse is the liveness body. It never carries dependency state.
type HealthResponse struct {
	Status Status `json:"status"`
}

// ReadinessResponse is the readiness body with per-component detail.
type ReadinessResponse struct {
	Ready     bool                   `json:"ready"`
	Status    Status                 `json:"status"`
	Version   string                 `json:"version,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// Checker defines the interface for dependency checks.
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// Manager manages health and readiness checks.
type Manager struct {
	version  string
	checkers []Checker
}

// NewManager creates a new health check manager.
func NewManager(version string) *Manager {
	return &Manager{
		version:  version,
		checkers: make([]Checker, 0),
	}
}

// RegisterChecker adds a dependency checker to the manager.
func (m *Manager) RegisterChecker(checker Checker) {
	m.checkers = append(m.checkers, checker)
}

// Health performs a liveness check. The process being able to answer is the
// whole check; dependencies are never consulted.
func (m *Manager) Health() HealthResponse {
	return HealthResponse{Status: StatusHealthy}
}

// Ready performs a readiness check across every registered dependency.
// A single unhealthy dependency makes the service not ready; degraded
// dependencies keep it ready but mark the aggregate status.
func (m *Manager) Ready(ctx context.Context) ReadinessResponse {
	resp := ReadinessResponse{
		Ready:     true,
		Status:    StatusHealthy,
		Version:   m.version,
		Timestamp: time.Now().UTC(),
	}

	if len(m.checkers) == 0 {
		return resp
	}

	resp.Checks = make(map[string]CheckResult, len(m.checkers))
	hasUnhealthy := false
	hasDegraded := false

	for _, checker := range m.checkers {
		result := checker.Check(ctx)
		resp.Checks[checker.Name()] = result

		switch result.Status {
		case StatusUnhealthy:
			hasUnhealthy = true
			resp.Ready = false
		case StatusDegraded:
			hasDegraded = true
		}
	}

	if hasUnhealthy {
		resp.Status = StatusUnhealthy
	} else if hasDegraded {
		resp.Status = StatusDegraded
	}

	return resp
}

// ServeHealth handles HTTP liveness requests. Always 200.
func (m *Manager) ServeHealth(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "health")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(m.Health()); err != nil {
		logger.Error().Err(err).Str("event", "health.encode_error").Msg("failed to encode health response")
	}
}

// ServeReady handles HTTP readiness requests. 200 when ready, 503 when a
// dependency check fails.
func (m *Manager) ServeReady(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "readiness")

	resp := m.Ready(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if resp.Ready {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error().Err(err).Str("event", "readiness.encode_error").Msg("failed to encode readiness response")
	}

	logger.Debug().
		Str("event", "readiness.checked").
		Str("status", string(resp.Status)).
		Bool("ready", resp.Ready).
		Msg("readiness check performed")
}

// PingChecker reports a dependency healthy when its ping returns in time.
// Both the redis and postgres probes are PingCheckers over the respective
// client's Ping method.
type PingChecker struct {
	name    string
	timeout time.Duration
	ping    func(context.Context) error
}

// NewPingChecker wraps a ping function as a named checker. A zero timeout
// uses the default.
func NewPingChecker(name string, timeout time.Duration, ping func(context.Context) error) *PingChecker {
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	return &PingChecker{name: name, timeout: timeout, ping: ping}
}

func (c *PingChecker) Name() string {
	return c.name
}

func (c *PingChecker) Check(ctx context.Context) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.ping(ctx); err != nil {
		return CheckResult{
			Status: StatusUnhealthy,
			Error:  err.Error(),
		}
	}
	return CheckResult{
		Status:  StatusHealthy,
		Message: "reachable",
	}
}
