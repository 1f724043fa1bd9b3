// Package health runs periodic liveness/readiness checks against the admin
// client's own state: whether it has a usable cluster descriptor and
// whether a fresh TCP dial still reaches every node's admin port.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status is the outcome of one named check.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusCritical Status = "critical"
)

// CheckResult is the outcome of a single named check.
type CheckResult struct {
	Name      string
	Status    Status
	Message   string
	Timestamp time.Time
}

// ClusterView is the minimum the checker needs from an admin client:
// enough to enumerate nodes and try connecting to each one's admin port.
type ClusterView interface {
	Nodes() []NodeView
}

// NodeView is the minimum the checker needs to know about one node.
type NodeView struct {
	ID   int32
	Host string
	Port int32
}

// Checker periodically probes cluster connectivity and exposes the result
// as liveness/readiness for an HTTP probe, mirroring how a Kubernetes
// sidecar would be wired against it.
type Checker struct {
	view        ClusterView
	dialTimeout time.Duration
	logger      *zap.Logger
	mu          sync.RWMutex
	lastCheck   time.Time
	status      Status
	checks      map[string]CheckResult
	livenessOK  bool
	readinessOK bool
}

// Config configures a Checker.
type Config struct {
	View        ClusterView
	DialTimeout time.Duration
}

// NewChecker builds a Checker. DialTimeout defaults to two seconds if unset.
func NewChecker(cfg Config, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 2 * time.Second
	}
	return &Checker{
		view:        cfg.View,
		dialTimeout: dialTimeout,
		logger:      logger,
		checks:      make(map[string]CheckResult),
		livenessOK:  true,
		readinessOK: true,
		status:      StatusHealthy,
	}
}

// Start runs checks on a fixed interval until ctx is canceled.
func (c *Checker) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.runChecks(ctx)

	for {
		select {
		case <-ticker.C:
			if ctx.Err() != nil {
				c.logger.Info("health checker stopped")
				return
			}
			c.runChecks(ctx)
		case <-ctx.Done():
			c.logger.Info("health checker stopped")
			return
		}
	}
}

// RunOnce runs a single round of checks synchronously and returns its
// results, the same round Start's ticker loop would otherwise run on a
// schedule. It is meant for callers that want one check-and-report pass,
// such as a CLI command, rather than a long-running probe loop.
func (c *Checker) RunOnce(ctx context.Context) map[string]CheckResult {
	c.runChecks(ctx)
	return c.Checks()
}

func (c *Checker) runChecks(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastCheck = time.Now()
	nodes := c.view.Nodes()

	results := make(map[string]CheckResult, len(nodes)+1)
	results["descriptor_nonempty"] = c.checkDescriptorNonEmpty(nodes)

	healthyNodes := 0
	for _, n := range nodes {
		result := c.checkNodeReachable(ctx, n)
		results[fmt.Sprintf("node_%d_reachable", n.ID)] = result
		if result.Status == StatusHealthy {
			healthyNodes++
		}
	}
	c.checks = results

	switch {
	case len(nodes) == 0:
		c.status = StatusCritical
	case healthyNodes == 0:
		c.status = StatusCritical
	case healthyNodes < len(nodes):
		c.status = StatusDegraded
	default:
		c.status = StatusHealthy
	}

	c.livenessOK = true
	c.readinessOK = c.status != StatusCritical

	c.logger.Debug("health check completed",
		zap.String("status", string(c.status)),
		zap.Int("healthy_nodes", healthyNodes),
		zap.Int("total_nodes", len(nodes)))
}

func (c *Checker) checkDescriptorNonEmpty(nodes []NodeView) CheckResult {
	if len(nodes) == 0 {
		return CheckResult{
			Name:      "descriptor_nonempty",
			Status:    StatusCritical,
			Message:   "cluster descriptor has no nodes",
			Timestamp: time.Now(),
		}
	}
	return CheckResult{
		Name:      "descriptor_nonempty",
		Status:    StatusHealthy,
		Message:   fmt.Sprintf("%d nodes in descriptor", len(nodes)),
		Timestamp: time.Now(),
	}
}

func (c *Checker) checkNodeReachable(ctx context.Context, n NodeView) CheckResult {
	dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	defer cancel()

	addr := fmt.Sprintf("%s:%d", n.Host, n.Port)
	conn, err := (&net.Dialer{}).DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return CheckResult{
			Name:      fmt.Sprintf("node_%d_reachable", n.ID),
			Status:    StatusCritical,
			Message:   fmt.Sprintf("cannot reach %s: %v", addr, err),
			Timestamp: time.Now(),
		}
	}
	conn.Close()
	return CheckResult{
		Name:      fmt.Sprintf("node_%d_reachable", n.ID),
		Status:    StatusHealthy,
		Message:   fmt.Sprintf("reached %s", addr),
		Timestamp: time.Now(),
	}
}

// IsLive reports liveness. It is true from construction on and no check
// ever clears it; it does not track whether Start is still running.
func (c *Checker) IsLive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.livenessOK
}

// IsReady reports readiness: the client can reach at least one node.
func (c *Checker) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.readinessOK
}

// Checks returns a copy of every check's last result.
func (c *Checker) Checks() map[string]CheckResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]CheckResult, len(c.checks))
	for k, v := range c.checks {
		out[k] = v
	}
	return out
}

// LivenessHandler serves an HTTP liveness probe.
func (c *Checker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	live := c.IsLive()
	w.Header().Set("Content-Type", "application/json")
	if !live {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(map[string]any{"healthy": live})
}

// ReadinessHandler serves an HTTP readiness probe.
func (c *Checker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ready := c.IsReady()
	w.Header().Set("Content-Type", "application/json")
	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(map[string]any{"ready": ready})
}
