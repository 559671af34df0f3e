package httpapi

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

type CheckResult struct {
	Status    Status `json:"status"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

type HealthStatus struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// CheckFunc probes one dependency.
type CheckFunc func(ctx context.Context) error

// Checker runs readiness probes against the backing stores.
type Checker struct {
	checks  map[string]CheckFunc
	timeout time.Duration
}

func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Checker{checks: make(map[string]CheckFunc), timeout: timeout}
}

// Add registers a named probe. A nil probe is ignored.
func (c *Checker) Add(name string, fn CheckFunc) *Checker {
	if fn != nil {
		c.checks[name] = fn
	}
	return c
}

func (c *Checker) Check(ctx context.Context) *HealthStatus {
	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	status := &HealthStatus{
		Status: StatusHealthy,
		Checks: make(map[string]CheckResult, len(c.checks)),
	}

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		start := time.Now()
		if err := c.checks[name](checkCtx); err != nil {
			status.Status = StatusUnhealthy
			status.Checks[name] = CheckResult{Status: StatusUnhealthy, Error: err.Error()}
			continue
		}
		status.Checks[name] = CheckResult{Status: StatusHealthy, LatencyMs: time.Since(start).Milliseconds()}
	}
	return status
}

func (c *Checker) LiveHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func (c *Checker) ReadyHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		status := c.Check(ctx.Request.Context())

		httpStatus := http.StatusOK
		if status.Status != StatusHealthy {
			httpStatus = http.StatusServiceUnavailable
		}
		ctx.JSON(httpStatus, status)
	}
}
