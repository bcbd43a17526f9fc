package handler

import (
	"context"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

// Pinger is the minimal contract I need from a dependency to check readiness.
// I keep it local to the handler package to avoid coupling and simplify tests.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler exposes liveness and readiness endpoints.
type HealthHandler struct {
	deps  map[string]Pinger
	names []string
}

// NewHealthHandler wires a health handler with the named dependencies readiness must reach.
func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	names := make([]string, 0, len(deps))
	for n := range deps {
		names = append(names, n)
	}
	slices.Sort(names)
	return &HealthHandler{deps: deps, names: names}
}

// Liveness responds OK if the process is up; it doesn't check dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Readiness pings every dependency and reports each result.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := make(map[string]string, len(h.names))
	ready := true
	for _, n := range h.names {
		if err := h.deps[n].Ping(c.Request.Context()); err != nil {
			checks[n] = err.Error()
			ready = false
			continue
		}
		checks[n] = "ok"
	}
	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}
