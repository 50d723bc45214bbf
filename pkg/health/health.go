package health

import (
	"net/http"
	"sync"
	"time"

	"character-dialog-service/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Status represents the health status of a component
type Status string

const (
	// StatusUp indicates a component is working correctly
	StatusUp Status = "up"
	// StatusDown indicates a component is not working
	StatusDown Status = "down"
	// StatusDegraded indicates a component is working but with reduced functionality
	StatusDegraded Status = "degraded"
)

// Component represents a system component that can be health-checked
type Component struct {
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	Description string    `json:"description,omitempty"`
	Error       string    `json:"error,omitempty"`
	LastChecked time.Time `json:"last_checked"`
}

// Check represents a health check function
type Check func() (Status, string, error)

// Checker manages health checks for the system
type Checker struct {
	checks     map[string]Check
	components map[string]*Component
	mutex      sync.RWMutex
	log        *logger.Logger
}

// NewChecker creates a new health checker
func NewChecker(log *logger.Logger) *Checker {
	checker := &Checker{
		checks:     make(map[string]Check),
		components: make(map[string]*Component),
		log:        log,
	}

	checker.RegisterCheck("self", func() (Status, string, error) {
		return StatusUp, "health checker is running", nil
	})

	return checker
}

// RegisterCheck registers a new health check
func (c *Checker) RegisterCheck(name string, check Check) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.checks[name] = check
	c.components[name] = &Component{
		Name:        name,
		Status:      StatusDown,
		Description: "not checked yet",
	}
}

// RunChecks executes all registered health checks
func (c *Checker) RunChecks() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for name, check := range c.checks {
		status, description, err := check()
		component := c.components[name]
		component.Status = status
		component.Description = description
		component.LastChecked = time.Now()
		if err != nil {
			component.Error = err.Error()
			c.log.Warn("health check failed", "component", name, "error", err)
		} else {
			component.Error = ""
		}
	}
}

// Overall reports the worst status across all components.
func (c *Checker) Overall() Status {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	overall := StatusUp
	for _, component := range c.components {
		switch component.Status {
		case StatusDown:
			return StatusDown
		case StatusDegraded:
			overall = StatusDegraded
		}
	}
	return overall
}

// Handler returns a gin handler reporting full component detail.
func (c *Checker) Handler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		c.RunChecks()

		c.mutex.RLock()
		components := make([]*Component, 0, len(c.components))
		for _, component := range c.components {
			components = append(components, component)
		}
		c.mutex.RUnlock()

		code := http.StatusOK
		overall := c.Overall()
		if overall == StatusDown {
			code = http.StatusServiceUnavailable
		}

		ctx.JSON(code, gin.H{
			"status":     overall,
			"components": components,
		})
	}
}
