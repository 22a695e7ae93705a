// Package health serves the liveness endpoint.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Pinger is anything that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Handler reports the health of the service and its dependencies.
type Handler struct {
	db      *gorm.DB
	service string
	checks  map[string]Pinger
}

// NewHandler creates a Handler for service backed by db.
func NewHandler(db *gorm.DB, service string) *Handler {
	return &Handler{db: db, service: service, checks: make(map[string]Pinger)}
}

// AddCheck registers an extra dependency check under name.
func (h *Handler) AddCheck(name string, p Pinger) {
	h.checks[name] = p
}

// RegisterRoutes mounts GET /health.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)
}

func (h *Handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := gin.H{}

	if h.db != nil {
		deps["database"] = "up"
		sqlDB, err := h.db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			deps["database"] = "down"
			status = http.StatusServiceUnavailable
		}
	}
	for name, p := range h.checks {
		deps[name] = "up"
		if err := p.Ping(ctx); err != nil {
			deps[name] = "down"
			status = http.StatusServiceUnavailable
		}
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "service": h.service, "dependencies": deps})
}
