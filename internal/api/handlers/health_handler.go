package handlers

import (
	"net/http"
	"time"

	"academic-registrar/internal/config"
	"academic-registrar/internal/infrastructure/database"
	interfaces "academic-registrar/internal/interfaces/infrastructure"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db           *gorm.DB
	cacheService interfaces.CacheService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB, cacheService interfaces.CacheService) *HealthHandler {
	return &HealthHandler{
		db:           db,
		cacheService: cacheService,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	cfg := config.Get()

	services := make(map[string]string)
	status := "healthy"
	code := http.StatusOK

	if h.db != nil {
		if err := database.HealthCheck(h.db); err != nil {
			services["database"] = "unhealthy: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		} else {
			services["database"] = "healthy"
		}
	}

	if h.cacheService != nil {
		if err := h.cacheService.Health(c.Request.Context()); err != nil {
			services["cache"] = "unhealthy: " + err.Error()
			status = "degraded"
		} else {
			services["cache"] = "healthy"
		}
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Version:   cfg.App.Version,
		Services:  services,
	}

	c.JSON(code, response)
}

// ReadinessCheck handles GET /ready
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ready := true
	if h.db != nil {
		if err := database.HealthCheck(h.db); err != nil {
			ready = false
		}
	}

	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, map[string]interface{}{
		"ready":     ready,
		"timestamp": time.Now(),
	})
}

// LivenessCheck handles GET /live
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"alive":     true,
		"timestamp": time.Now(),
	})
}
