package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/auralys/auralys-api/internal/config"
	"github.com/auralys/auralys-api/internal/services"
)

// HealthHandler handles liveness and readiness endpoints
type HealthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// Health performs a health check of the service
// @Summary Service health check
// @Description Checks database connectivity and the sentiment analysis endpoint
// @Tags health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(h.Cfg, h.DB)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}

// Root returns a welcome payload with pointers to the API surface
// @Summary API welcome
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":    "Auralys API",
		"status":  "running",
		"docs":    "/swagger/index.html",
		"health":  "/health",
		"metrics": "/metrics",
	})
}
