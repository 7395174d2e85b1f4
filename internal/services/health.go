package services

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/auralys/auralys-api/internal/config"
	"github.com/auralys/auralys-api/internal/utils"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Sentiment    string            `json:"sentiment"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck performs a comprehensive health check of the service
func HealthCheck(cfg *config.Config, db *gorm.DB) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	// Check database connectivity
	sqlDB, err := db.DB()
	if err != nil {
		result.Status = "unhealthy"
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		result.ErrorMessage = fmt.Sprintf("Database connection error: %v", err)
		log.Printf("Health check failed - database connection: %v", err)
	} else {
		if err := sqlDB.Ping(); err != nil {
			result.Status = "unhealthy"
			result.Database = "unreachable"
			result.Details["database_ping_error"] = err.Error()
			result.ErrorMessage = fmt.Sprintf("Database ping failed: %v", err)
			log.Printf("Health check failed - database ping: %v", err)
		} else {
			result.Database = "ok"
			result.Details["database_type"] = cfg.DBType
			result.Details["database_name"] = cfg.DBDatabase
		}
	}

	// Check sentiment endpoint connectivity. A missing endpoint is not a
	// failure: the chat service degrades to fallback replies.
	if cfg.NLPAPIURL == "" {
		result.Sentiment = "not configured"
	} else if err := utils.PingNLP(cfg.NLPAPIURL); err != nil {
		result.Sentiment = "unreachable"
		result.Details["sentiment_error"] = err.Error()
		log.Printf("Health check - sentiment endpoint unreachable: %v", err)
	} else {
		result.Sentiment = "ok"
		result.Details["sentiment_model"] = cfg.NLPModel
	}

	if result.Status == "healthy" && result.Database == "ok" {
		log.Println("Health check passed - all systems operational")
	}

	return result
}
