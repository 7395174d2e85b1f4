package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/auralys/auralys-api/internal/config"
	"github.com/auralys/auralys-api/internal/middleware"
	"github.com/auralys/auralys-api/internal/models"
	"github.com/auralys/auralys-api/internal/services"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	// Auto-migrate models
	err = db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.MoodEntry{},
		&models.ChatHistory{},
		&models.Recommendation{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// testConfig returns a configuration suitable for handler tests
func testConfig() *config.Config {
	return &config.Config{
		Port:                "8000",
		AppEnv:              "testing",
		DBType:              "sqlite",
		DBDatabase:          ":memory:",
		SecretKey:           "test-secret-key",
		AccessTokenTTLMin:   30,
		RefreshTokenTTLDays: 7,
		BcryptCost:          4,
	}
}

// registerAndLogin creates a user through the service layer and returns
// the user plus a bearer token for authenticated requests
func registerAndLogin(t *testing.T, db *gorm.DB, cfg *config.Config, email string) (*models.User, string) {
	user, err := services.RegisterUser(db, cfg, "Test User", email, "password123", "")
	if err != nil {
		t.Fatalf("Failed to register user: %v", err)
	}
	_, pair, err := services.Authenticate(db, cfg, email, "password123")
	if err != nil {
		t.Fatalf("Failed to authenticate user: %v", err)
	}
	return user, pair.AccessToken
}

// requireAuth builds the auth middleware with the test secret
func requireAuth(cfg *config.Config) fiber.Handler {
	return middleware.RequireAuth(cfg.SecretKey)
}

// jsonRequest builds an httptest request with a JSON body and optional
// bearer token
func jsonRequest(t *testing.T, method, target string, body interface{}, token string) *http.Request {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// decodeBody decodes a JSON response body into a generic map
func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return result
}

func decodeList(t *testing.T, resp *http.Response) []map[string]interface{} {
	var result []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return result
}
