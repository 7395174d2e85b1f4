package services

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/auralys/auralys-api/internal/config"
	"github.com/auralys/auralys-api/internal/models"
	"github.com/auralys/auralys-api/internal/utils"
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

// testConfig returns a configuration suitable for unit tests
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

// createTestUser inserts a user with a bcrypt-hashed password
func createTestUser(t *testing.T, db *gorm.DB, email string, consent bool) *models.User {
	hash, err := utils.HashPassword("password123", 4)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := models.User{
		ID:             uuid.NewString(),
		Name:           "Test User",
		Email:          email,
		HashedPassword: hash,
		Role:           "user",
		Consent:        consent,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return &user
}
