package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port   string
	AppEnv string // development, testing, production

	// Database configuration
	DBType            string // mysql, postgres, sqlite, sqlserver, etc.
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int

	// Auth configuration
	SecretKey           string
	AccessTokenTTLMin   int
	RefreshTokenTTLDays int
	BcryptCost          int

	// Sentiment inference service
	NLPAPIURL   string
	NLPAPIToken string
	NLPModel    string

	// Optional Redis cache for sentiment results
	RedisAddr     string
	RedisPassword string
}

// Load loads configuration from environment variables.
// A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "3000"),
		AppEnv:              getEnv("APP_ENV", "development"),
		DBType:              getEnv("DB_TYPE", "postgres"),
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnv("DB_PORT", "5432"),
		DBDatabase:          getEnv("DB_DATABASE", ""),
		DBUser:              getEnv("DB_USER", ""),
		DBPassword:          getEnv("DB_PASSWORD", ""),
		DBConnectionLimit:   getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		SecretKey:           getEnv("APP_SECRET_KEY", ""),
		AccessTokenTTLMin:   getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30),
		RefreshTokenTTLDays: getEnvAsInt("REFRESH_TOKEN_EXPIRE_DAYS", 7),
		BcryptCost:          getEnvAsInt("BCRYPT_COST", 10),
		NLPAPIURL:           getEnv("NLP_API_URL", ""),
		NLPAPIToken:         getEnv("NLP_API_TOKEN", ""),
		NLPModel:            getEnv("NLP_MODEL", "j-hartmann/emotion-english-distilroberta-base"),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
	}

	// Validate required fields
	if cfg.DBDatabase == "" {
		return nil, fmt.Errorf("DB_DATABASE is required")
	}
	if cfg.DBType != "sqlite" && cfg.DBUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("APP_SECRET_KEY is required")
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
