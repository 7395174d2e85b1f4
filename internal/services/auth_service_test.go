package services

import (
	"errors"
	"testing"
	"time"

	"github.com/auralys/auralys-api/internal/models"
	"github.com/auralys/auralys-api/internal/utils"
)

// TestRegisterUser tests account creation and the duplicate email guard
func TestRegisterUser(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()

	user, err := RegisterUser(db, cfg, "Alice", "alice@example.com", "secret123", "")
	if err != nil {
		t.Fatalf("Failed to register user: %v", err)
	}
	if user.ID == "" {
		t.Error("Expected generated user ID")
	}
	if user.Role != "user" {
		t.Errorf("Expected role 'user', got %q", user.Role)
	}
	if !user.Consent {
		t.Error("Expected consent to default to true")
	}
	if user.HashedPassword == "secret123" {
		t.Error("Password must not be stored in plaintext")
	}

	// Same email again
	_, err = RegisterUser(db, cfg, "Alice Again", "alice@example.com", "other456", "")
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Expected ErrEmailTaken, got %v", err)
	}
}

// TestRegisterUserAdminGrant tests the testing-environment admin rule
func TestRegisterUserAdminGrant(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()

	// "admin" in the email grants the role only while APP_ENV=testing
	user, err := RegisterUser(db, cfg, "Admin", "admin@example.com", "secret123", "")
	if err != nil {
		t.Fatalf("Failed to register user: %v", err)
	}
	if user.Role != "admin" {
		t.Errorf("Expected role 'admin' in testing env, got %q", user.Role)
	}

	user, err = RegisterUser(db, cfg, "Carol", "carol@example.com", "secret123", "")
	if err != nil {
		t.Fatalf("Failed to register user: %v", err)
	}
	if user.Role != "user" {
		t.Errorf("Expected role 'user', got %q", user.Role)
	}

	prodCfg := testConfig()
	prodCfg.AppEnv = "production"
	user, err = RegisterUser(db, prodCfg, "Admin Prod", "admin2@example.com", "secret123", "")
	if err != nil {
		t.Fatalf("Failed to register user: %v", err)
	}
	if user.Role != "user" {
		t.Errorf("Expected role 'user' outside testing env, got %q", user.Role)
	}
}

// TestAuthenticate tests login with good and bad credentials
func TestAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	user := createTestUser(t, db, "bob@example.com", true)

	got, pair, err := Authenticate(db, cfg, "bob@example.com", "password123")
	if err != nil {
		t.Fatalf("Failed to authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("Expected user %s, got %s", user.ID, got.ID)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("Expected access and refresh tokens")
	}
	if pair.TokenType != "bearer" {
		t.Errorf("Expected token type 'bearer', got %q", pair.TokenType)
	}

	// Access token round-trips with the configured secret
	userID, role, err := utils.ParseAccessToken(cfg.SecretKey, pair.AccessToken)
	if err != nil {
		t.Fatalf("Failed to parse access token: %v", err)
	}
	if userID != user.ID || role != "user" {
		t.Errorf("Unexpected claims: %s %s", userID, role)
	}

	if _, _, err := Authenticate(db, cfg, "bob@example.com", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, _, err := Authenticate(db, cfg, "nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

// TestRefreshTokens tests refresh rotation and replay rejection
func TestRefreshTokens(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	createTestUser(t, db, "carol@example.com", true)

	_, pair, err := Authenticate(db, cfg, "carol@example.com", "password123")
	if err != nil {
		t.Fatalf("Failed to authenticate: %v", err)
	}

	rotated, err := RefreshTokens(db, cfg, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Failed to refresh tokens: %v", err)
	}
	if rotated.RefreshToken == pair.RefreshToken {
		t.Error("Expected a new refresh token after rotation")
	}

	// The presented token is revoked by rotation
	if _, err := RefreshTokens(db, cfg, pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken on replay, got %v", err)
	}

	// The rotated token still works
	if _, err := RefreshTokens(db, cfg, rotated.RefreshToken); err != nil {
		t.Errorf("Expected rotated token to refresh, got %v", err)
	}

	if _, err := RefreshTokens(db, cfg, "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for unknown token, got %v", err)
	}
}

// TestRevokeRefreshToken tests logout revocation
func TestRevokeRefreshToken(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	createTestUser(t, db, "dave@example.com", true)

	_, pair, err := Authenticate(db, cfg, "dave@example.com", "password123")
	if err != nil {
		t.Fatalf("Failed to authenticate: %v", err)
	}

	if err := RevokeRefreshToken(db, pair.RefreshToken); err != nil {
		t.Fatalf("Failed to revoke token: %v", err)
	}
	if _, err := RefreshTokens(db, cfg, pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken after revocation, got %v", err)
	}

	// Unknown token does not error
	if err := RevokeRefreshToken(db, "unknown"); err != nil {
		t.Errorf("Expected idempotent revoke, got %v", err)
	}
}

// TestPurgeExpiredTokens tests expired token cleanup
func TestPurgeExpiredTokens(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "erin@example.com", true)

	now := time.Now().UTC()
	expired := models.RefreshToken{
		TokenHash: utils.HashRefreshRaw("old"),
		UserID:    user.ID,
		ExpiresAt: now.Add(-time.Hour),
	}
	live := models.RefreshToken{
		TokenHash: utils.HashRefreshRaw("new"),
		UserID:    user.ID,
		ExpiresAt: now.Add(time.Hour),
	}
	db.Create(&expired)
	db.Create(&live)

	purged, err := PurgeExpiredTokens(db, now)
	if err != nil {
		t.Fatalf("Failed to purge tokens: %v", err)
	}
	if purged != 1 {
		t.Errorf("Expected 1 purged token, got %d", purged)
	}

	var remaining int64
	db.Model(&models.RefreshToken{}).Count(&remaining)
	if remaining != 1 {
		t.Errorf("Expected 1 remaining token, got %d", remaining)
	}
}
