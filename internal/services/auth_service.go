package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auralys/auralys-api/internal/config"
	"github.com/auralys/auralys-api/internal/models"
	"github.com/auralys/auralys-api/internal/utils"
)

// TokenPair is the result of a successful login or refresh
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	TokenType        string    `json:"token_type"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// RegisterUser creates a new user account with a bcrypt-hashed password.
// Consent to data collection defaults to granted and can be withdrawn
// through profile updates.
func RegisterUser(db *gorm.DB, cfg *config.Config, name, email, password, imageURL string) (*models.User, error) {
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hashed, err := utils.HashPassword(password, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	// Admin accounts can only be self-provisioned in the testing environment
	role := "user"
	if cfg.AppEnv == "testing" && strings.Contains(email, "admin") {
		role = "admin"
	}

	user := models.User{
		ID:             uuid.NewString(),
		Name:           name,
		Email:          email,
		HashedPassword: hashed,
		Role:           role,
		ImageURL:       imageURL,
		Consent:        true,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate verifies credentials and issues an access/refresh token pair
func Authenticate(db *gorm.DB, cfg *config.Config, email, password string) (*models.User, *TokenPair, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !utils.VerifyPassword(user.HashedPassword, password) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := issueTokens(db, cfg, &user)
	if err != nil {
		return nil, nil, err
	}
	return &user, pair, nil
}

// RefreshTokens rotates a refresh token: the presented token is revoked and
// a new access/refresh pair is issued. A revoked or expired token is
// rejected.
func RefreshTokens(db *gorm.DB, cfg *config.Config, rawRefresh string) (*TokenPair, error) {
	hash := utils.HashRefreshRaw(rawRefresh)

	var stored models.RefreshToken
	if err := db.Where("token_hash = ?", hash).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if stored.Revoked || time.Now().UTC().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, ErrInvalidToken
	}

	var pair *TokenPair
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&stored).Update("revoked", true).Error; err != nil {
			return err
		}
		p, err := issueTokens(tx, cfg, &user)
		if err != nil {
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// RevokeRefreshToken invalidates a refresh token on logout. Unknown tokens
// are ignored so logout is idempotent.
func RevokeRefreshToken(db *gorm.DB, rawRefresh string) error {
	hash := utils.HashRefreshRaw(rawRefresh)
	return db.Model(&models.RefreshToken{}).
		Where("token_hash = ?", hash).
		Update("revoked", true).Error
}

// PurgeExpiredTokens removes refresh tokens that expired before cutoff
func PurgeExpiredTokens(db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.Where("expires_at < ?", cutoff).Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}

func issueTokens(db *gorm.DB, cfg *config.Config, user *models.User) (*TokenPair, error) {
	access, err := utils.NewAccessToken(cfg.SecretKey, user.ID, user.Role, cfg.AccessTokenTTLMin)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRefreshToken(cfg.RefreshTokenTTLDays)
	if err != nil {
		return nil, err
	}

	record := models.RefreshToken{
		TokenHash: utils.HashRefreshRaw(refresh.Raw),
		UserID:    user.ID,
		ExpiresAt: refresh.Exp,
	}
	if err := db.Create(&record).Error; err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      access.Token,
		TokenType:        "bearer",
		ExpiresAt:        access.Exp,
		RefreshToken:     refresh.Raw,
		RefreshExpiresAt: refresh.Exp,
	}, nil
}
