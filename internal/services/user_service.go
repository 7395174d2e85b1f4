package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/auralys/auralys-api/internal/config"
	"github.com/auralys/auralys-api/internal/models"
	"github.com/auralys/auralys-api/internal/utils"
)

// UserUpdate carries the optional fields of a profile update. Nil fields
// are left unchanged.
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
	ImageURL *string
	Consent  *bool
}

// UserExport is the complete GDPR export payload for one user
type UserExport struct {
	UserInfo            PublicUser               `json:"user_info"`
	MoodEntries         []map[string]interface{} `json:"mood_entries"`
	ChatHistory         []map[string]interface{} `json:"chat_history"`
	Recommendations     []map[string]interface{} `json:"recommendations"`
	ExportTimestamp     time.Time                `json:"export_timestamp"`
	DataRetentionPeriod string                   `json:"data_retention_period"`
}

// PublicUser is the user shape returned by the API (no password hash)
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ImageURL  string    `json:"image_url,omitempty"`
	Consent   bool      `json:"consent"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublicUser strips credentials from a user record
func ToPublicUser(u *models.User) PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		ImageURL:  u.ImageURL,
		Consent:   u.Consent,
		CreatedAt: u.CreatedAt,
	}
}

// GetUser fetches a user by id
func GetUser(db *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies a partial profile update. A new password is re-hashed
// before storage.
func UpdateUser(db *gorm.DB, cfg *config.Config, userID string, upd UserUpdate) (*models.User, error) {
	user, err := GetUser(db, userID)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if upd.Name != nil {
		changes["name"] = *upd.Name
	}
	if upd.Email != nil {
		changes["email"] = *upd.Email
	}
	if upd.ImageURL != nil {
		changes["image_url"] = *upd.ImageURL
	}
	if upd.Consent != nil {
		changes["consent"] = *upd.Consent
	}
	if upd.Password != nil {
		hashed, err := utils.HashPassword(*upd.Password, cfg.BcryptCost)
		if err != nil {
			return nil, err
		}
		changes["hashed_password"] = hashed
	}

	if len(changes) > 0 {
		if err := db.Model(user).Updates(changes).Error; err != nil {
			return nil, err
		}
	}
	return GetUser(db, userID)
}

// DeleteUser removes a user and all dependent rows
func DeleteUser(db *gorm.DB, userID string) error {
	if _, err := GetUser(db, userID); err != nil {
		return err
	}
	return purgeUserData(db, userID, true)
}

// ExportUserData assembles the full GDPR export for a user
func ExportUserData(db *gorm.DB, userID string) (*UserExport, error) {
	user, err := GetUser(db, userID)
	if err != nil {
		return nil, err
	}

	var moods []models.MoodEntry
	if err := db.Where("user_id = ?", userID).Order("date desc").Find(&moods).Error; err != nil {
		return nil, err
	}
	moodData := make([]map[string]interface{}, 0, len(moods))
	for _, entry := range moods {
		moodData = append(moodData, map[string]interface{}{
			"id":           entry.ID,
			"date":         entry.Date,
			"mood":         entry.Mood,
			"stress_level": entry.StressLevel,
			"sleep_hours":  entry.SleepHours,
			"notes":        entry.Notes,
			"activity":     entry.Activity,
			"created_at":   entry.CreatedAt.UTC().Format(time.RFC3339),
			"collected":    entry.Collected,
		})
	}

	var chats []models.ChatHistory
	if err := db.Where("user_id = ?", userID).Order("timestamp desc").Find(&chats).Error; err != nil {
		return nil, err
	}
	chatData := make([]map[string]interface{}, 0, len(chats))
	for _, msg := range chats {
		chatData = append(chatData, map[string]interface{}{
			"id":            msg.ID,
			"message":       msg.Message,
			"sender":        msg.Sender,
			"mood_detected": msg.MoodDetected,
			"language":      msg.Language,
			"model_used":    msg.ModelUsed,
			"timestamp":     msg.Timestamp.UTC().Format(time.RFC3339),
			"collected":     msg.Collected,
		})
	}

	var recs []models.Recommendation
	if err := db.Where("user_id = ?", userID).Order("timestamp desc").Find(&recs).Error; err != nil {
		return nil, err
	}
	recData := make([]map[string]interface{}, 0, len(recs))
	for _, rec := range recs {
		recData = append(recData, map[string]interface{}{
			"id":                  rec.ID,
			"suggested_activity":  rec.SuggestedActivity,
			"recommendation_type": rec.RecommendationType,
			"confidence_score":    rec.ConfidenceScore,
			"was_helpful":         rec.WasHelpful,
			"timestamp":           rec.Timestamp.UTC().Format(time.RFC3339),
			"mood_id":             rec.MoodID,
		})
	}

	return &UserExport{
		UserInfo:            ToPublicUser(user),
		MoodEntries:         moodData,
		ChatHistory:         chatData,
		Recommendations:     recData,
		ExportTimestamp:     time.Now().UTC(),
		DataRetentionPeriod: "As per GDPR, data is retained for legitimate business purposes only",
	}, nil
}

// DeletionReceipt is returned after a successful account erasure
type DeletionReceipt struct {
	Message             string    `json:"message"`
	DeletionTimestamp   time.Time `json:"deletion_timestamp"`
	DataAnonymized      bool      `json:"data_anonymized"`
	BackupRetentionDays int       `json:"backup_retention_days"`
	Reason              string    `json:"reason,omitempty"`
}

// DeleteUserAccount performs the GDPR account erasure. The caller must
// confirm with the literal text "DELETE".
func DeleteUserAccount(db *gorm.DB, userID, confirmationText, reason string) (*DeletionReceipt, error) {
	if strings.ToUpper(confirmationText) != "DELETE" {
		return nil, ErrConfirmationText
	}
	if _, err := GetUser(db, userID); err != nil {
		return nil, err
	}

	if err := purgeUserData(db, userID, true); err != nil {
		return nil, fmt.Errorf("failed to delete account: %w", err)
	}

	return &DeletionReceipt{
		Message:             "Account successfully deleted",
		DeletionTimestamp:   time.Now().UTC(),
		DataAnonymized:      true,
		BackupRetentionDays: 30,
		Reason:              reason,
	}, nil
}

// AnonymizationReceipt is returned after a successful anonymization
type AnonymizationReceipt struct {
	Message                string    `json:"message"`
	AnonymizationTimestamp time.Time `json:"anonymization_timestamp"`
	DataRetained           string    `json:"data_retained"`
	UserIDAnonymized       string    `json:"user_id_anonymized"`
}

// AnonymizeUser replaces the user's identifiers with anonymous values and
// revokes consent. Wellness data stays behind for anonymized research use.
func AnonymizeUser(db *gorm.DB, userID string) (*AnonymizationReceipt, error) {
	user, err := GetUser(db, userID)
	if err != nil {
		return nil, err
	}

	short := userID
	if len(short) > 8 {
		short = short[:8]
	}
	anonName := fmt.Sprintf("Anonymous_%s", short)

	err = db.Model(user).Updates(map[string]interface{}{
		"name":    anonName,
		"email":   fmt.Sprintf("deleted_%s@anonymized.local", short),
		"consent": false,
	}).Error
	if err != nil {
		return nil, err
	}

	return &AnonymizationReceipt{
		Message:                "User data successfully anonymized",
		AnonymizationTimestamp: time.Now().UTC(),
		DataRetained:           "Mood entries and aggregated statistics retained for research (anonymized)",
		UserIDAnonymized:       anonName,
	}, nil
}

// DataSummary is the GDPR transparency overview of a user's stored data
type DataSummary struct {
	UserID          string         `json:"user_id"`
	AccountCreated  time.Time      `json:"account_created"`
	ConsentStatus   bool           `json:"consent_status"`
	DataSummary     map[string]int `json:"data_summary"`
	DataTypesStored []string       `json:"data_types_stored"`
	YourRights      []string       `json:"your_rights"`
}

// GetDataSummary reports what categories of data are stored for a user
// without exposing the content itself
func GetDataSummary(db *gorm.DB, userID string) (*DataSummary, error) {
	user, err := GetUser(db, userID)
	if err != nil {
		return nil, err
	}

	var moodCount, chatCount, recCount int64
	if err := db.Model(&models.MoodEntry{}).Where("user_id = ?", userID).Count(&moodCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.ChatHistory{}).Where("user_id = ?", userID).Count(&chatCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Recommendation{}).Where("user_id = ?", userID).Count(&recCount).Error; err != nil {
		return nil, err
	}

	return &DataSummary{
		UserID:         user.ID,
		AccountCreated: user.CreatedAt,
		ConsentStatus:  user.Consent,
		DataSummary: map[string]int{
			"mood_entries":    int(moodCount),
			"chat_messages":   int(chatCount),
			"recommendations": int(recCount),
		},
		DataTypesStored: []string{
			"Personal information (name, email)",
			"Mood tracking data",
			"Chat conversations with AI",
			"Personalized recommendations",
			"Usage analytics (anonymized)",
		},
		YourRights: []string{
			"Right to access your data (/api/auth/export-data)",
			"Right to delete your account (/api/auth/delete-account)",
			"Right to anonymize your data (/api/auth/anonymize-account)",
			"Right to withdraw consent (update profile)",
		},
	}, nil
}

// RequireConsent returns ErrConsentRequired when the user has withdrawn
// consent to data collection. Absent users map to ErrNotFound.
func RequireConsent(db *gorm.DB, userID string) error {
	user, err := GetUser(db, userID)
	if err != nil {
		return err
	}
	if !user.Consent {
		return ErrConsentRequired
	}
	return nil
}

// purgeUserData removes all rows tied to a user inside one transaction.
// Child tables go first so the delete also works without FK cascade.
func purgeUserData(db *gorm.DB, userID string, includeUser bool) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.Recommendation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.ChatHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.MoodEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		if includeUser {
			if err := tx.Delete(&models.User{}, "id = ?", userID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
