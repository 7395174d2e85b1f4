package services

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auralys/auralys-api/internal/models"
)

const dateLayout = "2006-01-02"

// ErrForeignEntry is returned when a row exists but belongs to another user
var ErrForeignEntry = errors.New("entry belongs to another user")

// MoodEntryInput carries the fields of a mood entry create or update
type MoodEntryInput struct {
	Date        string   `json:"date"`
	Mood        int      `json:"mood"`
	Notes       string   `json:"notes"`
	Activity    string   `json:"activity"`
	SleepHours  *float64 `json:"sleep_hours"`
	StressLevel *int     `json:"stress_level"`
}

// CreateMoodEntry persists a mood entry for a consenting user. A second
// entry for the same date is rejected.
func CreateMoodEntry(db *gorm.DB, userID string, in MoodEntryInput) (*models.MoodEntry, error) {
	if err := RequireConsent(db, userID); err != nil {
		return nil, err
	}

	var count int64
	if err := db.Model(&models.MoodEntry{}).
		Where("user_id = ? AND date = ?", userID, in.Date).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateEntry
	}

	entry := models.MoodEntry{
		ID:          uuid.NewString(),
		UserID:      userID,
		Date:        in.Date,
		Mood:        in.Mood,
		Notes:       in.Notes,
		Activity:    in.Activity,
		SleepHours:  in.SleepHours,
		StressLevel: in.StressLevel,
		Collected:   true,
	}
	if err := db.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListMoodEntries returns a user's entries newest-date-first
func ListMoodEntries(db *gorm.DB, userID string, skip, limit int) ([]models.MoodEntry, error) {
	var entries []models.MoodEntry
	err := db.Where("user_id = ?", userID).
		Order("date desc").
		Offset(skip).Limit(limit).
		Find(&entries).Error
	return entries, err
}

// ListMoodEntriesByDateRange returns entries between two inclusive dates
func ListMoodEntriesByDateRange(db *gorm.DB, userID, startDate, endDate string) ([]models.MoodEntry, error) {
	var entries []models.MoodEntry
	err := db.Where("user_id = ? AND date >= ? AND date <= ?", userID, startDate, endDate).
		Order("date desc").
		Find(&entries).Error
	return entries, err
}

// GetMoodEntry fetches one entry with an ownership check
func GetMoodEntry(db *gorm.DB, moodID, userID string) (*models.MoodEntry, error) {
	var entry models.MoodEntry
	if err := db.First(&entry, "id = ?", moodID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if entry.UserID != userID {
		return nil, ErrForeignEntry
	}
	return &entry, nil
}

// UpdateMoodEntry applies a partial update after the ownership check
func UpdateMoodEntry(db *gorm.DB, moodID, userID string, changes map[string]interface{}) (*models.MoodEntry, error) {
	entry, err := GetMoodEntry(db, moodID, userID)
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		if err := db.Model(entry).Updates(changes).Error; err != nil {
			return nil, err
		}
	}
	return GetMoodEntry(db, moodID, userID)
}

// DeleteMoodEntry removes one entry after the ownership check
func DeleteMoodEntry(db *gorm.DB, moodID, userID string) error {
	entry, err := GetMoodEntry(db, moodID, userID)
	if err != nil {
		return err
	}
	return db.Delete(entry).Error
}

// MoodStats aggregates a user's entries over a trailing window of days
type MoodStats struct {
	AverageMood   float64  `json:"average_mood"`
	AverageStress *float64 `json:"average_stress"`
	AverageSleep  *float64 `json:"average_sleep"`
	TotalEntries  int      `json:"total_entries"`
	PeriodStart   string   `json:"period_start"`
	PeriodEnd     string   `json:"period_end"`
}

// GetMoodStats computes windowed averages. Stress and sleep averages only
// consider entries where the value was provided.
func GetMoodStats(db *gorm.DB, userID string, days int) (*MoodStats, error) {
	endDate := time.Now().UTC()
	startDate := endDate.AddDate(0, 0, -(days - 1))

	entries, err := ListMoodEntriesByDateRange(db, userID,
		startDate.Format(dateLayout), endDate.Format(dateLayout))
	if err != nil {
		return nil, err
	}

	stats := &MoodStats{
		TotalEntries: len(entries),
		PeriodStart:  startDate.Format(dateLayout),
		PeriodEnd:    endDate.Format(dateLayout),
	}
	if len(entries) == 0 {
		return stats, nil
	}

	var moodSum float64
	var stressSum, sleepSum float64
	var stressCount, sleepCount int
	for _, entry := range entries {
		moodSum += float64(entry.Mood)
		if entry.StressLevel != nil {
			stressSum += float64(*entry.StressLevel)
			stressCount++
		}
		if entry.SleepHours != nil {
			sleepSum += *entry.SleepHours
			sleepCount++
		}
	}

	stats.AverageMood = round2(moodSum / float64(len(entries)))
	if stressCount > 0 {
		avg := round2(stressSum / float64(stressCount))
		stats.AverageStress = &avg
	}
	if sleepCount > 0 {
		avg := round2(sleepSum / float64(sleepCount))
		stats.AverageSleep = &avg
	}
	return stats, nil
}

// ValidDate reports whether s is a well-formed YYYY-MM-DD date
func ValidDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
