package models

import (
	"time"
)

// MoodEntry is a single day's self-reported wellness measurement.
// One entry per user per calendar date.
type MoodEntry struct {
	ID          string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID      string    `gorm:"type:char(36);not null;index:idx_user_date_mood,unique" json:"user_id"`
	Date        string    `gorm:"size:10;not null;index:idx_user_date_mood,unique" json:"date"` // YYYY-MM-DD
	Mood        int       `gorm:"not null" json:"mood"`                                         // 1-5 scale
	Notes       string    `gorm:"size:500" json:"notes,omitempty"`
	Activity    string    `gorm:"size:100" json:"activity,omitempty"`
	SleepHours  *float64  `json:"sleep_hours,omitempty"`
	StressLevel *int      `json:"stress_level,omitempty"` // 1-5 scale
	Collected   bool      `gorm:"default:true" json:"collected"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Recommendations []Recommendation `gorm:"foreignKey:MoodID" json:"-"`
}

// TableName overrides the table name for MoodEntry
func (MoodEntry) TableName() string {
	return "mood_entries"
}
