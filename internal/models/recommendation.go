package models

import (
	"time"
)

// Recommendation is a single activity suggested to a user, optionally tied
// to the mood entry that triggered it. WasHelpful stays nil until the user
// submits feedback.
type Recommendation struct {
	ID                 string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID             string    `gorm:"type:char(36);not null;index" json:"user_id"`
	MoodID             *string   `gorm:"type:char(36);index" json:"mood_id,omitempty"`
	SuggestedActivity  string    `gorm:"size:255;not null" json:"suggested_activity"`
	Timestamp          time.Time `gorm:"not null;index" json:"timestamp"`
	WasHelpful         *bool     `json:"was_helpful"`
	RecommendationType string    `gorm:"size:50;default:mood_based" json:"recommendation_type"`
	ConfidenceScore    float64   `gorm:"default:0" json:"confidence_score"`
}

// TableName overrides the table name for Recommendation
func (Recommendation) TableName() string {
	return "recommendations"
}
