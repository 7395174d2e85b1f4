package models

import (
	"time"
)

// ChatHistory is one message of a user/bot conversation. Messages carry the
// mood label detected by the sentiment service plus the per-label scores
// that produced it.
type ChatHistory struct {
	ID                string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID            string    `gorm:"type:char(36);not null;index" json:"user_id"`
	Timestamp         time.Time `gorm:"not null;index" json:"timestamp"`
	Message           string    `gorm:"size:2000;not null" json:"message"`
	Sender            string    `gorm:"size:10;not null" json:"sender"` // 'user' or 'bot'
	MoodDetected      string    `gorm:"size:50" json:"mood_detected,omitempty"`
	Collected         bool      `gorm:"default:true" json:"collected"`
	TranslatedMessage string    `gorm:"size:2000" json:"translated_message,omitempty"`
	Language          string    `gorm:"size:10" json:"language,omitempty"`
	ModelUsed         string    `gorm:"size:120" json:"model_used,omitempty"`
	Emotions          JSON      `gorm:"type:json" json:"emotions,omitempty"` // label -> score of top emotions
}

// TableName overrides the table name for ChatHistory
func (ChatHistory) TableName() string {
	return "chat_history"
}
