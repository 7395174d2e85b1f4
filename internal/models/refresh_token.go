package models

import (
	"time"
)

// RefreshToken stores the SHA-256 hash of an issued refresh token. The raw
// token never touches the database; rotation revokes the old row and
// inserts a new one.
type RefreshToken struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	TokenHash string `gorm:"size:64;uniqueIndex;not null"`
	UserID    string `gorm:"type:char(36);not null;index"`
	ExpiresAt time.Time
	Revoked   bool `gorm:"default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the table name for RefreshToken
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}
