package models

import (
	"time"
)

// User is the root of all ownership relations. The Consent flag gates
// whether mood/chat/recommendation data may be persisted server-side.
type User struct {
	ID             string `gorm:"type:char(36);primaryKey"`
	Name           string `gorm:"size:100;not null"`
	Email          string `gorm:"size:100;uniqueIndex;not null"`
	HashedPassword string `gorm:"size:128;not null"`
	Role           string `gorm:"size:50;default:user"`
	ImageURL       string `gorm:"size:500"`
	Consent        bool   `gorm:"default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	RefreshTokens []RefreshToken `gorm:"constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}
