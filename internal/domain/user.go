package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID       `json:"id" gorm:"type:uuid;primary_key"`
	Subject         *string         `json:"-" gorm:"uniqueIndex"`
	Username        string          `json:"username" gorm:"uniqueIndex;not null"`
	Email           string          `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash    string          `json:"-"`
	DisplayName     string          `json:"displayName" gorm:"not null"`
	AvatarURL       string          `json:"avatarUrl"`
	MarketplaceRole MarketplaceRole `json:"marketplaceRole" gorm:"type:varchar(16);not null;default:'viewer'"`

	// Denormalized game statistics, maintained on score submission.
	GamesPlayed    int `json:"gamesPlayed" gorm:"not null;default:0"`
	TotalScore     int `json:"totalScore" gorm:"not null;default:0"`
	BestScore      int `json:"bestScore" gorm:"not null;default:0"`
	TotalTimeSpent int `json:"totalTimeSpent" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasPassword reports whether the user can sign in with a local password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

type UserSession struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	UserID           uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	RefreshTokenHash string    `json:"-" gorm:"not null"`
	ExpiresAt        time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Expired reports whether the session is past its expiry at t.
func (s *UserSession) Expired(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}
