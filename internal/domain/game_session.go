package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// GameSession is one completed play or quiz attempt. Sessions are append-only.
type GameSession struct {
	ID           uuid.UUID                   `json:"id" gorm:"type:uuid;primary_key"`
	UserID       uuid.UUID                   `json:"userId" gorm:"type:uuid;not null;index"`
	ContentID    string                      `json:"contentId" gorm:"type:varchar(100);not null;index"`
	Score        int                         `json:"score" gorm:"not null;index:idx_game_sessions_leaderboard,sort:desc,priority:1"`
	MaxScore     int                         `json:"maxScore" gorm:"not null"`
	TimeSpent    int                         `json:"timeSpent" gorm:"not null"`
	IsCompleted  bool                        `json:"isCompleted" gorm:"not null;default:false"`
	Achievements datatypes.JSONSlice[string] `json:"achievements"`
	CreatedAt    time.Time                   `json:"createdAt" gorm:"index:idx_game_sessions_leaderboard,sort:desc,priority:2"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName returns the table name for GORM
func (GameSession) TableName() string {
	return "game_sessions"
}

// Validate checks the non-negativity invariants.
func (s *GameSession) Validate() error {
	if s.Score < 0 || s.MaxScore < 0 || s.TimeSpent < 0 {
		return ErrNegativeScore
	}
	return nil
}

// LeaderboardEntry is a ranked view over a session.
type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	SessionID   uuid.UUID `json:"sessionId"`
	UserID      uuid.UUID `json:"userId"`
	DisplayName string    `json:"displayName"`
	ContentID   string    `json:"contentId"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"maxScore"`
	TimeSpent   int       `json:"timeSpent"`
	CreatedAt   time.Time `json:"createdAt"`
}
