package postgres

import (
	"context"

	"github.com/dom/heritage-gallery/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gameSessionRepository struct {
	db *gorm.DB
}

func NewGameSessionRepository(db *gorm.DB) *gameSessionRepository {
	return &gameSessionRepository{db: db}
}

func (r *gameSessionRepository) Create(ctx context.Context, session *domain.GameSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *gameSessionRepository) Leaderboard(ctx context.Context, contentID string, limit int) ([]*domain.GameSession, error) {
	var sessions []*domain.GameSession
	query := r.db.WithContext(ctx).Preload("User")
	if contentID != "" {
		query = query.Where("content_id = ?", contentID)
	}
	err := query.
		Order("score DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

func (r *gameSessionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.GameSession, error) {
	var sessions []*domain.GameSession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}
