package repository

import (
	"context"

	"github.com/dom/heritage-gallery/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetBySubject(ctx context.Context, subject string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// RecordGame bumps the denormalized game statistics in a single statement.
	RecordGame(ctx context.Context, userID uuid.UUID, score, timeSpent int) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type ArtworkRepository interface {
	Create(ctx context.Context, artwork *domain.Artwork) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Artwork, error)
	// ListByOwner returns every artwork of the owner, newest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Artwork, error)
	// ListRecent returns artworks newest first; limit <= 0 means no limit.
	ListRecent(ctx context.Context, limit int) ([]*domain.Artwork, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type GameSessionRepository interface {
	Create(ctx context.Context, session *domain.GameSession) error
	// Leaderboard orders by score desc then created_at desc, with the player preloaded.
	Leaderboard(ctx context.Context, contentID string, limit int) ([]*domain.GameSession, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.GameSession, error)
}

type Repositories struct {
	User        UserRepository
	Session     SessionRepository
	Artwork     ArtworkRepository
	GameSession GameSessionRepository
}
