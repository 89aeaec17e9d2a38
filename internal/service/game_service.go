package service

import (
	"context"

	"github.com/dom/heritage-gallery/internal/domain"
	"github.com/dom/heritage-gallery/internal/platform/logger"
	"github.com/dom/heritage-gallery/internal/repository"
	"github.com/dom/heritage-gallery/internal/validation"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

type GameService struct {
	sessionRepo repository.GameSessionRepository
	userRepo    repository.UserRepository
	events      EventPublisher
	log         *logger.Logger
}

func NewGameService(sessionRepo repository.GameSessionRepository, userRepo repository.UserRepository, events EventPublisher, log *logger.Logger) *GameService {
	if events == nil {
		events = NopPublisher{}
	}
	return &GameService{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		events:      events,
		log:         log.With("service", "GameService"),
	}
}

type SubmitScoreInput struct {
	ContentID    string   `json:"contentId" validate:"required,notblank,max=100"`
	Score        int      `json:"score" validate:"min=0"`
	MaxScore     int      `json:"maxScore" validate:"min=0"`
	TimeSpent    int      `json:"timeSpent" validate:"min=0"`
	IsCompleted  bool     `json:"isCompleted"`
	Achievements []string `json:"achievements" validate:"max=50,dive,max=100"`
}

// SubmitScore records a new session. Every call inserts a new record.
func (s *GameService) SubmitScore(ctx context.Context, userID uuid.UUID, input SubmitScoreInput) (*domain.GameSession, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	achievements := input.Achievements
	if achievements == nil {
		achievements = []string{}
	}

	session := &domain.GameSession{
		ID:           uuid.New(),
		UserID:       userID,
		ContentID:    input.ContentID,
		Score:        input.Score,
		MaxScore:     input.MaxScore,
		TimeSpent:    input.TimeSpent,
		IsCompleted:  input.IsCompleted,
		Achievements: datatypes.JSONSlice[string](achievements),
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	// The session is already stored, so a stats failure is logged rather than returned.
	if err := s.userRepo.RecordGame(ctx, userID, session.Score, session.TimeSpent); err != nil {
		s.log.Error("failed to update user game stats", "user_id", userID, "session_id", session.ID, "error", err)
	}

	displayName := ""
	if user, err := s.userRepo.GetByID(ctx, userID); err == nil {
		displayName = user.DisplayName
	}
	s.events.ScoreSubmitted(session, displayName)

	return session, nil
}

// Leaderboard ranks sessions by score then recency. contentID may be empty.
func (s *GameService) Leaderboard(ctx context.Context, contentID string, limit int) ([]domain.LeaderboardEntry, error) {
	limit = ClampLeaderboardLimit(limit)

	sessions, err := s.sessionRepo.Leaderboard(ctx, contentID, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LeaderboardEntry, 0, len(sessions))
	for i, session := range sessions {
		entry := domain.LeaderboardEntry{
			Rank:      i + 1,
			SessionID: session.ID,
			UserID:    session.UserID,
			ContentID: session.ContentID,
			Score:     session.Score,
			MaxScore:  session.MaxScore,
			TimeSpent: session.TimeSpent,
			CreatedAt: session.CreatedAt,
		}
		if session.User != nil {
			entry.DisplayName = session.User.DisplayName
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *GameService) ListMine(ctx context.Context, userID uuid.UUID) ([]*domain.GameSession, error) {
	return s.sessionRepo.ListByUser(ctx, userID)
}

// ClampLeaderboardLimit applies the default for non-positive values and caps the rest.
func ClampLeaderboardLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLeaderboardLimit
	case limit > MaxLeaderboardLimit:
		return MaxLeaderboardLimit
	default:
		return limit
	}
}
