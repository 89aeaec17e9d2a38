package service

import (
	"github.com/dom/heritage-gallery/internal/config"
	"github.com/dom/heritage-gallery/internal/domain"
	"github.com/dom/heritage-gallery/internal/identity"
	"github.com/dom/heritage-gallery/internal/objectstore"
	"github.com/dom/heritage-gallery/internal/platform/logger"
	"github.com/dom/heritage-gallery/internal/repository"
	"github.com/google/uuid"
)

// EventPublisher receives domain events for the realtime feed.
type EventPublisher interface {
	ArtworkPublished(artwork *domain.Artwork)
	ArtworkDeleted(artworkID uuid.UUID)
	ScoreSubmitted(session *domain.GameSession, displayName string)
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) ArtworkPublished(*domain.Artwork)           {}
func (NopPublisher) ArtworkDeleted(uuid.UUID)                   {}
func (NopPublisher) ScoreSubmitted(*domain.GameSession, string) {}

type Services struct {
	Auth    *AuthService
	Profile *ProfileService
	Artwork *ArtworkService
	Game    *GameService
}

type Dependencies struct {
	Repos    *repository.Repositories
	Store    objectstore.Store
	Verifier identity.Verifier
	Events   EventPublisher
	Config   *config.Config
	Logger   *logger.Logger
}

func NewServices(deps Dependencies) *Services {
	searcher := NewSubstringSearcher(deps.Repos.Artwork)
	return &Services{
		Auth:    NewAuthService(deps.Repos.User, deps.Repos.Session, deps.Verifier, deps.Config, deps.Logger),
		Profile: NewProfileService(deps.Repos.User),
		Artwork: NewArtworkService(deps.Repos.Artwork, deps.Store, searcher, deps.Events, deps.Config, deps.Logger),
		Game:    NewGameService(deps.Repos.GameSession, deps.Repos.User, deps.Events, deps.Logger),
	}
}
