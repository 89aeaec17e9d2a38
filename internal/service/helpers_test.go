package service_test

import (
	"sync"
	"testing"

	"github.com/dom/heritage-gallery/internal/domain"
	"github.com/dom/heritage-gallery/internal/platform/logger"
	"github.com/dom/heritage-gallery/internal/repository"
	"github.com/dom/heritage-gallery/internal/repository/postgres"
	"github.com/dom/heritage-gallery/internal/testutil"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// recordingPublisher captures feed events for assertions.
type recordingPublisher struct {
	mu        sync.Mutex
	published []uuid.UUID
	deleted   []uuid.UUID
	scores    []string
}

func (p *recordingPublisher) ArtworkPublished(artwork *domain.Artwork) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, artwork.ID)
}

func (p *recordingPublisher) ArtworkDeleted(artworkID uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, artworkID)
}

func (p *recordingPublisher) ScoreSubmitted(session *domain.GameSession, displayName string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scores = append(p.scores, displayName)
}

type serviceEnv struct {
	db    *gorm.DB
	repos *repository.Repositories
	log   *logger.Logger
}

func newServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()
	testDB := testutil.NewTestDB(t)
	return &serviceEnv{
		db:    testDB.DB,
		repos: postgres.NewRepositories(testDB.DB),
		log:   logger.NewNop(),
	}
}
