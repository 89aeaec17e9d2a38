package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/heritage-gallery/internal/domain"
	"github.com/dom/heritage-gallery/internal/repository/postgres"
	"github.com/dom/heritage-gallery/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSessionRepository(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewSessionRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	newSession := func() *domain.UserSession {
		s := &domain.UserSession{
			ID:               uuid.New(),
			UserID:           user.ID,
			RefreshTokenHash: "hash",
			ExpiresAt:        time.Now().Add(time.Hour).UTC(),
		}
		require.NoError(t, repo.Create(ctx, s))
		return s
	}

	first := newSession()
	second := newSession()

	t.Run("get by id", func(t *testing.T) {
		found, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.UserID)
		assert.False(t, found.Expired(time.Now()))
	})

	t.Run("delete one session keeps the others", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, first.ID))

		_, err := repo.GetByID(ctx, first.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		_, err = repo.GetByID(ctx, second.ID)
		assert.NoError(t, err)
	})

	t.Run("delete by user", func(t *testing.T) {
		third := newSession()
		require.NoError(t, repo.DeleteByUserID(ctx, user.ID))

		for _, id := range []uuid.UUID{second.ID, third.ID} {
			_, err := repo.GetByID(ctx, id)
			assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		}
	})
}
