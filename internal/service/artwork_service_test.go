package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dom/heritage-gallery/internal/domain"
	"github.com/dom/heritage-gallery/internal/objectstore"
	"github.com/dom/heritage-gallery/internal/repository"
	"github.com/dom/heritage-gallery/internal/service"
	"github.com/dom/heritage-gallery/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingArtworkRepo fails Create while delegating everything else.
type failingArtworkRepo struct {
	repository.ArtworkRepository
}

func (failingArtworkRepo) Create(ctx context.Context, artwork *domain.Artwork) error {
	return errors.New("database unavailable")
}

type artworkEnv struct {
	*serviceEnv
	store   *objectstore.MemoryStore
	events  *recordingPublisher
	service *service.ArtworkService
	owner   *domain.User
}

func newArtworkEnv(t *testing.T) *artworkEnv {
	t.Helper()
	env := newServiceEnv(t)
	store := objectstore.NewMemoryStore("https://cdn.test/bucket")
	events := &recordingPublisher{}
	owner, _ := testutil.NewUserBuilder().WithEmail("owner@example.com").Build(t, env.db)
	svc := service.NewArtworkService(env.repos.Artwork, store, service.NewSubstringSearcher(env.repos.Artwork), events, testutil.TestConfig(), env.log)
	return &artworkEnv{serviceEnv: env, store: store, events: events, service: svc, owner: owner}
}

func (e *artworkEnv) uploadInput(title string) service.UploadInput {
	return service.UploadInput{
		OwnerID:      e.owner.ID,
		OwnerEmail:   e.owner.Email,
		Title:        title,
		Description:  "Rice paste on mud wall",
		Tags:         "Warli, tribal, ,warli",
		FileName:     "harvest.PNG",
		DeclaredType: "image/png",
		File:         bytes.NewReader(testutil.PNGBytes()),
	}
}

func TestArtworkService_Upload(t *testing.T) {
	env := newArtworkEnv(t)
	ctx := context.Background()

	artwork, err := env.service.Upload(ctx, env.uploadInput("  Warli Harvest  "))
	require.NoError(t, err)

	wantKey := fmt.Sprintf("artworks/%s/%s.png", env.owner.ID, artwork.ID)
	assert.Equal(t, wantKey, artwork.StoragePath)
	assert.Equal(t, "https://cdn.test/bucket/"+wantKey, artwork.ImageURL)
	assert.Equal(t, "Warli Harvest", artwork.Title)
	assert.Equal(t, []string{"warli", "tribal"}, artwork.TagList())
	assert.Equal(t, "image/png", artwork.ContentType)
	assert.Equal(t, env.owner.Email, artwork.OwnerEmail)
	assert.Equal(t, int64(len(testutil.PNGBytes())), artwork.SizeBytes)

	obj, ok := env.store.Get(wantKey)
	require.True(t, ok)
	assert.True(t, obj.Public)
	assert.Equal(t, testutil.PNGBytes(), obj.Data)

	stored, err := env.service.Get(ctx, artwork.ID)
	require.NoError(t, err)
	assert.Equal(t, wantKey, stored.StoragePath)

	assert.Equal(t, []uuid.UUID{artwork.ID}, env.events.published)
}

func TestArtworkService_UploadRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*service.UploadInput)
		wantErr error
	}{
		{
			name:    "missing file",
			mutate:  func(in *service.UploadInput) { in.File = nil },
			wantErr: domain.ErrMissingFile,
		},
		{
			name:    "empty file",
			mutate:  func(in *service.UploadInput) { in.File = bytes.NewReader(nil) },
			wantErr: domain.ErrMissingFile,
		},
		{
			name:    "declared non-image",
			mutate:  func(in *service.UploadInput) { in.DeclaredType = "application/pdf" },
			wantErr: domain.ErrNotAnImage,
		},
		{
			name: "image declared but text content",
			mutate: func(in *service.UploadInput) {
				in.File = strings.NewReader("just some plain text pretending to be a picture")
			},
			wantErr: domain.ErrNotAnImage,
		},
		{
			name:    "blank title",
			mutate:  func(in *service.UploadInput) { in.Title = "   " },
			wantErr: domain.ErrTitleRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newArtworkEnv(t)
			input := env.uploadInput("Valid Title")
			tt.mutate(&input)

			_, err := env.service.Upload(context.Background(), input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Zero(t, env.store.Len(), "nothing should be stored")

			listed, err := env.service.ListByOwner(context.Background(), env.owner.ID)
			require.NoError(t, err)
			assert.Empty(t, listed)
		})
	}
}

func TestArtworkService_UploadTooLarge(t *testing.T) {
	env := newServiceEnv(t)
	cfg := testutil.TestConfig()
	cfg.MaxUploadBytes = 32
	store := objectstore.NewMemoryStore("https://cdn.test/bucket")
	svc := service.NewArtworkService(env.repos.Artwork, store, service.NewSubstringSearcher(env.repos.Artwork), nil, cfg, env.log)

	_, err := svc.Upload(context.Background(), service.UploadInput{
		OwnerID:      uuid.New(),
		Title:        "Too big",
		DeclaredType: "image/png",
		FileName:     "big.png",
		File:         bytes.NewReader(testutil.PNGBytes()),
	})
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
	assert.Zero(t, store.Len())
}

func TestArtworkService_UploadStorageFailure(t *testing.T) {
	env := newArtworkEnv(t)
	env.store.FailPut = errors.New("bucket unreachable")

	_, err := env.service.Upload(context.Background(), env.uploadInput("Lost"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidInput)

	listed, err := env.service.ListByOwner(context.Background(), env.owner.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)
	assert.Empty(t, env.events.published)
}

func TestArtworkService_UploadRemovesOrphanOnRecordFailure(t *testing.T) {
	env := newArtworkEnv(t)
	svc := service.NewArtworkService(failingArtworkRepo{env.repos.Artwork}, env.store, service.NewSubstringSearcher(env.repos.Artwork), env.events, testutil.TestConfig(), env.log)

	_, err := svc.Upload(context.Background(), env.uploadInput("Orphan"))
	require.Error(t, err)
	assert.Zero(t, env.store.Len(), "stored object should be removed when the record cannot be saved")
	assert.Empty(t, env.events.published)
}

func TestArtworkService_ListPublic(t *testing.T) {
	env := newArtworkEnv(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < service.PublicListingLimit+5; i++ {
		testutil.NewArtworkBuilder().
			WithOwner(env.owner).
			WithCreatedAt(base.Add(time.Duration(i) * time.Second)).
			Build(t, env.db)
	}

	artworks, err := env.service.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, artworks, service.PublicListingLimit)
	for i := 1; i < len(artworks); i++ {
		assert.False(t, artworks[i].CreatedAt.After(artworks[i-1].CreatedAt), "listing must be newest first")
	}
	assert.True(t, artworks[0].CreatedAt.Equal(base.Add(time.Duration(service.PublicListingLimit+4)*time.Second)))
}

func TestArtworkService_ListByOwner(t *testing.T) {
	env := newArtworkEnv(t)
	ctx := context.Background()

	other, _ := testutil.NewUserBuilder().Build(t, env.db)
	mine := testutil.NewArtworkBuilder().WithOwner(env.owner).Build(t, env.db)
	testutil.NewArtworkBuilder().WithOwner(other).Build(t, env.db)

	artworks, err := env.service.ListByOwner(ctx, env.owner.ID)
	require.NoError(t, err)
	require.Len(t, artworks, 1)
	assert.Equal(t, mine.ID, artworks[0].ID)
}

func TestArtworkService_Get(t *testing.T) {
	env := newArtworkEnv(t)

	_, err := env.service.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrArtworkNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestArtworkService_Delete(t *testing.T) {
	env := newArtworkEnv(t)
	ctx := context.Background()

	artwork, err := env.service.Upload(ctx, env.uploadInput("To Delete"))
	require.NoError(t, err)
	intruder, _ := testutil.NewUserBuilder().Build(t, env.db)

	t.Run("non-owner is forbidden", func(t *testing.T) {
		err := env.service.Delete(ctx, intruder.ID, artwork.ID)
		assert.ErrorIs(t, err, domain.ErrNotArtworkOwner)
		assert.ErrorIs(t, err, domain.ErrForbidden)

		_, err = env.service.Get(ctx, artwork.ID)
		assert.NoError(t, err, "record must survive a rejected delete")
		assert.Equal(t, 1, env.store.Len())
	})

	t.Run("owner deletes", func(t *testing.T) {
		require.NoError(t, env.service.Delete(ctx, env.owner.ID, artwork.ID))

		_, err := env.service.Get(ctx, artwork.ID)
		assert.ErrorIs(t, err, domain.ErrArtworkNotFound)
		assert.Zero(t, env.store.Len())
		assert.Equal(t, []uuid.UUID{artwork.ID}, env.events.deleted)
	})

	t.Run("missing artwork", func(t *testing.T) {
		err := env.service.Delete(ctx, env.owner.ID, artwork.ID)
		assert.ErrorIs(t, err, domain.ErrArtworkNotFound)
	})
}

func TestArtworkService_DeleteSurvivesStorageFailure(t *testing.T) {
	env := newArtworkEnv(t)
	ctx := context.Background()

	artwork, err := env.service.Upload(ctx, env.uploadInput("Stubborn Object"))
	require.NoError(t, err)

	env.store.FailDelete = errors.New("bucket unreachable")
	require.NoError(t, env.service.Delete(ctx, env.owner.ID, artwork.ID))

	_, err = env.service.Get(ctx, artwork.ID)
	assert.ErrorIs(t, err, domain.ErrArtworkNotFound)
}

func TestArtworkService_Search(t *testing.T) {
	env := newArtworkEnv(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	titleMatch := testutil.NewArtworkBuilder().WithOwner(env.owner).
		WithTitle("Warli Wedding").WithCreatedAt(base).Build(t, env.db)
	descMatch := testutil.NewArtworkBuilder().WithOwner(env.owner).
		WithTitle("Village Life").WithDescription("A warli style mural").WithCreatedAt(base.Add(time.Minute)).Build(t, env.db)
	tagMatch := testutil.NewArtworkBuilder().WithOwner(env.owner).
		WithTitle("Harvest").WithTags("Warli", "tribal").WithCreatedAt(base.Add(2 * time.Minute)).Build(t, env.db)
	allMatch := testutil.NewArtworkBuilder().WithOwner(env.owner).
		WithTitle("WARLI dance").WithDescription("warli figures").WithTags("warli").WithCreatedAt(base.Add(3 * time.Minute)).Build(t, env.db)
	testutil.NewArtworkBuilder().WithOwner(env.owner).
		WithTitle("Madhubani Fish").WithTags("madhubani").Build(t, env.db)

	results, err := env.service.Search(ctx, "warli")
	require.NoError(t, err)

	got := make([]uuid.UUID, 0, len(results))
	scores := make([]int, 0, len(results))
	for _, r := range results {
		got = append(got, r.Artwork.ID)
		scores = append(scores, r.Score)
	}
	assert.Equal(t, []uuid.UUID{allMatch.ID, titleMatch.ID, descMatch.ID, tagMatch.ID}, got)
	assert.Equal(t, []int{6, 3, 2, 1}, scores)

	none, err := env.service.Search(ctx, "kalighat")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = env.service.Search(ctx, "   ")
	assert.ErrorIs(t, err, domain.ErrEmptySearchQuery)
}

func TestArtworkService_SearchLimit(t *testing.T) {
	env := newArtworkEnv(t)

	for i := 0; i < service.SearchResultLimit+3; i++ {
		testutil.NewArtworkBuilder().WithOwner(env.owner).WithTitle(fmt.Sprintf("Gond %d", i)).Build(t, env.db)
	}

	results, err := env.service.Search(context.Background(), "gond")
	require.NoError(t, err)
	assert.Len(t, results, service.SearchResultLimit)
}

func TestStoragePath(t *testing.T) {
	owner := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	id := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	prefix := "artworks/11111111-1111-1111-1111-111111111111/22222222-2222-2222-2222-222222222222"

	tests := []struct {
		fileName string
		want     string
	}{
		{"photo.JPG", prefix + ".jpg"},
		{"archive.tar.png", prefix + ".png"},
		{`C:\\Users\\me\\art.webp`, prefix + ".webp"},
		{"noextension", prefix},
		{"weird.p@g", prefix},
		{"", prefix},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			assert.Equal(t, tt.want, service.StoragePath(owner, id, tt.fileName))
		})
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", []string{}},
		{"Warli", []string{"warli"}},
		{" Warli , TRIBAL,warli,, ", []string{"warli", "tribal"}},
		{"folk art,madhubani", []string{"folk art", "madhubani"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, service.ParseTags(tt.raw))
		})
	}
}
