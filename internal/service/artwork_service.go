package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/dom/heritage-gallery/internal/config"
	"github.com/dom/heritage-gallery/internal/domain"
	"github.com/dom/heritage-gallery/internal/objectstore"
	"github.com/dom/heritage-gallery/internal/platform/logger"
	"github.com/dom/heritage-gallery/internal/repository"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PublicListingLimit = 50
	SearchResultLimit  = 20
)

type ArtworkService struct {
	artworkRepo repository.ArtworkRepository
	store       objectstore.Store
	searcher    Searcher
	events      EventPublisher
	cfg         *config.Config
	log         *logger.Logger
}

func NewArtworkService(artworkRepo repository.ArtworkRepository, store objectstore.Store, searcher Searcher, events EventPublisher, cfg *config.Config, log *logger.Logger) *ArtworkService {
	if events == nil {
		events = NopPublisher{}
	}
	return &ArtworkService{
		artworkRepo: artworkRepo,
		store:       store,
		searcher:    searcher,
		events:      events,
		cfg:         cfg,
		log:         log.With("service", "ArtworkService"),
	}
}

type UploadInput struct {
	OwnerID      uuid.UUID
	OwnerEmail   string
	Title        string
	Description  string
	Tags         string // comma separated
	FileName     string
	DeclaredType string
	File         io.Reader
}

func (s *ArtworkService) Upload(ctx context.Context, input UploadInput) (*domain.Artwork, error) {
	if input.File == nil {
		return nil, domain.ErrMissingFile
	}
	if !strings.HasPrefix(strings.ToLower(input.DeclaredType), "image/") {
		return nil, domain.ErrNotAnImage
	}

	data, err := io.ReadAll(io.LimitReader(input.File, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, domain.Invalidf("Unreadable file")
	}
	if len(data) == 0 {
		return nil, domain.ErrMissingFile
	}

	sniffed := mimetype.Detect(data)
	if !strings.HasPrefix(sniffed.String(), "image/") {
		return nil, domain.ErrNotAnImage
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, domain.ErrFileTooLarge
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domain.ErrTitleRequired
	}

	id := uuid.New()
	key := StoragePath(input.OwnerID, id, input.FileName)

	if err := s.store.Put(ctx, key, bytes.NewReader(data), sniffed.String()); err != nil {
		return nil, fmt.Errorf("store artwork object: %w", err)
	}
	if err := s.store.MakePublic(ctx, key); err != nil {
		s.removeObject(ctx, key)
		return nil, fmt.Errorf("publish artwork object: %w", err)
	}

	artwork := &domain.Artwork{
		ID:          id,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		ImageURL:    s.store.PublicURL(key),
		StoragePath: key,
		ContentType: sniffed.String(),
		SizeBytes:   int64(len(data)),
		OwnerID:     input.OwnerID,
		OwnerEmail:  input.OwnerEmail,
		Tags:        datatypes.JSONSlice[string](ParseTags(input.Tags)),
	}

	if err := s.artworkRepo.Create(ctx, artwork); err != nil {
		s.removeObject(ctx, key)
		return nil, fmt.Errorf("save artwork record: %w", err)
	}

	s.log.Info("artwork uploaded", "artwork_id", artwork.ID, "owner_id", artwork.OwnerID, "size_bytes", artwork.SizeBytes)
	s.events.ArtworkPublished(artwork)
	return artwork, nil
}

// removeObject cleans up an object orphaned by a later failure.
func (s *ArtworkService) removeObject(ctx context.Context, key string) {
	if err := s.store.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.log.Error("failed to remove orphaned object", "key", key, "error", err)
	}
}

func (s *ArtworkService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Artwork, error) {
	return s.artworkRepo.ListByOwner(ctx, ownerID)
}

func (s *ArtworkService) ListPublic(ctx context.Context) ([]*domain.Artwork, error) {
	return s.artworkRepo.ListRecent(ctx, PublicListingLimit)
}

func (s *ArtworkService) Get(ctx context.Context, id uuid.UUID) (*domain.Artwork, error) {
	artwork, err := s.artworkRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrArtworkNotFound
		}
		return nil, err
	}
	return artwork, nil
}

// Delete removes an artwork owned by callerID. The object delete is advisory;
// the record delete is authoritative.
func (s *ArtworkService) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	artwork, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !artwork.IsOwnedBy(callerID) {
		return domain.ErrNotArtworkOwner
	}

	if err := s.store.Delete(ctx, artwork.StoragePath); err != nil {
		s.log.Warn("failed to delete artwork object", "artwork_id", artwork.ID, "key", artwork.StoragePath, "error", err)
	}

	if err := s.artworkRepo.Delete(ctx, artwork.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrArtworkNotFound
		}
		return err
	}

	s.log.Info("artwork deleted", "artwork_id", artwork.ID, "owner_id", callerID)
	s.events.ArtworkDeleted(artwork.ID)
	return nil
}

func (s *ArtworkService) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptySearchQuery
	}
	return s.searcher.Search(ctx, query, SearchResultLimit)
}

// StoragePath derives artworks/<ownerId>/<artworkId><.ext> from the original file name.
func StoragePath(ownerID, artworkID uuid.UUID, fileName string) string {
	return fmt.Sprintf("artworks/%s/%s%s", ownerID, artworkID, fileExtension(fileName))
}

func fileExtension(fileName string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(fileName, "\\", "/")))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// ParseTags splits a comma-separated list, lower-cases and trims each entry,
// and drops empties and duplicates while keeping first-seen order.
func ParseTags(raw string) []string {
	tags := make([]string, 0)
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}
