package postgres

import (
	"context"

	"github.com/dom/heritage-gallery/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type artworkRepository struct {
	db *gorm.DB
}

func NewArtworkRepository(db *gorm.DB) *artworkRepository {
	return &artworkRepository{db: db}
}

func (r *artworkRepository) Create(ctx context.Context, artwork *domain.Artwork) error {
	return r.db.WithContext(ctx).Create(artwork).Error
}

func (r *artworkRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Artwork, error) {
	var artwork domain.Artwork
	err := r.db.WithContext(ctx).First(&artwork, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &artwork, nil
}

func (r *artworkRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Artwork, error) {
	var artworks []*domain.Artwork
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&artworks).Error
	return artworks, err
}

func (r *artworkRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Artwork, error) {
	var artworks []*domain.Artwork
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&artworks).Error
	return artworks, err
}

func (r *artworkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Artwork{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
