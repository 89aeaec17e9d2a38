package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Artwork is a single uploaded image plus its descriptive metadata.
type Artwork struct {
	ID          uuid.UUID                   `json:"id" gorm:"type:uuid;primary_key"`
	Title       string                      `json:"title" gorm:"not null"`
	Description string                      `json:"description"`
	ImageURL    string                      `json:"imageUrl" gorm:"not null"`
	StoragePath string                      `json:"-" gorm:"not null"`
	ContentType string                      `json:"contentType"`
	SizeBytes   int64                       `json:"sizeBytes"`
	OwnerID     uuid.UUID                   `json:"ownerId" gorm:"type:uuid;not null;index"`
	OwnerEmail  string                      `json:"ownerEmail"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	CreatedAt   time.Time                   `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}

// TableName returns the table name for GORM
func (Artwork) TableName() string {
	return "artworks"
}

// IsOwnedBy reports whether userID created the artwork.
func (a *Artwork) IsOwnedBy(userID uuid.UUID) bool {
	return a.OwnerID == userID
}

// TagList returns the tags as a plain, never-nil slice.
func (a *Artwork) TagList() []string {
	if len(a.Tags) == 0 {
		return []string{}
	}
	return []string(a.Tags)
}

// ArtworkView is the full artwork shape returned to clients.
type ArtworkView struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	OwnerID     uuid.UUID `json:"ownerId"`
	OwnerEmail  string    `json:"ownerEmail"`
	Tags        []string  `json:"tags"`
	ContentType string    `json:"contentType,omitempty"`
	SizeBytes   int64     `json:"sizeBytes,omitempty"`
	CreatedAt   Timestamp `json:"createdAt"`
	UpdatedAt   Timestamp `json:"updatedAt"`
}

// PublicArtwork is the public-safe projection: no owner id, no owner email.
type PublicArtwork struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	Tags        []string  `json:"tags"`
	CreatedAt   Timestamp `json:"createdAt"`
	UpdatedAt   Timestamp `json:"updatedAt"`
}

func (a *Artwork) View() ArtworkView {
	return ArtworkView{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		ImageURL:    a.ImageURL,
		OwnerID:     a.OwnerID,
		OwnerEmail:  a.OwnerEmail,
		Tags:        a.TagList(),
		ContentType: a.ContentType,
		SizeBytes:   a.SizeBytes,
		CreatedAt:   NewTimestamp(a.CreatedAt),
		UpdatedAt:   NewTimestamp(a.UpdatedAt),
	}
}

func (a *Artwork) PublicView() PublicArtwork {
	return PublicArtwork{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		ImageURL:    a.ImageURL,
		Tags:        a.TagList(),
		CreatedAt:   NewTimestamp(a.CreatedAt),
		UpdatedAt:   NewTimestamp(a.UpdatedAt),
	}
}
