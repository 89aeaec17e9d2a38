package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dom/heritage-gallery/internal/domain"
	"github.com/dom/heritage-gallery/internal/repository"
	"github.com/dom/heritage-gallery/internal/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileService struct {
	userRepo repository.UserRepository
}

func NewProfileService(userRepo repository.UserRepository) *ProfileService {
	return &ProfileService{userRepo: userRepo}
}

// UpdateProfileInput carries the optional profile fields; nil means unchanged.
type UpdateProfileInput struct {
	DisplayName     *string `json:"displayName" validate:"omitempty,notblank,max=50"`
	AvatarURL       *string `json:"avatarUrl" validate:"omitempty,url,max=2048"`
	MarketplaceRole *string `json:"marketplaceRole" validate:"omitempty,marketplacerole"`
}

// GetProfile returns the user together with their game statistics.
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies the provided fields, including marketplace role selection.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*input.DisplayName)
	}
	if input.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*input.AvatarURL)
	}
	if input.MarketplaceRole != nil {
		role := domain.MarketplaceRole(*input.MarketplaceRole)
		if !role.IsValid() {
			return nil, domain.ErrInvalidMarketplaceRole
		}
		user.MarketplaceRole = role
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
