package handlers

import (
	"net/http"

	"github.com/dom/heritage-gallery/internal/api/middleware"
	"github.com/dom/heritage-gallery/internal/platform/logger"
	"github.com/dom/heritage-gallery/internal/service"
)

type ProfileHandler struct {
	profileService *service.ProfileService
	log            *logger.Logger
}

func NewProfileHandler(profileService *service.ProfileService, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, log: log}
}

// GetProfile returns the current user's profile and game statistics
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.profileService.GetProfile(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.log, err, "Failed to load profile")
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateProfile changes display name, avatar or marketplace role
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req service.UpdateProfileInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err, "")
		return
	}

	user, err := h.profileService.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		respondError(w, r, h.log, err, "Failed to update profile")
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(user))
}
