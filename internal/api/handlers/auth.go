package handlers

import (
	"net/http"
	"time"

	"github.com/dom/heritage-gallery/internal/api/middleware"
	"github.com/dom/heritage-gallery/internal/domain"
	"github.com/dom/heritage-gallery/internal/platform/logger"
	"github.com/dom/heritage-gallery/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	log         *logger.Logger
}

func NewAuthHandler(authService *service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

type TokenExchangeRequest struct {
	IDToken string `json:"idToken"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresAt    time.Time    `json:"expiresAt"`
}

type UserResponse struct {
	ID              string                 `json:"id"`
	Username        string                 `json:"username"`
	Email           string                 `json:"email"`
	DisplayName     string                 `json:"displayName"`
	AvatarURL       string                 `json:"avatarUrl"`
	MarketplaceRole domain.MarketplaceRole `json:"marketplaceRole"`
	Stats           UserStats              `json:"stats"`
	CreatedAt       domain.Timestamp       `json:"createdAt"`
}

type UserStats struct {
	GamesPlayed    int `json:"gamesPlayed"`
	TotalScore     int `json:"totalScore"`
	BestScore      int `json:"bestScore"`
	TotalTimeSpent int `json:"totalTimeSpent"`
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:              user.ID.String(),
		Username:        user.Username,
		Email:           user.Email,
		DisplayName:     user.DisplayName,
		AvatarURL:       user.AvatarURL,
		MarketplaceRole: user.MarketplaceRole,
		Stats: UserStats{
			GamesPlayed:    user.GamesPlayed,
			TotalScore:     user.TotalScore,
			BestScore:      user.BestScore,
			TotalTimeSpent: user.TotalTimeSpent,
		},
		CreatedAt: domain.NewTimestamp(user.CreatedAt),
	}
}

func toAuthResponse(result *service.AuthResult) AuthResponse {
	return AuthResponse{
		User:         toUserResponse(result.User),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    result.ExpiresAt.UTC(),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err, "")
		return
	}

	result, err := h.authService.Register(r.Context(), req)
	if err != nil {
		respondError(w, r, h.log, err, "Failed to register")
		return
	}

	respondJSON(w, http.StatusCreated, toAuthResponse(result))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err, "")
		return
	}

	result, err := h.authService.Login(r.Context(), req)
	if err != nil {
		respondError(w, r, h.log, err, "Failed to log in")
		return
	}

	respondJSON(w, http.StatusOK, toAuthResponse(result))
}

// ExchangeToken trades a third-party ID token for app tokens.
func (h *AuthHandler) ExchangeToken(w http.ResponseWriter, r *http.Request) {
	var req TokenExchangeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err, "")
		return
	}
	if req.IDToken == "" {
		respondMessage(w, http.StatusBadRequest, "idToken is required")
		return
	}

	result, err := h.authService.ExchangeIDToken(r.Context(), req.IDToken)
	if err != nil {
		respondError(w, r, h.log, err, "Failed to sign in")
		return
	}

	respondJSON(w, http.StatusOK, toAuthResponse(result))
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err, "")
		return
	}
	if req.RefreshToken == "" {
		respondMessage(w, http.StatusBadRequest, "refreshToken is required")
		return
	}

	result, err := h.authService.RefreshTokens(r.Context(), req.RefreshToken)
	if err != nil {
		respondError(w, r, h.log, err, "Failed to refresh session")
		return
	}

	respondJSON(w, http.StatusOK, toAuthResponse(result))
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.log, err, "Failed to load user")
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.authService.Logout(r.Context(), userID); err != nil {
		respondError(w, r, h.log, err, "Failed to log out")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
