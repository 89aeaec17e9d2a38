package handlers

import (
	"net/http"
	"strconv"

	"github.com/dom/heritage-gallery/internal/api/middleware"
	"github.com/dom/heritage-gallery/internal/domain"
	"github.com/dom/heritage-gallery/internal/platform/logger"
	"github.com/dom/heritage-gallery/internal/service"
)

type GameHandler struct {
	gameService *service.GameService
	log         *logger.Logger
}

func NewGameHandler(gameService *service.GameService, log *logger.Logger) *GameHandler {
	return &GameHandler{gameService: gameService, log: log}
}

type GameSessionResponse struct {
	ID           string           `json:"id"`
	UserID       string           `json:"userId"`
	ContentID    string           `json:"contentId"`
	Score        int              `json:"score"`
	MaxScore     int              `json:"maxScore"`
	TimeSpent    int              `json:"timeSpent"`
	IsCompleted  bool             `json:"isCompleted"`
	Achievements []string         `json:"achievements"`
	CreatedAt    domain.Timestamp `json:"createdAt"`
}

type LeaderboardEntryResponse struct {
	Rank        int              `json:"rank"`
	SessionID   string           `json:"sessionId"`
	UserID      string           `json:"userId"`
	DisplayName string           `json:"displayName"`
	ContentID   string           `json:"contentId"`
	Score       int              `json:"score"`
	MaxScore    int              `json:"maxScore"`
	TimeSpent   int              `json:"timeSpent"`
	CreatedAt   domain.Timestamp `json:"createdAt"`
}

func toGameSessionResponse(s *domain.GameSession) GameSessionResponse {
	achievements := []string(s.Achievements)
	if achievements == nil {
		achievements = []string{}
	}
	return GameSessionResponse{
		ID:           s.ID.String(),
		UserID:       s.UserID.String(),
		ContentID:    s.ContentID,
		Score:        s.Score,
		MaxScore:     s.MaxScore,
		TimeSpent:    s.TimeSpent,
		IsCompleted:  s.IsCompleted,
		Achievements: achievements,
		CreatedAt:    domain.NewTimestamp(s.CreatedAt),
	}
}

func (h *GameHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req service.SubmitScoreInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err, "")
		return
	}

	session, err := h.gameService.SubmitScore(r.Context(), userID, req)
	if err != nil {
		respondError(w, r, h.log, err, "Failed to save game session")
		return
	}

	respondJSON(w, http.StatusCreated, toGameSessionResponse(session))
}

func (h *GameHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		limit = service.DefaultLeaderboardLimit
	}

	entries, err := h.gameService.Leaderboard(r.Context(), r.URL.Query().Get("contentId"), limit)
	if err != nil {
		respondError(w, r, h.log, err, "Failed to fetch leaderboard")
		return
	}

	resp := make([]LeaderboardEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, LeaderboardEntryResponse{
			Rank:        e.Rank,
			SessionID:   e.SessionID.String(),
			UserID:      e.UserID.String(),
			DisplayName: e.DisplayName,
			ContentID:   e.ContentID,
			Score:       e.Score,
			MaxScore:    e.MaxScore,
			TimeSpent:   e.TimeSpent,
			CreatedAt:   domain.NewTimestamp(e.CreatedAt),
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *GameHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	sessions, err := h.gameService.ListMine(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.log, err, "Failed to fetch game sessions")
		return
	}

	resp := make([]GameSessionResponse, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, toGameSessionResponse(s))
	}
	respondJSON(w, http.StatusOK, resp)
}
