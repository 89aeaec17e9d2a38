package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/dom/heritage-gallery/internal/api/middleware"
	"github.com/dom/heritage-gallery/internal/domain"
	"github.com/dom/heritage-gallery/internal/platform/logger"
	"github.com/dom/heritage-gallery/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	uploadFieldName = "artwork"
	// multipartOverhead leaves room for form fields and boundaries on top of the file.
	multipartOverhead = 1 << 20
)

type ArtworkHandler struct {
	artworkService *service.ArtworkService
	authService    *service.AuthService
	maxUploadBytes int64
	log            *logger.Logger
}

func NewArtworkHandler(artworkService *service.ArtworkService, authService *service.AuthService, maxUploadBytes int64, log *logger.Logger) *ArtworkHandler {
	return &ArtworkHandler{
		artworkService: artworkService,
		authService:    authService,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

type SearchResultResponse struct {
	domain.PublicArtwork
	Score int `json:"score"`
}

type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *ArtworkHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, h.log, domain.ErrFileTooLarge, "")
			return
		}
		respondError(w, r, h.log, domain.ErrMissingFile, "")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadFieldName)
	if err != nil {
		respondError(w, r, h.log, domain.ErrMissingFile, "")
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		respondError(w, r, h.log, domain.ErrFileTooLarge, "")
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.log, err, "Failed to upload artwork")
		return
	}

	artwork, err := h.artworkService.Upload(r.Context(), service.UploadInput{
		OwnerID:      userID,
		OwnerEmail:   user.Email,
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		Tags:         r.FormValue("tags"),
		FileName:     header.Filename,
		DeclaredType: header.Header.Get("Content-Type"),
		File:         file,
	})
	if err != nil {
		respondError(w, r, h.log, err, "Failed to upload artwork")
		return
	}

	respondJSON(w, http.StatusCreated, artwork.View())
}

func (h *ArtworkHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	artworks, err := h.artworkService.ListByOwner(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.log, err, "Failed to fetch artworks")
		return
	}

	resp := make([]domain.ArtworkView, 0, len(artworks))
	for _, a := range artworks {
		resp = append(resp, a.View())
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *ArtworkHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	artworks, err := h.artworkService.ListPublic(r.Context())
	if err != nil {
		respondError(w, r, h.log, err, "Failed to fetch artworks")
		return
	}

	resp := make([]domain.PublicArtwork, 0, len(artworks))
	for _, a := range artworks {
		resp = append(resp, a.PublicView())
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *ArtworkHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, domain.ErrArtworkNotFound, "")
		return
	}

	artwork, err := h.artworkService.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err, "Failed to fetch artwork")
		return
	}

	respondJSON(w, http.StatusOK, artwork.View())
}

func (h *ArtworkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, domain.ErrArtworkNotFound, "")
		return
	}

	if err := h.artworkService.Delete(r.Context(), userID, id); err != nil {
		respondError(w, r, h.log, err, "Failed to delete artwork")
		return
	}

	respondJSON(w, http.StatusOK, DeleteResponse{Success: true, Message: "Artwork deleted"})
}

func (h *ArtworkHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := chi.URLParam(r, "query")
	// chi matches on RawPath when it is set, leaving the segment encoded.
	if r.URL.RawPath != "" {
		decoded, err := url.PathUnescape(query)
		if err != nil {
			respondError(w, r, h.log, domain.Invalidf("Invalid search query"), "")
			return
		}
		query = decoded
	}

	results, err := h.artworkService.Search(r.Context(), query)
	if err != nil {
		respondError(w, r, h.log, err, "Search failed")
		return
	}

	resp := make([]SearchResultResponse, 0, len(results))
	for _, res := range results {
		resp = append(resp, SearchResultResponse{
			PublicArtwork: res.Artwork.PublicView(),
			Score:         res.Score,
		})
	}
	respondJSON(w, http.StatusOK, resp)
}
