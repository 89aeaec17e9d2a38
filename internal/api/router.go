package api

import (
	"net/http"

	"github.com/dom/heritage-gallery/internal/api/handlers"
	"github.com/dom/heritage-gallery/internal/api/middleware"
	"github.com/dom/heritage-gallery/internal/config"
	"github.com/dom/heritage-gallery/internal/platform/logger"
	"github.com/dom/heritage-gallery/internal/service"
	"github.com/dom/heritage-gallery/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, hub *websocket.Hub, cfg *config.Config, log *logger.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, log)
	profileHandler := handlers.NewProfileHandler(services.Profile, log)
	artworkHandler := handlers.NewArtworkHandler(services.Artwork, services.Auth, cfg.MaxUploadBytes, log)
	gameHandler := handlers.NewGameHandler(services.Game, log)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth, cfg.CORSOrigins, log)

	requireAuth := middleware.Auth(services.Auth, log)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/token", authHandler.ExchangeToken)
			r.Post("/refresh", authHandler.Refresh)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// User routes
		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", profileHandler.GetProfile)
			r.Put("/me", profileHandler.UpdateProfile)
		})

		// Artwork routes
		r.Route("/artworks", func(r chi.Router) {
			r.Get("/public", artworkHandler.ListPublic)
			r.Get("/search/{query}", artworkHandler.Search)
			r.Get("/{id}", artworkHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/upload", artworkHandler.Upload)
				r.Get("/user", artworkHandler.ListMine)
				r.Delete("/{id}", artworkHandler.Delete)
			})
		})

		// Game routes
		r.Route("/games", func(r chi.Router) {
			r.Get("/leaderboard", gameHandler.Leaderboard)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/sessions", gameHandler.SubmitScore)
				r.Get("/sessions/me", gameHandler.ListMine)
			})
		})

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
