// Package server provides the HTTP server setup for Pantry.
package server

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/pantry/internal/agent"
	"github.com/MikeSquared-Agency/pantry/internal/api"
	"github.com/MikeSquared-Agency/pantry/internal/catalog"
	"github.com/MikeSquared-Agency/pantry/internal/config"
	"github.com/MikeSquared-Agency/pantry/internal/hermes"
	"github.com/MikeSquared-Agency/pantry/internal/middleware"
	"github.com/MikeSquared-Agency/pantry/internal/store"
)

// Server holds all dependencies for the Pantry HTTP server.
type Server struct {
	Router *chi.Mux
	Config *config.Config
	DB     *store.DB
	Logger *slog.Logger
}

// New creates a new Server with all routes configured.
func New(cfg *config.Config, db *store.DB, catalogStore *store.Catalog, manager *catalog.Manager, orchestrator *agent.Orchestrator, hermesClient *hermes.Client, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(120 * time.Second))
	r.Use(middleware.RequestLogging(logger))

	// Handlers
	healthHandler := api.NewHealthHandler(db, catalogStore, hermesClient)
	itemsHandler := api.NewItemsHandler(manager, catalogStore)
	queryHandler := api.NewQueryHandler(db)
	syncHandler := api.NewSyncHandler(manager)
	chatHandler := api.NewChatHandler(orchestrator, logger)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)

		r.Post("/chat", chatHandler.Chat)

		r.Route("/items", func(r chi.Router) {
			r.Post("/", itemsHandler.Create)
			r.Get("/", itemsHandler.List)
			r.Post("/search", itemsHandler.Search)
			r.Get("/ranked", itemsHandler.Ranked)
			r.Get("/{id}", itemsHandler.Get)
			r.Put("/{id}", itemsHandler.Update)
			r.Delete("/{id}", itemsHandler.Delete)
		})

		r.Post("/query", queryHandler.Run)

		r.Route("/sync", func(r chi.Router) {
			r.Get("/status", syncHandler.Status)
			r.Post("/resync", syncHandler.Resync)
		})
	})

	return &Server{
		Router: r,
		Config: cfg,
		DB:     db,
		Logger: logger,
	}
}
