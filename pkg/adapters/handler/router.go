package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/go-card-collection/pkg/config"
	"github.com/wadjakorntonsri/go-card-collection/pkg/ports"
	"go.uber.org/zap"
)

// Services bundles the core operations exposed over HTTP.
type Services struct {
	Catalog     ports.CatalogService
	Inventory   ports.InventoryService
	Decks       ports.DeckService
	Allocations ports.AllocationService
	Users       ports.UserService
}

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, log *zap.Logger, svc Services) http.Handler {
	tokens := NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	mw := NewMiddleware(tokens, log, cfg.RateLimitRPS, cfg.RateLimitBurst)

	authHandler := NewAuthHandler(cfg, svc.Users, tokens, log)
	cards := NewCardHandler(svc.Catalog, log)
	collection := NewCollectionHandler(svc.Inventory, log)
	decks := NewDeckHandler(svc.Decks, svc.Allocations, log)

	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.Handle("POST /auth/register", mw.RateLimit(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /auth/login", mw.RateLimit(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("GET /auth/google/login", authHandler.GoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", authHandler.GoogleCallback)
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)

	// Protected Routes
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("GET /api/v1/me", authHandler.Me)
	protectedMux.HandleFunc("DELETE /api/v1/me", authHandler.DeleteMe)

	protectedMux.HandleFunc("GET /api/v1/cards", cards.List)
	protectedMux.HandleFunc("GET /api/v1/cards/{id}", cards.Get)

	protectedMux.HandleFunc("GET /api/v1/collection", collection.List)
	protectedMux.HandleFunc("POST /api/v1/collection", collection.Add)
	protectedMux.HandleFunc("PUT /api/v1/collection/{id}", collection.Update)
	protectedMux.HandleFunc("DELETE /api/v1/collection/{id}", collection.Remove)

	protectedMux.HandleFunc("GET /api/v1/decks", decks.List)
	protectedMux.HandleFunc("POST /api/v1/decks", decks.Create)
	protectedMux.HandleFunc("GET /api/v1/decks/{id}", decks.Get)
	protectedMux.HandleFunc("PUT /api/v1/decks/{id}", decks.Update)
	protectedMux.HandleFunc("DELETE /api/v1/decks/{id}", decks.Delete)
	protectedMux.HandleFunc("POST /api/v1/decks/{id}/cards", decks.Allocate)
	protectedMux.HandleFunc("GET /api/v1/decks/{id}/export", decks.Export)
	protectedMux.HandleFunc("GET /api/v1/decks/{id}/qr", decks.QR)

	// protectedMux carries the full paths, so /api/v1/ dispatches into it.
	mux.Handle("/api/v1/", mw.AuthMiddleware(mw.RateLimit(protectedMux)))

	return mw.RequestLogger(mux)
}
