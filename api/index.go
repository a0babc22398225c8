package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/go-card-collection/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-card-collection/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-card-collection/pkg/config"
	"github.com/wadjakorntonsri/go-card-collection/pkg/core/domain"
	"github.com/wadjakorntonsri/go-card-collection/pkg/core/services"
	"github.com/wadjakorntonsri/go-card-collection/pkg/logger"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	log := logger.NewOrNop(cfg.AppEnv, cfg.LogLevel)

	policy, err := domain.ParseAllocationPolicy(cfg.AllocationPolicy)
	if err != nil {
		panic(err)
	}

	// Note: On Vercel, a local sqlite file is ephemeral unless DATABASE_URL points at Turso
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		panic(err)
	}

	locks := services.NewScopeLocks()
	mux = handler.NewRouter(cfg, log, handler.Services{
		Catalog:     services.NewCatalogService(repo, locks),
		Inventory:   services.NewInventoryService(repo, locks),
		Decks:       services.NewDeckService(repo, locks),
		Allocations: services.NewAllocationService(repo, locks, policy),
		Users:       services.NewUserService(repo, locks),
	})
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
