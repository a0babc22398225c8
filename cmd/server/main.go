package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wadjakorntonsri/go-card-collection/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-card-collection/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-card-collection/pkg/config"
	"github.com/wadjakorntonsri/go-card-collection/pkg/core/domain"
	"github.com/wadjakorntonsri/go-card-collection/pkg/core/services"
	"github.com/wadjakorntonsri/go-card-collection/pkg/logger"
	"github.com/wadjakorntonsri/go-card-collection/pkg/ports"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	policy, err := domain.ParseAllocationPolicy(cfg.AllocationPolicy)
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	// Initialize Repository
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	mux := handler.NewRouter(cfg, log, newServices(repo, policy))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", server.Addr), zap.String("allocation_policy", string(policy)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := repo.Close(); err != nil {
		log.Error("db close failed", zap.Error(err))
	}
	log.Info("server stopped")
}

// newServices wires the core services over one store and one lock table.
func newServices(store ports.Store, policy domain.AllocationPolicy) handler.Services {
	locks := services.NewScopeLocks()
	return handler.Services{
		Catalog:     services.NewCatalogService(store, locks),
		Inventory:   services.NewInventoryService(store, locks),
		Decks:       services.NewDeckService(store, locks),
		Allocations: services.NewAllocationService(store, locks, policy),
		Users:       services.NewUserService(store, locks),
	}
}
