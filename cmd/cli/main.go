package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/wadjakorntonsri/go-card-collection/pkg/adapters/importer"
	"github.com/wadjakorntonsri/go-card-collection/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-card-collection/pkg/config"
	"github.com/wadjakorntonsri/go-card-collection/pkg/core/services"
	"github.com/wadjakorntonsri/go-card-collection/pkg/logger"
	"go.uber.org/zap"
)

const usage = "expected 'import', 'export' or 'delete-card' subcommands"

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importFile := importCmd.String("file", "", "CSV or JSON catalog file to import")
	deleteCmd := flag.NewFlagSet("delete-card", flag.ExitOnError)
	deleteID := deleteCmd.String("id", "", "card id to delete together with its entries and allocations")

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg := config.Load()
	log := logger.NewOrNop(cfg.AppEnv, cfg.LogLevel).Sugar()
	defer log.Sync()

	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalw("failed to connect to db", zap.Error(err))
	}
	defer repo.Close()

	catalog := services.NewCatalogService(repo, services.NewScopeLocks())
	ctx := context.Background()

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		doExport(ctx, log, repo)
	case "import":
		importCmd.Parse(os.Args[2:])
		if *importFile == "" {
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		doImport(ctx, log, catalog, *importFile)
	case "delete-card":
		deleteCmd.Parse(os.Args[2:])
		if *deleteID == "" {
			deleteCmd.PrintDefaults()
			os.Exit(1)
		}
		doDeleteCard(ctx, log, catalog, *deleteID)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func doExport(ctx context.Context, log *zap.SugaredLogger, repo *sqlite.SQLiteRepository) {
	cards, err := repo.DumpCards(ctx)
	if err != nil {
		log.Fatalw("export failed", zap.Error(err))
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cards); err != nil {
		log.Fatalw("encode failed", zap.Error(err))
	}
}

func doImport(ctx context.Context, log *zap.SugaredLogger, catalog *services.CatalogService, filename string) {
	cards, err := importer.LoadFile(filename)
	if err != nil {
		log.Fatalw("failed to read catalog file", "file", filename, zap.Error(err))
	}

	n, err := catalog.ImportCards(ctx, cards)
	if err != nil {
		log.Fatalw("import failed", "file", filename, zap.Error(err))
	}
	log.Infow("imported cards", "count", n, "file", filename)
}

func doDeleteCard(ctx context.Context, log *zap.SugaredLogger, catalog *services.CatalogService, id string) {
	res, err := catalog.DeleteCard(ctx, id)
	if err != nil {
		log.Fatalw("delete failed", "card_id", id, zap.Error(err))
	}
	log.Infow("deleted card",
		"card_id", id,
		"entries", res.Entries,
		"allocations", res.Allocations,
	)
}
