package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/SuhaniChatterjee/medstock-wise/internal/auth"
	"github.com/SuhaniChatterjee/medstock-wise/internal/cache"
	"github.com/SuhaniChatterjee/medstock-wise/internal/config"
	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/SuhaniChatterjee/medstock-wise/internal/drive"
	"github.com/SuhaniChatterjee/medstock-wise/internal/forecast"
	"github.com/SuhaniChatterjee/medstock-wise/internal/repository/postgres"
	"github.com/SuhaniChatterjee/medstock-wise/internal/service"
	"github.com/SuhaniChatterjee/medstock-wise/internal/storage"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

type dbKey struct{}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func itemSelectionFlags() []cli.Flag {
	return []cli.Flag{
		newDBURLFlag(),
		&cli.BoolFlag{
			Name:  "all",
			Usage: "Process every inventory item",
		},
		&cli.StringFlag{
			Name:  "item",
			Usage: "Process a single inventory item by id",
		},
	}
}

func initDB(c *cli.Context) error {
	db, err := postgres.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.Context = context.WithValue(c.Context, dbKey{}, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey{}).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) (*postgres.DB, error) {
	db, ok := c.Context.Value(dbKey{}).(*postgres.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database connection not initialized")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}
	decimal.MarshalJSONWithoutQuotes = true

	app := &cli.App{
		Name:  "seed",
		Usage: "Manage the inventory database from the command line",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply the database schema",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runMigrate,
			},
			{
				Name:   "sample",
				Usage:  "Load the sample catalog and the default demand model",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runSample,
			},
			{
				Name:  "import",
				Usage: "Import inventory items from a CSV file",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Path to the CSV file",
						Required: true,
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runImport,
			},
			{
				Name:  "drive-sync",
				Usage: "Import the CSV and XLSX sheets of a Google Drive folder",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "credentials",
						Usage:   "Service account credentials JSON file",
						EnvVars: []string{"GOOGLE_DRIVE_CREDENTIALS_FILE"},
					},
					&cli.StringFlag{
						Name:    "folder-id",
						Usage:   "Drive folder id",
						EnvVars: []string{"GOOGLE_DRIVE_FOLDER_ID"},
					},
					&cli.StringFlag{
						Name:    "folder-path",
						Usage:   "Drive folder path, resolved from the root when no id is given",
						EnvVars: []string{"GOOGLE_DRIVE_FOLDER_PATH"},
					},
					&cli.TimestampFlag{
						Name:   "since",
						Usage:  "Only import files modified after this time",
						Layout: time.RFC3339,
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runDriveSync,
			},
			{
				Name:   "predict",
				Usage:  "Run demand predictions and generate stock alerts",
				Flags:  itemSelectionFlags(),
				Before: initDB,
				After:  closeDB,
				Action: runPredict,
			},
			{
				Name:   "optimize",
				Usage:  "Run cost optimization for inventory items",
				Flags:  itemSelectionFlags(),
				Before: initDB,
				After:  closeDB,
				Action: runOptimize,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runMigrate(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	if err := db.Migrate(c.Context); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Println("Schema applied")
	return nil
}

func runSample(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	seed := service.NewSeedService(postgres.NewStore(db), cache.NewNoopDashboardCache())
	result, err := seed.Seed(c.Context, auth.SystemIdentity())
	if err != nil {
		return fmt.Errorf("failed to seed sample data: %w", err)
	}
	return printJSON(result)
}

func runImport(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	path := c.String("file")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	inventory := service.NewInventoryService(postgres.NewStore(db), cache.NewNoopDashboardCache(), archiveFromConfig())
	result, err := inventory.Import(c.Context, auth.SystemIdentity(), filepath.Base(path), data)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", path, err)
	}
	return printJSON(result)
}

func runDriveSync(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	if c.String("credentials") == "" {
		return fmt.Errorf("drive credentials file is required")
	}

	source, err := drive.NewServiceFromFile(c.Context, c.String("credentials"))
	if err != nil {
		return err
	}

	folderID := c.String("folder-id")
	if folderID == "" && c.String("folder-path") != "" {
		if folderID, err = source.FindFolderByPath(c.Context, c.String("folder-path")); err != nil {
			return err
		}
	}

	opts := drive.SyncOptions{FolderID: folderID}
	if since := c.Timestamp("since"); since != nil {
		opts.ModifiedSince = *since
	}

	inventory := service.NewInventoryService(postgres.NewStore(db), cache.NewNoopDashboardCache(), archiveFromConfig())
	report, err := drive.NewSyncer(source, inventory).Sync(c.Context, auth.SystemIdentity(), opts)
	if err != nil {
		return fmt.Errorf("drive sync failed: %w", err)
	}
	return printJSON(report)
}

func runPredict(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	cfg := config.Load().Forecast
	thresholds := forecast.AlertThresholds{Critical: cfg.CriticalPercentage, Warning: cfg.WarningPercentage}
	predictions := service.NewPredictionService(postgres.NewStore(db), cache.NewNoopDashboardCache(), thresholds)

	result, err := predictions.Run(c.Context, auth.SystemIdentity(), domain.RunPredictionsRequest{
		RunAll: c.Bool("all"),
		ItemID: c.String("item"),
	})
	if err != nil {
		return fmt.Errorf("prediction run failed: %w", err)
	}
	return printJSON(result)
}

func runOptimize(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	cfg := config.Load().Forecast
	optimizations := service.NewOptimizationService(postgres.NewStore(db), forecast.CostParams{
		OrderingCost:      cfg.OrderingCost,
		HoldingRate:       cfg.HoldingRate,
		ServiceZ:          cfg.ServiceZ,
		DemandVariability: cfg.DemandVariability,
	})

	result, err := optimizations.Run(c.Context, auth.SystemIdentity(), domain.RunOptimizationRequest{
		RunAll: c.Bool("all"),
		ItemID: c.String("item"),
	})
	if err != nil {
		return fmt.Errorf("optimization run failed: %w", err)
	}
	return printJSON(result)
}

func archiveFromConfig() storage.ObjectStorage {
	archive, err := storage.New(config.Load().Storage)
	if err != nil {
		log.Printf("warning: object storage unavailable, uploads will not be archived: %v", err)
		return storage.NewNoopStorage()
	}
	return archive
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
