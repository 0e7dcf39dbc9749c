package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/hotel-scraper/internal/app"
	"github.com/user/hotel-scraper/internal/booking"
	"github.com/user/hotel-scraper/internal/entity"
	"github.com/user/hotel-scraper/pkg/config"
	"github.com/user/hotel-scraper/pkg/logger"
)

var (
	details entity.BookingDetails
	nights  int
	storage string
	dbPath  string

	pipeline *app.App
	log      *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "scraper",
	Short: "Scrapes hotel prices for Japanese cities and stores them.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if storage != "" {
			cfg.Storage = storage
		}
		if dbPath != "" {
			switch cfg.Storage {
			case "postgres":
				cfg.PostgresURL = dbPath
			default:
				cfg.SQLitePath = dbPath
			}
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		base, err := logger.New(cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return err
		}
		log = base.With(zap.String("run_id", uuid.NewString()), zap.String("command", cmd.Name()))

		pipeline, err = app.New(cmd.Context(), cfg, log, "hotel-scraper-cli")
		if err != nil {
			return fmt.Errorf("failed to initialize pipeline: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		pipeline.Close(context.Background())
		log.Sync()
	},
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&details.City, "city", "Tokyo", "City to search.")
	flags.StringVar(&details.Country, "country", "Japan", "Country of the city.")
	flags.StringVar(&details.Currency, "currency", "JPY", "Currency prices are requested in.")
	flags.IntVar(&details.Adults, "adults", 1, "Number of adults.")
	flags.IntVar(&details.Rooms, "rooms", 1, "Number of rooms.")
	flags.IntVar(&details.Children, "children", 0, "Number of children.")
	flags.BoolVar(&details.HotelOnly, "hotel-only", false, "Only return properties of type hotel.")
	flags.IntVar(&nights, "nights", 1, "Length of stay in nights.")
	flags.StringVar(&storage, "storage", "", "Storage backend, postgres or sqlite (default from STORAGE).")
	flags.StringVar(&dbPath, "db", "", "SQLite file path or Postgres connection string (default from config).")
}

// ExecuteContext runs the CLI and exits non-zero on failure.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// fail ends the run. A parameter mismatch gets its own message so no one mistakes
// it for a transient failure.
func fail(msg string, err error) {
	if errors.Is(err, booking.ErrParameterMismatch) {
		msg = "search parameters drifted, aborting run"
	}
	if pipeline != nil {
		pipeline.Close(context.Background())
	}
	// Fatal syncs the core before exiting.
	log.Fatal(msg, zap.Error(err))
}

func checkNights() error {
	if nights < 1 {
		return fmt.Errorf("--nights must be positive, got %d", nights)
	}
	return nil
}
