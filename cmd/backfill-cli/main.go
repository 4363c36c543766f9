package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"edu-recommender/internal/di"
	"edu-recommender/internal/domain"
	"edu-recommender/internal/infra"
	"edu-recommender/internal/infra/config"
)

var (
	version = "dev"

	// Global flags
	verbose bool

	// Ingest command flags
	duration   string
	maxResults int

	// Purge command flags
	dryRun bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "backfill-cli",
	Short:   "Catalog maintenance for the video recommender",
	Version: version,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <query>",
	Short: "Fetch and ingest educational videos for a query",
	Long: `Fetch educational videos from the upstream API for the given query
and insert the ones that pass the catalog filters.

Examples:
  # Ingest up to 20 results for a topic
  backfill-cli ingest "linear algebra"

  # Restrict to a duration bucket
  backfill-cli ingest "organic chemistry" --duration medium

  # Fetch more candidates
  backfill-cli ingest "calculus" --max-results 50`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var purgeShortsCmd = &cobra.Command{
	Use:   "purge-shorts",
	Short: "Delete short-form rows that slipped into the catalog",
	Long: `Scan the whole catalog and delete rows that qualify as short-form
content (under a minute, or tagged #shorts in title or description).
Rows like these are rejected at ingest time; this command cleans up
entries written before that filter existed.`,
	RunE: runPurgeShorts,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	ingestCmd.Flags().StringVar(&duration, "duration", "any", "duration bucket (any, short, medium, long)")
	ingestCmd.Flags().IntVar(&maxResults, "max-results", 20, "maximum candidates to fetch")

	purgeShortsCmd.Flags().BoolVar(&dryRun, "dry-run", false, "list offending rows without deleting them")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(purgeShortsCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}

// setup connects to the database and wires the application components.
// The returned cleanup closes the pool.
func setup(ctx context.Context, logger *slog.Logger) (*di.ApplicationComponents, func(), error) {
	cfg := config.Load()

	pool, err := infra.NewPostgresDB(ctx, cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to db: %w", err)
	}

	components, err := di.NewApplicationComponents(cfg, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("wire components: %w", err)
	}

	return components, pool.Close, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx, cancel
}

func runIngest(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	query := args[0]
	bucket := domain.ParseBucket(duration)

	ctx, cancel := signalContext()
	defer cancel()

	components, cleanup, err := setup(ctx, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("starting ingest",
		slog.String("query", query),
		slog.String("duration", string(bucket)),
		slog.Int("max_results", maxResults),
	)

	inserted, err := components.IngestUsecase.Execute(ctx, query, bucket, maxResults)
	if err != nil {
		return fmt.Errorf("run ingest: %w", err)
	}

	fmt.Printf("Ingest complete. Inserted: %d\n", inserted)
	return nil
}

func runPurgeShorts(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	ctx, cancel := signalContext()
	defer cancel()

	components, cleanup, err := setup(ctx, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	videos, err := components.VideoRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list catalog: %w", err)
	}

	scanned := 0
	purged := 0
	for _, v := range videos {
		scanned++
		if !domain.IsShortForm(v.Duration, v.Title, v.Description) {
			continue
		}
		if dryRun {
			fmt.Printf("would delete %s (%ds) %q\n", v.YoutubeID, v.Duration, v.Title)
			purged++
			continue
		}
		if err := components.VideoRepo.DeleteByYoutubeID(ctx, v.YoutubeID); err != nil {
			logger.Warn("failed to delete short-form row",
				slog.String("youtube_id", v.YoutubeID),
				slog.String("error", err.Error()),
			)
			continue
		}
		purged++
	}

	verb := "Deleted"
	if dryRun {
		verb = "Would delete"
	}
	fmt.Printf("Purge complete. Scanned: %d, %s: %d\n", scanned, verb, purged)
	return nil
}
