package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kacper-wojtaszczyk/copernicus-ingest/internal/adapters/cds"
	"github.com/kacper-wojtaszczyk/copernicus-ingest/internal/config"
	"github.com/kacper-wojtaszczyk/copernicus-ingest/internal/exitcode"
	"github.com/kacper-wojtaszczyk/copernicus-ingest/internal/incremental"
	"github.com/kacper-wojtaszczyk/copernicus-ingest/internal/postprocess"
	"github.com/kacper-wojtaszczyk/copernicus-ingest/internal/scheduler"
	"github.com/kacper-wojtaszczyk/copernicus-ingest/internal/storage"
)

func main() {
	// Configure the global logger
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	// Parse CLI flags
	configPath := flag.String("config", "", "Path to YAML config (default: $CDS_CONFIG, then ./cds_config.yaml)")
	datasetName := flag.String("dataset", "", "Dataset name (empty = all configured datasets)")
	yearsStr := flag.String("years", "", "Comma-separated start years (default: config, then current year)")
	every := flag.Duration("every", 0, "Re-run the download pass on this interval (0 = run once)")
	flag.Parse()

	// Ensure environment variables are loaded
	if err := godotenv.Load(); err != nil {
		slog.Warn("failed to load env vars", "error", err)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(exitcode.ConfigError)
	}

	years, err := parseYears(*yearsStr, cfg.Years)
	if err != nil {
		slog.Error("invalid years flag", "years", *yearsStr, "error", err)
		fmt.Fprintf(os.Stderr, "Usage: years must be comma-separated integers\n")
		os.Exit(exitcode.ConfigError)
	}

	// Post-processing hooks must resolve before any run starts
	for name, ds := range cfg.Datasets {
		if ds.PostProcess == "" {
			continue
		}
		if _, ok := postprocess.Lookup(ds.PostProcess); !ok {
			slog.Error("unknown post_process", "dataset", name, "post_process", ds.PostProcess)
			os.Exit(exitcode.ConfigError)
		}
	}

	// Create a cancellable context (for graceful shutdown)
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tmpDir := os.Getenv("CDS_TMPDIR")
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		slog.Error("failed to create tmp dir", "dir", tmpDir, "error", err)
		os.Exit(exitcode.StorageError)
	}

	store, err := newStorage(ctx, cfg.Storage, tmpDir)
	if err != nil {
		slog.Error("failed to initialize storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(exitcode.StorageError)
	}

	if *every > 0 {
		daemon := scheduler.New(*every, func(ctx context.Context) {
			if err := run(ctx, cfg, store, tmpDir, *datasetName, years); err != nil {
				slog.ErrorContext(ctx, "download pass failed", "error", err)
			}
		})
		if err := daemon.Start(ctx); err != nil {
			slog.Error("failed to start periodic scheduler", "error", err)
			os.Exit(exitcode.ApplicationError)
		}
		<-ctx.Done()
		daemon.Stop()
		slog.Info("shutdown complete")
		return
	}

	if err := run(ctx, cfg, store, tmpDir, *datasetName, years); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(exitcode.ApplicationError)
	}

	slog.Info("shutdown complete")
}

// run processes the selected datasets sequentially. One dataset's abort is
// collected, not propagated mid-loop, so it never prevents another dataset
// from running.
func run(ctx context.Context, cfg *config.Config, store storage.Storage, tmpDir, datasetName string, years []int) error {
	names := slices.Sorted(maps.Keys(cfg.Datasets))
	if datasetName != "" {
		names = []string{datasetName}
	}

	var errs []error
	for _, name := range names {
		ds, ok := cfg.Datasets[name]
		if !ok {
			slog.InfoContext(ctx, "dataset not found in config", "dataset", name)
			continue
		}

		provider := cds.NewClient(ds.URL, ds.Key)
		sched := incremental.NewScheduler(ds, provider, store, tmpDir)
		if ds.PostProcess != "" {
			proc, _ := postprocess.Lookup(ds.PostProcess)
			sched.PostCommit = func(ctx context.Context, key storage.ObjectKey) error {
				return proc(ctx, store, tmpDir, key.Key())
			}
		}

		state, err := sched.Run(ctx, years)
		if err != nil {
			slog.ErrorContext(ctx, "dataset run aborted", "dataset", name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		slog.InfoContext(ctx, "dataset run finished", "dataset", name, "state", state)
	}

	return errors.Join(errs...)
}

func newStorage(ctx context.Context, cfg config.StorageConfig, tmpDir string) (storage.Storage, error) {
	switch cfg.Backend {
	case "s3":
		return storage.NewMinIOStorage(ctx, storage.MinIOConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			UseSSL:    cfg.UseSSL,
			TmpDir:    tmpDir,
		})
	default:
		return storage.NewFSStorage(cfg.BaseDir)
	}
}

func parseYears(flagValue string, configured []int) ([]int, error) {
	if flagValue != "" {
		var years []int
		for _, part := range strings.Split(flagValue, ",") {
			year, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("invalid year %q: %w", part, err)
			}
			years = append(years, year)
		}
		return years, nil
	}
	if len(configured) > 0 {
		return configured, nil
	}
	return []int{time.Now().Year()}, nil
}
