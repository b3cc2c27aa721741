package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pthm-cable/petri/config"
	"github.com/pthm-cable/petri/game"
	"github.com/pthm-cable/petri/storage"
	"github.com/pthm-cable/petri/storage/filestore"
	"github.com/pthm-cable/petri/storage/sqlite"
	"github.com/pthm-cable/petri/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config, then time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for bookmark snapshots")
	restore := flag.String("restore", "", "Snapshot file to start from")
	load := flag.String("load", "", "Population document to load before starting")
	save := flag.String("save", "", "Population document to save on exit")
	driver := flag.String("storage", "", "Storage driver: file or sqlite (empty = use config)")
	storagePath := flag.String("storage-path", "", "Storage directory or database file (empty = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}
	if *driver != "" {
		cfg.Storage.Driver = *driver
	}
	if *storagePath != "" {
		cfg.Storage.Path = *storagePath
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Simulation.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	if err := run(cfg, runOptions{
		seed:        rngSeed,
		maxTicks:    *maxTicks,
		outputDir:   *outputDir,
		logStats:    *logStats,
		snapshotDir: *snapshotDir,
		restore:     *restore,
		load:        *load,
		save:        *save,
	}); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

type runOptions struct {
	seed        int64
	maxTicks    int64
	outputDir   string
	logStats    bool
	snapshotDir string
	restore     string
	load        string
	save        string
}

func run(cfg *config.Config, ro runOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	output, err := telemetry.NewOutputManager(ro.outputDir)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if output != nil {
		defer func() {
			if err := output.Close(); err != nil {
				slog.Error("failed to close output", "error", err)
			}
		}()
		if err := output.WriteConfig(cfg); err != nil {
			return err
		}
		if ro.snapshotDir == "" {
			ro.snapshotDir = output.SnapshotDir()
		}
	}

	arena := game.NewArena(cfg, game.Options{
		Seed:        ro.seed,
		Empty:       ro.restore != "" || ro.load != "",
		Output:      output,
		LogStats:    ro.logStats,
		SnapshotDir: ro.snapshotDir,
	})

	if ro.restore != "" {
		snap, err := telemetry.LoadSnapshot(ro.restore)
		if err != nil {
			return err
		}
		if err := arena.Restore(snap); err != nil {
			return err
		}
	}

	var store storage.Store
	if ro.load != "" || ro.save != "" {
		s, closeStore, err := openStore(cfg.Storage)
		if err != nil {
			return err
		}
		defer closeStore()
		store = s
	}
	if ro.load != "" {
		if _, err := arena.LoadPopulation(ctx, store, ro.load); err != nil {
			return err
		}
	}

	slog.Info("starting simulation",
		"seed", ro.seed,
		"organisms", arena.OrganismCount(),
		"resources", arena.ResourceCount(),
		"max_ticks", ro.maxTicks,
	)

	dt := cfg.Derived.TickDuration
	for ctx.Err() == nil {
		arena.Tick(dt)
		if ro.maxTicks > 0 && arena.CurrentTick() >= ro.maxTicks {
			slog.Info("max ticks reached", "tick", arena.CurrentTick())
			break
		}
	}

	if ro.save != "" {
		// The run context may already be cancelled by a signal.
		if err := arena.SavePopulation(context.WithoutCancel(ctx), store, ro.save); err != nil {
			return err
		}
	}
	if output != nil {
		if err := output.WriteHallOfFame(arena.HallOfFame()); err != nil {
			slog.Error("failed to write hall of fame", "error", err)
		}
	}
	return nil
}

// openStore opens the configured persistence backend.
func openStore(cfg config.StorageConfig) (storage.Store, func(), error) {
	switch cfg.Driver {
	case "", "file":
		s, err := filestore.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	case "sqlite":
		path := cfg.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "petri.db")
			if err := os.MkdirAll(cfg.Path, 0755); err != nil {
				return nil, nil, fmt.Errorf("create storage dir: %w", err)
			}
		}
		s, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				slog.Error("failed to close storage", "error", err)
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
