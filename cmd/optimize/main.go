// Command optimize tunes the environment and behaviour parameters of a petri arena
// with CMA-ES so that populations survive longer and stay stable and diverse.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pthm-cable/petri/config"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	opts := optimizerOptions{}
	flag.Int64Var(&opts.MaxTicks, "max-ticks", 36000, "Tick cap per simulation run")
	flag.IntVar(&opts.Seeds, "seeds", 3, "Seeds per evaluation")
	flag.IntVar(&opts.MaxEvals, "max-evals", 200, "Maximum number of evaluations")
	flag.IntVar(&opts.Population, "population", 0, "CMA-ES population size (0 = auto)")
	flag.Float64Var(&opts.StepSize, "step", 0.3, "Initial CMA-ES step size in normalized units")
	outputDir := flag.String("output", "", "Output directory for trials.csv, report.yaml and best_config.yaml")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(*configPath, *outputDir, opts); err != nil {
		slog.Error("optimize failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, outputDir string, opts optimizerOptions) error {
	if outputDir == "" {
		return fmt.Errorf("-output is required")
	}
	baseCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opt, err := NewOptimizer(outputDir, baseCfg, opts)
	if err != nil {
		return err
	}
	defer opt.Close()

	rep, err := opt.Run(ctx)
	if err != nil {
		return err
	}
	slog.Info("optimization complete",
		"evaluations", rep.Evaluations,
		"elapsed", rep.Elapsed,
		"interrupted", rep.Interrupted,
		"best_survival_sec", rep.BestSurvivalSec,
		"best_quality", rep.BestQuality,
		"output", outputDir,
	)
	return nil
}
