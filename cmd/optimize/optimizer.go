package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/optimize"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/petri/config"
	"github.com/pthm-cable/petri/telemetry"
)

// optimizerOptions configures a tuning session.
type optimizerOptions struct {
	MaxTicks   int64
	Seeds      int
	MaxEvals   int
	Population int     // 0 picks 4 + 3 ln(dim)
	StepSize   float64 // initial CMA-ES step in normalized units
}

// trialRecord is one row of trials.csv.
type trialRecord struct {
	Eval        int      `csv:"eval"`
	Fitness     float64  `csv:"fitness"`
	SurvivalSec float64  `csv:"survival_sec"`
	Quality     float64  `csv:"quality"`
	Best        bool     `csv:"best"`
	Params      paramSet `csv:"params"`
}

// paramSet renders as space-separated name=value pairs in a single CSV column.
type paramSet struct {
	names  []string
	values []float64
}

func (p paramSet) MarshalCSV() (string, error) {
	parts := make([]string, len(p.values))
	for i, v := range p.values {
		parts[i] = p.names[i] + "=" + strconv.FormatFloat(v, 'g', 6, 64)
	}
	return strings.Join(parts, " "), nil
}

// report is the session summary written to report.yaml.
type report struct {
	Evaluations     int                `yaml:"evaluations"`
	Elapsed         string             `yaml:"elapsed"`
	Interrupted     bool               `yaml:"interrupted"`
	Seeds           []int64            `yaml:"seeds"`
	MaxTicks        int64              `yaml:"max_ticks"`
	BestFitness     float64            `yaml:"best_fitness"`
	BestSurvivalSec float64            `yaml:"best_survival_sec"`
	BestQuality     float64            `yaml:"best_quality"`
	BestParams      map[string]float64 `yaml:"best_params"`
}

// Optimizer searches the parameter space with CMA-ES, logging every trial and
// writing the best config, its hall of fame and a report to the output directory.
type Optimizer struct {
	dir       string
	opts      optimizerOptions
	baseCfg   *config.Config
	params    *ParamVector
	seeds     []int64
	evaluator *FitnessEvaluator
	trials    *telemetry.CSVSink[trialRecord]

	evals    int
	best     trialRecord
	bestRaw  []float64
	started  time.Time
	tickRate float64
}

// NewOptimizer prepares dir and opens the trial log.
func NewOptimizer(dir string, baseCfg *config.Config, opts optimizerOptions) (*Optimizer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	trials, err := telemetry.OpenCSVSink[trialRecord](dir, "trials.csv")
	if err != nil {
		return nil, err
	}

	params := NewParamVector()
	seeds := evalSeeds(opts.Seeds)
	return &Optimizer{
		dir:       dir,
		opts:      opts,
		baseCfg:   baseCfg,
		params:    params,
		seeds:     seeds,
		evaluator: NewFitnessEvaluator(params, opts.MaxTicks, seeds, baseCfg),
		trials:    trials,
		best:      trialRecord{Fitness: math.Inf(1)},
		tickRate:  baseCfg.Simulation.TickRate,
	}, nil
}

// evalSeeds returns n fixed seeds so every candidate faces the same arenas.
func evalSeeds(n int) []int64 {
	seeds := make([]int64, max(n, 1))
	for i := range seeds {
		seeds[i] = int64(i*1000 + 42)
	}
	return seeds
}

// popSize returns the CMA-ES population for dim parameters.
func popSize(requested, dim int) int {
	if requested > 0 {
		return requested
	}
	return 4 + int(3*math.Log(float64(dim)))
}

// Run minimizes until the evaluation budget is spent or ctx is cancelled, then
// writes the outputs for the best candidate seen.
func (o *Optimizer) Run(ctx context.Context) (*report, error) {
	dim := o.params.Dim()
	pop := popSize(o.opts.Population, dim)

	problem := optimize.Problem{Func: o.evaluate}
	settings := &optimize.Settings{
		FuncEvaluations: o.opts.MaxEvals,
		Recorder:        cancelRecorder{ctx},
	}
	method := &optimize.CmaEsChol{
		InitStepSize: o.opts.StepSize,
		Population:   pop,
	}

	slog.Info("optimization started",
		"params", dim,
		"population", pop,
		"max_evals", o.opts.MaxEvals,
		"seeds", len(o.seeds),
		"max_ticks", o.opts.MaxTicks,
	)
	o.started = time.Now()

	_, err := optimize.Minimize(problem, o.params.Normalize(o.params.DefaultVector()), settings, method)
	interrupted := ctx.Err() != nil
	if err != nil && !interrupted {
		slog.Warn("optimization ended", "error", err)
	}
	if o.bestRaw == nil {
		return nil, fmt.Errorf("no candidate was evaluated")
	}
	return o.finish(interrupted)
}

// evaluate is the CMA-ES objective. x is in normalized units.
func (o *Optimizer) evaluate(x []float64) float64 {
	raw := o.params.Clamp(o.params.Denormalize(x))
	fitness := o.evaluator.Evaluate(raw)
	last := o.evaluator.Last()
	o.evals++

	rec := trialRecord{
		Eval:        o.evals,
		Fitness:     fitness,
		SurvivalSec: last.SurvivalTicks / o.tickRate,
		Quality:     last.Quality,
		Params:      paramSet{names: o.params.Names(), values: raw},
	}
	if fitness < o.best.Fitness {
		rec.Best = true
		o.best = rec
		o.bestRaw = raw
	}
	if err := o.trials.Write(rec); err != nil {
		slog.Error("failed to log trial", "error", err)
	}

	elapsed := time.Since(o.started)
	eta := time.Duration(o.opts.MaxEvals-o.evals) * (elapsed / time.Duration(o.evals))
	slog.Info("trial",
		"eval", o.evals,
		"survival_sec", rec.SurvivalSec,
		"quality", rec.Quality,
		"best_survival_sec", o.best.SurvivalSec,
		"elapsed", elapsed.Round(time.Second).String(),
		"eta", eta.Round(time.Second).String(),
	)
	return fitness
}

// finish writes best_config.yaml, hall_of_fame.json and report.yaml.
func (o *Optimizer) finish(interrupted bool) (*report, error) {
	bestCfg := *o.baseCfg
	o.params.ApplyToConfig(&bestCfg, o.bestRaw)
	if err := bestCfg.WriteYAML(filepath.Join(o.dir, "best_config.yaml")); err != nil {
		return nil, err
	}

	if hof := o.evaluator.BestHallOfFame(); hof != nil {
		data, err := hof.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("marshaling hall of fame: %w", err)
		}
		if err := os.WriteFile(filepath.Join(o.dir, "hall_of_fame.json"), data, 0644); err != nil {
			return nil, fmt.Errorf("writing hall_of_fame.json: %w", err)
		}
	}

	rep := &report{
		Evaluations:     o.evals,
		Elapsed:         time.Since(o.started).Round(time.Second).String(),
		Interrupted:     interrupted,
		Seeds:           o.seeds,
		MaxTicks:        o.opts.MaxTicks,
		BestFitness:     o.best.Fitness,
		BestSurvivalSec: o.best.SurvivalSec,
		BestQuality:     o.best.Quality,
		BestParams:      make(map[string]float64, len(o.bestRaw)),
	}
	for i, name := range o.params.Names() {
		rep.BestParams[name] = o.bestRaw[i]
	}
	data, err := yaml.Marshal(rep)
	if err != nil {
		return nil, fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(o.dir, "report.yaml"), data, 0644); err != nil {
		return nil, fmt.Errorf("writing report.yaml: %w", err)
	}
	return rep, nil
}

// Close closes the trial log.
func (o *Optimizer) Close() error {
	return o.trials.Close()
}

// cancelRecorder stops the optimizer once ctx is done.
type cancelRecorder struct {
	ctx context.Context
}

func (r cancelRecorder) Init() error { return nil }

func (r cancelRecorder) Record(*optimize.Location, optimize.Operation, *optimize.Stats) error {
	return r.ctx.Err()
}
