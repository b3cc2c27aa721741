package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/petri/config"
	"github.com/pthm-cable/petri/game"
	"github.com/pthm-cable/petri/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int64
	seeds      []int64
	baseConfig *config.Config

	// Best run tracking
	mu             sync.Mutex
	bestFitness    float64
	bestHallOfFame *telemetry.HallOfFame
	last           evaluation
}

// evaluation summarizes one Evaluate call averaged over its seeds.
type evaluation struct {
	Fitness       float64
	SurvivalTicks float64
	Quality       float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestHallOfFame returns the hall of fame from the best evaluation.
func (fe *FitnessEvaluator) BestHallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHallOfFame
}

// Last returns the summary of the most recent evaluation.
func (fe *FitnessEvaluator) Last() evaluation {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last
}

// Below minViablePop living organisms for extinctionGraceSec the run counts as
// functionally extinct. Reseeding is disabled during evaluation so a collapse is final.
const (
	minViablePop       = 5
	extinctionGraceSec = 30.0
	warmupSec          = 5.0
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int64                   // ticks before functional extinction (or maxTicks if survived)
	windowStats   []telemetry.WindowStats // collected via StatsCallback each window
	hallOfFame    *telemetry.HallOfFame
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness    float64
	quality    float64
	survival   int64
	hallOfFame *telemetry.HallOfFame
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	// Each seed runs its own arena, so seeds can run in parallel.
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			results[idx] = seedResult{
				fitness:    fe.computeFitness(result),
				quality:    computeQuality(result.windowStats),
				survival:   result.survivalTicks,
				hallOfFame: result.hallOfFame,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality, totalSurvival float64
	bestSeedFitness := math.Inf(1)
	var bestSeedHallOfFame *telemetry.HallOfFame

	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
		totalSurvival += float64(r.survival)
		if r.fitness < bestSeedFitness {
			bestSeedFitness = r.fitness
			bestSeedHallOfFame = r.hallOfFame
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestHallOfFame = bestSeedHallOfFame
	}
	fe.last = evaluation{
		Fitness:       avgFitness,
		SurvivalTicks: totalSurvival / n,
		Quality:       totalQuality / n,
	}
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless simulation run until functional
// extinction or maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Population.ReseedThreshold = 0

	result := &runResult{}
	arena := game.NewArena(cfg, game.Options{
		Seed: seed,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})

	dt := cfg.Derived.TickDuration
	ticksPerSec := cfg.Simulation.TickRate
	graceTicks := int64(extinctionGraceSec * ticksPerSec)
	warmupTicks := int64(warmupSec * ticksPerSec)
	var belowTicks int64

	for arena.CurrentTick() < fe.maxTicks {
		arena.Tick(dt)

		tick := arena.CurrentTick()
		if tick < warmupTicks {
			continue
		}

		living := arena.LivingCount()
		if living == 0 {
			result.survivalTicks = tick
			result.hallOfFame = arena.HallOfFame()
			return result
		}

		if living < minViablePop {
			belowTicks++
		} else {
			belowTicks = 0
		}
		if belowTicks >= graceTicks {
			result.survivalTicks = tick
			result.hallOfFame = arena.HallOfFame()
			return result
		}
	}

	result.survivalTicks = fe.maxTicks
	result.hallOfFame = arena.HallOfFame()
	return result
}

// copyConfig returns an independent copy of the base config. Config holds only
// values, so a struct copy is deep.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalTicks × (1.0 + 0.2 × quality))
// Survival dominates; quality adds up to 20% bonus to differentiate
// configs with similar survival.
func (fe *FitnessEvaluator) computeFitness(r *runResult) float64 {
	survival := float64(r.survivalTicks)
	quality := computeQuality(r.windowStats)
	return -(survival * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightStability = 0.40
	qualityWeightDiversity = 0.30
	qualityWeightFood      = 0.30

	qualityWarmupWindows = 3 // skip first N windows (warmup)
	qualityMinPop        = 5 // exclude windows below this population
)

// computeQuality computes ecosystem quality ∈ [0, 1] from window stats.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	var counts []float64
	var diversitySum, foodSum float64
	for _, w := range windows[qualityWarmupWindows:] {
		if w.Organisms < qualityMinPop {
			continue
		}
		counts = append(counts, float64(w.Organisms))
		diversitySum += kindEntropy(w)

		// Median food near the newborn reserve.
		foodSum += math.Exp(-math.Pow((w.FoodP50-50)/30, 2))
	}
	if len(counts) == 0 {
		return 0
	}

	stabilityScore := 0.0
	if len(counts) >= 2 {
		mean, std := stat.MeanStdDev(counts, nil)
		if mean > 0 {
			cv := std / mean
			stabilityScore = math.Exp(-cv * cv)
		}
	}

	n := float64(len(counts))
	quality := qualityWeightStability*stabilityScore +
		qualityWeightDiversity*diversitySum/n +
		qualityWeightFood*foodSum/n

	return max(0, min(1, quality))
}

// kindEntropy is the normalized Shannon entropy of the kind distribution.
func kindEntropy(w telemetry.WindowStats) float64 {
	counts := []float64{float64(w.Kind0), float64(w.Kind1), float64(w.Kind2)}
	total := counts[0] + counts[1] + counts[2]
	if total == 0 {
		return 0
	}
	p := make([]float64, len(counts))
	for i, c := range counts {
		p[i] = c / total
	}
	return stat.Entropy(p) / math.Log(float64(len(p)))
}
