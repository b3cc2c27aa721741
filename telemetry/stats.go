package telemetry

import (
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Organisms int `csv:"organisms"`
	Producers int `csv:"producers"`
	Decaying  int `csv:"decaying"`
	Resources int `csv:"resources"`

	// Events during window
	Births            int     `csv:"births"`
	Deaths            int     `csv:"deaths"`
	DeathsStarvation  int     `csv:"deaths_starvation"`
	DeathsOldAge      int     `csv:"deaths_old_age"`
	DeathsExternal    int     `csv:"deaths_external"`
	Pairings          int     `csv:"pairings"`
	Mutations         int     `csv:"mutations"`
	ResourcesEaten    int     `csv:"resources_eaten"`
	FoodEaten         float64 `csv:"food_eaten"`
	ResourcesProduced int     `csv:"resources_produced"`

	// Environment at window end
	Temperature float64 `csv:"temperature"`
	Radiation   float64 `csv:"radiation"`

	// Food distribution (sampled at window end)
	FoodMean float64 `csv:"food_mean"`
	FoodP10  float64 `csv:"food_p10"`
	FoodP50  float64 `csv:"food_p50"`
	FoodP90  float64 `csv:"food_p90"`

	SizeMean float64 `csv:"size_mean"`

	// Trait distribution of living organisms
	MaxSpeedMean          float64 `csv:"max_speed_mean"`
	MaxSpeedStd           float64 `csv:"max_speed_std"`
	FoodLimitMean         float64 `csv:"food_limit_mean"`
	MaxSizeMean           float64 `csv:"max_size_mean"`
	MaxAgeMean            float64 `csv:"max_age_mean"`
	DivisionThresholdMean float64 `csv:"division_threshold_mean"`

	// Living organisms per kind trait value
	Kind0 int `csv:"kind_0"`
	Kind1 int `csv:"kind_1"`
	Kind2 int `csv:"kind_2"`
}

// Percentile returns the p-th empirical quantile of a sorted slice: the lowest value
// that is greater than or equal to a fraction p of the samples.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return stat.Quantile(math.Max(0, math.Min(1, p)), stat.Empirical, sorted, nil)
}

// ComputeDistribution calculates mean, population std-dev and percentiles.
func ComputeDistribution(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)
	std = stat.PopStdDev(values, nil)

	// Sort for percentiles
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("organisms", s.Organisms),
		slog.Int("producers", s.Producers),
		slog.Int("decaying", s.Decaying),
		slog.Int("resources", s.Resources),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Int("deaths_starvation", s.DeathsStarvation),
		slog.Int("deaths_old_age", s.DeathsOldAge),
		slog.Int("deaths_external", s.DeathsExternal),
		slog.Int("pairings", s.Pairings),
		slog.Int("mutations", s.Mutations),
		slog.Int("resources_eaten", s.ResourcesEaten),
		slog.Float64("food_eaten", s.FoodEaten),
		slog.Int("resources_produced", s.ResourcesProduced),
		slog.Float64("temperature", s.Temperature),
		slog.Float64("radiation", s.Radiation),
		slog.Float64("food_mean", s.FoodMean),
		slog.Float64("food_p10", s.FoodP10),
		slog.Float64("food_p50", s.FoodP50),
		slog.Float64("food_p90", s.FoodP90),
		slog.Float64("size_mean", s.SizeMean),
		slog.Float64("max_speed_mean", s.MaxSpeedMean),
		slog.Float64("max_speed_std", s.MaxSpeedStd),
		slog.Float64("food_limit_mean", s.FoodLimitMean),
		slog.Float64("max_size_mean", s.MaxSizeMean),
		slog.Float64("max_age_mean", s.MaxAgeMean),
		slog.Float64("division_threshold_mean", s.DivisionThresholdMean),
		slog.Int("kind_0", s.Kind0),
		slog.Int("kind_1", s.Kind1),
		slog.Int("kind_2", s.Kind2),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
