package telemetry

import (
	"time"

	"github.com/pthm-cable/petri/genetics"
)

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int64
	dt                  time.Duration

	// Current window tracking
	windowStartTick int64

	// Event counters for current window
	births            int
	deathsByCause     [3]int
	pairings          int
	mutations         int
	resourcesEaten    int
	foodEaten         float64
	resourcesProduced int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: duration of one tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt time.Duration) *Collector {
	ticksPerWindow := int64(windowDurationSec / dt.Seconds())
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Record counts one event in the current window.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventBirth:
		c.births++
	case EventDeath:
		if int(ev.Cause) < len(c.deathsByCause) {
			c.deathsByCause[ev.Cause]++
		}
	case EventForage:
		c.resourcesEaten++
		c.foodEaten += ev.Amount
	case EventPairing:
		c.pairings++
	case EventMutation:
		c.mutations++
	case EventProduce:
		c.resourcesProduced += int(ev.Amount)
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// PopulationSample is the arena state the caller samples at window end.
type PopulationSample struct {
	Organisms int // living, including producers
	Producers int
	Decaying  int
	Resources int

	Temperature float64
	Radiation   float64

	// Per living organism
	Food  []float64
	Sizes []float64
	Genes []genetics.Profile
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int64, pop PopulationSample) WindowStats {
	foodMean, _, foodP10, foodP50, foodP90 := ComputeDistribution(pop.Food)
	sizeMean, _, _, _, _ := ComputeDistribution(pop.Sizes)

	n := len(pop.Genes)
	maxSpeed := make([]float64, n)
	foodLimit := make([]float64, n)
	maxSize := make([]float64, n)
	maxAge := make([]float64, n)
	division := make([]float64, n)
	var kinds [3]int
	for i := range pop.Genes {
		g := &pop.Genes[i]
		maxSpeed[i] = float64(g.MaxSpeed.Get())
		foodLimit[i] = float64(g.FoodLimit.Get())
		maxSize[i] = float64(g.MaxSize.Get())
		maxAge[i] = float64(g.MaxAge.Get())
		division[i] = float64(g.DivisionThreshold.Get())
		if k := g.Kind.Get(); k >= 0 && int(k) < len(kinds) {
			kinds[k]++
		}
	}
	speedMean, speedStd, _, _, _ := ComputeDistribution(maxSpeed)
	foodLimitMean, _, _, _, _ := ComputeDistribution(foodLimit)
	maxSizeMean, _, _, _, _ := ComputeDistribution(maxSize)
	maxAgeMean, _, _, _, _ := ComputeDistribution(maxAge)
	divisionMean, _, _, _, _ := ComputeDistribution(division)

	deaths := 0
	for _, d := range c.deathsByCause {
		deaths += d
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt.Seconds(),

		Organisms: pop.Organisms,
		Producers: pop.Producers,
		Decaying:  pop.Decaying,
		Resources: pop.Resources,

		Births:            c.births,
		Deaths:            deaths,
		DeathsStarvation:  c.deathsByCause[CauseStarvation],
		DeathsOldAge:      c.deathsByCause[CauseOldAge],
		DeathsExternal:    c.deathsByCause[CauseExternal],
		Pairings:          c.pairings,
		Mutations:         c.mutations,
		ResourcesEaten:    c.resourcesEaten,
		FoodEaten:         c.foodEaten,
		ResourcesProduced: c.resourcesProduced,

		Temperature: pop.Temperature,
		Radiation:   pop.Radiation,

		FoodMean: foodMean,
		FoodP10:  foodP10,
		FoodP50:  foodP50,
		FoodP90:  foodP90,
		SizeMean: sizeMean,

		MaxSpeedMean:          speedMean,
		MaxSpeedStd:           speedStd,
		FoodLimitMean:         foodLimitMean,
		MaxSizeMean:           maxSizeMean,
		MaxAgeMean:            maxAgeMean,
		DivisionThresholdMean: divisionMean,

		Kind0: kinds[0],
		Kind1: kinds[1],
		Kind2: kinds[2],
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.births = 0
	c.deathsByCause = [3]int{}
	c.pairings = 0
	c.mutations = 0
	c.resourcesEaten = 0
	c.foodEaten = 0
	c.resourcesProduced = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}
