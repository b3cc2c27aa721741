// Package game hosts the arena: the owner of every organism and resource, the
// environment parameters and the per-tick orchestration.
package game

import (
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/petri/bounded"
	"github.com/pthm-cable/petri/components"
	"github.com/pthm-cable/petri/config"
	"github.com/pthm-cable/petri/systems"
	"github.com/pthm-cable/petri/telemetry"
)

// Options holds host-supplied settings that are not part of the simulation config.
type Options struct {
	Seed int64 // resolved seed; the config's 0 = time-based is handled by the host

	// Empty skips the initial population.
	Empty bool

	Output        *telemetry.OutputManager
	LogStats      bool
	StatsCallback func(telemetry.WindowStats)
	SnapshotDir   string // bookmark snapshots are written here when non-empty
}

type pendingResource struct {
	body   components.Body
	origin components.ResourceOrigin
}

// Arena holds the complete simulation state.
type Arena struct {
	cfg  *config.Config
	rng  *rand.Rand
	seed int64

	world *ecs.World

	organisms *ecs.Map2[components.Body, components.Organism]
	resources *ecs.Map2[components.Body, components.Resource]
	orgMap    *ecs.Map[components.Organism]
	resMap    *ecs.Map[components.Resource]

	resourceFilter *ecs.Filter2[components.Body, components.Resource]

	// Insertion order; iteration over organisms is observable.
	orgList []ecs.Entity
	resList []ecs.Entity

	grid      *systems.SpatialGrid
	gridDirty bool // resources changed since the last rebuild
	field     *systems.ResourceField
	nearby    []ecs.Entity // scratch for proximity queries

	// Environment
	temperature *bounded.Dynamic[float64]
	radiation   *bounded.Dynamic[float64]
	feedRate    *bounded.Dynamic[float64]
	elapsed     time.Duration
	feedAccum   float64

	// Deferred spawns, committed after the behaviour pass
	ticking     bool
	pendingOrgs []components.Specimen
	pendingRes  []pendingResource

	// State
	tick   int64
	nextID uint32

	// Telemetry
	collector        *telemetry.Collector
	lifetimes        *telemetry.LifetimeTracker
	hallOfFame       *telemetry.HallOfFame
	perf             *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	output           *telemetry.OutputManager
	statsCallback    func(telemetry.WindowStats)
	logStats         bool
	snapshotDir      string

	view *worldView
}

// NewArena creates an arena and, unless opts.Empty is set, its initial population.
func NewArena(cfg *config.Config, opts Options) *Arena {
	world := ecs.NewWorld()
	rng := rand.New(rand.NewSource(opts.Seed))
	env := &cfg.Environment
	tel := &cfg.Telemetry

	a := &Arena{
		cfg:  cfg,
		rng:  rng,
		seed: opts.Seed,

		world:          world,
		organisms:      ecs.NewMap2[components.Body, components.Organism](world),
		resources:      ecs.NewMap2[components.Body, components.Resource](world),
		orgMap:         ecs.NewMap[components.Organism](world),
		resMap:         ecs.NewMap[components.Resource](world),
		resourceFilter: ecs.NewFilter2[components.Body, components.Resource](world),

		grid:  systems.NewSpatialGrid(cfg.World.Width, cfg.World.Height, cfg.World.SectorSize),
		field: systems.NewResourceField(cfg.World.Width, cfg.World.Height, opts.Seed, cfg.Resources.NoiseScale, cfg.Resources.NoiseFloor),

		temperature: bounded.NewDynamic(env.TemperatureMin, env.TemperatureMax, env.Temperature),
		radiation:   bounded.NewDynamic(env.RadiationMin, env.RadiationMax, env.Radiation),
		feedRate:    bounded.NewDynamic(0, cfg.Resources.FeedRateMax, cfg.Resources.FeedRate),

		nextID: 1,

		collector:        telemetry.NewCollector(tel.StatsWindow, cfg.Derived.TickDuration),
		lifetimes:        telemetry.NewLifetimeTracker(),
		perf:             telemetry.NewPerfCollector(tel.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(tel.BookmarkHistorySize, tel.CrashDropPercent, tel.BoomGrowthPercent),
		output:           opts.Output,
		statsCallback:    opts.StatsCallback,
		logStats:         opts.LogStats,
		snapshotDir:      opts.SnapshotDir,
	}
	if cfg.HallOfFame.Enabled {
		a.hallOfFame = telemetry.NewHallOfFame(cfg.HallOfFame, cfg.Derived.TickDuration, rng)
	}
	a.view = &worldView{a: a}

	if !opts.Empty {
		a.spawnInitialPopulation()
	}
	return a
}

// Config returns the arena's configuration.
func (a *Arena) Config() *config.Config { return a.cfg }

// Seed returns the seed the arena's random source was created with.
func (a *Arena) Seed() int64 { return a.seed }

// CurrentTick returns the number of completed ticks.
func (a *Arena) CurrentTick() int64 { return a.tick }

// Size returns the arena's width and height.
func (a *Arena) Size() (width, height float64) {
	return a.cfg.World.Width, a.cfg.World.Height
}

// Organisms returns the organism entities in insertion order. The slice is owned by
// the arena and only valid until the next tick or structural change.
func (a *Arena) Organisms() []ecs.Entity { return a.orgList }

// Resources returns the resource entities in insertion order.
func (a *Arena) Resources() []ecs.Entity { return a.resList }

// OrganismCount returns the number of organisms, including decaying ones.
func (a *Arena) OrganismCount() int { return len(a.orgList) }

// ResourceCount returns the number of resources.
func (a *Arena) ResourceCount() int { return len(a.resList) }

// HallOfFame returns the hall of fame, or nil when disabled.
func (a *Arena) HallOfFame() *telemetry.HallOfFame { return a.hallOfFame }

// Perf returns the tick phase timings.
func (a *Arena) Perf() *telemetry.PerfCollector { return a.perf }

// Lifetime returns the lifetime record of a tracked organism, or nil.
func (a *Arena) Lifetime(e ecs.Entity) *telemetry.LifetimeStats {
	if !a.isOrganism(e) {
		return nil
	}
	return a.lifetimes.Get(a.orgMap.Get(e).ID)
}

func (a *Arena) isOrganism(e ecs.Entity) bool {
	return a.world.Alive(e) && a.orgMap.Has(e)
}

func (a *Arena) isResource(e ecs.Entity) bool {
	return a.world.Alive(e) && a.resMap.Has(e)
}

// actor returns the role view of an organism entity.
func (a *Arena) actor(e ecs.Entity) systems.Actor {
	body, org := a.organisms.Get(e)
	return systems.Actor{Entity: e, Body: body, Org: org}
}

// emit stamps an event with the current tick and feeds telemetry.
func (a *Arena) emit(ev telemetry.Event) {
	ev.Tick = a.tick
	a.collector.Record(ev)
	a.lifetimes.Record(ev)
}

// worldView is the context roles run against. It is the arena seen from inside a
// tick: spawns are queued rather than applied.
type worldView struct {
	a *Arena
}

func (w *worldView) Env() systems.Environment {
	return systems.Environment{
		Temperature: w.a.temperature.Get(),
		Radiation:   w.a.radiation.Get(),
		Elapsed:     w.a.elapsed,
	}
}

func (w *worldView) Rand() *rand.Rand { return w.a.rng }

func (w *worldView) Config() *config.Config { return w.a.cfg }

func (w *worldView) Size() (float64, float64) { return w.a.Size() }

func (w *worldView) NearbyResources(body *components.Body) []ecs.Entity {
	w.a.nearby = w.a.grid.QueryInto(w.a.nearby[:0], body.Pos, body.Radius)
	return w.a.nearby
}

func (w *worldView) ResourceBody(e ecs.Entity) *components.Body {
	if !w.a.isResource(e) {
		return nil
	}
	body, _ := w.a.resources.Get(e)
	return body
}

func (w *worldView) ForEachOrganism(fn func(systems.Actor) bool) {
	for _, e := range w.a.orgList {
		if !fn(w.a.actor(e)) {
			return
		}
	}
}

func (w *worldView) SpawnOrganism(s components.Specimen) {
	w.a.pendingOrgs = append(w.a.pendingOrgs, s)
}

func (w *worldView) SpawnResource(body components.Body, origin components.ResourceOrigin) {
	w.a.pendingRes = append(w.a.pendingRes, pendingResource{body: body, origin: origin})
}

func (w *worldView) Emit(ev telemetry.Event) { w.a.emit(ev) }
