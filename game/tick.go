package game

import (
	"math"
	"time"

	"github.com/pthm-cable/petri/components"
	"github.com/pthm-cable/petri/systems"
	"github.com/pthm-cable/petri/telemetry"
)

// Tick advances the simulation by one step of elapsed simulated time.
//
// Phases run in a fixed order: the spatial grid is rebuilt, every organism runs its
// roles in insertion order, periodic resources are spawned, queued spawns are
// committed, tombstoned entities are compacted and telemetry is sampled.
func (a *Arena) Tick(elapsed time.Duration) {
	a.perf.StartTick()
	a.elapsed = elapsed

	a.perf.StartPhase(telemetry.PhaseSpatialGrid)
	a.updateSpatialGrid()

	a.ticking = true

	a.perf.StartPhase(telemetry.PhaseBehavior)
	a.runBehaviors()

	a.perf.StartPhase(telemetry.PhaseSpawning)
	a.spawnResources()

	a.ticking = false

	a.perf.StartPhase(telemetry.PhaseCommit)
	a.commit()

	a.perf.StartPhase(telemetry.PhaseCompact)
	a.Compact()
	a.reseedIfNeeded()

	a.perf.StartPhase(telemetry.PhaseTelemetry)
	a.tick++
	a.updateLifetimes()
	a.flushTelemetry()

	a.perf.EndTick()
}

// updateSpatialGrid rebuilds the spatial index over live resources.
func (a *Arena) updateSpatialGrid() {
	a.grid.Clear()

	query := a.resourceFilter.Query()
	for query.Next() {
		body, _ := query.Get()
		if !body.IsMarkedToDelete() {
			a.grid.Insert(query.Entity(), body.Pos, body.Radius)
		}
	}
	a.gridDirty = false
}

// runBehaviors updates every organism once. The list is fixed for the pass: births
// are queued and tombstoned organisms stay in place until compaction.
func (a *Arena) runBehaviors() {
	for _, e := range a.orgList {
		act := a.actor(e)
		if act.Body.IsMarkedToDelete() {
			continue
		}
		systems.Update(a.view, act)
	}
}

// spawnResources queues feed_rate × elapsed new resources, carrying the fractional
// remainder over to the next tick. A zero feed rate disables spawning.
func (a *Arena) spawnResources() {
	rate := a.feedRate.Get()
	if rate <= 0 {
		a.feedAccum = 0
		return
	}

	a.feedAccum += rate * a.elapsed.Seconds()
	n := math.Floor(a.feedAccum)
	a.feedAccum -= n

	cfg := &a.cfg.Resources
	for range int(n) {
		pos, ok := a.field.Place(a.rng, cfg.Attempts)
		if !ok {
			continue
		}
		size := cfg.SizeMin + a.rng.Float64()*(cfg.SizeMax-cfg.SizeMin)
		a.view.SpawnResource(components.NewBody(pos, size, systems.ResourceColor()), components.OriginSpawn)
	}
}

// commit inserts everything queued during the tick, organisms first.
func (a *Arena) commit() {
	for _, s := range a.pendingOrgs {
		a.insertOrganism(s)
	}
	for _, r := range a.pendingRes {
		a.insertResource(r.body, r.origin)
	}
	clear(a.pendingOrgs)
	a.pendingOrgs = a.pendingOrgs[:0]
	a.pendingRes = a.pendingRes[:0]
}

// updateLifetimes copies organism ages into the lifetime tracker.
func (a *Arena) updateLifetimes() {
	for _, e := range a.orgList {
		_, org := a.organisms.Get(e)
		if org.Alive {
			a.lifetimes.UpdateAge(org.ID, org.AgeTicks)
		}
	}
}
