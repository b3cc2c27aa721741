package game

import (
	"log/slog"
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/petri/components"
	"github.com/pthm-cable/petri/genome"
	"github.com/pthm-cable/petri/systems"
)

// reseedGraceTicks delays reseeding so a fresh arena can settle.
const reseedGraceTicks = 100

// spawnInitialPopulation creates the starting organisms, producers and resources.
func (a *Arena) spawnInitialPopulation() {
	pop := &a.cfg.Population

	for range pop.InitialOrganisms {
		a.insertOrganism(systems.NewSpecimen(a.cfg, a.rng, a.randomPosition()))
	}
	for range pop.InitialProducers {
		s := systems.NewSpecimen(a.cfg, a.rng, a.randomPosition())
		systems.MakeProducer(a.cfg, &s)
		a.insertOrganism(s)
	}

	res := &a.cfg.Resources
	for range pop.InitialResources {
		pos, ok := a.field.Place(a.rng, res.Attempts)
		if !ok {
			pos = a.randomPosition()
		}
		size := res.SizeMin + a.rng.Float64()*(res.SizeMax-res.SizeMin)
		a.insertResource(components.NewBody(pos, size, systems.ResourceColor()), components.OriginSpawn)
	}
}

func (a *Arena) randomPosition() r2.Vec {
	w, h := a.Size()
	return r2.Vec{X: a.rng.Float64() * w, Y: a.rng.Float64() * h}
}

// InsertOrganism adds an organism to the arena. Outside a tick it is inserted
// immediately and its entity returned; during a tick it is queued for the commit
// phase and the zero entity is returned.
func (a *Arena) InsertOrganism(s components.Specimen) ecs.Entity {
	if a.ticking {
		a.view.SpawnOrganism(s)
		return ecs.Entity{}
	}
	return a.insertOrganism(s)
}

// InsertResource adds a resource with the same deferral rule as InsertOrganism.
func (a *Arena) InsertResource(body components.Body, origin components.ResourceOrigin) ecs.Entity {
	if a.ticking {
		a.view.SpawnResource(body, origin)
		return ecs.Entity{}
	}
	return a.insertResource(body, origin)
}

func (a *Arena) insertOrganism(s components.Specimen) ecs.Entity {
	body := s.Body
	org := s.Organism.Clone()
	org.Normalize()
	a.assignID(&org)

	entity := a.organisms.NewEntity(&body, &org)
	a.orgList = append(a.orgList, entity)
	a.lifetimes.Register(org.ID, a.tick)
	return entity
}

func (a *Arena) insertResource(body components.Body, origin components.ResourceOrigin) ecs.Entity {
	res := components.Resource{Origin: origin}
	entity := a.resources.NewEntity(&body, &res)
	a.resList = append(a.resList, entity)
	a.gridDirty = true
	return entity
}

// assignID keeps a decoded organism's ID when it is free and otherwise issues the
// next one.
func (a *Arena) assignID(org *components.Organism) {
	if org.ID == 0 || a.lifetimes.Get(org.ID) != nil {
		org.ID = a.issueID()
		return
	}
	if org.ID >= a.nextID && org.ID < math.MaxUint32 {
		a.nextID = org.ID + 1
	}
}

// issueID returns the next ID not held by a tracked organism. The counter skips zero
// when it wraps.
func (a *Arena) issueID() uint32 {
	for {
		id := a.nextID
		a.nextID++
		if a.nextID == 0 {
			a.nextID = 1
		}
		if id != 0 && a.lifetimes.Get(id) == nil {
			return id
		}
	}
}

// Compact removes every tombstoned organism and resource, preserving the order of
// the survivors. Removed organisms are offered to the hall of fame.
func (a *Arena) Compact() {
	kept := a.orgList[:0]
	var removed []ecs.Entity
	for _, e := range a.orgList {
		body, org := a.organisms.Get(e)
		if !body.IsMarkedToDelete() {
			kept = append(kept, e)
			continue
		}
		a.retire(body, org)
		removed = append(removed, e)
	}
	clear(a.orgList[len(kept):])
	a.orgList = kept

	keptRes := a.resList[:0]
	for _, e := range a.resList {
		body, _ := a.resources.Get(e)
		if !body.IsMarkedToDelete() {
			keptRes = append(keptRes, e)
			continue
		}
		removed = append(removed, e)
	}
	clear(a.resList[len(keptRes):])
	a.resList = keptRes
	if len(removed) > 0 {
		a.gridDirty = true
	}

	// Structural changes only after all component pointers are done with.
	for _, e := range removed {
		a.world.RemoveEntity(e)
	}
}

// retire closes an organism's lifetime record and evaluates it for the hall.
func (a *Arena) retire(body *components.Body, org *components.Organism) {
	stats := a.lifetimes.Remove(org.ID)
	if a.hallOfFame == nil || stats == nil {
		return
	}
	line := genome.EncodeBlueprint(&components.Specimen{Body: *body, Organism: *org})
	a.hallOfFame.Consider(line, org.Genes.Kind.Get(), stats, org.ID)
}

// LivingCount returns the number of living organisms, frozen ones included.
func (a *Arena) LivingCount() int {
	n := 0
	for _, e := range a.orgList {
		if _, org := a.organisms.Get(e); org.Alive {
			n++
		}
	}
	return n
}

// reseedIfNeeded tops the population up from the hall of fame when it falls below
// the reseed threshold.
func (a *Arena) reseedIfNeeded() {
	pop := &a.cfg.Population
	if pop.ReseedThreshold <= 0 || a.tick <= reseedGraceTicks {
		return
	}
	current := a.LivingCount()
	if current >= pop.ReseedThreshold {
		return
	}

	reseeded := 0
	for i := 0; i < pop.ReseedCount && current+reseeded < pop.ReseedThreshold; i++ {
		a.insertOrganism(a.reseedSpecimen())
		reseeded++
	}

	hallSize := 0
	if a.hallOfFame != nil {
		hallSize = a.hallOfFame.Size()
	}
	slog.Info("population reseeded",
		"tick", a.tick,
		"population_before", current,
		"reseeded_count", reseeded,
		"hall_size", hallSize,
	)
}

// reseedSpecimen builds a newcomer from a hall of fame genome, mutated once. An empty
// or disabled hall falls back to a random genome.
func (a *Arena) reseedSpecimen() components.Specimen {
	s := systems.NewSpecimen(a.cfg, a.rng, a.randomPosition())
	if a.hallOfFame == nil {
		return s
	}
	line := a.hallOfFame.Sample()
	if line == "" {
		slog.Warn("hall of fame empty, spawning random genome")
		return s
	}
	proven, err := genome.Decode(line)
	if err != nil {
		slog.Error("hall of fame genome unreadable", "error", err)
		return s
	}

	s.Organism.Genes = proven.Organism.Genes
	s.Organism.Genes.Mutate(a.rng, a.cfg.Behavior.MutationSigma)
	s.Organism.Speed = min(s.Organism.Speed, float64(s.Organism.Genes.MaxSpeed.Get()))
	s.Body.Color = systems.KindColor(s.Organism.Genes.Kind.Get())
	s.Body.Tint = s.Body.Color
	return s
}
