package systems

import (
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"
	"github.com/pthm-cable/petri/components"
	"github.com/pthm-cable/petri/config"
	"github.com/pthm-cable/petri/telemetry"
	"gonum.org/v1/gonum/spatial/r2"
)

// Environment holds the ambient readings passed to every role on a tick.
type Environment struct {
	Temperature float64
	Radiation   float64 // crossover mutation ratio
	Elapsed     time.Duration
}

// Actor is the organism a role runs for.
type Actor struct {
	Entity ecs.Entity
	Body   *components.Body
	Org    *components.Organism
}

// World is the view of the arena that roles act through. Spawns are queued by the
// implementation and only become visible after the tick's commit phase.
type World interface {
	Env() Environment
	Rand() *rand.Rand
	Config() *config.Config

	// Size returns the arena's width and height.
	Size() (width, height float64)

	// NearbyResources returns resource candidates around body. The slice is only
	// valid until the next call.
	NearbyResources(body *components.Body) []ecs.Entity
	// ResourceBody returns the body of a live resource entity, or nil.
	ResourceBody(e ecs.Entity) *components.Body

	// ForEachOrganism visits organisms in insertion order until fn returns false.
	ForEachOrganism(fn func(Actor) bool)

	SpawnOrganism(s components.Specimen)
	SpawnResource(body components.Body, origin components.ResourceOrigin)

	Emit(ev telemetry.Event)
}

// center returns the arena midpoint.
func center(w World) r2.Vec {
	width, height := w.Size()
	return r2.Vec{X: width / 2, Y: height / 2}
}
