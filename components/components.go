// Package components defines the entity data stored in the arena's ECS world.
package components

// ResourceOrigin records how a resource entered the arena.
type ResourceOrigin uint8

const (
	OriginSpawn    ResourceOrigin = iota // periodic arena spawning
	OriginCarcass                        // released by an organism's death
	OriginProducer                       // emitted by a producer organism
)

func (o ResourceOrigin) String() string {
	switch o {
	case OriginSpawn:
		return "spawn"
	case OriginCarcass:
		return "carcass"
	case OriginProducer:
		return "producer"
	}
	return "unknown"
}

// Resource marks an entity as consumable food. Its size is the Body radius.
type Resource struct {
	Origin ResourceOrigin
}

// Specimen is an organism detached from any arena: the unit of deferred insertion
// and the value produced and consumed by the genome codec.
type Specimen struct {
	Body     Body
	Organism Organism
}
