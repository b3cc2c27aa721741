package components

import (
	"slices"

	"github.com/pthm-cable/petri/bounded"
	"github.com/pthm-cable/petri/genetics"
)

// FertilityRange bounds an organism's fertility.
type FertilityRange struct{}

func (FertilityRange) Bounds() (float64, float64) { return 0, 100 }

// State is an organism's lifecycle state.
type State uint8

const (
	StateActive  State = iota // roles run every tick
	StateFrozen               // roles suspended; still drawn and collidable
	StateDead                 // decaying; irreversible
	StateRemoved              // compacted out of the arena
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateFrozen:
		return "frozen"
	case StateDead:
		return "dead"
	case StateRemoved:
		return "removed"
	}
	return "unknown"
}

// Organism holds the genetic and runtime state of a living entity.
type Organism struct {
	ID    uint32
	Genes genetics.Profile

	AgeTicks  int64
	Food      float64
	Speed     float64
	Fertility bounded.Static[float64, FertilityRange]

	Alive  bool
	Frozen bool

	// Roles run in order each tick. RoleMove is kept last.
	Roles []Role
}

// State derives the lifecycle state. Removal is tracked by the arena, not here.
func (o *Organism) State() State {
	switch {
	case !o.Alive:
		return StateDead
	case o.Frozen:
		return StateFrozen
	}
	return StateActive
}

// Freeze suspends the organism's roles. Dead organisms cannot be frozen.
func (o *Organism) Freeze() bool {
	if !o.Alive {
		return false
	}
	o.Frozen = true
	return true
}

// Unfreeze resumes the organism's roles.
func (o *Organism) Unfreeze() bool {
	if !o.Alive {
		return false
	}
	o.Frozen = false
	return true
}

// EnterDecay performs the state change of death: the organism stops being alive or
// frozen and its role list becomes the single decay role. Returns false if the
// organism was already dead.
func (o *Organism) EnterDecay() bool {
	if !o.Alive {
		return false
	}
	o.Alive = false
	o.Frozen = false
	o.Roles = []Role{RoleDecay}
	return true
}

// Normalize restores the lifecycle invariants on a state that did not come from
// EnterDecay, such as a decoded line: a dead organism is never frozen and runs only
// the decay role.
func (o *Organism) Normalize() {
	if o.Alive {
		return
	}
	o.Frozen = false
	o.Roles = []Role{RoleDecay}
}

// Clone returns a copy that shares no role slice with o.
func (o *Organism) Clone() Organism {
	c := *o
	c.Roles = slices.Clone(o.Roles)
	return c
}
