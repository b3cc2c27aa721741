package systems

import (
	"slices"

	"github.com/pthm-cable/petri/components"
)

// RoleFunc runs one role for one organism.
type RoleFunc func(w World, a Actor)

// RoleInfo describes a role and holds its implementation.
type RoleInfo struct {
	Role        components.Role
	Description string
	Category    string // grouping (e.g., "intent", "metabolism", "reproduction")
	Run         RoleFunc
}

// Name returns the role's display name.
func (i RoleInfo) Name() string { return i.Role.String() }

// RoleRegistry maps role tags to their implementations.
// This centralizes dispatch so role lists only ever store stable tags. A registry is
// complete once NewRoleRegistry returns and is never modified afterwards, so one
// instance is safely shared by concurrent arenas.
type RoleRegistry struct {
	roles  []RoleInfo
	byRole map[components.Role]RoleInfo
}

// NewRoleRegistry creates a registry with all known roles.
func NewRoleRegistry() *RoleRegistry {
	reg := &RoleRegistry{
		byRole: make(map[components.Role]RoleInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds all known roles to the registry.
// Update this when adding new roles.
func (r *RoleRegistry) registerDefaults() {
	// Intent
	r.register(RoleInfo{Role: components.RoleChangeDirection, Description: "Occasionally turns by a random angle", Category: "intent", Run: changeDirection})
	r.register(RoleInfo{Role: components.RoleChangeSpeed, Description: "Occasionally resamples cruising speed", Category: "intent", Run: changeSpeed})

	// Metabolism
	r.register(RoleInfo{Role: components.RoleEat, Description: "Consumes overlapping resources", Category: "metabolism", Run: eat})
	r.register(RoleInfo{Role: components.RoleHunger, Description: "Burns food over time", Category: "metabolism", Run: hunger})
	r.register(RoleInfo{Role: components.RoleAge, Description: "Ages and dies of old age", Category: "metabolism", Run: age})

	// Reproduction
	r.register(RoleInfo{Role: components.RoleDivide, Description: "Splits off a child when fed and grown", Category: "reproduction", Run: divide})
	r.register(RoleInfo{Role: components.RolePairing, Description: "Resets fertility on meeting a fertile mate", Category: "reproduction", Run: pairing})
	r.register(RoleInfo{Role: components.RoleMutate, Description: "Rarely perturbs one trait", Category: "reproduction", Run: mutate})

	// Cosmetic
	r.register(RoleInfo{Role: components.RoleUpdateColor, Description: "Tints by temperature and radiation", Category: "cosmetic", Run: updateColor})

	// Movement
	r.register(RoleInfo{Role: components.RoleMove, Description: "Moves forward, turning away from edges", Category: "movement", Run: move})

	// Variants
	r.register(RoleInfo{Role: components.RoleDecay, Description: "Fades out a dead organism", Category: "lifecycle", Run: decay})
	r.register(RoleInfo{Role: components.RoleMakeFood, Description: "Emits resources around a producer", Category: "production", Run: makeFood})
}

// register adds a role, replacing any previous entry for its tag.
func (r *RoleRegistry) register(info RoleInfo) {
	if _, ok := r.byRole[info.Role]; !ok {
		r.roles = append(r.roles, info)
	} else {
		for i := range r.roles {
			if r.roles[i].Role == info.Role {
				r.roles[i] = info
			}
		}
	}
	r.byRole[info.Role] = info
}

// Get returns role info by tag.
func (r *RoleRegistry) Get(role components.Role) (RoleInfo, bool) {
	info, ok := r.byRole[role]
	return info, ok
}

// Run executes role for a. Unknown tags are ignored.
func (r *RoleRegistry) Run(w World, a Actor, role components.Role) {
	if info, ok := r.byRole[role]; ok && info.Run != nil {
		info.Run(w, a)
	}
}

// All returns a copy of the registered roles in registration order.
func (r *RoleRegistry) All() []RoleInfo {
	return slices.Clone(r.roles)
}

// ByCategory returns roles filtered by category.
func (r *RoleRegistry) ByCategory(category string) []RoleInfo {
	var result []RoleInfo
	for _, info := range r.roles {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}
