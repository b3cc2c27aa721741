package components

import "slices"

// Role is the stable tag of one per-tick behavior. Tag values are written by the genome
// format, so existing values must never be renumbered.
type Role uint8

const (
	RoleChangeDirection Role = 1
	RoleChangeSpeed     Role = 2
	RoleEat             Role = 3
	RoleUpdateColor     Role = 4
	RoleHunger          Role = 5
	RoleDivide          Role = 6
	RolePairing         Role = 7
	RoleAge             Role = 8
	RoleMutate          Role = 9
	RoleMove            Role = 10
	RoleDecay           Role = 11
	RoleMakeFood        Role = 12
)

var roleNames = map[Role]string{
	RoleChangeDirection: "change_direction",
	RoleChangeSpeed:     "change_speed",
	RoleEat:             "eat",
	RoleUpdateColor:     "update_color",
	RoleHunger:          "hunger",
	RoleDivide:          "divide",
	RolePairing:         "pairing",
	RoleAge:             "age",
	RoleMutate:          "mutate",
	RoleMove:            "move",
	RoleDecay:           "decay",
	RoleMakeFood:        "make_food",
}

// String returns the role's snake_case name.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether r is a known role tag.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// DefaultRoles returns the role list of a regular organism.
// Perception and intent run first; movement consumes their output and runs last.
func DefaultRoles() []Role {
	return []Role{
		RoleChangeDirection,
		RoleChangeSpeed,
		RoleEat,
		RoleUpdateColor,
		RoleHunger,
		RoleDivide,
		RolePairing,
		RoleAge,
		RoleMutate,
		RoleMove,
	}
}

// AddRole appends r to the role list, keeping RoleMove last. Adding a role the
// organism already has is a no-op.
func (o *Organism) AddRole(r Role) {
	if o.HasRole(r) {
		return
	}
	if i := slices.Index(o.Roles, RoleMove); i >= 0 && r != RoleMove {
		o.Roles = slices.Insert(o.Roles, i, r)
		return
	}
	o.Roles = append(o.Roles, r)
}

// DropRole removes every occurrence of r.
func (o *Organism) DropRole(r Role) {
	o.Roles = slices.DeleteFunc(o.Roles, func(x Role) bool { return x == r })
}

// DropRoles removes every occurrence of each given role.
func (o *Organism) DropRoles(rs ...Role) {
	o.Roles = slices.DeleteFunc(o.Roles, func(x Role) bool { return slices.Contains(rs, x) })
}

// HasRole reports whether r is in the role list.
func (o *Organism) HasRole(r Role) bool {
	return slices.Contains(o.Roles, r)
}
