package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/petri/camera"
	"github.com/pthm-cable/petri/components"
	"github.com/pthm-cable/petri/systems"
	"github.com/pthm-cable/petri/telemetry"
)

// NearbyResources returns the resources that may overlap organism e. The result is a
// superset of the true overlaps; callers run the exact collision test. Returns nil if
// e is not an organism in the arena.
func (a *Arena) NearbyResources(e ecs.Entity) []ecs.Entity {
	if !a.isOrganism(e) {
		return nil
	}
	if a.gridDirty {
		a.updateSpatialGrid()
	}
	body, _ := a.organisms.Get(e)
	return a.grid.Query(body.Pos, body.Radius)
}

// Freeze suspends organism e. Dead organisms cannot be frozen.
func (a *Arena) Freeze(e ecs.Entity) bool {
	if !a.isOrganism(e) {
		return false
	}
	return a.orgMap.Get(e).Freeze()
}

// Unfreeze resumes organism e.
func (a *Arena) Unfreeze(e ecs.Entity) bool {
	if !a.isOrganism(e) {
		return false
	}
	return a.orgMap.Get(e).Unfreeze()
}

// Kill kills organism e as an external cause. Its carcass resources are committed
// immediately outside a tick. Killing a dead organism does nothing.
func (a *Arena) Kill(e ecs.Entity) bool {
	if !a.isOrganism(e) {
		return false
	}
	killed := systems.Kill(a.view, a.actor(e), telemetry.CauseExternal)
	if !a.ticking {
		a.commit()
	}
	return killed
}

// State returns the lifecycle state of organism e. Entities that are tombstoned or
// no longer in the arena report StateRemoved.
func (a *Arena) State(e ecs.Entity) components.State {
	if !a.isOrganism(e) {
		return components.StateRemoved
	}
	body, org := a.organisms.Get(e)
	if body.IsMarkedToDelete() {
		return components.StateRemoved
	}
	return org.State()
}

// Specimen returns a detached copy of organism e.
func (a *Arena) Specimen(e ecs.Entity) (components.Specimen, bool) {
	if !a.isOrganism(e) {
		return components.Specimen{}, false
	}
	body, org := a.organisms.Get(e)
	return components.Specimen{Body: *body, Organism: org.Clone()}, true
}

// Place moves entity e to pos, clamped to the arena. It works for organisms and
// resources and is meant for placement tools.
func (a *Arena) Place(e ecs.Entity, pos r2.Vec) bool {
	w, h := a.Size()
	pos = r2.Vec{X: math.Max(0, math.Min(w, pos.X)), Y: math.Max(0, math.Min(h, pos.Y))}

	switch {
	case a.isOrganism(e):
		body, _ := a.organisms.Get(e)
		body.Pos = pos
	case a.isResource(e):
		body, _ := a.resources.Get(e)
		body.Pos = pos
		a.gridDirty = true
	default:
		return false
	}
	return true
}

// OrganismAt returns the organism whose body is closest to pos, within maxDist of its
// edge. Placement tools pair it with camera.ScreenToWorld to pick under a pointer.
func (a *Arena) OrganismAt(pos r2.Vec, maxDist float64) (ecs.Entity, bool) {
	var closest ecs.Entity
	closestDist := maxDist
	found := false
	for _, e := range a.orgList {
		body, _ := a.organisms.Get(e)
		if body.IsMarkedToDelete() {
			continue
		}
		d := r2.Norm(r2.Sub(body.Pos, pos)) - body.Radius
		if d <= closestDist {
			closest, closestDist, found = e, d, true
		}
	}
	return closest, found
}

// Views appends a read-only snapshot of every entity to dst, resources first so
// organisms draw on top.
func (a *Arena) Views(dst []components.View) []components.View {
	return a.appendViews(dst, nil)
}

// VisibleViews is like Views but skips entities the camera cannot see.
func (a *Arena) VisibleViews(cam *camera.Camera, dst []components.View) []components.View {
	return a.appendViews(dst, cam)
}

func (a *Arena) appendViews(dst []components.View, cam *camera.Camera) []components.View {
	for _, e := range a.resList {
		body, _ := a.resources.Get(e)
		if cam != nil && !cam.IsVisible(body.Pos, body.Radius) {
			continue
		}
		dst = append(dst, body.View())
	}
	for _, e := range a.orgList {
		body, _ := a.organisms.Get(e)
		if cam != nil && !cam.IsVisible(body.Pos, body.Radius) {
			continue
		}
		v := body.View()
		v.Organism = true
		dst = append(dst, v)
	}
	return dst
}

// Temperature returns the current temperature.
func (a *Arena) Temperature() float64 { return a.temperature.Get() }

// Radiation returns the current radiation, the crossover mutation ratio.
func (a *Arena) Radiation() float64 { return a.radiation.Get() }

// FeedRate returns the periodic resource spawn rate per second.
func (a *Arena) FeedRate() float64 { return a.feedRate.Get() }

// SetTemperature sets the temperature, clamped to its bounds.
func (a *Arena) SetTemperature(v float64) { a.temperature.Set(v) }

// SetRadiation sets the radiation, clamped to its bounds.
func (a *Arena) SetRadiation(v float64) { a.radiation.Set(v) }

// SetFeedRate sets the spawn rate, clamped to its bounds. Zero disables spawning.
func (a *Arena) SetFeedRate(v float64) { a.feedRate.Set(v) }

// SetEnvironmentBounds changes the runtime bounds of temperature and radiation and
// re-clamps both values.
func (a *Arena) SetEnvironmentBounds(tempLo, tempHi, radLo, radHi float64) {
	a.temperature.SetBounds(tempLo, tempHi)
	a.radiation.SetBounds(radLo, radHi)
}

// EnvironmentBounds returns the current temperature and radiation bounds.
func (a *Arena) EnvironmentBounds() (tempLo, tempHi, radLo, radHi float64) {
	tempLo, tempHi = a.temperature.Bounds()
	radLo, radHi = a.radiation.Bounds()
	return tempLo, tempHi, radLo, radHi
}
