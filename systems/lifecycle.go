package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/petri/components"
	"github.com/pthm-cable/petri/config"
	"github.com/pthm-cable/petri/genetics"
	"github.com/pthm-cable/petri/telemetry"
	"gonum.org/v1/gonum/spatial/r2"
)

// Kill moves a living organism to the dead state and returns its biomass to the arena
// as floor(size/size_per_resource) resources scattered within its radius. Killing a dead
// organism does nothing and returns false.
func Kill(w World, a Actor, cause telemetry.DeathCause) bool {
	if !a.Org.EnterDecay() {
		return false
	}

	cfg := &w.Config().Death
	if n := int(math.Floor(a.Body.Radius / cfg.SizePerResource)); n > 0 {
		size := cfg.BiomassFraction * a.Body.Radius / float64(n)
		for range n {
			spawnScattered(w, a.Body, size, components.OriginCarcass)
		}
	}
	w.Emit(telemetry.NewDeathEvent(a.Org.ID, a.Org.Genes.Kind.Get(), cause))
	return true
}

func spawnScattered(w World, around *components.Body, size float64, origin components.ResourceOrigin) {
	body := components.NewBody(Scatter(w.Rand(), around.Pos, around.Radius), size, resourceColor)
	w.SpawnResource(body, origin)
}

var resourceColor = components.Color{R: 210, G: 190, B: 90, A: 255}

// ResourceColor is the base color of resource bodies.
func ResourceColor() components.Color { return resourceColor }

// Scatter returns a uniformly distributed point inside the disc of the given radius.
func Scatter(rng *rand.Rand, center r2.Vec, radius float64) r2.Vec {
	theta := rng.Float64() * 2 * math.Pi
	r := radius * math.Sqrt(rng.Float64())
	return r2.Add(center, r2.Vec{X: r * math.Cos(theta), Y: r * math.Sin(theta)})
}

// NewSpecimen creates a fresh organism with a random genome at pos.
func NewSpecimen(cfg *config.Config, rng *rand.Rand, pos r2.Vec) components.Specimen {
	genes := genetics.Random(rng)
	body := components.NewBody(pos, cfg.Organism.NewbornSize, KindColor(genes.Kind.Get()))
	body.Rotation = rng.Float64() * 360
	body.Texture = cfg.Organism.Texture

	return components.Specimen{
		Body: body,
		Organism: components.Organism{
			Genes: genes,
			Food:  cfg.Organism.InitialFood,
			Speed: sampleSpeed(rng.Float64(), cfg.Behavior.MinSpeed, float64(genes.MaxSpeed.Get())),
			Alive: true,
			Roles: components.DefaultRoles(),
		},
	}
}

// Offspring returns the child of a dividing organism: a self-crossover of its genome at
// the current radiation, born at the parent's position with the parent's role list.
func Offspring(w World, a Actor) components.Specimen {
	cfg := w.Config()
	rng := w.Rand()
	genes := genetics.Crossover(&a.Org.Genes, &a.Org.Genes, w.Env().Radiation, rng)

	body := components.NewBody(a.Body.Pos, cfg.Organism.NewbornSize, KindColor(genes.Kind.Get()))
	body.Rotation = a.Body.Rotation
	body.Texture = a.Body.Texture

	return components.Specimen{
		Body: body,
		Organism: components.Organism{
			Genes: genes,
			Food:  cfg.Organism.InitialFood,
			Speed: sampleSpeed(rng.Float64(), cfg.Behavior.MinSpeed, float64(genes.MaxSpeed.Get())),
			Alive: true,
			Roles: append([]components.Role(nil), a.Org.Roles...),
		},
	}
}

// MakeProducer turns s into a producer: it no longer eats, ages, starves or
// reproduces, and instead emits resources around itself.
func MakeProducer(cfg *config.Config, s *components.Specimen) {
	s.Organism.DropRoles(
		components.RoleEat,
		components.RoleAge,
		components.RoleHunger,
		components.RoleDivide,
		components.RolePairing,
	)
	s.Organism.AddRole(components.RoleMakeFood)
	s.Body.Texture = cfg.Organism.ProducerTexture
}
