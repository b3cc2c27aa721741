package systems

import (
	"math"

	"github.com/pthm-cable/petri/components"
	"github.com/pthm-cable/petri/genetics"
	"github.com/pthm-cable/petri/telemetry"
	"gonum.org/v1/gonum/spatial/r2"
)

var defaultRoles = NewRoleRegistry()

// Roles returns the read-only registry used by Update.
func Roles() *RoleRegistry { return defaultRoles }

// Update runs the actor's roles in order. Frozen organisms do nothing. If a role kills
// the organism, the rest of this tick's list is skipped; decay starts next tick.
func Update(w World, a Actor) {
	if a.Org.Frozen {
		return
	}
	alive := a.Org.Alive
	for i := 0; i < len(a.Org.Roles); i++ {
		defaultRoles.Run(w, a, a.Org.Roles[i])
		if alive && !a.Org.Alive {
			return
		}
	}
}

// Apply runs a single role for the actor regardless of its role list.
func Apply(w World, a Actor, role components.Role) {
	defaultRoles.Run(w, a, role)
}

func changeDirection(w World, a Actor) {
	cfg := &w.Config().Behavior
	rng := w.Rand()
	if rng.Float64() < cfg.TurnChance {
		a.Body.Rotate((rng.Float64()*2 - 1) * cfg.TurnMaxDegrees)
	}
}

func changeSpeed(w World, a Actor) {
	cfg := &w.Config().Behavior
	rng := w.Rand()
	if rng.Float64() < cfg.SpeedChance {
		a.Org.Speed = sampleSpeed(rng.Float64(), cfg.MinSpeed, float64(a.Org.Genes.MaxSpeed.Get()))
	}
}

// sampleSpeed maps u in [0,1) to (lo, hi].
func sampleSpeed(u, lo, hi float64) float64 {
	if hi <= lo {
		return hi
	}
	return lo + (1-u)*(hi-lo)
}

func eat(w World, a Actor) {
	cfg := &w.Config().Behavior
	rng := w.Rand()
	limit := float64(a.Org.Genes.FoodLimit.Get())
	maxSize := float64(a.Org.Genes.MaxSize.Get())

	for _, e := range w.NearbyResources(a.Body) {
		if a.Org.Food >= limit {
			return
		}
		rb := w.ResourceBody(e)
		if rb == nil || rb.IsMarkedToDelete() || !a.Body.Collides(rb) {
			continue
		}
		a.Org.Food += rb.Radius
		a.Org.Fertility.Add(rng.Float64() * cfg.FertilityGainMax)
		if a.Body.Radius < maxSize {
			a.Body.Radius = math.Min(a.Body.Radius+1, maxSize)
		}
		rb.MarkToDelete()
		w.Emit(telemetry.NewForageEvent(a.Org.ID, a.Org.Genes.Kind.Get(), rb.Radius))
	}
}

func updateColor(w World, a Actor) {
	cfg := &w.Config().Behavior
	env := w.Env()

	tint := a.Body.Color
	switch {
	case env.Temperature > cfg.ColorTempThreshold:
		tint.R = shiftChannel(tint.R, (env.Temperature-cfg.ColorTempThreshold)*cfg.ColorShift)
	case env.Temperature < -cfg.ColorTempThreshold:
		tint.B = shiftChannel(tint.B, (-env.Temperature-cfg.ColorTempThreshold)*cfg.ColorShift)
	}
	if env.Radiation > cfg.ColorRadThreshold {
		tint.G = shiftChannel(tint.G, (env.Radiation-cfg.ColorRadThreshold)*cfg.ColorShift)
	}
	a.Body.Tint = tint
}

func shiftChannel(c uint8, d float64) uint8 {
	return uint8(math.Max(0, math.Min(255, float64(c)+d)))
}

func hunger(w World, a Actor) {
	cfg := &w.Config().Behavior
	rng := w.Rand()
	ms := float64(w.Env().Elapsed.Microseconds()) / 1000
	rate := cfg.HungerMin + rng.Float64()*(cfg.HungerMax-cfg.HungerMin)
	a.Org.Food -= rate * ms
	if a.Org.Food <= 0 {
		Kill(w, a, telemetry.CauseStarvation)
	}
}

func divide(w World, a Actor) {
	o := a.Org
	if o.Food < float64(o.Genes.FoodLimit.Get()) || a.Body.Radius < float64(o.Genes.MaxSize.Get()) {
		return
	}
	if w.Rand().Float64()*100 > float64(o.Genes.DivisionThreshold.Get()) {
		return
	}

	cfg := &w.Config().Organism
	w.SpawnOrganism(Offspring(w, a))
	o.Food = cfg.DivideFoodReset
	a.Body.Radius = cfg.DivideSizeReset
	a.Body.Rotate(180)
	w.Emit(telemetry.NewBirthEvent(o.ID, o.Genes.Kind.Get()))
}

func pairing(w World, a Actor) {
	if !a.Org.Fertility.IsMax() {
		return
	}
	kind := a.Org.Genes.Kind.Get()
	w.ForEachOrganism(func(other Actor) bool {
		if other.Entity == a.Entity || !other.Org.Alive || other.Body.IsMarkedToDelete() {
			return true
		}
		if other.Org.Genes.Kind.Get() != kind || !other.Org.Fertility.IsMax() {
			return true
		}
		if !a.Body.Collides(other.Body) {
			return true
		}
		a.Org.Fertility.Set(0)
		other.Org.Fertility.Set(0)
		w.Emit(telemetry.NewPairingEvent(a.Org.ID, other.Org.ID, kind))
		return false
	})
}

func age(w World, a Actor) {
	a.Org.AgeTicks++
	if a.Org.AgeTicks >= int64(a.Org.Genes.MaxAge.Get())*w.Config().Organism.TicksPerAge {
		Kill(w, a, telemetry.CauseOldAge)
	}
}

func mutate(w World, a Actor) {
	cfg := &w.Config().Behavior
	rng := w.Rand()
	if rng.Float64() < cfg.MutationChance {
		t := a.Org.Genes.Mutate(rng, cfg.MutationSigma)
		w.Emit(telemetry.NewMutationEvent(a.Org.ID, a.Org.Genes.Kind.Get(), t.Key))
	}
}

// move advances the body along its heading. A step that would leave the arena turns
// the body 90° and retries; after the configured attempts the body is recentered.
func move(w World, a Actor) {
	cfg := &w.Config().Movement
	env := w.Env()

	factor := math.Max(cfg.MinTemperatureFactor, 1+cfg.TemperatureCoefficient*env.Temperature)
	dist := a.Org.Speed * factor * cfg.UnitsPerSecond * env.Elapsed.Seconds()
	width, height := w.Size()

	for range cfg.Attempts {
		next := r2.Add(a.Body.Pos, r2.Scale(dist, a.Body.Heading()))
		if next.X >= 0 && next.X <= width && next.Y >= 0 && next.Y <= height {
			a.Body.Pos = next
			return
		}
		a.Body.Rotate(90)
	}
	a.Body.Pos = center(w)
}

func decay(w World, a Actor) {
	a.Body.Opacity -= w.Config().Behavior.DecayPerSecond * w.Env().Elapsed.Seconds()
	if a.Body.Opacity <= 0 {
		a.Body.Opacity = 0
		a.Body.MarkToDelete()
	}
}

func makeFood(w World, a Actor) {
	cfg := &w.Config().Behavior
	rng := w.Rand()
	if rng.Float64() >= cfg.ProducerChance {
		return
	}
	n := 1 + rng.Intn(2)
	size := a.Body.Radius * cfg.ProducerSizeFactor / float64(n)
	for range n {
		spawnScattered(w, a.Body, size, components.OriginProducer)
	}
	w.Emit(telemetry.NewProduceEvent(a.Org.ID, n))
}

// kindPalette is the base color of each kind; index 0 is kind -1.
var kindPalette = [...]components.Color{
	{R: 150, G: 150, B: 150, A: 255},
	{R: 90, G: 200, B: 120, A: 255},
	{R: 80, G: 140, B: 230, A: 255},
	{R: 235, G: 160, B: 60, A: 255},
}

// KindColor returns the base color for a kind trait value.
func KindColor(kind int32) components.Color {
	lo, _ := genetics.KindRange{}.Bounds()
	i := int(kind - lo)
	if i < 0 || i >= len(kindPalette) {
		return kindPalette[0]
	}
	return kindPalette[i]
}
