package genetics

import (
	"math/rand"

	"github.com/pthm-cable/petri/bounded"
)

// Trait describes one field of a Profile in type-erased form.
// The genome codec dispatches on Key; telemetry and mutation use Get/Set.
type Trait struct {
	Name string
	Key  string // two-letter token used by the genome text format

	// Capability traits drive behavior and are eligible for point mutation.
	// Kind and the reserved traits are not.
	Capability bool

	Bounds func() (lo, hi float64)
	Get    func(p *Profile) float64
	Set    func(p *Profile, v float64)
}

func traitOf[T bounded.Number, R bounded.Range[T]](
	name, key string,
	capability bool,
	field func(p *Profile) *bounded.Static[T, R],
) Trait {
	return Trait{
		Name:       name,
		Key:        key,
		Capability: capability,
		Bounds: func() (float64, float64) {
			var r R
			lo, hi := r.Bounds()
			return float64(lo), float64(hi)
		},
		Get: func(p *Profile) float64 { return float64(field(p).Get()) },
		Set: func(p *Profile, v float64) { field(p).SetFloat(v) },
	}
}

var traits = []Trait{
	traitOf("aggression", "Ag", true, func(p *Profile) *bounded.Static[int32, AggressionRange] { return &p.Aggression }),
	traitOf("division_threshold", "Dt", true, func(p *Profile) *bounded.Static[int32, DivisionThresholdRange] { return &p.DivisionThreshold }),
	traitOf("food_limit", "Fl", true, func(p *Profile) *bounded.Static[float32, FoodLimitRange] { return &p.FoodLimit }),
	traitOf("max_age", "Ma", true, func(p *Profile) *bounded.Static[int32, MaxAgeRange] { return &p.MaxAge }),
	traitOf("max_size", "Ms", true, func(p *Profile) *bounded.Static[float32, MaxSizeRange] { return &p.MaxSize }),
	traitOf("max_speed", "Sp", true, func(p *Profile) *bounded.Static[float32, MaxSpeedRange] { return &p.MaxSpeed }),
	traitOf("radar_range", "Rr", true, func(p *Profile) *bounded.Static[float32, RadarDistanceRange] { return &p.RadarRange }),
	traitOf("kind", "Kd", false, func(p *Profile) *bounded.Static[int32, KindRange] { return &p.Kind }),
	traitOf("metabolism", "Mb", false, func(p *Profile) *bounded.Static[float32, MetabolismRange] { return &p.Metabolism }),
	traitOf("turning_rate", "Tr", false, func(p *Profile) *bounded.Static[float32, TurningRateRange] { return &p.TurningRate }),
}

var capabilityTraits = func() []int {
	var idx []int
	for i, t := range traits {
		if t.Capability {
			idx = append(idx, i)
		}
	}
	return idx
}()

// Traits returns the trait table in genome order.
func Traits() []Trait {
	return traits
}

// Mutate perturbs one randomly chosen capability trait by a uniform delta of up to
// sigma times the trait's range, in either direction. Returns the mutated trait.
func (p *Profile) Mutate(rng *rand.Rand, sigma float64) Trait {
	t := traits[capabilityTraits[rng.Intn(len(capabilityTraits))]]
	lo, hi := t.Bounds()
	delta := (rng.Float64()*2 - 1) * sigma * (hi - lo)
	t.Set(p, t.Get(p)+delta)
	return t
}
