// Package genetics defines the heritable trait profile of an organism and the operators
// that produce new profiles: randomization, crossover and mutation.
package genetics

import (
	"math/rand"

	"github.com/pthm-cable/petri/bounded"
)

// Trait ranges. Each is a zero-size type carrying the compile-time bounds of one trait.
type (
	AggressionRange        struct{}
	DivisionThresholdRange struct{}
	FoodLimitRange         struct{}
	MaxAgeRange            struct{}
	MaxSizeRange           struct{}
	MaxSpeedRange          struct{}
	RadarDistanceRange     struct{}
	KindRange              struct{}
	MetabolismRange        struct{}
	TurningRateRange       struct{}
)

func (AggressionRange) Bounds() (int32, int32) { return 0, 100 }
func (DivisionThresholdRange) Bounds() (int32, int32) { return 0, 100 }
func (FoodLimitRange) Bounds() (float32, float32) { return 50, 150 }
func (MaxAgeRange) Bounds() (int32, int32) { return 1, 100 }
func (MaxSizeRange) Bounds() (float32, float32) { return 20, 50 }
func (MaxSpeedRange) Bounds() (float32, float32) { return 0.1, 2 }
func (RadarDistanceRange) Bounds() (float32, float32) { return 0, 500 }
func (KindRange) Bounds() (int32, int32) { return -1, 2 }
func (MetabolismRange) Bounds() (float32, float32) { return 0, 100 }
func (TurningRateRange) Bounds() (float32, float32) { return 0, 180 }

// Profile is the complete set of heritable traits of an organism.
// Every trait is a bounded value, so a Profile can never hold an out-of-range trait.
type Profile struct {
	Aggression        bounded.Static[int32, AggressionRange]
	DivisionThreshold bounded.Static[int32, DivisionThresholdRange]
	FoodLimit         bounded.Static[float32, FoodLimitRange]
	MaxAge            bounded.Static[int32, MaxAgeRange]
	MaxSize           bounded.Static[float32, MaxSizeRange]
	MaxSpeed          bounded.Static[float32, MaxSpeedRange]
	RadarRange        bounded.Static[float32, RadarDistanceRange]

	// Kind discriminates compatible partners. -1 is a documented special value that
	// Randomize never produces.
	Kind bounded.Static[int32, KindRange]

	// Reserved; carried through crossover and the genome format but not read by any role.
	Metabolism  bounded.Static[float32, MetabolismRange]
	TurningRate bounded.Static[float32, TurningRateRange]
}

// Random returns a profile with every trait sampled uniformly in its bounds.
func Random(rng *rand.Rand) Profile {
	var p Profile
	p.Randomize(rng)
	return p
}

// Randomize resamples every trait independently and uniformly within its bounds.
// Kind is drawn from [0, max].
func (p *Profile) Randomize(rng *rand.Rand) {
	p.Aggression.Randomize(rng)
	p.DivisionThreshold.Randomize(rng)
	p.FoodLimit.Randomize(rng)
	p.MaxAge.Randomize(rng)
	p.MaxSize.Randomize(rng)
	p.MaxSpeed.Randomize(rng)
	p.RadarRange.Randomize(rng)
	p.Metabolism.Randomize(rng)
	p.TurningRate.Randomize(rng)

	_, hi := p.Kind.Bounds()
	p.Kind.Set(int32(rng.Int63n(int64(hi) + 1)))
}
