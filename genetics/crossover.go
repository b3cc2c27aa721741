package genetics

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/petri/bounded"
)

const (
	evenBits   = 0x5555555555555555
	oddBits    = 0xAAAAAAAAAAAAAAAA
	evenBits32 = 0x55555555
	oddBits32  = 0xAAAAAAAA
)

// Interleave builds a value from the raw bit patterns of a and b: even-indexed bits
// come from a, odd-indexed bits from b. Floats are mixed through their IEEE-754
// representation, integers through two's complement.
//
// The result can be any bit pattern of T, including NaN for floats; callers store it
// in a bounded value, which clamps it.
func Interleave[T bounded.Number](a, b T) T {
	switch x := any(a).(type) {
	case float32:
		y := any(b).(float32)
		bits := math.Float32bits(x)&evenBits32 | math.Float32bits(y)&oddBits32
		return any(math.Float32frombits(bits)).(T)
	case float64:
		y := any(b).(float64)
		bits := math.Float64bits(x)&uint64(evenBits) | math.Float64bits(y)&uint64(oddBits)
		return any(math.Float64frombits(bits)).(T)
	}
	// Sign extension to 64 bits followed by truncation back to T keeps the low bits
	// identical to an interleave performed at T's own width.
	ua := uint64(int64(a))
	ub := uint64(int64(b))
	return T(int64(ua&evenBits | ub&oddBits))
}

// mean returns the arithmetic mean of a and b, computed in float64.
func mean[T bounded.Number](a, b T) float64 {
	return (float64(a) + float64(b)) / 2
}

// crossTrait picks the child's value of one trait.
// With probability (100 - mutationRatio)% the parents' bits are interleaved, otherwise
// their values are averaged. The bounded value clamps either outcome.
func crossTrait[T bounded.Number, R bounded.Range[T]](
	rng *rand.Rand,
	mutationRatio float64,
	a, b bounded.Static[T, R],
) bounded.Static[T, R] {
	var child bounded.Static[T, R]
	r := rng.Float64() * 100
	if mutationRatio <= r {
		child.Set(Interleave(a.Get(), b.Get()))
	} else {
		child.SetFloat(mean(a.Get(), b.Get()))
	}
	return child
}

// Crossover produces a child profile from two parents. Each trait independently
// takes either the bit-interleave mix or the mean of the parents' values.
func Crossover(a, b *Profile, mutationRatio float64, rng *rand.Rand) Profile {
	return Profile{
		Aggression:        crossTrait(rng, mutationRatio, a.Aggression, b.Aggression),
		DivisionThreshold: crossTrait(rng, mutationRatio, a.DivisionThreshold, b.DivisionThreshold),
		FoodLimit:         crossTrait(rng, mutationRatio, a.FoodLimit, b.FoodLimit),
		MaxAge:            crossTrait(rng, mutationRatio, a.MaxAge, b.MaxAge),
		MaxSize:           crossTrait(rng, mutationRatio, a.MaxSize, b.MaxSize),
		MaxSpeed:          crossTrait(rng, mutationRatio, a.MaxSpeed, b.MaxSpeed),
		RadarRange:        crossTrait(rng, mutationRatio, a.RadarRange, b.RadarRange),
		Kind:              crossTrait(rng, mutationRatio, a.Kind, b.Kind),
		Metabolism:        crossTrait(rng, mutationRatio, a.Metabolism, b.Metabolism),
		TurningRate:       crossTrait(rng, mutationRatio, a.TurningRate, b.TurningRate),
	}
}
