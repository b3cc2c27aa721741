// Package bounded provides numeric values that are permanently clamped to a closed range.
//
// Two variants exist. Static reads its bounds from a range type, so every value of a
// given Static type shares the same compile-time bounds. Dynamic carries its bounds as
// fields that can be changed at runtime (used for tunable environment parameters).
// Neither variant ever reports an error: out-of-range results are clamped.
package bounded

import (
	"cmp"
	"math"
	"math/rand"
)

// Number is the set of element types a bounded value can hold.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Range supplies compile-time bounds for a Static value.
// Implementations are zero-size types whose Bounds method returns constants.
type Range[T Number] interface {
	Bounds() (lo, hi T)
}

// clamp converts x into T, forcing it into [lo, hi]. NaN maps to lo.
func clamp[T Number](x float64, lo, hi T) T {
	if math.IsNaN(x) || x <= float64(lo) {
		return lo
	}
	if x >= float64(hi) {
		return hi
	}
	return T(x)
}

// clampT is clamp for values already of type T.
func clampT[T Number](v, lo, hi T) T {
	if math.IsNaN(float64(v)) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func isFloat[T Number]() bool {
	half := 0.5
	return T(half) != 0
}

// sample draws uniformly from [lo, hi]. Integer types include both endpoints.
func sample[T Number](rng *rand.Rand, lo, hi T) T {
	if hi <= lo {
		return lo
	}
	if isFloat[T]() {
		return clampT(lo+T(rng.Float64()*float64(hi-lo)), lo, hi)
	}
	span := int64(float64(hi)-float64(lo)) + 1
	return clamp(float64(lo)+float64(rng.Int63n(span)), lo, hi)
}

// arith applies op to v and d in float64 space and clamps the result.
// A zero divisor leaves v untouched.
func arith[T Number](v, d T, op byte, lo, hi T) T {
	a, b := float64(v), float64(d)
	switch op {
	case '+':
		return clamp(a+b, lo, hi)
	case '-':
		return clamp(a-b, lo, hi)
	case '*':
		return clamp(a*b, lo, hi)
	case '/':
		if b == 0 {
			return clampT(v, lo, hi)
		}
		q := a / b
		if !isFloat[T]() {
			q = math.Trunc(q)
		}
		return clamp(q, lo, hi)
	}
	return clampT(v, lo, hi)
}

// Static is a value clamped to the bounds reported by R.
// The zero value reads as zero clamped into range.
type Static[T Number, R Range[T]] struct {
	v T
}

// NewStatic returns a Static holding initial clamped into range.
func NewStatic[T Number, R Range[T]](initial T) Static[T, R] {
	var s Static[T, R]
	s.Set(initial)
	return s
}

// Bounds returns the range of s.
func (s Static[T, R]) Bounds() (lo, hi T) {
	var r R
	return r.Bounds()
}

// Get returns the current value.
func (s Static[T, R]) Get() T {
	lo, hi := s.Bounds()
	return clampT(s.v, lo, hi)
}

// Set stores v, clamped.
func (s *Static[T, R]) Set(v T) {
	lo, hi := s.Bounds()
	s.v = clampT(v, lo, hi)
}

// SetFloat stores x converted to T, clamped.
func (s *Static[T, R]) SetFloat(x float64) {
	lo, hi := s.Bounds()
	s.v = clamp(x, lo, hi)
}

func (s *Static[T, R]) Add(d T) { lo, hi := s.Bounds(); s.v = arith(s.Get(), d, '+', lo, hi) }
func (s *Static[T, R]) Sub(d T) { lo, hi := s.Bounds(); s.v = arith(s.Get(), d, '-', lo, hi) }
func (s *Static[T, R]) Mul(d T) { lo, hi := s.Bounds(); s.v = arith(s.Get(), d, '*', lo, hi) }
func (s *Static[T, R]) Div(d T) { lo, hi := s.Bounds(); s.v = arith(s.Get(), d, '/', lo, hi) }

// Randomize samples a new value uniformly in range.
func (s *Static[T, R]) Randomize(rng *rand.Rand) {
	lo, hi := s.Bounds()
	s.v = sample(rng, lo, hi)
}

// IsMax reports whether the value has reached the upper bound.
func (s Static[T, R]) IsMax() bool {
	_, hi := s.Bounds()
	return s.Get() >= hi
}

// IsMin reports whether the value has reached the lower bound.
func (s Static[T, R]) IsMin() bool {
	lo, _ := s.Bounds()
	return s.Get() <= lo
}

// Compare orders two values of the same Static type by value.
func (s Static[T, R]) Compare(o Static[T, R]) int { return cmp.Compare(s.Get(), o.Get()) }

// Equal reports whether two values hold the same number.
func (s Static[T, R]) Equal(o Static[T, R]) bool { return s.Get() == o.Get() }

// Dynamic is a value whose bounds can be changed at runtime.
type Dynamic[T Number] struct {
	v, lo, hi T
}

// NewDynamic returns a Dynamic over [lo, hi] holding initial clamped into range.
// Swapped bounds are reordered.
func NewDynamic[T Number](lo, hi, initial T) *Dynamic[T] {
	if hi < lo {
		lo, hi = hi, lo
	}
	return &Dynamic[T]{v: clampT(initial, lo, hi), lo: lo, hi: hi}
}

// Bounds returns the current range.
func (d *Dynamic[T]) Bounds() (lo, hi T) { return d.lo, d.hi }

// Get returns the current value.
func (d *Dynamic[T]) Get() T { return d.v }

// Set stores v, clamped.
func (d *Dynamic[T]) Set(v T) { d.v = clampT(v, d.lo, d.hi) }

// SetBounds replaces both bounds and re-clamps the value.
func (d *Dynamic[T]) SetBounds(lo, hi T) {
	if hi < lo {
		lo, hi = hi, lo
	}
	d.lo, d.hi = lo, hi
	d.v = clampT(d.v, lo, hi)
}

// SetMin moves the lower bound. If it passes the upper bound, the upper bound follows.
func (d *Dynamic[T]) SetMin(lo T) {
	hi := d.hi
	if lo > hi {
		hi = lo
	}
	d.SetBounds(lo, hi)
}

// SetMax moves the upper bound. If it passes the lower bound, the lower bound follows.
func (d *Dynamic[T]) SetMax(hi T) {
	lo := d.lo
	if hi < lo {
		lo = hi
	}
	d.SetBounds(lo, hi)
}

func (d *Dynamic[T]) Add(x T) { d.v = arith(d.v, x, '+', d.lo, d.hi) }
func (d *Dynamic[T]) Sub(x T) { d.v = arith(d.v, x, '-', d.lo, d.hi) }
func (d *Dynamic[T]) Mul(x T) { d.v = arith(d.v, x, '*', d.lo, d.hi) }
func (d *Dynamic[T]) Div(x T) { d.v = arith(d.v, x, '/', d.lo, d.hi) }

// Randomize samples a new value uniformly in range.
func (d *Dynamic[T]) Randomize(rng *rand.Rand) { d.v = sample(rng, d.lo, d.hi) }

// IsMax reports whether the value has reached the upper bound.
func (d *Dynamic[T]) IsMax() bool { return d.v >= d.hi }

// IsMin reports whether the value has reached the lower bound.
func (d *Dynamic[T]) IsMin() bool { return d.v <= d.lo }

// Compare orders two dynamic values by value, ignoring bounds.
func (d *Dynamic[T]) Compare(o *Dynamic[T]) int { return cmp.Compare(d.v, o.v) }

// Equal reports whether two dynamic values hold the same number.
func (d *Dynamic[T]) Equal(o *Dynamic[T]) bool { return d.v == o.v }
