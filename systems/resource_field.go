package systems

import (
	"math"
	"math/rand"

	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r2"
)

// ResourceField is a static fertility map over the arena. Periodic resource spawning
// samples candidate positions against it, so food appears in patches rather than
// uniformly.
type ResourceField struct {
	noise  opensimplex.Noise
	width  float64
	height float64

	Scale float64 // noise frequency per world unit
	Floor float64 // minimum acceptance probability anywhere, [0,1]
}

// NewResourceField creates a fertility field for an arena of the given size.
func NewResourceField(width, height float64, seed int64, scale, floor float64) *ResourceField {
	return &ResourceField{
		noise:  opensimplex.NewNormalized(seed),
		width:  width,
		height: height,
		Scale:  scale,
		Floor:  math.Max(0, math.Min(1, floor)),
	}
}

// Sample returns the fertility at p in [Floor, 1].
func (rf *ResourceField) Sample(p r2.Vec) float64 {
	n := rf.noise.Eval2(p.X*rf.Scale, p.Y*rf.Scale)
	return rf.Floor + (1-rf.Floor)*math.Max(0, math.Min(1, n))
}

// Place draws up to attempts uniform candidate positions and returns the first one
// accepted with probability Sample(p). ok is false if every candidate was rejected.
func (rf *ResourceField) Place(rng *rand.Rand, attempts int) (p r2.Vec, ok bool) {
	for range attempts {
		p = r2.Vec{X: rng.Float64() * rf.width, Y: rng.Float64() * rf.height}
		if rng.Float64() < rf.Sample(p) {
			return p, true
		}
	}
	return p, false
}
