package systems

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestResourceFieldSampleRange(t *testing.T) {
	rf := NewResourceField(1000, 1000, 7, 0.01, 0.2)
	rng := rand.New(rand.NewSource(3))

	for range 1000 {
		p := r2.Vec{X: rng.Float64() * 1000, Y: rng.Float64() * 1000}
		v := rf.Sample(p)
		if v < 0.2 || v > 1 {
			t.Fatalf("Sample(%v) = %v, want within [0.2, 1]", p, v)
		}
	}
}

func TestResourceFieldDeterministic(t *testing.T) {
	a := NewResourceField(500, 500, 11, 0.02, 0)
	b := NewResourceField(500, 500, 11, 0.02, 0)
	p := r2.Vec{X: 123.4, Y: 321}
	if a.Sample(p) != b.Sample(p) {
		t.Error("same seed produced different fields")
	}
}

func TestResourceFieldPlace(t *testing.T) {
	tests := []struct {
		name     string
		floor    float64
		attempts int
		wantOK   bool
	}{
		{"full floor always accepts", 1, 1, true},
		{"no attempts never accepts", 1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rf := NewResourceField(200, 100, 1, 0.01, tt.floor)
			p, ok := rf.Place(rand.New(rand.NewSource(5)), tt.attempts)
			if ok != tt.wantOK {
				t.Fatalf("Place ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && (p.X < 0 || p.X > 200 || p.Y < 0 || p.Y > 100) {
				t.Errorf("Place returned %v outside the arena", p)
			}
		})
	}
}
