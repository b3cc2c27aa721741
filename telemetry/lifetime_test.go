package telemetry

import (
	"testing"
	"time"
)

func TestLifetimeTracker_Record(t *testing.T) {
	lt := NewLifetimeTracker()
	lt.Register(1, 100)
	lt.Register(2, 150)

	lt.Record(NewBirthEvent(1, 0))
	lt.Record(NewBirthEvent(1, 0))
	lt.Record(NewForageEvent(1, 0, 3))
	lt.Record(NewPairingEvent(1, 2, 0))
	lt.Record(NewMutationEvent(2, 0, "Ag"))
	lt.Record(NewForageEvent(99, 0, 3)) // untracked, ignored

	s1 := lt.Get(1)
	if s1.Children != 2 || s1.ResourcesEaten != 1 || s1.FoodEaten != 3 || s1.Pairings != 1 {
		t.Errorf("organism 1 stats = %+v", s1)
	}
	s2 := lt.Get(2)
	if s2.Pairings != 1 {
		t.Errorf("pairing partner not credited: %+v", s2)
	}
	if s2.Mutations != 1 {
		t.Errorf("Mutations = %d, want 1", s2.Mutations)
	}
	if lt.Count() != 2 {
		t.Errorf("Count() = %d, want 2", lt.Count())
	}
}

func TestLifetimeTracker_RemoveAndAge(t *testing.T) {
	lt := NewLifetimeTracker()
	lt.Register(5, 10)
	lt.UpdateAge(5, 600)
	lt.UpdateAge(6, 600) // unknown id is a no-op

	s := lt.Remove(5)
	if s == nil || s.AgeTicks != 600 || s.BirthTick != 10 {
		t.Fatalf("Remove returned %+v", s)
	}
	if lt.Get(5) != nil || lt.Count() != 0 {
		t.Error("stats still tracked after Remove")
	}
	if lt.Remove(5) != nil {
		t.Error("second Remove should return nil")
	}
}

func TestLifetimeStats_SurvivalSec(t *testing.T) {
	s := LifetimeStats{AgeTicks: 120}
	if got := s.SurvivalSec(time.Second / 60); got < 1.999 || got > 2.001 {
		t.Errorf("SurvivalSec = %v, want 2", got)
	}
}
