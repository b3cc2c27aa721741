package telemetry

import "time"

// LifetimeStats tracks per-organism statistics over its lifetime.
type LifetimeStats struct {
	BirthTick int64
	AgeTicks  int64

	Children  int
	Pairings  int
	Mutations int

	ResourcesEaten int
	FoodEaten      float64
}

// SurvivalSec returns the organism's lifetime in simulated seconds.
func (s *LifetimeStats) SurvivalSec(dt time.Duration) float64 {
	return float64(s.AgeTicks) * dt.Seconds()
}

// LifetimeTracker manages per-organism lifetime statistics.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new organism.
func (lt *LifetimeTracker) Register(id uint32, birthTick int64) {
	lt.stats[id] = &LifetimeStats{BirthTick: birthTick}
}

// Set replaces the lifetime stats of an organism, as when restoring a snapshot.
func (lt *LifetimeTracker) Set(id uint32, stats *LifetimeStats) {
	lt.stats[id] = stats
}

// Get returns the lifetime stats for an organism, or nil if not found.
func (lt *LifetimeTracker) Get(id uint32) *LifetimeStats {
	return lt.stats[id]
}

// Remove removes an organism's stats and returns them.
func (lt *LifetimeTracker) Remove(id uint32) *LifetimeStats {
	stats := lt.stats[id]
	delete(lt.stats, id)
	return stats
}

// Record attributes an event to the organism that caused it.
func (lt *LifetimeTracker) Record(ev Event) {
	s := lt.stats[ev.EntityID]
	if s == nil {
		return
	}
	switch ev.Type {
	case EventBirth:
		s.Children++
	case EventForage:
		s.ResourcesEaten++
		s.FoodEaten += ev.Amount
	case EventPairing:
		s.Pairings++
		if partner := lt.stats[ev.TargetID]; partner != nil {
			partner.Pairings++
		}
	case EventMutation:
		s.Mutations++
	}
}

// UpdateAge stores the organism's current age.
func (lt *LifetimeTracker) UpdateAge(id uint32, ageTicks int64) {
	if s := lt.stats[id]; s != nil {
		s.AgeTicks = ageTicks
	}
}

// Count returns the number of tracked organisms.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}
