package telemetry

import (
	"encoding/json"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/pthm-cable/petri/config"
)

// HallEntry represents a successful organism's genome and fitness.
type HallEntry struct {
	Genome    string // Genome-> blueprint line
	Fitness   float64
	EntityID  uint32
	Kind      int32
	Children  int
	Survival  float64
	FoodEaten float64
}

// HallOfFame stores proven genomes for reseeding when the population crashes.
type HallOfFame struct {
	hall    []HallEntry
	maxSize int
	cfg     config.HallOfFameConfig
	dt      time.Duration
	rng     *rand.Rand
}

// NewHallOfFame creates a new hall of fame. dt converts lifetimes to seconds.
func NewHallOfFame(cfg config.HallOfFameConfig, dt time.Duration, rng *rand.Rand) *HallOfFame {
	maxSize := cfg.Size
	if maxSize < 1 {
		maxSize = 1
	}
	return &HallOfFame{
		hall:    make([]HallEntry, 0, maxSize),
		maxSize: maxSize,
		cfg:     cfg,
		dt:      dt,
		rng:     rng,
	}
}

// Consider evaluates a dead organism for hall of fame entry.
// Returns true if the organism was added to the hall.
func (hof *HallOfFame) Consider(genome string, kind int32, stats *LifetimeStats, entityID uint32) bool {
	if stats == nil || !hof.meetsEntryCriteria(stats) {
		return false
	}

	entry := HallEntry{
		Genome:    genome,
		Fitness:   hof.calculateFitness(stats),
		EntityID:  entityID,
		Kind:      kind,
		Children:  stats.Children,
		Survival:  stats.SurvivalSec(hof.dt),
		FoodEaten: stats.FoodEaten,
	}
	var added bool
	hof.hall, added = hof.insertEntry(hof.hall, entry)
	return added
}

// meetsEntryCriteria checks if an organism qualifies for the hall.
func (hof *HallOfFame) meetsEntryCriteria(stats *LifetimeStats) bool {
	// Primary criterion: reproduced
	if hof.cfg.MinChildren > 0 && stats.Children >= hof.cfg.MinChildren {
		return true
	}
	// Secondary criterion: survived long enough
	return hof.cfg.MinAgeTicks > 0 && stats.AgeTicks >= hof.cfg.MinAgeTicks
}

// calculateFitness computes the weighted fitness score.
func (hof *HallOfFame) calculateFitness(stats *LifetimeStats) float64 {
	w := hof.cfg.Fitness
	return float64(stats.Children)*w.ChildrenWeight +
		stats.SurvivalSec(hof.dt)*w.SurvivalWeight +
		stats.FoodEaten*w.ForageWeight
}

// insertEntry adds an entry to the hall, maintaining sorted order by fitness.
// If the hall is full, the lowest-fitness entry is removed.
func (hof *HallOfFame) insertEntry(hall []HallEntry, entry HallEntry) ([]HallEntry, bool) {
	// Find insertion point (sorted descending by fitness)
	idx := sort.Search(len(hall), func(i int) bool {
		return hall[i].Fitness < entry.Fitness
	})

	// If hall is full and entry would be last (lowest), skip it
	if len(hall) >= hof.maxSize && idx >= hof.maxSize {
		return hall, false
	}

	hall = append(hall, HallEntry{})
	copy(hall[idx+1:], hall[idx:])
	hall[idx] = entry

	// Trim if over capacity
	if len(hall) > hof.maxSize {
		hall = hall[:hof.maxSize]
	}
	return hall, true
}

// Sample selects a genome line using tournament selection.
// Returns "" if the hall is empty.
func (hof *HallOfFame) Sample() string {
	if len(hof.hall) == 0 {
		return ""
	}

	// Tournament selection with k=3
	const tournamentSize = 3
	var best *HallEntry
	for i := 0; i < tournamentSize && i < len(hof.hall); i++ {
		candidate := &hof.hall[hof.rng.Intn(len(hof.hall))]
		if best == nil || candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best.Genome
}

// Size returns the number of entries.
func (hof *HallOfFame) Size() int {
	return len(hof.hall)
}

// TopFitness returns the highest fitness in the hall, or 0 if it is empty.
func (hof *HallOfFame) TopFitness() float64 {
	if len(hof.hall) == 0 {
		return 0
	}
	return hof.hall[0].Fitness
}

// Entries returns the hall, best first.
func (hof *HallOfFame) Entries() []HallEntry {
	return hof.hall
}

// Text returns the hall as one genome line per entry, best first.
func (hof *HallOfFame) Text() string {
	var b strings.Builder
	for _, e := range hof.hall {
		b.WriteString(e.Genome)
		b.WriteByte('\n')
	}
	return b.String()
}

// hallEntryJSON is the JSON-serializable representation of a hall entry.
type hallEntryJSON struct {
	EntityID  uint32  `json:"entity_id"`
	Fitness   float64 `json:"fitness"`
	Kind      int32   `json:"kind"`
	Children  int     `json:"children"`
	Survival  float64 `json:"survival_sec"`
	FoodEaten float64 `json:"food_eaten"`
	Genome    string  `json:"genome"`
}

// MarshalJSON serializes the hall of fame to JSON.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	entries := make([]hallEntryJSON, len(hof.hall))
	for i, e := range hof.hall {
		entries[i] = hallEntryJSON{
			EntityID:  e.EntityID,
			Fitness:   e.Fitness,
			Kind:      e.Kind,
			Children:  e.Children,
			Survival:  e.Survival,
			FoodEaten: e.FoodEaten,
			Genome:    e.Genome,
		}
	}
	return json.MarshalIndent(entries, "", "  ")
}
