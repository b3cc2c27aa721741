package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the complete arena state for replay.
type Snapshot struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`

	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Tick        int64   `json:"tick"`
	Temperature float64 `json:"temperature"`
	Radiation   float64 `json:"radiation"`
	FeedRate    float64 `json:"feed_rate"`

	Organisms []OrganismState `json:"organisms"`
	Resources []ResourceState `json:"resources"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// OrganismState is one organism as an Organism-> line plus its lifetime record.
type OrganismState struct {
	Line     string             `json:"line"`
	Lifetime *LifetimeStatsJSON `json:"lifetime,omitempty"`
}

// ResourceState holds one resource's complete state.
type ResourceState struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Origin int     `json:"origin"`
}

// LifetimeStatsJSON is the JSON-serializable form of LifetimeStats.
type LifetimeStatsJSON struct {
	BirthTick      int64   `json:"birth_tick"`
	AgeTicks       int64   `json:"age_ticks"`
	Children       int     `json:"children"`
	Pairings       int     `json:"pairings"`
	Mutations      int     `json:"mutations"`
	ResourcesEaten int     `json:"resources_eaten"`
	FoodEaten      float64 `json:"food_eaten"`
}

// ToJSON converts LifetimeStats to its JSON form.
func (s *LifetimeStats) ToJSON() *LifetimeStatsJSON {
	if s == nil {
		return nil
	}
	return &LifetimeStatsJSON{
		BirthTick:      s.BirthTick,
		AgeTicks:       s.AgeTicks,
		Children:       s.Children,
		Pairings:       s.Pairings,
		Mutations:      s.Mutations,
		ResourcesEaten: s.ResourcesEaten,
		FoodEaten:      s.FoodEaten,
	}
}

// FromJSON converts the JSON form back to LifetimeStats.
func (j *LifetimeStatsJSON) FromJSON() *LifetimeStats {
	if j == nil {
		return nil
	}
	return &LifetimeStats{
		BirthTick:      j.BirthTick,
		AgeTicks:       j.AgeTicks,
		Children:       j.Children,
		Pairings:       j.Pairings,
		Mutations:      j.Mutations,
		ResourcesEaten: j.ResourcesEaten,
		FoodEaten:      j.FoodEaten,
	}
}

// SnapshotName returns the file name a snapshot is saved under.
func SnapshotName(s *Snapshot) string {
	name := fmt.Sprintf("snapshot_%d", s.Tick)
	if s.Bookmark != nil {
		name += "_" + strings.ReplaceAll(string(s.Bookmark.Type), " ", "_")
	}
	return name + ".json"
}

// SaveSnapshot writes a snapshot to dir and returns its path.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, SnapshotName(snapshot))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
