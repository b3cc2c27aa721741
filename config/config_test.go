package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.World.SectorSize != 100 {
		t.Errorf("sector_size = %v, want 100", cfg.World.SectorSize)
	}
	if cfg.Behavior.TurnChance != 0.03 || cfg.Behavior.SpeedChance != 0.005 {
		t.Errorf("behavior chances = %v/%v", cfg.Behavior.TurnChance, cfg.Behavior.SpeedChance)
	}
	if cfg.Derived.TickDuration != time.Second/60 {
		t.Errorf("tick duration = %v", cfg.Derived.TickDuration)
	}
	if cfg.Organism.TicksPerAge != 1 {
		t.Errorf("ticks_per_age = %d, want one age step per tick", cfg.Organism.TicksPerAge)
	}
}

func TestLoadOverlaysUserFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("world:\n  width: 400\nresources:\n  feed_rate: 0\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.World.Width != 400 {
		t.Errorf("width = %v, want 400", cfg.World.Width)
	}
	if cfg.World.Height != 720 {
		t.Errorf("height = %v, want default 720", cfg.World.Height)
	}
	if cfg.Resources.FeedRate != 0 {
		t.Errorf("feed_rate = %v, want 0", cfg.Resources.FeedRate)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("PETRI_SEED", "1234")
	t.Setenv("PETRI_RADIATION", "12.5")
	t.Setenv("PETRI_STORAGE_DRIVER", "sqlite")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulation.Seed != 1234 {
		t.Errorf("seed = %d", cfg.Simulation.Seed)
	}
	if cfg.Environment.Radiation != 12.5 {
		t.Errorf("radiation = %v", cfg.Environment.Radiation)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("driver = %q", cfg.Storage.Driver)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero sector", "world:\n  sector_size: 0\n"},
		{"bad driver", "storage:\n  driver: postgres\n"},
		{"bad tick rate", "simulation:\n  tick_rate: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := MustLoad("")
	cfg.Environment.Temperature = 42

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Environment.Temperature != 42 {
		t.Errorf("temperature = %v, want 42", back.Environment.Temperature)
	}
}
